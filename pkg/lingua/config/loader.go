package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/lingua/pkg/lingua/annotate"
	"github.com/cognicore/lingua/pkg/lingua/internalerr"
	"github.com/cognicore/lingua/pkg/lingua/model"
)

// Load reads the configuration file at path. An empty path falls back to
// $LINGUA_CONFIG_FILE and then to ./lingua.yaml; when neither is set and
// ./lingua.yaml does not exist the defaults are returned.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		path, explicit = DefaultFile, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads configuration YAML over the defaults. Values may reference
// environment variables as {{ Env "NAME" }}; an unset variable is an error.
func Parse(data []byte) (*Config, error) {
	data, err := expandEnv(data)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func expandEnv(data []byte) ([]byte, error) {
	var missing []string
	tmpl, err := template.New("config").Funcs(template.FuncMap{
		"Env": func(key string) string {
			val := os.Getenv(key)
			if val == "" {
				missing = append(missing, key)
			}
			return val
		},
	}).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing environment variables: %s", internalerr.ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return []byte(out.String()), nil
}

// Validate checks option values and canonicalizes language codes.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	for i, lang := range c.Models.Languages {
		code, err := model.Canonical(lang)
		if err != nil {
			return invalid("models.languages[%d]: %v", i, err)
		}
		c.Models.Languages[i] = code
	}
	if c.Models.ProfileSize < 0 {
		return invalid("models.profile_size must not be negative")
	}

	switch c.Tokenizer.Contractions {
	case "split", "join":
	default:
		return invalid("tokenizer.contractions must be split or join, got %q", c.Tokenizer.Contractions)
	}

	if c.LangID.MinLength < 0 {
		return invalid("langid.min_length must not be negative")
	}
	if c.LangID.MinSimilarity < 0 || c.LangID.MinSimilarity >= 1 {
		return invalid("langid.min_similarity must be in [0, 1), got %v", c.LangID.MinSimilarity)
	}
	if c.LangID.MinMargin < 0 || c.LangID.MinMargin >= 1 {
		return invalid("langid.min_margin must be in [0, 1), got %v", c.LangID.MinMargin)
	}
	if c.Pipeline.Workers < 0 {
		return invalid("pipeline.workers must not be negative")
	}

	if _, err := zap.ParseAtomicLevel(strings.ToLower(c.Log.Level)); err != nil {
		return invalid("log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format must be json or console, got %q", c.Log.Format)
	}

	switch c.Store.Driver {
	case "", "memory":
	case "sqlite":
		if strings.TrimSpace(c.Store.Path) == "" {
			return invalid("store.path is required for the sqlite driver")
		}
	default:
		return invalid("unknown store.driver %q", c.Store.Driver)
	}
	return nil
}

// Bundle loads the configured models.
func (c *Config) Bundle(logger *zap.Logger) (*model.Bundle, error) {
	opts := []model.Option{
		model.WithLogger(logger),
		model.WithTokenizerOptions(c.TokenizerOptions()),
		model.WithLangIDOptions(c.LangIDOptions()),
		model.WithProfileSize(c.Models.ProfileSize),
	}
	if c.Models.Dir == "" {
		return model.LoadFS(model.Embedded(), c.Models.Languages, opts...)
	}
	return model.Load(c.Models.Languages, c.Models.Dir, opts...)
}

// NewPipeline loads the configured models and builds an annotation pipeline.
func (c *Config) NewPipeline(logger *zap.Logger) (*annotate.Pipeline, error) {
	bundle, err := c.Bundle(logger)
	if err != nil {
		return nil, err
	}
	return annotate.New(bundle,
		annotate.WithLogger(logger),
		annotate.WithRequireNonEmpty(c.Pipeline.RequireNonEmpty),
	), nil
}
