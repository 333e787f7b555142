package config

import (
	"github.com/cognicore/lingua/pkg/lingua/langid"
	"github.com/cognicore/lingua/pkg/lingua/tokenize"
)

// EnvConfigFile names the environment variable holding the config path.
const EnvConfigFile = "LINGUA_CONFIG_FILE"

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "lingua.yaml"

// Config is the application configuration read from lingua.yaml.
type Config struct {
	Models    Models    `yaml:"models"`
	Tokenizer Tokenizer `yaml:"tokenizer"`
	LangID    LangID    `yaml:"langid"`
	Pipeline  Pipeline  `yaml:"pipeline"`
	Log       Log       `yaml:"log"`
	Store     Store     `yaml:"store"`
}

// Models selects the model directory and languages. An empty Dir uses the
// embedded models; empty Languages loads every language found.
type Models struct {
	Dir         string   `yaml:"dir"`
	Languages   []string `yaml:"languages"`
	ProfileSize int      `yaml:"profile_size"`
}

// Tokenizer overrides the tokenizer defaults. Empty lists keep the
// defaults; Abbreviations are added to the default list.
type Tokenizer struct {
	Contractions     string   `yaml:"contractions"` // split | join
	Clitics          []string `yaml:"clitics"`
	Elisions         []string `yaml:"elisions"`
	Abbreviations    []string `yaml:"abbreviations"`
	ExtraPunctuation string   `yaml:"extra_punctuation"`
}

type LangID struct {
	MinLength     int     `yaml:"min_length"`
	MinSimilarity float64 `yaml:"min_similarity"`
	MinMargin     float64 `yaml:"min_margin"`
}

type Pipeline struct {
	RequireNonEmpty bool `yaml:"require_non_empty"`
	Workers         int  `yaml:"workers"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Store selects where annotation results are kept. Driver is one of
// "sqlite", "memory" or empty for none.
type Store struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// defaults for every option; values read from a file override them
var defaultConfig = Config{
	Models: Models{
		ProfileSize: langid.DefaultProfileSize,
	},
	Tokenizer: Tokenizer{
		Contractions: "split",
	},
	LangID: LangID{
		MinLength:     langid.DefaultOptions().MinLength,
		MinSimilarity: langid.DefaultOptions().MinSimilarity,
		MinMargin:     langid.DefaultOptions().MinMargin,
	},
	Log: Log{
		Level:  "warn",
		Format: "console",
	},
}

// Default returns the built-in configuration.
func Default() *Config {
	c := defaultConfig
	return &c
}

// TokenizerOptions merges the tokenizer section into tokenize.DefaultOptions.
func (c *Config) TokenizerOptions() tokenize.Options {
	opts := tokenize.DefaultOptions()
	if c.Tokenizer.Contractions == "join" {
		opts.Contractions = tokenize.ContractionsJoin
	}
	if len(c.Tokenizer.Clitics) > 0 {
		opts.Clitics = append([]string(nil), c.Tokenizer.Clitics...)
	}
	if len(c.Tokenizer.Elisions) > 0 {
		opts.Elisions = append([]string(nil), c.Tokenizer.Elisions...)
	}
	opts.Abbreviations = append(opts.Abbreviations, c.Tokenizer.Abbreviations...)
	opts.ExtraPunctuation = c.Tokenizer.ExtraPunctuation
	return opts
}

// LangIDOptions returns the language identification thresholds.
func (c *Config) LangIDOptions() langid.Options {
	return langid.Options{
		MinLength:     c.LangID.MinLength,
		MinSimilarity: c.LangID.MinSimilarity,
		MinMargin:     c.LangID.MinMargin,
	}
}
