package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/lingua/pkg/lingua/annotate"
	"github.com/cognicore/lingua/pkg/lingua/config"
	"github.com/cognicore/lingua/pkg/lingua/extract"
	"github.com/cognicore/lingua/pkg/lingua/logging"
	"github.com/cognicore/lingua/pkg/lingua/store"
	"github.com/cognicore/lingua/pkg/lingua/store/memstore"
	"github.com/cognicore/lingua/pkg/lingua/store/sqlite"
)

type options struct {
	configPath string
	modelsDir  string
	lang       string
	html       bool
	dbPath     string
	workers    int
	text       string
	words      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Config file (default $LINGUA_CONFIG_FILE or ./lingua.yaml)")
	flag.StringVar(&opts.modelsDir, "models", "", "Model directory (default: embedded models)")
	flag.StringVar(&opts.lang, "lang", "", "Force the document language instead of detecting it")
	flag.BoolVar(&opts.html, "html", false, "Inputs are HTML; annotate their readable text")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite database to store results in")
	flag.IntVar(&opts.workers, "workers", 0, "Concurrent documents (default from config, then GOMAXPROCS)")
	flag.StringVar(&opts.text, "text", "", "Annotate this text instead of reading files")
	flag.BoolVar(&opts.words, "words", false, "Print word/POS/lemma lines instead of JSON")
	flag.Parse()

	if err := run(context.Background(), opts, flag.Args(), os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// input is one document to annotate
type input struct {
	source string
	text   string
}

// output is one JSON line written per document
type output struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	annotate.Record
}

func run(ctx context.Context, opts options, args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.modelsDir != "" {
		cfg.Models.Dir = opts.modelsDir
	}
	if opts.dbPath != "" {
		cfg.Store = config.Store{Driver: "sqlite", Path: opts.dbPath}
	}
	if opts.workers > 0 {
		cfg.Pipeline.Workers = opts.workers
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: logging.Format(cfg.Log.Format)})
	if err != nil {
		return err
	}
	defer logger.Sync()

	inputs, err := readInputs(opts, args, stdin)
	if err != nil {
		return err
	}

	pipeline, err := cfg.NewPipeline(logger)
	if err != nil {
		return fmt.Errorf("load models: %w", err)
	}

	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.text
	}
	var results []*annotate.Result
	if opts.lang != "" {
		results, err = pipeline.AnnotateBatchLanguage(ctx, texts, opts.lang, cfg.Pipeline.Workers)
	} else {
		results, err = pipeline.AnnotateBatch(ctx, texts, cfg.Pipeline.Workers)
	}
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	w := bufio.NewWriter(stdout)
	defer w.Flush()
	enc := json.NewEncoder(w)
	for i, res := range results {
		out := output{Source: inputs[i].source, Record: res.Record()}
		if st != nil {
			if out.ID, err = st.SaveResult(ctx, out.Source, res); err != nil {
				return fmt.Errorf("store %s: %w", out.Source, err)
			}
		}
		logger.Info("annotated",
			zap.String("source", out.Source),
			zap.String("language", res.Language()),
			zap.Int("tokens", res.Len()),
			zap.Int("entities", len(out.Entities)))

		if opts.words {
			writeWords(w, out.Source, res)
			continue
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func readInputs(opts options, args []string, stdin io.Reader) ([]input, error) {
	var inputs []input
	switch {
	case opts.text != "":
		inputs = append(inputs, input{source: "text", text: opts.text})
	case len(args) == 0:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		inputs = append(inputs, input{source: "stdin", text: string(data)})
	default:
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, input{source: filepath.Base(path), text: string(data)})
		}
	}
	if opts.html {
		for i := range inputs {
			inputs[i].text = extract.Text(inputs[i].text)
		}
	}
	return inputs, nil
}

func openStore(ctx context.Context, cfg config.Store) (store.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		s, err := sqlite.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return s, nil
	case "memory":
		return memstore.New(), nil
	default:
		return nil, nil
	}
}

func writeWords(w io.Writer, source string, res *annotate.Result) {
	fmt.Fprintf(w, "# %s language=%s confidence=%.2f\n", source, res.Language(), res.Document().Confidence)
	for tok := range res.Words() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", tok.Text, tok.POS, tok.Lemma)
	}
	for span := range res.EntitySeq() {
		fmt.Fprintf(w, "@%s\t%s\n", span.Kind, strings.TrimSpace(span.Text))
	}
}
