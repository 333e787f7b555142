package model

import (
	"go.uber.org/zap"

	"github.com/cognicore/lingua/pkg/lingua/langid"
	"github.com/cognicore/lingua/pkg/lingua/lemma"
	"github.com/cognicore/lingua/pkg/lingua/lexicon"
	"github.com/cognicore/lingua/pkg/lingua/ner"
	"github.com/cognicore/lingua/pkg/lingua/postag"
	"github.com/cognicore/lingua/pkg/lingua/tokenize"
)

// Language holds the models of one language
type Language struct {
	Code     string
	Profile  *langid.Profile
	Lexicon  *lexicon.Lexicon
	POS      *postag.Model  // nil when neither pos.txt nor lexicon.yaml exist
	Lemma    *lemma.RuleSet // nil without lemma.yaml
	Triggers ner.Triggers
}

// Bundle is the complete set of loaded models. It is immutable after
// loading and safe to share between goroutines without locking.
type Bundle struct {
	languages map[string]*Language
	codes     []string

	tokenizer  *tokenize.Tokenizer
	identifier *langid.Identifier
	tagger     *postag.Tagger
	lemmatizer *lemma.Lemmatizer
	gazetteer  *ner.Gazetteer
	recognizer *ner.Recognizer
}

// Languages returns the loaded language codes, sorted.
func (b *Bundle) Languages() []string {
	return append([]string(nil), b.codes...)
}

// Has reports whether a language is loaded.
func (b *Bundle) Has(code string) bool {
	_, ok := b.languages[code]
	return ok
}

// Language returns the models of one language.
func (b *Bundle) Language(code string) (*Language, bool) {
	l, ok := b.languages[code]
	return l, ok
}

func (b *Bundle) Tokenizer() *tokenize.Tokenizer { return b.tokenizer }
func (b *Bundle) Identifier() *langid.Identifier { return b.identifier }
func (b *Bundle) Tagger() *postag.Tagger         { return b.tagger }
func (b *Bundle) Lemmatizer() *lemma.Lemmatizer  { return b.lemmatizer }
func (b *Bundle) Gazetteer() *ner.Gazetteer      { return b.gazetteer }
func (b *Bundle) Recognizer() *ner.Recognizer    { return b.recognizer }

// Option configures loading
type Option func(*options)

type options struct {
	logger      *zap.Logger
	tokenizer   tokenize.Options
	langid      langid.Options
	profileSize int
}

func defaultOptions() options {
	return options{
		logger:      zap.NewNop(),
		tokenizer:   tokenize.DefaultOptions(),
		langid:      langid.DefaultOptions(),
		profileSize: langid.DefaultProfileSize,
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTokenizerOptions replaces the base tokenizer options. Abbreviations
// and titles from each language's ner.yaml are still added on top.
func WithTokenizerOptions(t tokenize.Options) Option {
	return func(o *options) { o.tokenizer = t }
}

// WithLangIDOptions sets the language identification thresholds.
func WithLangIDOptions(l langid.Options) Option {
	return func(o *options) { o.langid = l }
}

// WithProfileSize sets how many n-grams each language profile keeps.
func WithProfileSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.profileSize = n
		}
	}
}
