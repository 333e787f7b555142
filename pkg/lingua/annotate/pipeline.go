package annotate

import (
	"go.uber.org/zap"

	"github.com/cognicore/lingua/pkg/lingua/internalerr"
	"github.com/cognicore/lingua/pkg/lingua/model"
)

// Pipeline runs text through tokenization, language identification,
// tagging, lemmatization and entity recognition.
// It holds no per-call state, so one Pipeline serves any number of
// goroutines.
type Pipeline struct {
	bundle          *model.Bundle
	logger          *zap.Logger
	requireNonEmpty bool
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger for stage transitions (debug level).
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRequireNonEmpty makes empty input an error instead of an empty result.
func WithRequireNonEmpty(require bool) Option {
	return func(p *Pipeline) { p.requireNonEmpty = require }
}

// New creates a pipeline over a loaded model bundle. bundle must not be nil.
func New(bundle *model.Bundle, opts ...Option) *Pipeline {
	p := &Pipeline{
		bundle: bundle,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewDefault creates a pipeline over the embedded models.
func NewDefault(opts ...Option) (*Pipeline, error) {
	b, err := model.Default()
	if err != nil {
		return nil, err
	}
	return New(b, opts...), nil
}

// Bundle returns the models the pipeline runs on.
func (p *Pipeline) Bundle() *model.Bundle {
	return p.bundle
}

// Annotate detects the language of text and annotates it. Text in a
// language without models is still tokenized and tagged from word shape
// alone, with the document language set to "und".
func (p *Pipeline) Annotate(text string) (*Result, error) {
	return p.run(text, "")
}

// AnnotateLanguage annotates text as the given language, skipping
// detection. It fails with ErrUnsupportedLanguage when no models are
// loaded for lang.
func (p *Pipeline) AnnotateLanguage(text, lang string) (*Result, error) {
	code, err := model.Canonical(lang)
	if err != nil || !p.bundle.Has(code) {
		return nil, &StageError{Stage: LanguageIdentified, Err: internalerr.NewUnsupportedLanguageError(lang)}
	}
	return p.run(text, code)
}

func (p *Pipeline) run(text, forced string) (*Result, error) {
	stage := Created
	advance := func(next Stage, fields ...zap.Field) {
		stage = next
		if ce := p.logger.Check(zap.DebugLevel, "annotate stage"); ce != nil {
			ce.Write(append(fields, zap.Stringer("stage", stage))...)
		}
	}

	if p.requireNonEmpty && len(text) == 0 {
		return nil, &StageError{Stage: Tokenized, Err: internalerr.ErrEmptyInput}
	}
	tokens := p.bundle.Tokenizer().Tokenize(text)
	advance(Tokenized, zap.Int("tokens", len(tokens)))

	doc := Document{Text: text}
	if forced != "" {
		doc.Language, doc.Confidence, doc.Reliable = forced, 1, true
	} else {
		id := p.bundle.Identifier().Identify(text)
		doc.Language, doc.Confidence, doc.Reliable = id.Language, id.Confidence, id.Reliable
	}
	advance(LanguageIdentified, zap.String("language", doc.Language), zap.Float64("confidence", doc.Confidence))

	tags := p.bundle.Tagger().Tag(tokens, doc.Language)
	advance(POSTagged)

	tagged := make([]TaggedToken, len(tokens))
	lem := p.bundle.Lemmatizer()
	for i, tok := range tokens {
		tagged[i] = TaggedToken{Token: tok, POS: tags[i], Lemma: lem.Lemmatize(tok.Text, tags[i], doc.Language)}
	}
	advance(Lemmatized)

	entities := p.bundle.Recognizer().Recognize(tokens, tags)
	advance(EntitiesResolved, zap.Int("entities", len(entities)))

	advance(Complete)
	return &Result{doc: doc, tokens: tagged, entities: entities}, nil
}
