package annotate

import (
	"iter"
	"slices"

	"github.com/cognicore/lingua/pkg/lingua/ner"
	"github.com/cognicore/lingua/pkg/lingua/postag"
	"github.com/cognicore/lingua/pkg/lingua/tokenize"
)

// Document is the input text together with its detected language.
type Document struct {
	Text       string
	Language   string
	Confidence float64
	Reliable   bool
}

// TaggedToken is a token with its part-of-speech label and lemma.
type TaggedToken struct {
	tokenize.Token
	POS   postag.Tag
	Lemma string
}

// Result is the outcome of one annotation pass. It is never modified after
// the pipeline returns it; accessors hand out copies.
type Result struct {
	doc      Document
	tokens   []TaggedToken
	entities []ner.Span
}

func (r *Result) Document() Document { return r.doc }
func (r *Result) Text() string       { return r.doc.Text }
func (r *Result) Language() string   { return r.doc.Language }

// Len returns the number of tokens, whitespace included.
func (r *Result) Len() int { return len(r.tokens) }

// Token returns the i-th token.
func (r *Result) Token(i int) TaggedToken { return r.tokens[i] }

// Tokens returns a copy of every token in text order.
func (r *Result) Tokens() []TaggedToken { return slices.Clone(r.tokens) }

// Entities returns a copy of the entity spans, ordered by start token.
func (r *Result) Entities() []ner.Span { return slices.Clone(r.entities) }

// All yields every token with its index.
func (r *Result) All() iter.Seq2[int, TaggedToken] {
	return slices.All(r.tokens)
}

// Words yields only word and number tokens, skipping punctuation,
// whitespace and symbols.
func (r *Result) Words() iter.Seq[TaggedToken] {
	return func(yield func(TaggedToken) bool) {
		for _, t := range r.tokens {
			if !t.Kind.IsContent() {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// EntitySeq yields the entity spans in order.
func (r *Result) EntitySeq() iter.Seq[ner.Span] {
	return slices.Values(r.entities)
}

// Lemmas returns the lemma of every word and number token.
func (r *Result) Lemmas() []string {
	var out []string
	for t := range r.Words() {
		out = append(out, t.Lemma)
	}
	return out
}

// EntityOffsets returns the byte range of span in the document text.
func (r *Result) EntityOffsets(s ner.Span) (start, end int) {
	return r.tokens[s.Start].Start, r.tokens[s.End-1].End
}
