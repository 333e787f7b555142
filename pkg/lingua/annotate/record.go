package annotate

import (
	"encoding/json"
	"fmt"

	"github.com/cognicore/lingua/pkg/lingua/ner"
	"github.com/cognicore/lingua/pkg/lingua/postag"
	"github.com/cognicore/lingua/pkg/lingua/tokenize"
)

// Record is the serialized form of a Result. It carries everything needed
// to rebuild the Result exactly.
type Record struct {
	Text       string        `json:"text"`
	Language   string        `json:"language"`
	Confidence float64       `json:"confidence"`
	Reliable   bool          `json:"reliable"`
	Tokens     []TokenRecord `json:"tokens"`
	Entities   []ner.Span    `json:"entities"`
}

// TokenRecord is one serialized token.
type TokenRecord struct {
	Start int           `json:"start"`
	End   int           `json:"end"`
	Text  string        `json:"text"`
	Kind  tokenize.Kind `json:"kind"`
	POS   postag.Tag    `json:"pos"`
	Lemma string        `json:"lemma"`
}

// Record converts the result to its serialized form.
func (r *Result) Record() Record {
	rec := Record{
		Text:       r.doc.Text,
		Language:   r.doc.Language,
		Confidence: r.doc.Confidence,
		Reliable:   r.doc.Reliable,
		Tokens:     make([]TokenRecord, len(r.tokens)),
		Entities:   r.Entities(),
	}
	if rec.Entities == nil {
		rec.Entities = []ner.Span{}
	}
	for i, t := range r.tokens {
		rec.Tokens[i] = TokenRecord{
			Start: t.Start,
			End:   t.End,
			Text:  t.Text,
			Kind:  t.Kind,
			POS:   t.POS,
			Lemma: t.Lemma,
		}
	}
	return rec
}

// FromRecord rebuilds a Result, checking that tokens cover the text
// contiguously and that entity spans are in range and do not overlap.
func FromRecord(rec Record) (*Result, error) {
	r := &Result{
		doc: Document{
			Text:       rec.Text,
			Language:   rec.Language,
			Confidence: rec.Confidence,
			Reliable:   rec.Reliable,
		},
		tokens: make([]TaggedToken, len(rec.Tokens)),
	}

	pos := 0
	for i, t := range rec.Tokens {
		if t.Start != pos || t.End <= t.Start || t.End > len(rec.Text) {
			return nil, fmt.Errorf("token %d: invalid range [%d,%d)", i, t.Start, t.End)
		}
		if rec.Text[t.Start:t.End] != t.Text {
			return nil, fmt.Errorf("token %d: text %q does not match source", i, t.Text)
		}
		r.tokens[i] = TaggedToken{
			Token: tokenize.Token{Start: t.Start, End: t.End, Text: t.Text, Kind: t.Kind},
			POS:   t.POS,
			Lemma: t.Lemma,
		}
		pos = t.End
	}
	if pos != len(rec.Text) {
		return nil, fmt.Errorf("tokens cover %d of %d bytes", pos, len(rec.Text))
	}

	prevEnd := 0
	for i, s := range rec.Entities {
		if s.Start < prevEnd || s.End <= s.Start || s.End > len(r.tokens) {
			return nil, fmt.Errorf("entity %d: invalid token range [%d,%d)", i, s.Start, s.End)
		}
		prevEnd = s.End
	}
	if len(rec.Entities) > 0 {
		r.entities = append([]ner.Span(nil), rec.Entities...)
	}
	return r, nil
}

// MarshalJSON encodes the result as a Record.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Record())
}

// UnmarshalJSON decodes a Record produced by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	decoded, err := FromRecord(rec)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}
