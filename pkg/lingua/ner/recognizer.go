package ner

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/lingua/pkg/lingua/lexicon"
	"github.com/cognicore/lingua/pkg/lingua/postag"
	"github.com/cognicore/lingua/pkg/lingua/tokenize"
)

// Confidence assigned per evidence type
const (
	GazetteerConfidence        = 0.9
	GazetteerPhraseBonus       = 0.05
	TitleConfidence            = 0.7
	OrgSuffixConfidence        = 0.7
	PlacePrepositionConfidence = 0.5
)

// Triggers are the context words of the rule stage.
type Triggers struct {
	// Titles precede a person name ("Dr.", "Herr", "Mme").
	Titles []string `yaml:"titles"`
	// OrgSuffixes follow an organization name and belong to it ("Inc.", "GmbH").
	OrgSuffixes []string `yaml:"org_suffixes"`
	// PlacePrepositions precede a place name ("in", "from").
	PlacePrepositions []string `yaml:"place_prepositions"`
	// Abbreviations are extra tokenizer abbreviations used by the language.
	Abbreviations []string `yaml:"abbreviations"`
}

// ParseTriggers reads a trigger file.
func ParseTriggers(data []byte) (Triggers, error) {
	var t Triggers
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Triggers{}, err
	}
	return t, nil
}

// Merge returns the union of two trigger sets.
func (t Triggers) Merge(o Triggers) Triggers {
	return Triggers{
		Titles:            append(append([]string(nil), t.Titles...), o.Titles...),
		OrgSuffixes:       append(append([]string(nil), t.OrgSuffixes...), o.OrgSuffixes...),
		PlacePrepositions: append(append([]string(nil), t.PlacePrepositions...), o.PlacePrepositions...),
		Abbreviations:     append(append([]string(nil), t.Abbreviations...), o.Abbreviations...),
	}
}

// Recognizer finds person, place and organization names in tagged tokens.
// A gazetteer match always beats a rule match on the same tokens. It is
// read-only after construction.
type Recognizer struct {
	gaz         *Gazetteer
	titles      map[string]struct{}
	orgSuffixes map[string]struct{}
	placePreps  map[string]struct{}
}

// NewRecognizer creates a recognizer. gaz may be nil.
func NewRecognizer(gaz *Gazetteer, trig Triggers) *Recognizer {
	return &Recognizer{
		gaz:         gaz,
		titles:      triggerSet(trig.Titles),
		orgSuffixes: triggerSet(trig.OrgSuffixes),
		placePreps:  triggerSet(trig.PlacePrepositions),
	}
}

func triggerSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		if k := triggerKey(w); k != "" {
			m[k] = struct{}{}
		}
	}
	return m
}

// triggerKey normalizes a trigger word; "Dr." and "dr" are the same title
func triggerKey(s string) string {
	return strings.TrimSuffix(lexicon.Key(s), ".")
}

// Recognize returns the entity spans of tokens, ordered by start. tags
// holds the part-of-speech label of each token; when it is shorter than
// tokens the missing labels only weaken the rule stage. Spans never overlap
// and never cross a sentence-final '.', '!' or '?'.
func (r *Recognizer) Recognize(tokens []tokenize.Token, tags []postag.Tag) []Span {
	var cands []Span
	for _, sent := range sentences(tokens) {
		cands = append(cands, r.gazetteerMatches(tokens, sent)...)
		cands = append(cands, r.ruleMatches(tokens, tags, sent)...)
	}
	return resolve(tokens, cands)
}

// sentences groups the indices of non-whitespace tokens into sentences.
// Terminal punctuation closes a sentence and belongs to none.
func sentences(tokens []tokenize.Token) [][]int {
	var out [][]int
	var cur []int
	for i, t := range tokens {
		switch {
		case t.Kind == tokenize.Whitespace:
			continue
		case isTerminal(t):
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = nil
		default:
			cur = append(cur, i)
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func isTerminal(t tokenize.Token) bool {
	if t.Kind != tokenize.Punctuation {
		return false
	}
	switch t.Text {
	case ".", "!", "?", "…", "。", "！", "？", "¡", "¿":
		return true
	}
	return false
}

func capitalized(t tokenize.Token) bool {
	r, _ := utf8.DecodeRuneInString(t.Text)
	return t.Kind == tokenize.Word && unicode.IsUpper(r)
}

// gazetteerMatches finds the longest entry starting at each capitalized token
func (r *Recognizer) gazetteerMatches(tokens []tokenize.Token, sent []int) []Span {
	if r.gaz == nil || r.gaz.Len() == 0 {
		return nil
	}
	var out []Span
	keys := make([]string, len(sent))
	for i, idx := range sent {
		keys[i] = lexicon.Key(tokens[idx].Text)
	}
	for p := range sent {
		if !capitalized(tokens[sent[p]]) {
			continue
		}
		for n := min(r.gaz.MaxTokens(), len(sent)-p); n >= 1; n-- {
			kind, ok := r.gaz.match(keys[p : p+n])
			if !ok {
				continue
			}
			conf := GazetteerConfidence
			if n > 1 {
				conf += GazetteerPhraseBonus
			}
			out = append(out, Span{
				Start:      sent[p],
				End:        sent[p+n-1] + 1,
				Kind:       kind,
				Confidence: conf,
				Source:     FromGazetteer,
			})
			break
		}
	}
	return out
}

// ruleMatches proposes spans for runs of capitalized nouns next to a trigger
func (r *Recognizer) ruleMatches(tokens []tokenize.Token, tags []postag.Tag, sent []int) []Span {
	nameLike := func(p int) bool {
		idx := sent[p]
		if !capitalized(tokens[idx]) {
			return false
		}
		key := triggerKey(tokens[idx].Text)
		if _, ok := r.titles[key]; ok {
			return false
		}
		if _, ok := r.orgSuffixes[key]; ok {
			return false
		}
		if idx >= len(tags) {
			return true
		}
		switch tags[idx] {
		case postag.PROPN, postag.NOUN, postag.X:
			return true
		}
		return false
	}
	keyAt := func(p int) string {
		if p < 0 || p >= len(sent) {
			return ""
		}
		return triggerKey(tokens[sent[p]].Text)
	}

	var out []Span
	for a := 0; a < len(sent); {
		if !nameLike(a) {
			a++
			continue
		}
		b := a + 1
		for b < len(sent) && nameLike(b) {
			b++
		}

		span := Span{Start: sent[a], End: sent[b-1] + 1, Source: FromRule}
		prev, next := keyAt(a-1), keyAt(b)
		matched := true
		if _, ok := r.titles[prev]; ok {
			span.Kind, span.Confidence = Person, TitleConfidence
		} else if _, ok := r.orgSuffixes[next]; ok {
			span.Kind, span.Confidence = Organization, OrgSuffixConfidence
			span.End = sent[b] + 1
		} else if _, ok := r.placePreps[prev]; ok {
			span.Kind, span.Confidence = Place, PlacePrepositionConfidence
		} else {
			matched = false
		}
		if matched {
			out = append(out, span)
		}
		a = b
	}
	return out
}

// resolve keeps a non-overlapping subset of candidates: gazetteer before
// rules, then longest, then leftmost. The result is ordered by start.
func resolve(tokens []tokenize.Token, cands []Span) []Span {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		return a.Start < b.Start
	})

	var kept []Span
	for _, c := range cands {
		overlap := false
		for _, k := range kept {
			if c.Overlaps(k) {
				overlap = true
				break
			}
		}
		if !overlap {
			kept = append(kept, c)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })

	for i := range kept {
		var sb strings.Builder
		for _, t := range tokens[kept[i].Start:kept[i].End] {
			sb.WriteString(t.Text)
		}
		kept[i].Text = sb.String()
	}
	return kept
}
