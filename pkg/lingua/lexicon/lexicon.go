package lexicon

import (
	"iter"
	"os"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Lexicon stores per-language word knowledge:
// - Tags: how often a word form was seen with each part-of-speech tag
// - Lemmas: inflected forms grouped under their base form (ran, runs → run)
//
// Keys are normalized with Key, so lookups are case-insensitive and do not
// depend on the Unicode composition or apostrophe style of the input.
// A Lexicon is built once and then only read.
type Lexicon struct {
	// form -> tag -> count
	tags map[string]map[string]int

	// lemma -> all forms (including the lemma itself)
	forms map[string][]string

	// form -> lemma
	reverseIndex map[string]string
}

// TagCount is one tag observation count for a word.
type TagCount struct {
	Tag   string
	Count int
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		tags:         make(map[string]map[string]int),
		forms:        make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// Key normalizes a word for lookup: NFC, lowercase, ASCII apostrophe.
func Key(word string) string {
	return strings.ReplaceAll(strings.ToLower(norm.NFC.String(word)), "’", "'")
}

// Parse reads a lexicon from YAML.
//
// Expected format:
//
//	words:
//	  - word: running
//	    tags: {VERB: 14, NOUN: 1}
//	    lemma: run
//	  - word: the
//	    tags: {DET: 120}
//
// The lemma field is optional; when present the form is registered as an
// inflection of that lemma.
func Parse(data []byte) (*Lexicon, error) {
	var doc struct {
		Words []struct {
			Word  string         `yaml:"word"`
			Tags  map[string]int `yaml:"tags"`
			Lemma string         `yaml:"lemma"`
		} `yaml:"words"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range doc.Words {
		if entry.Word == "" {
			continue
		}
		for tag, count := range entry.Tags {
			lex.Add(entry.Word, tag, count)
		}
		if entry.Lemma != "" {
			lex.AddForms(entry.Lemma, entry.Word)
		}
	}
	return lex, nil
}

// LoadFromYAML loads a lexicon file from disk. See Parse for the format.
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Add records count observations of word with tag. Non-positive counts are ignored.
func (l *Lexicon) Add(word, tag string, count int) {
	if count <= 0 || tag == "" {
		return
	}
	key := Key(word)
	m, ok := l.tags[key]
	if !ok {
		m = make(map[string]int)
		l.tags[key] = m
	}
	m[tag] += count
}

// AddForms registers forms as inflections of lemma. The lemma is always
// included as its own first form. A form already assigned to another lemma
// is moved.
func (l *Lexicon) AddForms(lemma string, forms ...string) {
	lemma = Key(lemma)

	if _, ok := l.forms[lemma]; !ok {
		l.move(lemma, lemma)
		l.forms[lemma] = []string{lemma}
	}
	for _, f := range forms {
		if f = Key(f); l.reverseIndex[f] == lemma {
			continue
		}
		l.move(f, lemma)
		l.forms[lemma] = append(l.forms[lemma], f)
	}
}

// move detaches form from its current lemma group and points it at lemma
func (l *Lexicon) move(form, lemma string) {
	if prev, ok := l.reverseIndex[form]; ok && prev != lemma {
		l.forms[prev] = slices.DeleteFunc(l.forms[prev], func(s string) bool { return s == form })
	}
	l.reverseIndex[form] = lemma
}

// Has reports whether word has any tag observations or lemma entry.
func (l *Lexicon) Has(word string) bool {
	key := Key(word)
	if _, ok := l.tags[key]; ok {
		return true
	}
	_, ok := l.reverseIndex[key]
	return ok
}

// Count returns how often word was seen with tag.
func (l *Lexicon) Count(word, tag string) int {
	return l.tags[Key(word)][tag]
}

// Tags returns the tag counts of word, most frequent first. Equal counts
// are ordered by tag name. Unknown words return nil.
func (l *Lexicon) Tags(word string) []TagCount {
	m := l.tags[Key(word)]
	if len(m) == 0 {
		return nil
	}
	out := make([]TagCount, 0, len(m))
	for tag, c := range m {
		out = append(out, TagCount{Tag: tag, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Lemma returns the registered lemma of form.
func (l *Lexicon) Lemma(form string) (string, bool) {
	lemma, ok := l.reverseIndex[Key(form)]
	return lemma, ok
}

// Forms returns all registered forms of the lemma of word, or just the
// normalized word when it has none.
func (l *Lexicon) Forms(word string) []string {
	key := Key(word)
	if lemma, ok := l.reverseIndex[key]; ok {
		return slices.Clone(l.forms[lemma])
	}
	return []string{key}
}

// IsLemma reports whether word is registered as a base form.
func (l *Lexicon) IsLemma(word string) bool {
	_, ok := l.forms[Key(word)]
	return ok
}

// Words yields every tagged word form in sorted order.
func (l *Lexicon) Words() iter.Seq[string] {
	keys := make([]string, 0, len(l.tags))
	for k := range l.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return slices.Values(keys)
}

// Merge adds all observations and lemma groups of other into l.
func (l *Lexicon) Merge(other *Lexicon) {
	if other == nil {
		return
	}
	for word, m := range other.tags {
		for tag, c := range m {
			l.Add(word, tag, c)
		}
	}
	for lemma, forms := range other.forms {
		l.AddForms(lemma, forms...)
	}
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	var obs int
	for _, m := range l.tags {
		for _, c := range m {
			obs += c
		}
	}
	totalForms := 0
	for _, forms := range l.forms {
		totalForms += len(forms)
	}
	return Stats{
		Words:        len(l.tags),
		Observations: obs,
		LemmaGroups:  len(l.forms),
		TotalForms:   totalForms,
	}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Words        int // Distinct tagged word forms
	Observations int // Sum of all tag counts
	LemmaGroups  int // Number of lemmas with registered forms
	TotalForms   int // Total forms across lemma groups
}
