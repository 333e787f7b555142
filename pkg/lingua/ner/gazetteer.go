package ner

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/lingua/pkg/lingua/lexicon"
	"github.com/cognicore/lingua/pkg/lingua/tokenize"
)

// Gazetteer is a dictionary of known names. Names are tokenized with the
// same tokenizer as documents so that both sides agree on token boundaries.
// Matching ignores case and whitespace differences.
type Gazetteer struct {
	tok     *tokenize.Tokenizer
	entries map[string]EntityKind
	maxLen  int // longest entry, in non-whitespace tokens
}

// NewGazetteer creates an empty gazetteer.
func NewGazetteer(tok *tokenize.Tokenizer) *Gazetteer {
	return &Gazetteer{tok: tok, entries: make(map[string]EntityKind)}
}

// Add registers names of one kind. A name already present keeps its first kind.
func (g *Gazetteer) Add(kind EntityKind, names ...string) {
	for _, name := range names {
		var keys []string
		for _, t := range g.tok.Tokenize(name) {
			if t.Kind != tokenize.Whitespace {
				keys = append(keys, lexicon.Key(t.Text))
			}
		}
		if len(keys) == 0 {
			continue
		}
		key := strings.Join(keys, " ")
		if _, ok := g.entries[key]; ok {
			continue
		}
		g.entries[key] = kind
		g.maxLen = max(g.maxLen, len(keys))
	}
}

// LoadYAML adds the entries of a gazetteer file.
//
// Expected format:
//
//	person: [Steve Jobs, Ada Lovelace]
//	place: [Paris, New York]
//	organization: [Apple Inc., United Nations]
func (g *Gazetteer) LoadYAML(data []byte) error {
	var doc struct {
		Person       []string `yaml:"person"`
		Place        []string `yaml:"place"`
		Organization []string `yaml:"organization"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	g.Add(Person, doc.Person...)
	g.Add(Place, doc.Place...)
	g.Add(Organization, doc.Organization...)
	return nil
}

// Lookup returns the kind of a name.
func (g *Gazetteer) Lookup(name string) (EntityKind, bool) {
	var keys []string
	for _, t := range g.tok.Tokenize(name) {
		if t.Kind != tokenize.Whitespace {
			keys = append(keys, lexicon.Key(t.Text))
		}
	}
	return g.match(keys)
}

func (g *Gazetteer) match(keys []string) (EntityKind, bool) {
	kind, ok := g.entries[strings.Join(keys, " ")]
	return kind, ok
}

// Len returns the number of entries.
func (g *Gazetteer) Len() int {
	return len(g.entries)
}

// MaxTokens returns the token length of the longest entry.
func (g *Gazetteer) MaxTokens() int {
	return g.maxLen
}
