package lemma

import (
	"github.com/cognicore/lingua/pkg/lingua/lexicon"
	"github.com/cognicore/lingua/pkg/lingua/postag"
)

// Lemmatizer dispatches to the rule set of the document language
type Lemmatizer struct {
	sets map[string]*RuleSet
}

// New creates a lemmatizer from per-language rule sets.
func New(sets map[string]*RuleSet) *Lemmatizer {
	l := &Lemmatizer{sets: make(map[string]*RuleSet, len(sets))}
	for lang, rs := range sets {
		if rs != nil {
			l.sets[lang] = rs
		}
	}
	return l
}

// Lemmatize returns the base form of surface. Punctuation, whitespace,
// numbers and symbols come back unchanged; words in a language without
// rules come back lowercased.
func (l *Lemmatizer) Lemmatize(surface string, tag postag.Tag, language string) string {
	switch tag {
	case postag.SPACE, postag.PUNCT, postag.SYM, postag.NUM:
		return surface
	}
	if rs, ok := l.sets[language]; ok {
		return rs.Lemma(surface, string(tag))
	}
	return lexicon.Key(surface)
}

// Has reports whether rules are loaded for language.
func (l *Lemmatizer) Has(language string) bool {
	_, ok := l.sets[language]
	return ok
}
