package lemma

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/lingua/pkg/lingua/lexicon"
)

// Exception maps an irregular form to its lemma. An empty POS applies to
// every tag.
type Exception struct {
	Form  string `yaml:"form"`
	POS   string `yaml:"pos"`
	Lemma string `yaml:"lemma"`
}

// Rule strips Suffix from words tagged POS and appends one of Replace.
// With several replacements, the first candidate found in the vocabulary
// wins; without a vocabulary hit the first candidate is used.
type Rule struct {
	POS     string   `yaml:"pos"`
	Suffix  string   `yaml:"suffix"`
	Replace []string `yaml:"replace"`
	// MinStem is the minimum number of runes left after stripping.
	MinStem int `yaml:"min_stem"`
	// Undouble also tries the stem with a doubled final consonant reduced
	// ("running" → "runn" → "run").
	Undouble bool `yaml:"undouble"`
	// Exclude lists word endings the rule must not touch ("ss" for "-s").
	Exclude []string `yaml:"exclude"`
}

// Vocabulary answers whether a word form is known in a language
type Vocabulary interface {
	Has(word string) bool
}

// lemmaSource is a vocabulary that also knows lemma groups, such as
// *lexicon.Lexicon.
type lemmaSource interface {
	Lemma(form string) (string, bool)
}

// tagSource is a vocabulary that records the tags a word was seen with
type tagSource interface {
	Count(word, tag string) int
}

// maxPasses bounds how often Lemma re-resolves its own output
const maxPasses = 8

// RuleSet is the lemmatization data of one language. It is read-only after
// construction.
type RuleSet struct {
	byTag  map[[2]string]string // (form, pos) -> lemma
	anyTag map[string]string    // form -> lemma
	lemmas map[string]struct{}
	rules  map[string][]Rule // pos -> rules, longest suffix first
	vocab  Vocabulary
}

// NewRuleSet builds a rule set. vocab may be nil.
func NewRuleSet(exceptions []Exception, rules []Rule, vocab Vocabulary) *RuleSet {
	rs := &RuleSet{
		byTag:  make(map[[2]string]string),
		anyTag: make(map[string]string),
		lemmas: make(map[string]struct{}),
		rules:  make(map[string][]Rule),
		vocab:  vocab,
	}
	for _, ex := range exceptions {
		if ex.Form == "" || ex.Lemma == "" {
			continue
		}
		form, lemma := lexicon.Key(ex.Form), lexicon.Key(ex.Lemma)
		if ex.POS == "" {
			rs.anyTag[form] = lemma
		} else {
			rs.byTag[[2]string{form, ex.POS}] = lemma
		}
		rs.lemmas[lemma] = struct{}{}
	}
	for _, r := range rules {
		if r.Suffix == "" || r.POS == "" {
			continue
		}
		r.Suffix = lexicon.Key(r.Suffix)
		if len(r.Replace) == 0 {
			r.Replace = []string{""}
		}
		rs.rules[r.POS] = append(rs.rules[r.POS], r)
	}
	for pos := range rs.rules {
		list := rs.rules[pos]
		sort.SliceStable(list, func(i, j int) bool { return len(list[i].Suffix) > len(list[j].Suffix) })
	}
	return rs
}

// ParseRuleSet reads a rule set from YAML.
//
// Expected format:
//
//	exceptions:
//	  - {form: ran, pos: VERB, lemma: run}
//	  - {form: "n't", lemma: not}
//	rules:
//	  - {pos: VERB, suffix: ing, replace: ["", e], min_stem: 2, undouble: true}
//	  - {pos: NOUN, suffix: s, exclude: [ss, us, is]}
func ParseRuleSet(data []byte, vocab Vocabulary) (*RuleSet, error) {
	var doc struct {
		Exceptions []Exception `yaml:"exceptions"`
		Rules      []Rule      `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return NewRuleSet(doc.Exceptions, doc.Rules, vocab), nil
}

// Lemma returns the base form of surface tagged pos. The result is the
// normalized lowercase surface when nothing applies, so it is never empty
// for non-empty input.
//
// A rule can land on a form that is itself irregular or inflected ("ams" →
// "am"), so the result is resolved again until it no longer changes. A
// lemma therefore lemmatizes to itself.
func (rs *RuleSet) Lemma(surface, pos string) string {
	word := lexicon.Key(surface)
	for range maxPasses {
		next := rs.resolve(word, pos)
		if next == word {
			break
		}
		word = next
	}
	return word
}

// resolve applies the first source that knows key: tagged exceptions,
// untagged exceptions, lemma groups of the vocabulary, then suffix rules.
func (rs *RuleSet) resolve(key, pos string) string {
	if lemma, ok := rs.byTag[[2]string{key, pos}]; ok {
		return lemma
	}
	if lemma, ok := rs.anyTag[key]; ok {
		return lemma
	}
	if _, ok := rs.lemmas[key]; ok {
		return key
	}
	if src, ok := rs.vocab.(lemmaSource); ok {
		if lemma, ok := src.Lemma(key); ok {
			return lemma
		}
	}
	if lemma, ok := rs.applyRules(key, pos); ok {
		return lemma
	}
	return key
}

// IsLemma reports whether word is the target of some exception.
func (rs *RuleSet) IsLemma(word string) bool {
	_, ok := rs.lemmas[lexicon.Key(word)]
	return ok
}

func (rs *RuleSet) applyRules(word, pos string) (string, bool) {
	for _, r := range rs.rules[pos] {
		if !strings.HasSuffix(word, r.Suffix) || excluded(word, r.Exclude) {
			continue
		}
		stem := word[:len(word)-len(r.Suffix)]
		if utf8.RuneCountInString(stem) < max(r.MinStem, 1) {
			continue
		}
		// "string" and "shred" are not "str" + ing and "shr" + ed
		if !hasVowel(stem + r.Replace[0]) {
			continue
		}
		return rs.choose(word, pos, candidates(stem, r)), true
	}
	return "", false
}

// hasVowel reports whether s contains a vowel, ignoring diacritics
func hasVowel(s string) bool {
	for _, r := range norm.NFD.String(s) {
		if strings.ContainsRune("aeiouyæøœ", r) {
			return true
		}
	}
	return false
}

func excluded(word string, endings []string) bool {
	for _, e := range endings {
		if strings.HasSuffix(word, e) {
			return true
		}
	}
	return false
}

// candidates lists the possible lemmas for stem under r, undoubled stems first
func candidates(stem string, r Rule) []string {
	var out []string
	if r.Undouble {
		if short, ok := undouble(stem); ok {
			for _, rep := range r.Replace {
				out = append(out, short+rep)
			}
		}
	}
	for _, rep := range r.Replace {
		out = append(out, stem+rep)
	}
	return out
}

// undouble drops the last rune of a stem ending in a doubled consonant.
// l, s and z are kept doubled: "falling" → "fall", "missing" → "miss".
func undouble(stem string) (string, bool) {
	last, size := utf8.DecodeLastRuneInString(stem)
	if size == 0 || size == len(stem) {
		return "", false
	}
	prev, _ := utf8.DecodeLastRuneInString(stem[:len(stem)-size])
	if prev != last || strings.ContainsRune("aeiouylsz", last) {
		return "", false
	}
	return stem[:len(stem)-size], true
}

// choose picks the first candidate in the vocabulary, preferring one seen
// with pos ("used" is "use", not the pronoun "us"). A word that is itself
// known but has no known candidate is already a base form ("news", "bus").
func (rs *RuleSet) choose(word, pos string, cands []string) string {
	if rs.vocab == nil {
		return cands[0]
	}
	if tags, ok := rs.vocab.(tagSource); ok {
		for _, c := range cands {
			if c != "" && tags.Count(c, pos) > 0 {
				return c
			}
		}
	}
	for _, c := range cands {
		if c != "" && rs.vocab.Has(c) {
			return c
		}
	}
	if rs.vocab.Has(word) {
		return word
	}
	for _, c := range cands {
		if c != "" {
			return c
		}
	}
	return word
}
