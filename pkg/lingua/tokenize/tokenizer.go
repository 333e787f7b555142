package tokenize

import (
	"iter"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/cognicore/lingua/pkg/lingua/internalerr"
)

// ContractionPolicy controls how words joined by an apostrophe are emitted
type ContractionPolicy int

const (
	// ContractionsSplit emits the clitic as its own token: "They're" → "They", "'re".
	ContractionsSplit ContractionPolicy = iota
	// ContractionsJoin keeps "They're" as one word.
	ContractionsJoin
)

// Options configures a Tokenizer
type Options struct {
	Contractions ContractionPolicy
	// Clitics are suffixes split off a word under ContractionsSplit ("'re", "n't").
	Clitics []string
	// Elisions are prefixes split off a word under ContractionsSplit ("l'", "qu'").
	Elisions []string
	// Abbreviations keep their trailing period inside the word ("Inc.", "e.g.").
	Abbreviations []string
	// ExtraPunctuation lists runes treated as punctuation on top of Unicode P*.
	ExtraPunctuation string
}

// DefaultOptions returns the English-leaning defaults: split contractions,
// a small abbreviation list, and the French elision prefixes.
func DefaultOptions() Options {
	return Options{
		Contractions: ContractionsSplit,
		Clitics:      []string{"n't", "'s", "'re", "'ve", "'ll", "'d", "'m"},
		Elisions:     []string{"qu'", "l'", "d'", "j'", "n'", "s'", "c'", "m'", "t'"},
		Abbreviations: []string{
			"Mr.", "Mrs.", "Ms.", "Dr.", "Prof.", "St.", "Jr.", "Sr.", "Mt.",
			"Inc.", "Ltd.", "Corp.", "Co.", "vs.", "etc.", "e.g.", "i.e.",
			"U.S.", "U.K.", "Gen.", "Sen.", "Gov.", "Sra.", "Mme.", "Hr.",
		},
		ExtraPunctuation: "",
	}
}

// Tokenizer splits text into word, number, punctuation, whitespace and
// other tokens. It never splits inside a grapheme cluster and the emitted
// tokens always concatenate back to the input.
type Tokenizer struct {
	contractions ContractionPolicy
	clitics      []string // longest first, apostrophe variants expanded
	elisions     []string
	abbrevs      []string // longest first
	extraPunct   map[rune]struct{}
}

// NewTokenizer creates a tokenizer from options
func NewTokenizer(opts Options) *Tokenizer {
	t := &Tokenizer{
		contractions: opts.Contractions,
		clitics:      expandApostrophes(opts.Clitics),
		elisions:     expandApostrophes(opts.Elisions),
		abbrevs:      dedupe(opts.Abbreviations),
		extraPunct:   make(map[rune]struct{}),
	}
	for _, r := range opts.ExtraPunctuation {
		t.extraPunct[r] = struct{}{}
	}
	byLenDesc := func(s []string) {
		sort.SliceStable(s, func(i, j int) bool { return len(s[i]) > len(s[j]) })
	}
	byLenDesc(t.clitics)
	byLenDesc(t.elisions)
	byLenDesc(t.abbrevs)
	return t
}

// AddAbbreviations registers more abbreviations. Intended for setup time only;
// a Tokenizer must not be mutated once it is shared.
func (t *Tokenizer) AddAbbreviations(abbrevs ...string) {
	t.abbrevs = dedupe(append(t.abbrevs, abbrevs...))
	sort.SliceStable(t.abbrevs, func(i, j int) bool { return len(t.abbrevs[i]) > len(t.abbrevs[j]) })
}

// Tokenize returns every token of text in order. Empty input yields an
// empty slice.
func (t *Tokenizer) Tokenize(text string) []Token {
	return slices.Collect(t.All(text))
}

// TokenizeStrict is Tokenize for callers that require at least one token.
func (t *Tokenizer) TokenizeStrict(text string) ([]Token, error) {
	if len(text) == 0 {
		return nil, internalerr.ErrEmptyInput
	}
	return t.Tokenize(text), nil
}

// All returns a lazy, restartable sequence over the tokens of text.
func (t *Tokenizer) All(text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		clusters := t.segment(text)
		i := 0
		for i < len(clusters) {
			c := clusters[i]
			switch c.class {
			case classSpace:
				j := i + 1
				for j < len(clusters) && clusters[j].class == classSpace {
					j++
				}
				if !yield(makeToken(text, c.start, clusters[j-1].end, Whitespace)) {
					return
				}
				i = j

			case classLetter, classDigit:
				if end, next, ok := t.matchAbbreviation(text, clusters, i); ok {
					if !yield(makeToken(text, c.start, end, Word)) {
						return
					}
					i = next
					continue
				}
				j, kind := scanWord(clusters, i)
				for _, tok := range t.splitContraction(text, c.start, clusters[j-1].end, kind) {
					if !yield(tok) {
						return
					}
				}
				i = j

			case classPunct:
				if !yield(makeToken(text, c.start, c.end, Punctuation)) {
					return
				}
				i++

			default:
				if !yield(makeToken(text, c.start, c.end, Other)) {
					return
				}
				i++
			}
		}
	}
}

type clusterClass int

const (
	classLetter clusterClass = iota
	classDigit
	classSpace
	classPunct
	classOther
)

type cluster struct {
	start, end int
	first      rune
	class      clusterClass
}

// segment splits text into grapheme clusters and classifies each by its first rune
func (t *Tokenizer) segment(text string) []cluster {
	var out []cluster
	rest := text
	state := -1
	offset := 0
	for len(rest) > 0 {
		var c string
		c, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		r, _ := utf8.DecodeRuneInString(c)
		out = append(out, cluster{
			start: offset,
			end:   offset + len(c),
			first: r,
			class: t.classify(r, c),
		})
		offset += len(c)
	}
	return out
}

func (t *Tokenizer) classify(r rune, c string) clusterClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r) || unicode.IsMark(r):
		return classLetter
	case unicode.IsDigit(r):
		// keycap sequences like "1️⃣" start with a digit but are emoji
		if utf8.RuneCountInString(c) > 1 {
			return classOther
		}
		return classDigit
	case unicode.IsNumber(r):
		return classDigit
	case unicode.IsPunct(r):
		return classPunct
	}
	if _, ok := t.extraPunct[r]; ok {
		return classPunct
	}
	return classOther
}

// scanWord extends a letter/digit run starting at i. Hyphens join
// alphanumerics, apostrophes join letters, and '.' or ',' join digits of a
// pure number. It returns the index after the run and the run's kind.
func scanWord(clusters []cluster, i int) (int, Kind) {
	hasLetter := clusters[i].class == classLetter
	j := i + 1
	for j < len(clusters) {
		c := clusters[j]
		if c.class == classLetter || c.class == classDigit {
			if c.class == classLetter {
				hasLetter = true
			}
			j++
			continue
		}
		if c.class != classPunct || j+1 >= len(clusters) {
			break
		}
		prev, next := clusters[j-1], clusters[j+1]
		alnum := func(x cluster) bool { return x.class == classLetter || x.class == classDigit }
		joined := false
		switch c.first {
		case '-', '‐':
			joined = alnum(prev) && alnum(next)
		case '\'', '’':
			joined = prev.class == classLetter && next.class == classLetter
		case '.', ',':
			joined = !hasLetter && prev.class == classDigit && next.class == classDigit
		}
		if !joined {
			break
		}
		j += 2
		if next.class == classLetter {
			hasLetter = true
		}
	}
	if hasLetter {
		return j, Word
	}
	return j, Number
}

// matchAbbreviation checks whether a known abbreviation starts at cluster i
// and ends on a word and cluster boundary. It returns the byte offset after
// the abbreviation and the index of the first cluster past it.
func (t *Tokenizer) matchAbbreviation(text string, clusters []cluster, i int) (int, int, bool) {
	start := clusters[i].start
	if i > 0 && (clusters[i-1].class == classLetter || clusters[i-1].class == classDigit) {
		return 0, 0, false
	}
	for _, abbr := range t.abbrevs {
		end := start + len(abbr)
		if end > len(text) || !strings.EqualFold(text[start:end], abbr) {
			continue
		}
		if end < len(text) {
			r, _ := utf8.DecodeRuneInString(text[end:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		next := i
		for next < len(clusters) && clusters[next].end < end {
			next++
		}
		if next < len(clusters) && clusters[next].end == end {
			return end, next + 1, true
		}
	}
	return 0, 0, false
}

// splitContraction applies the contraction policy to the word text[start:end]
func (t *Tokenizer) splitContraction(text string, start, end int, kind Kind) []Token {
	word := text[start:end]
	if t.contractions == ContractionsJoin || kind != Word || !strings.ContainsAny(word, "'’") {
		return []Token{makeToken(text, start, end, kind)}
	}

	for _, cl := range t.clitics {
		cut := len(word) - len(cl)
		if cut <= 0 || !utf8.RuneStart(word[cut]) {
			continue
		}
		if strings.EqualFold(word[cut:], cl) {
			return []Token{
				makeToken(text, start, start+cut, Word),
				makeToken(text, start+cut, end, Word),
			}
		}
	}

	for _, el := range t.elisions {
		cut := len(el)
		if cut >= len(word) || !utf8.RuneStart(word[cut]) {
			continue
		}
		if strings.EqualFold(word[:cut], el) {
			return []Token{
				makeToken(text, start, start+cut, Word),
				makeToken(text, start+cut, end, Word),
			}
		}
	}

	return []Token{makeToken(text, start, end, kind)}
}

func makeToken(text string, start, end int, kind Kind) Token {
	return Token{Start: start, End: end, Text: text[start:end], Kind: kind}
}

// expandApostrophes adds the typographic-apostrophe spelling of every entry
func expandApostrophes(in []string) []string {
	out := make([]string, 0, len(in)*2)
	for _, s := range in {
		out = append(out, s)
		if strings.Contains(s, "'") {
			out = append(out, strings.ReplaceAll(s, "'", "’"))
		}
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
