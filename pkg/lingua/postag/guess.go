package postag

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// dist is a probability distribution over the tag inventory
type dist [numTags]float64

func (d *dist) normalize() bool {
	var sum float64
	for _, p := range d {
		sum += p
	}
	if sum <= 0 {
		return false
	}
	for i := range d {
		d[i] /= sum
	}
	return true
}

// mix returns w*d + (1-w)*o
func (d dist) mix(o dist, w float64) dist {
	var out dist
	for i := range d {
		out[i] = w*d[i] + (1-w)*o[i]
	}
	return out
}

// argmax returns the most probable tag; ties go to the earlier tag.
func (d dist) argmax() int {
	best := 0
	for i := 1; i < numTags; i++ {
		if d[i] > d[best] {
			best = i
		}
	}
	return best
}

func weights(w map[Tag]float64) dist {
	var d dist
	for t, p := range w {
		d[tagIndex[t]] = p
	}
	return d
}

type suffixRule struct {
	suffixes []string
	dist     dist
}

// suffixRules are checked in order; the first list with a matching suffix
// wins. Longer, more specific endings come first.
var suffixRules = []suffixRule{
	{[]string{"mente"}, weights(map[Tag]float64{ADV: 0.9, ADJ: 0.1})},
	{[]string{"tion", "sion", "ción", "sión", "ness", "ment", "ity", "ism", "ist", "ance", "ence", "ship", "hood",
		"ung", "heit", "keit", "schaft", "dad", "tät", "eur", "age"}, weights(map[Tag]float64{NOUN: 0.9, ADJ: 0.1})},
	{[]string{"ous", "ful", "less", "ive", "able", "ible", "ical", "lich", "isch", "ique", "oso", "osa", "eux", "euse"},
		weights(map[Tag]float64{ADJ: 0.8, NOUN: 0.2})},
	{[]string{"ize", "ise", "ify", "ate", "ieren"}, weights(map[Tag]float64{VERB: 0.6, NOUN: 0.2, ADJ: 0.2})},
	{[]string{"ing"}, weights(map[Tag]float64{VERB: 0.6, NOUN: 0.3, ADJ: 0.1})},
	{[]string{"ed"}, weights(map[Tag]float64{VERB: 0.7, ADJ: 0.3})},
	{[]string{"ly"}, weights(map[Tag]float64{ADV: 0.85, ADJ: 0.15})},
	{[]string{"s"}, weights(map[Tag]float64{NOUN: 0.6, VERB: 0.4})},
}

var (
	defaultGuess  = weights(map[Tag]float64{NOUN: 0.6, VERB: 0.2, ADJ: 0.15, ADV: 0.05})
	hyphenGuess   = weights(map[Tag]float64{ADJ: 0.5, NOUN: 0.5})
	numericGuess  = weights(map[Tag]float64{NUM: 1.0})
	alnumGuess    = weights(map[Tag]float64{NOUN: 0.5, PROPN: 0.3, NUM: 0.2})
	acronymGuess  = weights(map[Tag]float64{PROPN: 0.7, NOUN: 0.3})
	capitalGuess  = weights(map[Tag]float64{PROPN: 0.8, NOUN: 0.15, ADJ: 0.05})
	initialGuess  = weights(map[Tag]float64{PROPN: 0.6, NOUN: 0.4})
	properNounMix = 0.5
)

// guess estimates the tag distribution of a word from its shape alone.
// initial marks the first word of a sentence, whose capital says little.
func guess(word string, initial bool) dist {
	hasDigit, hasLetter, allUpper := false, false, true
	letters := 0
	for _, r := range word {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
			letters++
			if !unicode.IsUpper(r) {
				allUpper = false
			}
		}
	}
	first, _ := utf8.DecodeRuneInString(word)
	upperFirst := unicode.IsUpper(first)

	switch {
	case hasDigit && !hasLetter:
		return numericGuess
	case hasDigit:
		return alnumGuess
	case allUpper && letters > 1:
		return acronymGuess
	case upperFirst && !initial:
		return capitalGuess
	}

	d := shapeGuess(strings.ToLower(word))
	if upperFirst {
		d = d.mix(initialGuess, properNounMix)
	}
	return d
}

func shapeGuess(lower string) dist {
	for _, rule := range suffixRules {
		for _, suf := range rule.suffixes {
			if len(lower) > len(suf) && strings.HasSuffix(lower, suf) {
				return rule.dist
			}
		}
	}
	if strings.ContainsRune(lower, '-') {
		return hyphenGuess
	}
	return defaultGuess
}
