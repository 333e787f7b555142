package postag

import "fmt"

// Tag is a universal part-of-speech label
type Tag string

const (
	ADJ   Tag = "ADJ"
	ADP   Tag = "ADP"
	ADV   Tag = "ADV"
	CONJ  Tag = "CONJ"
	DET   Tag = "DET"
	INTJ  Tag = "INTJ"
	NOUN  Tag = "NOUN"
	NUM   Tag = "NUM"
	PART  Tag = "PART"
	PRON  Tag = "PRON"
	PROPN Tag = "PROPN"
	PUNCT Tag = "PUNCT"
	SPACE Tag = "SPACE"
	SYM   Tag = "SYM"
	VERB  Tag = "VERB"
	X     Tag = "X"
)

// inventory order is also the tie-break order during decoding
var inventory = [...]Tag{ADJ, ADP, ADV, CONJ, DET, INTJ, NOUN, NUM, PART, PRON, PROPN, PUNCT, SPACE, SYM, VERB, X}

const numTags = len(inventory)

var tagIndex = func() map[Tag]int {
	m := make(map[Tag]int, numTags)
	for i, t := range inventory {
		m[t] = i
	}
	return m
}()

// Tags returns the fixed tag inventory in tie-break order.
func Tags() []Tag {
	out := make([]Tag, numTags)
	copy(out, inventory[:])
	return out
}

// ParseTag validates a tag name.
func ParseTag(s string) (Tag, error) {
	if _, ok := tagIndex[Tag(s)]; ok {
		return Tag(s), nil
	}
	return "", fmt.Errorf("unknown tag %q", s)
}

// IsOpenClass reports whether new words can plausibly carry the tag.
func (t Tag) IsOpenClass() bool {
	switch t {
	case NOUN, PROPN, VERB, ADJ, ADV:
		return true
	}
	return false
}
