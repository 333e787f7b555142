package postag

import (
	"math"

	"github.com/cognicore/lingua/pkg/lingua/lexicon"
)

// Sequence boundary states. They live past the real tags in every table.
const (
	bos       = numTags
	eos       = numTags + 1
	numStates = numTags + 2
)

const (
	maxSuffix = 3
	floorProb = 1e-6
)

// Model is a second-order hidden Markov model for one language: trigram
// tag transitions smoothed by linear interpolation, and word emissions
// from a tagged corpus plus a lexicon. A Model is immutable after Train.
type Model struct {
	Language string

	// transition counts
	uni  [numStates]float64
	bi   [numStates][numStates]float64
	tri  [numStates][numStates][numStates]float64
	ctx1 [numStates]float64
	ctx2 [numStates][numStates]float64
	n    float64

	lambda [3]float64 // unigram, bigram, trigram weights

	// emission counts: word key -> per-tag counts
	words    map[string]*[numTags]float64
	tagTotal [numTags]float64
	tokens   float64

	// open-class suffix counts for unknown words
	suffixes map[string]*[numTags]float64
}

// Train estimates a model from a tagged corpus. The lexicon may be nil; its
// tag counts are added to the corpus emissions, tags outside the inventory
// are ignored.
func Train(language string, corpus []Sentence, lex *lexicon.Lexicon) *Model {
	m := &Model{
		Language: language,
		words:    make(map[string]*[numTags]float64),
		suffixes: make(map[string]*[numTags]float64),
	}

	for _, sent := range corpus {
		if len(sent) == 0 {
			continue
		}
		states := make([]int, 0, len(sent)+3)
		states = append(states, bos, bos)
		for _, tw := range sent {
			idx, ok := tagIndex[tw.Tag]
			if !ok {
				continue
			}
			states = append(states, idx)
			m.addEmission(tw.Word, idx, 1)
		}
		states = append(states, eos)
		for i := 2; i < len(states); i++ {
			a, b, c := states[i-2], states[i-1], states[i]
			m.tri[a][b][c]++
			m.ctx2[a][b]++
			m.bi[b][c]++
			m.ctx1[b]++
			m.uni[c]++
			m.n++
		}
	}

	if lex != nil {
		for word := range lex.Words() {
			for _, tc := range lex.Tags(word) {
				if idx, ok := tagIndex[Tag(tc.Tag)]; ok {
					m.addEmission(word, idx, float64(tc.Count))
				}
			}
		}
	}

	m.estimateLambdas()
	m.buildSuffixes()
	return m
}

func (m *Model) addEmission(word string, tag int, count float64) {
	key := lexicon.Key(word)
	counts, ok := m.words[key]
	if !ok {
		counts = new([numTags]float64)
		m.words[key] = counts
	}
	counts[tag] += count
	m.tagTotal[tag] += count
	m.tokens += count
}

// estimateLambdas sets the interpolation weights by deleted interpolation:
// every trigram votes, with its count, for the order whose estimate holds
// up best when that trigram is removed from the data.
func (m *Model) estimateLambdas() {
	var l [3]float64
	for a := 0; a < numStates; a++ {
		for b := 0; b < numStates; b++ {
			for c := 0; c < numStates; c++ {
				cnt := m.tri[a][b][c]
				if cnt == 0 {
					continue
				}
				x3 := ratio(cnt-1, m.ctx2[a][b]-1)
				x2 := ratio(m.bi[b][c]-1, m.ctx1[b]-1)
				x1 := ratio(m.uni[c]-1, m.n-1)
				switch {
				case x3 >= x2 && x3 >= x1:
					l[2] += cnt
				case x2 >= x1:
					l[1] += cnt
				default:
					l[0] += cnt
				}
			}
		}
	}
	sum := l[0] + l[1] + l[2]
	if sum == 0 {
		m.lambda = [3]float64{0.2, 0.3, 0.5}
		return
	}
	for i := range l {
		m.lambda[i] = l[i] / sum
	}
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

func (m *Model) buildSuffixes() {
	for word, counts := range m.words {
		runes := []rune(word)
		for k := 1; k <= maxSuffix && k < len(runes); k++ {
			suf := string(runes[len(runes)-k:])
			acc, ok := m.suffixes[suf]
			if !ok {
				acc = new([numTags]float64)
				m.suffixes[suf] = acc
			}
			for t, c := range counts {
				if inventory[t].IsOpenClass() {
					acc[t] += c
				}
			}
		}
	}
}

// logTransition returns log P(c | a, b) under the interpolated estimate.
func (m *Model) logTransition(a, b, c int) float64 {
	p := m.lambda[0]*ratio(m.uni[c], m.n) +
		m.lambda[1]*ratio(m.bi[b][c], m.ctx1[b]) +
		m.lambda[2]*ratio(m.tri[a][b][c], m.ctx2[a][b])
	return math.Log(p + floorProb)
}

// prior returns the add-one smoothed tag probability used to turn
// P(tag|word) into an emission score.
func (m *Model) prior(tag int) float64 {
	return (m.tagTotal[tag] + 1) / (m.tokens + float64(numTags))
}

// known returns the tag distribution of a word seen in training.
func (m *Model) known(key string) (dist, bool) {
	counts, ok := m.words[key]
	if !ok {
		return dist{}, false
	}
	var d dist
	copy(d[:], counts[:])
	ok = d.normalize()
	return d, ok
}

// suffixDist returns the open-class distribution of the longest known
// suffix of key.
func (m *Model) suffixDist(key string) (dist, bool) {
	runes := []rune(key)
	for k := min(maxSuffix, len(runes)-1); k >= 1; k-- {
		counts, ok := m.suffixes[string(runes[len(runes)-k:])]
		if !ok {
			continue
		}
		var d dist
		copy(d[:], counts[:])
		if d.normalize() {
			return d, true
		}
	}
	return dist{}, false
}

// Vocabulary reports whether the model saw word during training.
func (m *Model) Vocabulary(word string) bool {
	_, ok := m.words[lexicon.Key(word)]
	return ok
}

// Stats summarizes a trained model
type Stats struct {
	Words    int
	Tokens   float64
	Trigrams float64
	Lambda   [3]float64
}

func (m *Model) Stats() Stats {
	return Stats{Words: len(m.words), Tokens: m.tokens, Trigrams: m.n, Lambda: m.lambda}
}
