package postag

import (
	"math"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/lingua/pkg/lingua/lexicon"
	"github.com/cognicore/lingua/pkg/lingua/tokenize"
)

// knownWeight is the share of the lexicon distribution kept when a known
// common word appears capitalized inside a sentence.
const knownWeight = 0.5

// suffixWeight is the share of the shape heuristic when a learned suffix
// distribution is also available for an unknown word.
const suffixWeight = 0.5

// Tagger assigns one tag per token using the model of the document
// language. It is read-only after construction.
type Tagger struct {
	models map[string]*Model
}

// NewTagger creates a tagger over per-language models. Nil models are skipped.
func NewTagger(models ...*Model) *Tagger {
	t := &Tagger{models: make(map[string]*Model, len(models))}
	for _, m := range models {
		if m != nil {
			t.models[m.Language] = m
		}
	}
	return t
}

// Languages returns the languages with a trained model, sorted.
func (t *Tagger) Languages() []string {
	out := make([]string, 0, len(t.models))
	for lang := range t.models {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Model returns the model for language.
func (t *Tagger) Model(language string) (*Model, bool) {
	m, ok := t.models[language]
	return m, ok
}

// observation is one decodable position: the tags it may take and the log
// emission score of each.
type observation struct {
	cands   []int
	logEmit []float64
}

// Tag labels every token. Whitespace, punctuation, numbers and other
// symbols get fixed labels; words are decoded with the language's model,
// or by word shape alone when no model is loaded for language. The result
// has the same length as tokens.
func (t *Tagger) Tag(tokens []tokenize.Token, language string) []Tag {
	out := make([]Tag, len(tokens))
	m := t.models[language]

	positions := make([]int, 0, len(tokens))
	obs := make([]observation, 0, len(tokens))
	initial := true
	for i, tok := range tokens {
		switch tok.Kind {
		case tokenize.Whitespace:
			out[i] = SPACE
			continue
		case tokenize.Punctuation:
			out[i] = PUNCT
		case tokenize.Number:
			out[i] = NUM
		case tokenize.Other:
			out[i] = SYM
		case tokenize.Word:
			if m == nil {
				out[i] = inventory[guess(tok.Text, initial).argmax()]
			}
		}

		if m != nil {
			positions = append(positions, i)
			if tok.Kind == tokenize.Word {
				obs = append(obs, m.observe(tok.Text, initial))
			} else {
				obs = append(obs, pinned(out[i]))
			}
		}
		initial = opensSentence(tok, initial)
	}

	if m == nil || len(obs) == 0 {
		return out
	}
	for k, tag := range m.viterbi(obs) {
		out[positions[k]] = inventory[tag]
	}
	return out
}

// opensSentence reports whether the word after tok starts a sentence
func opensSentence(tok tokenize.Token, initial bool) bool {
	switch tok.Kind {
	case tokenize.Punctuation:
		switch tok.Text {
		case ",", "'", "’", "‘":
			return false
		}
		return true
	case tokenize.Other:
		return initial
	}
	return false
}

func pinned(tag Tag) observation {
	return observation{cands: []int{tagIndex[tag]}, logEmit: []float64{0}}
}

// observe builds the candidate tags of a word. Known words keep the tags
// they were seen with; unknown words fall back on shape and suffix.
func (m *Model) observe(word string, initial bool) observation {
	key := lexicon.Key(word)
	midCapital := !initial && capitalized(word)

	d, known := m.known(key)
	switch {
	case known:
		if midCapital && d[tagIndex[PROPN]] < 0.5 {
			d = d.mix(capitalGuess, knownWeight)
		}
	default:
		d = guess(word, initial)
		if !midCapital {
			if sd, ok := m.suffixDist(key); ok {
				d = d.mix(sd, suffixWeight)
			}
		}
	}

	var o observation
	for tag, p := range d {
		if p <= 0 {
			continue
		}
		o.cands = append(o.cands, tag)
		o.logEmit = append(o.logEmit, math.Log(p/m.prior(tag)))
	}
	return o
}

// capitalized reports an upper-case first letter on a word of two or more
// runes; a lone capital letter such as "I" says nothing about names.
func capitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r) && utf8.RuneCountInString(word) > 1
}

// viterbi returns the most probable tag sequence for obs under the
// second-order model. States are (previous tag, current tag) pairs.
// Iteration follows candidate order and only a strictly better score
// replaces the incumbent, so ties resolve to the earlier tag.
func (m *Model) viterbi(obs []observation) []int {
	n := len(obs)
	boundary := []int{bos}
	cands := func(i int) []int {
		if i < 0 {
			return boundary
		}
		return obs[i].cands
	}

	// score[i][u][v]: best log probability of a path ending in
	// (cands(i-1)[u], cands(i)[v]); back[i][u][v] is the index into
	// cands(i-2) it came from.
	score := make([][][]float64, n)
	back := make([][][]int, n)

	for i := 0; i < n; i++ {
		prev, cur, prev2 := cands(i-1), cands(i), cands(i-2)
		score[i] = make([][]float64, len(prev))
		back[i] = make([][]int, len(prev))
		for u := range prev {
			score[i][u] = make([]float64, len(cur))
			back[i][u] = make([]int, len(cur))
			for v := range cur {
				best, arg := math.Inf(-1), 0
				for w := range prev2 {
					var s float64
					if i > 0 {
						s = score[i-1][w][u]
					}
					s += m.logTransition(prev2[w], prev[u], cur[v])
					if s > best {
						best, arg = s, w
					}
				}
				score[i][u][v] = best + obs[i].logEmit[v]
				back[i][u][v] = arg
			}
		}
	}

	last := n - 1
	prev, cur := cands(last-1), cands(last)
	bestU, bestV, best := 0, 0, math.Inf(-1)
	for u := range prev {
		for v := range cur {
			s := score[last][u][v] + m.logTransition(prev[u], cur[v], eos)
			if s > best {
				best, bestU, bestV = s, u, v
			}
		}
	}

	path := make([]int, n)
	u, v := bestU, bestV
	for i := last; i >= 0; i-- {
		path[i] = cands(i)[v]
		u, v = back[i][u][v], u
	}
	return path
}
