package langid

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Unknown is the language code returned when no profile matches.
const Unknown = "und"

// Options tunes detection thresholds
type Options struct {
	// MinLength is the number of non-whitespace runes below which a result
	// is never reliable and its confidence is scaled down.
	MinLength int
	// MinSimilarity is the score a profile must exceed to win.
	MinSimilarity float64
	// MinMargin is the lead the best profile needs over the runner-up.
	// Related languages outside the loaded set land close to two profiles
	// at once. Zero disables the check.
	MinMargin float64
}

// DefaultOptions returns MinLength 10, MinSimilarity 0.3 and MinMargin 0.22.
func DefaultOptions() Options {
	return Options{MinLength: 10, MinSimilarity: 0.3, MinMargin: 0.22}
}

// Result is the outcome of one identification
type Result struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
	Reliable   bool    `json:"reliable"`
}

// Score is the similarity of an input to one language profile
type Score struct {
	Language   string
	Similarity float64
}

// Identifier scores text against a fixed set of language profiles. It holds
// no mutable state and may be shared between goroutines.
//
// The similarity of text to a profile is the weighted share of the text's
// n-gram occurrences that the profile contains. Each n-gram is weighted by
// its length and by how few of the loaded profiles contain it, so letters
// and n-grams common to every language move all scores alike.
type Identifier struct {
	profiles []*Profile // sorted by language code
	df       map[string]int
	opts     Options
}

// NewIdentifier creates an identifier over profiles. Profiles with an empty
// language code are ignored; a later profile replaces an earlier one with the
// same code.
func NewIdentifier(profiles []*Profile, opts Options) *Identifier {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultOptions().MinLength
	}
	byCode := make(map[string]*Profile, len(profiles))
	for _, p := range profiles {
		if p == nil || p.Language == "" {
			continue
		}
		byCode[p.Language] = p
	}
	sorted := make([]*Profile, 0, len(byCode))
	df := make(map[string]int)
	for _, p := range byCode {
		sorted = append(sorted, p)
		for g := range p.grams {
			df[g]++
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Language < sorted[j].Language })
	return &Identifier{profiles: sorted, df: df, opts: opts}
}

// Languages returns the codes of the loaded profiles in alphabetical order.
func (id *Identifier) Languages() []string {
	out := make([]string, len(id.profiles))
	for i, p := range id.profiles {
		out[i] = p.Language
	}
	return out
}

// Rank returns the similarity of text to every profile, best first.
// Equal similarities keep alphabetical order. Scores lie in [0, 1].
func (id *Identifier) Rank(text string) []Score {
	counts := countNgrams(text)
	keys := sortedKeys(counts)
	weights := make([]float64, len(keys))
	var total float64
	for i, k := range keys {
		weights[i] = counts[k] * orderWeight(k) * specificity(id.df[k], len(id.profiles))
		total += weights[i]
	}

	scores := make([]Score, len(id.profiles))
	for i, p := range id.profiles {
		var matched float64
		for j, k := range keys {
			if p.Has(k) {
				matched += weights[j]
			}
		}
		scores[i] = Score{Language: p.Language}
		if total > 0 {
			scores[i].Similarity = matched / total
		}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Similarity > scores[j].Similarity
	})
	return scores
}

// Identify returns the most likely language of text. It never fails: text
// that matches no profile well enough, or two profiles almost equally well,
// comes back as Unknown with zero confidence.
func (id *Identifier) Identify(text string) Result {
	scores := id.Rank(text)
	if len(scores) == 0 || scores[0].Similarity <= id.opts.MinSimilarity {
		return Result{Language: Unknown}
	}
	best := scores[0]
	if len(scores) > 1 && best.Similarity-scores[1].Similarity < id.opts.MinMargin {
		return Result{Language: Unknown}
	}

	res := Result{Language: best.Language, Confidence: best.Similarity, Reliable: true}
	if n := countNonSpace(text); n < id.opts.MinLength {
		res.Confidence = best.Similarity * float64(n) / float64(id.opts.MinLength)
		res.Reliable = false
	}
	return res
}

func countNonSpace(text string) int {
	n := 0
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		if !unicode.IsSpace(r) {
			n++
		}
		text = text[size:]
	}
	return n
}
