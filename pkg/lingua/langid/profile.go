package langid

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultProfileSize is the number of n-grams kept per language profile
const DefaultProfileSize = 2000

// Profile is the n-gram fingerprint of one language. It is immutable after
// construction and safe to share across goroutines.
type Profile struct {
	Language string
	grams    map[string]struct{}
}

// BuildProfile computes a profile from sample text, keeping the topK most
// frequent character 1-, 2- and 3-grams. topK <= 0 keeps DefaultProfileSize.
func BuildProfile(language, sample string, topK int) *Profile {
	if topK <= 0 {
		topK = DefaultProfileSize
	}
	counts := countNgrams(sample)

	type gram struct {
		key   string
		count float64
	}
	grams := make([]gram, 0, len(counts))
	for k, c := range counts {
		grams = append(grams, gram{k, c})
	}
	// Ties break on the n-gram itself so the profile is deterministic
	sort.Slice(grams, func(i, j int) bool {
		if grams[i].count != grams[j].count {
			return grams[i].count > grams[j].count
		}
		return grams[i].key < grams[j].key
	})
	if len(grams) > topK {
		grams = grams[:topK]
	}

	kept := make(map[string]struct{}, len(grams))
	for _, g := range grams {
		kept[g.key] = struct{}{}
	}
	return &Profile{Language: language, grams: kept}
}

// Size returns the number of n-grams in the profile.
func (p *Profile) Size() int {
	return len(p.grams)
}

// Has reports whether gram is one of the kept n-grams.
func (p *Profile) Has(gram string) bool {
	_, ok := p.grams[gram]
	return ok
}

// orderWeight scales an n-gram by its length. Single letters are shared by
// most alphabets and say little about the language.
func orderWeight(gram string) float64 {
	switch utf8.RuneCountInString(gram) {
	case 1:
		return 0.1
	case 2:
		return 0.5
	default:
		return 1
	}
}

// specificity is the inverse document frequency of an n-gram found in df of
// n profiles. Grams no profile knows count as if one profile had them.
func specificity(df, n int) float64 {
	return math.Log(float64(n+1) / float64(max(df, 1)))
}

// countNgrams extracts character n-grams (n = 1..3) from the letter runs of
// text. Words are lowercased, NFC-normalized and padded with one space on
// each side so that word boundaries show up in bigrams and trigrams.
func countNgrams(text string) map[string]float64 {
	counts := make(map[string]float64)
	text = norm.NFC.String(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r)
	})
	for _, w := range words {
		runes := []rune(" " + strings.ToLower(w) + " ")
		for n := 1; n <= 3; n++ {
			for i := 0; i+n <= len(runes); i++ {
				g := string(runes[i : i+n])
				if strings.TrimSpace(g) == "" {
					continue
				}
				counts[g]++
			}
		}
	}
	return counts
}

// sortedKeys fixes the summation order so scores are bit-for-bit repeatable
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
