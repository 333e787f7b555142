package tokenize

import "fmt"

// Kind classifies a token
type Kind int

const (
	Word Kind = iota
	Punctuation
	Whitespace
	Number
	Other
)

var kindNames = [...]string{
	Word:        "word",
	Punctuation: "punctuation",
	Whitespace:  "whitespace",
	Number:      "number",
	Other:       "other",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind by name so JSON records stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown token kind: %q", string(b))
}

// IsContent reports whether the kind carries lexical content (words and numbers).
func (k Kind) IsContent() bool {
	return k == Word || k == Number
}

// Token is a span of the source text. Start and End are byte offsets, so
// text[Start:End] == Text always holds.
type Token struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
	Kind  Kind   `json:"kind"`
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)[%d:%d]", t.Kind, t.Text, t.Start, t.End)
}
