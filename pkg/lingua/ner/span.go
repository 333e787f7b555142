package ner

import "fmt"

// EntityKind classifies a named entity
type EntityKind int

const (
	Person EntityKind = iota
	Place
	Organization
)

var kindNames = [...]string{
	Person:       "person",
	Place:        "place",
	Organization: "organization",
}

func (k EntityKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("EntityKind(%d)", int(k))
}

func (k EntityKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EntityKind) UnmarshalText(b []byte) error {
	kind, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind converts a kind name back to an EntityKind.
func ParseKind(s string) (EntityKind, error) {
	for i, name := range kindNames {
		if name == s {
			return EntityKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown entity kind: %q", s)
}

// Source records which stage proposed a span
type Source int

const (
	FromGazetteer Source = iota
	FromRule
)

func (s Source) String() string {
	if s == FromRule {
		return "rule"
	}
	return "gazetteer"
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Source) UnmarshalText(b []byte) error {
	switch string(b) {
	case "gazetteer":
		*s = FromGazetteer
	case "rule":
		*s = FromRule
	default:
		return fmt.Errorf("unknown entity source: %q", string(b))
	}
	return nil
}

// Span is a named entity over the token range [Start, End).
type Span struct {
	Start      int        `json:"start"`
	End        int        `json:"end"`
	Kind       EntityKind `json:"kind"`
	Confidence float64    `json:"confidence"`
	Source     Source     `json:"source"`
	Text       string     `json:"text"`
}

// Len returns the number of tokens covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans share a token.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}
