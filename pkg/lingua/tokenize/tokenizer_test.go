package tokenize

import (
	"errors"
	"strings"
	"testing"

	"github.com/cognicore/lingua/pkg/lingua/internalerr"
)

// verifyInvariants checks offsets, non-emptiness and exact reconstruction.
func verifyInvariants(t *testing.T, input string, tokens []Token) {
	t.Helper()
	prevEnd := 0
	var buf strings.Builder
	for i, tok := range tokens {
		if tok.Text == "" {
			t.Errorf("token %d is empty", i)
		}
		if tok.Start != prevEnd {
			t.Errorf("token %d starts at %d, previous ended at %d", i, tok.Start, prevEnd)
		}
		if got := input[tok.Start:tok.End]; got != tok.Text {
			t.Errorf("token %d offset invariant broken: input[%d:%d]=%q, Text=%q",
				i, tok.Start, tok.End, got, tok.Text)
		}
		prevEnd = tok.End
		buf.WriteString(tok.Text)
	}
	if buf.String() != input {
		t.Errorf("reconstruction invariant broken:\ngot:  %q\nwant: %q", buf.String(), input)
	}
}

func contentTexts(tokens []Token) []string {
	var out []string
	for _, tok := range tokens {
		if tok.Kind != Whitespace {
			out = append(out, tok.Text)
		}
	}
	return out
}

func TestTokenizerBasic(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	text := "The cats are running."
	tokens := tokenizer.Tokenize(text)
	verifyInvariants(t, text, tokens)

	want := []string{"The", "cats", "are", "running", "."}
	if got := contentTexts(tokens); !equalTokens(got, want) {
		t.Errorf("Tokenize(%q) = %v, want %v", text, got, want)
	}

	if tokens[len(tokens)-1].Kind != Punctuation {
		t.Errorf("Final period should be punctuation, got %s", tokens[len(tokens)-1].Kind)
	}
	if tokens[1].Kind != Whitespace {
		t.Errorf("Space between words should be a whitespace token, got %s", tokens[1].Kind)
	}
}

func TestTokenizerRoundTrip(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	inputs := []string{
		"",
		" ",
		"Here's to the crazy ones. The misfits.",
		"  leading and trailing  ",
		"tabs\tand\nnewlines\r\n",
		"state-of-the-art x-ray -dash- --",
		"naïve café résumé",
		"été",
		"Prices: $3.14, 1,000 and 3.",
		"👍🏽 family: 👨‍👩‍👧 keycap 1️⃣",
		"日本語のテキスト",
		"They're can't won't l'homme qu'il",
		"(Founder of Apple Inc.)",
		"...!!!???",
		"e.g. U.S. policy",
	}

	for _, text := range inputs {
		verifyInvariants(t, text, tokenizer.Tokenize(text))
	}

	joined := NewTokenizer(Options{Contractions: ContractionsJoin})
	for _, text := range inputs {
		verifyInvariants(t, text, joined.Tokenize(text))
	}
}

func TestTokenizerEmptyInput(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	tokens := tokenizer.Tokenize("")
	if len(tokens) != 0 {
		t.Error("Empty input should produce empty output")
	}

	_, err := tokenizer.TokenizeStrict("")
	if !errors.Is(err, internalerr.ErrEmptyInput) {
		t.Errorf("TokenizeStrict(\"\") should return ErrEmptyInput, got %v", err)
	}

	tokens, err = tokenizer.TokenizeStrict(" ")
	if err != nil {
		t.Fatalf("Whitespace input is not zero-length: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Kind != Whitespace {
		t.Errorf("Expected one whitespace token, got %v", tokens)
	}
}

func TestTokenizerWhitespaceRuns(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	text := "a \t\n b"
	tokens := tokenizer.Tokenize(text)

	if len(tokens) != 3 {
		t.Fatalf("Expected 3 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[1].Text != " \t\n " || tokens[1].Kind != Whitespace {
		t.Errorf("Whitespace run should be one token, got %v", tokens[1])
	}
}

func TestTokenizerHyphens(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	text := "state-of-the-art machine-learning gpt-4 -dash"
	got := contentTexts(tokenizer.Tokenize(text))

	want := []string{"state-of-the-art", "machine-learning", "gpt-4", "-", "dash"}
	if !equalTokens(got, want) {
		t.Errorf("Tokenize(%q) = %v, want %v", text, got, want)
	}
}

func TestTokenizerContractionsSplit(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	tests := []struct {
		text string
		want []string
	}{
		{"They're", []string{"They", "'re"}},
		{"can't", []string{"ca", "n't"}},
		{"don’t", []string{"do", "n’t"}},
		{"Here's", []string{"Here", "'s"}},
		{"I'm", []string{"I", "'m"}},
		{"l'homme", []string{"l'", "homme"}},
		{"qu'il", []string{"qu'", "il"}},
		{"O'Brien", []string{"O'Brien"}},
	}

	for _, tt := range tests {
		tokens := tokenizer.Tokenize(tt.text)
		verifyInvariants(t, tt.text, tokens)
		if got := contentTexts(tokens); !equalTokens(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
		}
		for _, tok := range tokens {
			if tok.Kind != Word {
				t.Errorf("Contraction part %q should be a word, got %s", tok.Text, tok.Kind)
			}
		}
	}
}

func TestTokenizerContractionsJoin(t *testing.T) {
	opts := DefaultOptions()
	opts.Contractions = ContractionsJoin
	tokenizer := NewTokenizer(opts)

	text := "They're sure it can't fail"
	got := contentTexts(tokenizer.Tokenize(text))

	want := []string{"They're", "sure", "it", "can't", "fail"}
	if !equalTokens(got, want) {
		t.Errorf("Tokenize(%q) = %v, want %v", text, got, want)
	}
}

func TestTokenizerNumbers(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	tests := []struct {
		text string
		want []Token
	}{
		{"42", []Token{{Start: 0, End: 2, Text: "42", Kind: Number}}},
		{"3.14", []Token{{Start: 0, End: 4, Text: "3.14", Kind: Number}}},
		{"1,000", []Token{{Start: 0, End: 5, Text: "1,000", Kind: Number}}},
		{"3.", []Token{
			{Start: 0, End: 1, Text: "3", Kind: Number},
			{Start: 1, End: 2, Text: ".", Kind: Punctuation},
		}},
		{"v2", []Token{{Start: 0, End: 2, Text: "v2", Kind: Word}}},
	}

	for _, tt := range tests {
		got := tokenizer.Tokenize(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %v, want %v", tt.text, i, got[i], tt.want[i])
			}
		}
	}
}

func TestTokenizerAbbreviations(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	text := "Steve Jobs founded Apple Inc."
	got := contentTexts(tokenizer.Tokenize(text))

	want := []string{"Steve", "Jobs", "founded", "Apple", "Inc."}
	if !equalTokens(got, want) {
		t.Errorf("Tokenize(%q) = %v, want %v", text, got, want)
	}

	text = "See e.g. Dr. Smith. Income rose."
	got = contentTexts(tokenizer.Tokenize(text))
	want = []string{"See", "e.g.", "Dr.", "Smith", ".", "Income", "rose", "."}
	if !equalTokens(got, want) {
		t.Errorf("Tokenize(%q) = %v, want %v", text, got, want)
	}
}

func TestTokenizerAddAbbreviations(t *testing.T) {
	tokenizer := NewTokenizer(Options{})

	if got := contentTexts(tokenizer.Tokenize("Acme GmbH.")); len(got) != 3 {
		t.Fatalf("Without abbreviation the period should split, got %v", got)
	}

	tokenizer.AddAbbreviations("GmbH.")
	got := contentTexts(tokenizer.Tokenize("Acme GmbH."))
	if !equalTokens(got, []string{"Acme", "GmbH."}) {
		t.Errorf("Abbreviation should keep its period, got %v", got)
	}
}

func TestTokenizerGraphemeClusters(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	tests := []struct {
		text string
		kind Kind
	}{
		{"👍🏽", Other},
		{"👨‍👩‍👧", Other},
		{"1️⃣", Other},
		{"🇩🇪", Other},
		{"é", Word},
	}

	for _, tt := range tests {
		tokens := tokenizer.Tokenize(tt.text)
		if len(tokens) != 1 {
			t.Errorf("Tokenize(%q) should yield one token, got %v", tt.text, tokens)
			continue
		}
		if tokens[0].Kind != tt.kind {
			t.Errorf("Tokenize(%q) kind = %s, want %s", tt.text, tokens[0].Kind, tt.kind)
		}
	}
}

func TestTokenizerPunctuationIsolated(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	tokens := tokenizer.Tokenize("wait...!?")
	got := contentTexts(tokens)
	want := []string{"wait", ".", ".", ".", "!", "?"}
	if !equalTokens(got, want) {
		t.Errorf("Each punctuation mark should be its own token: got %v", got)
	}
	for _, tok := range tokens[1:] {
		if tok.Kind != Punctuation {
			t.Errorf("Token %q should be punctuation, got %s", tok.Text, tok.Kind)
		}
	}
}

func TestTokenizerExtraPunctuation(t *testing.T) {
	plain := NewTokenizer(Options{})
	if tokens := plain.Tokenize("$"); tokens[0].Kind != Other {
		t.Errorf("Currency sign should default to other, got %s", tokens[0].Kind)
	}

	custom := NewTokenizer(Options{ExtraPunctuation: "$+"})
	for _, tok := range custom.Tokenize("$+") {
		if tok.Kind != Punctuation {
			t.Errorf("Configured rune %q should be punctuation, got %s", tok.Text, tok.Kind)
		}
	}
}

func TestTokenizerAllStopsAndRestarts(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())
	seq := tokenizer.All("one two three four")

	var first []string
	for tok := range seq {
		first = append(first, tok.Text)
		if len(first) == 2 {
			break
		}
	}
	if !equalTokens(first, []string{"one", " "}) {
		t.Errorf("Early stop should yield first two tokens, got %v", first)
	}

	count := 0
	for range seq {
		count++
	}
	if count != 7 {
		t.Errorf("Restarted sequence should yield all 7 tokens, got %d", count)
	}
}

func TestTokenizerVeryLongWord(t *testing.T) {
	tokenizer := NewTokenizer(DefaultOptions())

	longWord := strings.Repeat("verylongword", 20)
	text := "normal " + longWord + " text"
	got := contentTexts(tokenizer.Tokenize(text))

	if len(got) != 3 || got[1] != longWord {
		t.Errorf("Long word should survive intact, got %d tokens", len(got))
	}
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{Word, Punctuation, Whitespace, Number, Other} {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", k, err)
		}
		var back Kind
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if back != k {
			t.Errorf("Kind %v decoded as %v", k, back)
		}
	}

	var k Kind
	if err := k.UnmarshalText([]byte("noun")); err == nil {
		t.Error("Unknown kind name should fail")
	}
}

// Helper function for comparing token lists
func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
