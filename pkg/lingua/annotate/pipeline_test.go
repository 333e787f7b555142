package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cognicore/lingua/pkg/lingua/internalerr"
	"github.com/cognicore/lingua/pkg/lingua/ner"
	"github.com/cognicore/lingua/pkg/lingua/postag"
	"github.com/cognicore/lingua/pkg/lingua/tokenize"
)

const quote = "Here's to the crazy ones. The misfits. The rebels. The troublemakers. " +
	"The round pegs in the square holes. The ones who see things differently. " +
	"They're not fond of rules. And they have no respect for the status quo. " +
	"You can quote them, disagree with them, glorify or vilify them. " +
	"About the only thing you can't do is ignore them. Because they change things. " +
	"They push the human race forward. And while some may see them as the crazy ones, we see genius. " +
	"Because the people who are crazy enough to think they can change the world, are the ones who do. " +
	"-Steve Jobs (Founder of Apple Inc.)"

func newPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewDefault(opts...)
	if err != nil {
		t.Fatalf("NewDefault: %v", err)
	}
	return p
}

func words(r *Result) (texts []string, tags []postag.Tag, lemmas []string) {
	for w := range r.Words() {
		texts = append(texts, w.Text)
		tags = append(tags, w.POS)
		lemmas = append(lemmas, w.Lemma)
	}
	return
}

func TestAnnotateSimpleSentence(t *testing.T) {
	p := newPipeline(t)
	res, err := p.AnnotateLanguage("The cats are running.", "en")
	if err != nil {
		t.Fatalf("AnnotateLanguage: %v", err)
	}

	var texts, lemmas []string
	var tags []postag.Tag
	for _, tok := range res.Tokens() {
		if tok.Kind == tokenize.Whitespace {
			continue
		}
		texts = append(texts, tok.Text)
		tags = append(tags, tok.POS)
		lemmas = append(lemmas, tok.Lemma)
	}
	if want := []string{"The", "cats", "are", "running", "."}; !slices.Equal(texts, want) {
		t.Errorf("tokens = %q, want %q", texts, want)
	}
	if want := []postag.Tag{postag.DET, postag.NOUN, postag.VERB, postag.VERB, postag.PUNCT}; !slices.Equal(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
	if want := []string{"the", "cat", "be", "run", "."}; !slices.Equal(lemmas, want) {
		t.Errorf("lemmas = %q, want %q", lemmas, want)
	}
	if res.Language() != "en" || res.Document().Confidence != 1 || !res.Document().Reliable {
		t.Errorf("forced document = %+v", res.Document())
	}
}

func TestAnnotateEntities(t *testing.T) {
	p := newPipeline(t)
	res, err := p.Annotate("Steve Jobs founded Apple Inc.")
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if res.Language() != "en" || !res.Document().Reliable {
		t.Errorf("document = %+v, want reliable en", res.Document())
	}
	ents := res.Entities()
	if len(ents) != 2 {
		t.Fatalf("entities = %+v, want 2", ents)
	}
	want := []struct {
		text string
		kind ner.EntityKind
	}{
		{"Steve Jobs", ner.Person},
		{"Apple Inc.", ner.Organization},
	}
	for i, w := range want {
		if ents[i].Text != w.text || ents[i].Kind != w.kind {
			t.Errorf("entity %d = %q/%s, want %q/%s", i, ents[i].Text, ents[i].Kind, w.text, w.kind)
		}
		start, end := res.EntityOffsets(ents[i])
		if res.Text()[start:end] != w.text {
			t.Errorf("entity %d offsets [%d,%d) = %q", i, start, end, res.Text()[start:end])
		}
	}
}

func TestAnnotateEmptyInput(t *testing.T) {
	p := newPipeline(t)
	res, err := p.Annotate("")
	if err != nil {
		t.Fatalf("Annotate(\"\"): %v", err)
	}
	if res.Len() != 0 || len(res.Entities()) != 0 {
		t.Errorf("expected empty result, got %d tokens, %d entities", res.Len(), len(res.Entities()))
	}
	if res.Language() != "und" {
		t.Errorf("language = %q, want und", res.Language())
	}

	strict := newPipeline(t, WithRequireNonEmpty(true))
	_, err = strict.Annotate("")
	if !errors.Is(err, internalerr.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	var se *StageError
	if !errors.As(err, &se) || se.Stage != Tokenized {
		t.Errorf("err = %#v, want StageError at tokenized", err)
	}
	if _, err := strict.Annotate(" "); err != nil {
		t.Errorf("whitespace input should not be rejected: %v", err)
	}
}

func TestAnnotateShortEnglish(t *testing.T) {
	p := newPipeline(t)
	res, err := p.Annotate("I live in Berlin.")
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if res.Language() != "en" {
		t.Errorf("language = %q, want en", res.Language())
	}
	texts, _, lemmas := words(res)
	if want := []string{"i", "live", "in", "berlin"}; !slices.Equal(lemmas, want) {
		t.Errorf("lemmas of %q = %q, want %q", texts, lemmas, want)
	}
	ents := res.Entities()
	if len(ents) != 1 || ents[0].Text != "Berlin" || ents[0].Kind != ner.Place {
		t.Errorf("entities = %+v, want Berlin/place", ents)
	}
}

func TestAnnotateUnsupportedLanguage(t *testing.T) {
	p := newPipeline(t)
	tests := []struct {
		name  string
		text  string
		words int
	}{
		{"russian", "Сегодня мы долго гуляли по городу и говорили о будущем.", 10},
		{"italian", "Oggi abbiamo camminato a lungo per la città e abbiamo parlato del futuro.", 13},
		{"dutch", "Het weer was mooi en de kinderen speelden in de tuin terwijl hun ouders over het nieuws van de week praatten.", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.Annotate(tt.text)
			if err != nil {
				t.Fatalf("Annotate: %v", err)
			}
			if res.Language() != "und" || res.Document().Reliable {
				t.Errorf("document = %+v, want und", res.Document())
			}
			texts, tags, lemmas := words(res)
			if len(texts) != tt.words {
				t.Fatalf("words = %q", texts)
			}
			for i := range texts {
				if tags[i] == "" {
					t.Errorf("word %q has no tag", texts[i])
				}
				if lemmas[i] != strings.ToLower(texts[i]) {
					t.Errorf("lemma(%q) = %q, want lowercase surface", texts[i], lemmas[i])
				}
			}
		})
	}
}

func TestAnnotateLanguageErrors(t *testing.T) {
	p := newPipeline(t)
	for _, lang := range []string{"ru", "", "not a code"} {
		_, err := p.AnnotateLanguage("hello there", lang)
		if !errors.Is(err, internalerr.ErrUnsupportedLanguage) {
			t.Errorf("AnnotateLanguage(%q) err = %v, want ErrUnsupportedLanguage", lang, err)
		}
		var ule *internalerr.UnsupportedLanguageError
		if !errors.As(err, &ule) || ule.Language != lang {
			t.Errorf("AnnotateLanguage(%q) err = %v, want UnsupportedLanguageError", lang, err)
		}
	}
	if _, err := p.AnnotateLanguage("hello there", "EN-us"); err != nil {
		t.Errorf("region subtag should resolve to en: %v", err)
	}
}

func TestAnnotateQuote(t *testing.T) {
	p := newPipeline(t)
	res, err := p.Annotate(quote)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if res.Language() != "en" || !res.Document().Reliable {
		t.Errorf("document = %+v, want reliable en", res.Document())
	}

	var b strings.Builder
	for _, tok := range res.All() {
		b.WriteString(tok.Text)
	}
	if b.String() != quote {
		t.Error("tokens do not reconstruct the input")
	}

	found := map[string]ner.EntityKind{}
	for s := range res.EntitySeq() {
		found[s.Text] = s.Kind
	}
	if k, ok := found["Steve Jobs"]; !ok || k != ner.Person {
		t.Errorf("Steve Jobs not found as person: %v", found)
	}
	if k, ok := found["Apple Inc."]; !ok || k != ner.Organization {
		t.Errorf("Apple Inc. not found as organization: %v", found)
	}

	lemmaOf := map[string]string{}
	for w := range res.Words() {
		lemmaOf[w.Text] = w.Lemma
	}
	for surface, want := range map[string]string{"'re": "be", "n't": "not", "ones": "one", "is": "be"} {
		if got := lemmaOf[surface]; got != want {
			t.Errorf("lemma(%q) = %q, want %q", surface, got, want)
		}
	}
}

func TestAnnotateInvariants(t *testing.T) {
	p := newPipeline(t)
	inputs := []string{
		quote,
		"Dr. Smith moved to Berlin in 2019 and works for Acme Corp. now!",
		"Die Katzen schlafen im Garten, während es regnet.",
		"J'aime l'été à Paris.",
		"¿Dónde está la biblioteca?",
		"  \t\n",
		"emoji 🎉 and keycap 1️⃣ mixed",
	}
	for _, in := range inputs {
		res, err := p.Annotate(in)
		if err != nil {
			t.Fatalf("Annotate(%q): %v", in, err)
		}
		pos := 0
		for i, tok := range res.All() {
			if tok.Start != pos || tok.End <= tok.Start || in[tok.Start:tok.End] != tok.Text {
				t.Fatalf("%q: token %d %v breaks contiguity", in, i, tok.Token)
			}
			pos = tok.End
			if tok.POS == "" {
				t.Errorf("%q: token %d has no tag", in, i)
			}
			if tok.Kind == tokenize.Word && tok.Lemma == "" {
				t.Errorf("%q: word %q has empty lemma", in, tok.Text)
			}
		}
		if pos != len(in) {
			t.Errorf("%q: tokens cover %d of %d bytes", in, pos, len(in))
		}
		ents := res.Entities()
		for i := 1; i < len(ents); i++ {
			if ents[i].Start < ents[i-1].End {
				t.Errorf("%q: entities %v and %v overlap", in, ents[i-1], ents[i])
			}
		}
	}
}

func TestResultJSONRoundTrip(t *testing.T) {
	p := newPipeline(t)
	res, err := p.Annotate(quote)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(res.Record(), back.Record()) {
		t.Error("record changed after JSON round trip")
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	first := raw["tokens"].([]any)[0].(map[string]any)
	if first["kind"] != "word" || first["pos"] == "" {
		t.Errorf("first token encoded as %v", first)
	}
}

func TestFromRecordRejectsInconsistentData(t *testing.T) {
	good := Record{
		Text: "Hi there",
		Tokens: []TokenRecord{
			{Start: 0, End: 2, Text: "Hi", Kind: tokenize.Word},
			{Start: 2, End: 3, Text: " ", Kind: tokenize.Whitespace},
			{Start: 3, End: 8, Text: "there", Kind: tokenize.Word},
		},
	}
	if _, err := FromRecord(good); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	gap := good
	gap.Tokens = []TokenRecord{good.Tokens[0], good.Tokens[2]}
	short := good
	short.Tokens = good.Tokens[:2]
	mismatch := good
	mismatch.Tokens = slices.Clone(good.Tokens)
	mismatch.Tokens[2].Text = "where"
	badSpan := good
	badSpan.Entities = []ner.Span{{Start: 2, End: 4}}
	overlap := good
	overlap.Entities = []ner.Span{{Start: 0, End: 3}, {Start: 2, End: 3}}

	for name, rec := range map[string]Record{
		"gap": gap, "short": short, "mismatch": mismatch, "span out of range": badSpan, "overlap": overlap,
	} {
		if _, err := FromRecord(rec); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestAnnotateConcurrent(t *testing.T) {
	p := newPipeline(t)
	texts := []string{
		quote,
		"Steve Jobs founded Apple Inc.",
		"Le chat dort sur le canapé pendant que les enfants jouent.",
		"Der Hund läuft schnell durch den Park.",
	}
	want := make([]Record, len(texts))
	for i, text := range texts {
		res, err := p.Annotate(text)
		if err != nil {
			t.Fatal(err)
		}
		want[i] = res.Record()
	}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for g := 0; g < 40; g++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Annotate(texts[i%len(texts)])
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(res.Record(), want[i%len(texts)]) {
				errs <- fmt.Errorf("goroutine %d: result differs from sequential run", i)
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestAnnotateBatch(t *testing.T) {
	p := newPipeline(t)
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = fmt.Sprintf("Document number %d talks about the weather in London.", i)
	}
	results, err := p.AnnotateBatch(context.Background(), texts, 4)
	if err != nil {
		t.Fatalf("AnnotateBatch: %v", err)
	}
	if len(results) != len(texts) {
		t.Fatalf("got %d results", len(results))
	}
	for i, res := range results {
		if res.Text() != texts[i] {
			t.Errorf("result %d out of order: %q", i, res.Text())
		}
	}

	strict := newPipeline(t, WithRequireNonEmpty(true))
	_, err = strict.AnnotateBatch(context.Background(), []string{"fine", "", "also fine"}, 2)
	if !errors.Is(err, internalerr.ErrEmptyInput) {
		t.Errorf("batch err = %v, want ErrEmptyInput", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.AnnotateBatch(ctx, texts, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled batch err = %v", err)
	}
}

func TestStageLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := newPipeline(t, WithLogger(zap.New(core)))
	if _, err := p.Annotate("The cats are running."); err != nil {
		t.Fatal(err)
	}
	var stages []string
	for _, e := range logs.FilterMessage("annotate stage").All() {
		stages = append(stages, e.ContextMap()["stage"].(string))
	}
	want := []string{"tokenized", "language_identified", "pos_tagged", "lemmatized", "entities_resolved", "complete"}
	if !slices.Equal(stages, want) {
		t.Errorf("stages = %v, want %v", stages, want)
	}
}

func TestStageString(t *testing.T) {
	if Created.String() != "created" || Complete.String() != "complete" {
		t.Error("unexpected stage names")
	}
	if got := Stage(42).String(); got != "Stage(42)" {
		t.Errorf("Stage(42) = %q", got)
	}
	err := &StageError{Stage: POSTagged, Err: internalerr.ErrEmptyInput}
	if err.Error() != "annotate: pos_tagged: empty input" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestAnnotateBatchLanguage(t *testing.T) {
	p := newPipeline(t)
	texts := []string{"The cats are running.", "Steve Jobs founded Apple Inc."}
	results, err := p.AnnotateBatchLanguage(context.Background(), texts, "en", 0)
	if err != nil {
		t.Fatalf("AnnotateBatchLanguage: %v", err)
	}
	for i, res := range results {
		if res.Language() != "en" || res.Text() != texts[i] {
			t.Errorf("result %d = %q/%s", i, res.Text(), res.Language())
		}
	}
	if _, err := p.AnnotateBatchLanguage(context.Background(), texts, "ru", 2); !errors.Is(err, internalerr.ErrUnsupportedLanguage) {
		t.Errorf("err = %v, want ErrUnsupportedLanguage", err)
	}
}
