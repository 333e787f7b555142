// Package storetest holds the behaviour checks every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/cognicore/lingua/pkg/lingua/annotate"
	"github.com/cognicore/lingua/pkg/lingua/internalerr"
	"github.com/cognicore/lingua/pkg/lingua/ner"
	"github.com/cognicore/lingua/pkg/lingua/store"
)

// Run exercises a store. open must return an empty store; Run closes it.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Helper()
	tests := []struct {
		name string
		fn   func(*testing.T, store.Store, *annotate.Pipeline)
	}{
		{"SaveAndGet", testSaveAndGet},
		{"NotFound", testNotFound},
		{"List", testList},
		{"FindEntities", testFindEntities},
		{"Delete", testDelete},
		{"ConcurrentSaves", testConcurrentSaves},
	}
	p, err := annotate.NewDefault()
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := open(t)
			defer s.Close()
			tt.fn(t, s, p)
		})
	}
}

func annotateText(t *testing.T, p *annotate.Pipeline, text string) *annotate.Result {
	t.Helper()
	res, err := p.Annotate(text)
	if err != nil {
		t.Fatalf("Annotate(%q): %v", text, err)
	}
	return res
}

func save(t *testing.T, s store.Store, source string, res *annotate.Result) string {
	t.Helper()
	id, err := s.SaveResult(context.Background(), source, res)
	if err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	return id
}

func testSaveAndGet(t *testing.T, s store.Store, p *annotate.Pipeline) {
	ctx := context.Background()
	for _, text := range []string{
		"Steve Jobs founded Apple Inc. in California with Steve Wozniak.",
		"",
		"Die Kinder spielen im Garten, während es draußen regnet.",
	} {
		res := annotateText(t, p, text)
		id := save(t, s, "doc.txt", res)
		if id == "" {
			t.Fatal("empty id")
		}
		got, err := s.GetResult(ctx, id)
		if err != nil {
			t.Fatalf("GetResult: %v", err)
		}
		if got.ID != id || got.Source != "doc.txt" || got.CreatedAt.IsZero() {
			t.Errorf("entry metadata = %+v", got)
		}
		if !reflect.DeepEqual(got.Result.Record(), res.Record()) {
			t.Errorf("stored result for %q differs from the original", text)
		}
	}
}

func testNotFound(t *testing.T, s store.Store, _ *annotate.Pipeline) {
	_, err := s.GetResult(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func testList(t *testing.T, s store.Store, p *annotate.Pipeline) {
	ctx := context.Background()
	en := annotateText(t, p, "The weather was fine and the children were playing in the garden.")
	fr := annotateText(t, p, "Le temps était beau et les enfants jouaient dans le jardin.")
	first := save(t, s, "a", en)
	second := save(t, s, "b", fr)
	third := save(t, s, "c", en)

	all, err := s.ListResults(ctx, store.ListFilter{})
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	var ids []string
	for _, sum := range all {
		ids = append(ids, sum.ID)
	}
	if want := []string{third, second, first}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want newest first %v", ids, want)
	}
	if all[0].Tokens != en.Len() || all[0].Source != "c" || all[0].Language != en.Language() {
		t.Errorf("summary = %+v", all[0])
	}

	only, err := s.ListResults(ctx, store.ListFilter{Language: fr.Language()})
	if err != nil {
		t.Fatal(err)
	}
	if len(only) != 1 || only[0].ID != second {
		t.Errorf("language filter = %+v", only)
	}

	limited, err := s.ListResults(ctx, store.ListFilter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].ID != third {
		t.Errorf("limit = %+v", limited)
	}
}

func testFindEntities(t *testing.T, s store.Store, p *annotate.Pipeline) {
	ctx := context.Background()
	jobs := save(t, s, "jobs", annotateText(t, p, "Steve Jobs founded Apple Inc."))
	save(t, s, "weather", annotateText(t, p, "It rained all day and nobody went outside."))
	again := save(t, s, "again", annotateText(t, p, "Years later STEVE JOBS returned."))

	hits, err := s.FindEntities(ctx, store.EntityQuery{Kind: store.KindPtr(ner.Person), Text: "steve jobs"})
	if err != nil {
		t.Fatalf("FindEntities: %v", err)
	}
	if len(hits) == 0 || hits[0].ResultID != jobs || hits[0].Span.Text != "Steve Jobs" {
		t.Fatalf("hits = %+v", hits)
	}
	for _, h := range hits {
		if h.ResultID != jobs && h.ResultID != again {
			t.Errorf("unexpected hit %+v", h)
		}
	}

	orgs, err := s.FindEntities(ctx, store.EntityQuery{Kind: store.KindPtr(ner.Organization)})
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, h := range orgs {
		if h.Span.Kind != ner.Organization {
			t.Errorf("kind filter leaked %+v", h)
		}
		if h.Span.Text == "Apple Inc." {
			found = true
		}
	}
	if !found {
		t.Errorf("Apple Inc. not found: %+v", orgs)
	}

	one, err := s.FindEntities(ctx, store.EntityQuery{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 {
		t.Errorf("limit ignored: %d hits", len(one))
	}
}

func testDelete(t *testing.T, s store.Store, p *annotate.Pipeline) {
	ctx := context.Background()
	id := save(t, s, "jobs", annotateText(t, p, "Steve Jobs founded Apple Inc."))
	if err := s.DeleteResult(ctx, id); err != nil {
		t.Fatalf("DeleteResult: %v", err)
	}
	if _, err := s.GetResult(ctx, id); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("get after delete: %v", err)
	}
	if err := s.DeleteResult(ctx, id); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
	hits, err := s.FindEntities(ctx, store.EntityQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("entities survived delete: %+v", hits)
	}
}

func testConcurrentSaves(t *testing.T, s store.Store, p *annotate.Pipeline) {
	res := annotateText(t, p, "Steve Jobs founded Apple Inc.")
	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := s.SaveResult(context.Background(), fmt.Sprintf("doc-%d", i), res)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			seen[id] = true
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		t.Error(err)
	}
	if len(seen) != n {
		t.Errorf("got %d distinct ids, want %d", len(seen), n)
	}
}
