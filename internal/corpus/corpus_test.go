package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arlobridge/phrasecorpus/internal/datasource"
)

// fakeSource streams a fixed set of documents, delivered out of load
// order on the channel to exercise Load's reordering buffer.
type fakeSource struct {
	docs []datasource.RawDocument
}

func (f *fakeSource) Documents(ctx context.Context) (<-chan datasource.RawDocument, <-chan error) {
	out := make(chan datasource.RawDocument)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		// Deliver in reverse order; Load must still encode in index order.
		for i := len(f.docs) - 1; i >= 0; i-- {
			out <- f.docs[i]
		}
	}()
	return out, errc
}

func sampleSource() *fakeSource {
	return &fakeSource{docs: []datasource.RawDocument{
		{Index: 0, Source: "a.txt", Words: []string{"the", "quick", "fox"}},
		{Index: 1, Source: "b.txt", Words: []string{"the", "lazy", "dog"}},
		{Index: 2, Source: "c.txt", Words: []string{"quick", "fox"}},
	}}
}

func TestLoadInMemoryPreservesDocOrder(t *testing.T) {
	loaded, err := Load(context.Background(), sampleSource(), Options{InMem: true})
	if err != nil {
		t.Fatal(err)
	}
	if loaded.NumDocs != 3 {
		t.Fatalf("expected 3 docs, got %d", loaded.NumDocs)
	}
	if len(loaded.Docs[0]) != 3 || len(loaded.Docs[1]) != 3 || len(loaded.Docs[2]) != 2 {
		t.Fatalf("unexpected doc lengths: %v", loaded.Docs)
	}
	if loaded.Sources[0] != "a.txt" || loaded.Sources[2] != "c.txt" {
		t.Fatalf("sources out of order: %v", loaded.Sources)
	}
	// "the" first appears in doc 0, "quick" also in doc 0: ids 0,1,2 then
	// doc 1 introduces "lazy","dog" as 3,4, doc 2 reuses "quick","fox".
	if id, _ := loaded.Dict.ID("quick"); loaded.Docs[0][1] != id {
		t.Fatalf("token id mismatch for 'quick'")
	}
}

func TestLoadStreamingRequiresCachePath(t *testing.T) {
	_, err := Load(context.Background(), sampleSource(), Options{InMem: false})
	if err == nil {
		t.Fatal("expected an error when streaming mode has no cache path")
	}
}

func TestLoadStreamingRoundTripsThroughCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "corpus.bin")
	loaded, err := Load(context.Background(), sampleSource(), Options{InMem: false, CachePath: cachePath})
	if err != nil {
		t.Fatal(err)
	}
	defer loaded.Cache.Close()

	docs, err := loaded.InMemoryDocs()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 docs, got %d", len(docs))
	}
	if len(docs[1]) != 3 {
		t.Fatalf("expected doc 1 to have 3 tokens, got %d", len(docs[1]))
	}
}

func TestInMemoryDocsFailsWithoutCPSPrecondition(t *testing.T) {
	loaded := &Loaded{NumDocs: 3}
	if _, err := loaded.InMemoryDocs(); err != ErrCPSRequiresInMem {
		t.Fatalf("expected ErrCPSRequiresInMem, got %v", err)
	}
}
