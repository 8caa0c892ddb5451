package dictionary

import "testing"

func TestEncodeFirstOccurrenceOrder(t *testing.T) {
	d := New()
	doc0 := d.Encode(0, []string{"foo", "bar"})
	doc1 := d.Encode(1, []string{"bar", "foo"})

	fooID, ok := d.ID("foo")
	if !ok || fooID != 0 {
		t.Fatalf("foo should be id 0, got %d ok=%v", fooID, ok)
	}
	barID, ok := d.ID("bar")
	if !ok || barID != 1 {
		t.Fatalf("bar should be id 1, got %d ok=%v", barID, ok)
	}
	if len(doc0) != 2 || doc0[0] != fooID || doc0[1] != barID {
		t.Fatalf("unexpected doc0 encoding: %v", doc0)
	}
	if len(doc1) != 2 || doc1[0] != barID || doc1[1] != fooID {
		t.Fatalf("unexpected doc1 encoding: %v", doc1)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	input := [][]string{{"a", "b", "c"}, {"b", "c", "a"}, {"a", "a", "b"}}
	run := func() []corpusDoc {
		d := New()
		var out []corpusDoc
		for i, words := range input {
			out = append(out, corpusDoc(d.Encode(i, words)))
		}
		return out
	}
	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("length mismatch")
	}
	for i := range first {
		if len(first[i]) != len(second[i]) {
			t.Fatalf("doc %d length mismatch", i)
		}
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("doc %d token %d differs: %d vs %d", i, j, first[i][j], second[i][j])
			}
		}
	}
}

type corpusDoc = []uint32

func TestDocumentFrequencyCountsOncePerDoc(t *testing.T) {
	d := New()
	d.Encode(0, []string{"a", "a", "a"})
	d.Encode(1, []string{"a"})
	d.Encode(2, []string{"b"})

	df := d.DF()
	aID, _ := d.ID("a")
	if df[aID] != 2 {
		t.Fatalf("expected DF(a)=2 (once per doc despite 3 occurrences in doc 0), got %d", df[aID])
	}
	bID, _ := d.ID("b")
	if df[bID] != 1 {
		t.Fatalf("expected DF(b)=1, got %d", df[bID])
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	d := New()
	doc := d.Encode(0, []string{"the", "quick", "fox"})
	words := d.Decode(doc)
	want := []string{"the", "quick", "fox"}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("decode mismatch at %d: got %q want %q", i, words[i], want[i])
		}
	}
}

func TestEmptyDocumentProducesNoTokens(t *testing.T) {
	d := New()
	doc := d.Encode(0, nil)
	if len(doc) != 0 {
		t.Fatalf("expected empty document, got %v", doc)
	}
	if d.Size() != 0 {
		t.Fatalf("expected empty dictionary, got size %d", d.Size())
	}
}
