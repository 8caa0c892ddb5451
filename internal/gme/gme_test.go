package gme

import (
	"testing"

	"github.com/arlobridge/phrasecorpus/internal/corpustypes"
)

type collectSink struct {
	phrases []*corpustypes.Phrase
}

func (s *collectSink) Emit(p *corpustypes.Phrase) {
	s.phrases = append(s.phrases, p)
}

func TestGMESingleDocumentSimpleRepeat(t *testing.T) {
	doc := wordsFrom("a", "b", "c", "a", "b", "c", "a", "b", "c")
	e := New([]corpustypes.Document{corpustypes.Document(doc)}, nil)
	sink := &collectSink{}
	e.Mine(1, 2, sink)

	if len(sink.phrases) == 0 {
		t.Fatalf("expected at least one phrase")
	}
	longest := sink.phrases[0]
	for _, p := range sink.phrases {
		if p.Len() > longest.Len() {
			longest = p
		}
	}
	if longest.Len() < 9 {
		t.Fatalf("expected a maximal run covering the whole repeat, got length %d (%v)", longest.Len(), longest.Tokens)
	}
}

func TestGMECrossDocumentPhrase(t *testing.T) {
	docs := []corpustypes.Document{
		corpustypes.Document(wordsFrom("the", "quick", "brown", "fox")),
		corpustypes.Document(wordsFrom("see", "the", "quick", "brown", "fox", "run")),
		corpustypes.Document(wordsFrom("the", "quick", "brown", "fox", "jumps")),
	}
	e := New(docs, nil)
	sink := &collectSink{}
	e.Mine(3, 3, sink)

	found := false
	for _, p := range sink.phrases {
		if p.Support == 3 && p.Len() == 4 {
			found = true
		}
		if p.Len() >= 5 {
			t.Fatalf("no phrase of length 5 should be emitted, got %v", p.Tokens)
		}
	}
	if !found {
		t.Fatalf("expected 'the quick brown fox' with support 3")
	}
}

func TestGMEThresholdBoundary(t *testing.T) {
	var docs []corpustypes.Document
	for i := 0; i < 5; i++ {
		docs = append(docs, corpustypes.Document(wordsFrom("a", "b")))
	}
	docs = append(docs, corpustypes.Document(wordsFrom("a", "c")))

	e := New(docs, nil)
	sink := &collectSink{}
	e.Mine(5, 2, sink)
	if len(sink.phrases) != 1 {
		t.Fatalf("expected exactly 1 phrase, got %d", len(sink.phrases))
	}

	sink2 := &collectSink{}
	e2 := New(docs, nil)
	e2.Mine(6, 2, sink2)
	if len(sink2.phrases) != 0 {
		t.Fatalf("expected 0 phrases at min_docs=6, got %d", len(sink2.phrases))
	}
}

func TestGMEEmptyDocumentsDoNotCrash(t *testing.T) {
	docs := []corpustypes.Document{
		corpustypes.Document(wordsFrom("a", "b", "c")),
		{},
		corpustypes.Document(wordsFrom("a", "b", "c")),
	}
	e := New(docs, nil)
	sink := &collectSink{}
	e.Mine(2, 2, sink)
	for _, p := range sink.phrases {
		if p.Support < 2 {
			t.Fatalf("support floor violated: %v", p)
		}
	}
}

func TestGMENonOverlapAfterMarking(t *testing.T) {
	doc := wordsFrom("a", "b", "a", "b", "a", "b")
	e := New([]corpustypes.Document{corpustypes.Document(doc)}, nil)
	sink := &collectSink{}
	e.Mine(1, 2, sink)

	marked := make(map[int]bool)
	for _, p := range sink.phrases {
		for _, o := range p.Occurrences {
			for i := 0; i < p.Len(); i++ {
				pos := int(o.Pos) + i
				if marked[pos] {
					t.Fatalf("position %d double-marked across phrases", pos)
				}
			}
			for i := 0; i < p.Len(); i++ {
				marked[int(o.Pos)+i] = true
			}
		}
	}
}

var wordIDs = map[string]corpustypes.Token{}

func wordsFrom(ws ...string) []corpustypes.Token {
	var out []corpustypes.Token
	for _, w := range ws {
		id, ok := wordIDs[w]
		if !ok {
			id = corpustypes.Token(len(wordIDs))
			wordIDs[w] = id
		}
		out = append(out, id)
	}
	return out
}
