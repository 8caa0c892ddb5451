package sink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arlobridge/phrasecorpus/internal/corpustypes"
	"github.com/arlobridge/phrasecorpus/internal/dictionary"
)

func buildDict(words ...string) *dictionary.Dictionary {
	d := dictionary.New()
	for i, w := range words {
		d.Encode(i, []string{w})
	}
	return d
}

func TestWriteCSVOrdersBySupportThenLength(t *testing.T) {
	dict := buildDict("alpha", "beta", "gamma")
	phrases := []*corpustypes.Phrase{
		{Tokens: []corpustypes.Token{0}, Support: 2, Occurrences: []corpustypes.Occurrence{{DocID: 0}}},
		{Tokens: []corpustypes.Token{1, 2}, Support: 5, Occurrences: []corpustypes.Occurrence{{DocID: 1}}},
		{Tokens: []corpustypes.Token{2}, Support: 5, Occurrences: []corpustypes.Occurrence{{DocID: 2}}},
	}
	sources := []string{"a.txt", "b.txt", "c.txt"}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(path, phrases, dict, sources); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if lines[0] != "phrase,freq,length,example_files" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	// support 5, length 2 ("beta gamma") outranks support 5, length 1 ("gamma").
	if !strings.HasPrefix(lines[1], `"beta gamma",5,2,`) {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], `"gamma",5,1,`) {
		t.Fatalf("unexpected second row: %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], `"alpha",2,1,`) {
		t.Fatalf("unexpected third row: %q", lines[3])
	}
}

func TestExampleFilesTruncatesAfterTwoSources(t *testing.T) {
	p := &corpustypes.Phrase{
		Tokens:  []corpustypes.Token{0},
		Support: 3,
		Occurrences: []corpustypes.Occurrence{
			{DocID: 0}, {DocID: 1}, {DocID: 2},
		},
	}
	sources := []string{"one.txt", "two.txt", "three.txt"}

	got := exampleFiles(p, sources)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation marker, got %q", got)
	}
	if strings.Count(got, "|") != 1 {
		t.Fatalf("expected exactly two names before truncation, got %q", got)
	}
}

func TestQuoteEscapesEmbeddedQuotes(t *testing.T) {
	got := quote(`a "quoted" word`)
	want := `"a ""quoted"" word"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
