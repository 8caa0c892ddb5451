// Package sink implements the Result Sink collaborator (spec.md
// §4.4, §6): it accumulates emitted phrases and writes them as CSV,
// sorted by support descending then length descending.
package sink

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tddhit/tools/log"

	"github.com/arlobridge/phrasecorpus/internal/corpustypes"
	"github.com/arlobridge/phrasecorpus/internal/dictionary"
)

// CollectingSink buffers every emitted phrase for a single mining run
// in append order; gme.Sink and cps.Sink are both satisfied by *CollectingSink.
type CollectingSink struct {
	phrases []*corpustypes.Phrase
}

// NewCollecting returns an empty sink.
func NewCollecting() *CollectingSink {
	return &CollectingSink{}
}

// Emit appends p. Called by the mining engine only; the writer reads
// Phrases after mining completes (spec.md §5's shared-resource rule).
func (s *CollectingSink) Emit(p *corpustypes.Phrase) {
	s.phrases = append(s.phrases, p)
}

// Phrases returns every phrase emitted so far, in emission order.
func (s *CollectingSink) Phrases() []*corpustypes.Phrase {
	return s.phrases
}

// WriteCSV writes header phrase,freq,length,example_files to path,
// one row per phrase, sorted by support descending then length
// descending (spec.md §4.4). sources maps a phrase occurrence's DocID
// to the identifier reported in example_files.
func WriteCSV(path string, phrases []*corpustypes.Phrase, dict *dictionary.Dictionary, sources []string) error {
	sorted := append([]*corpustypes.Phrase(nil), phrases...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Support != sorted[j].Support {
			return sorted[i].Support > sorted[j].Support
		}
		return sorted[i].Len() > sorted[j].Len()
	})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sink: create output: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString("phrase,freq,length,example_files\n"); err != nil {
		return fmt.Errorf("sink: write header: %w", err)
	}
	for _, p := range sorted {
		phrase := strings.Join(dict.Decode(p.Tokens), " ")
		examples := exampleFiles(p, sources)
		row := fmt.Sprintf("%s,%s,%s,%s\n",
			quote(phrase),
			strconv.Itoa(p.Support),
			strconv.Itoa(p.Len()),
			quote(examples))
		if _, err := w.WriteString(row); err != nil {
			return fmt.Errorf("sink: write row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("sink: flush: %w", err)
	}
	log.Info("sink: wrote", len(sorted), "phrases to", path)
	return nil
}

// exampleFiles lists up to two distinct source identifiers for p's
// occurrences, joined by "|", with "..." appended if more exist
// (spec.md §6).
func exampleFiles(p *corpustypes.Phrase, sources []string) string {
	seen := make(map[string]bool)
	var names []string
	for _, o := range p.Occurrences {
		if int(o.DocID) >= len(sources) {
			continue
		}
		name := sources[o.DocID]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		if len(names) == 2 {
			break
		}
	}
	out := strings.Join(names, "|")
	if distinctSourceCount(p, sources) > 2 {
		out += "..."
	}
	return out
}

func distinctSourceCount(p *corpustypes.Phrase, sources []string) int {
	seen := make(map[string]bool)
	for _, o := range p.Occurrences {
		if int(o.DocID) < len(sources) {
			seen[sources[o.DocID]] = true
		}
	}
	return len(seen)
}

// quote wraps s in double quotes, doubling any embedded quote
// defensively. spec.md §9 notes the tokenizer strips non-alphanumeric
// characters so this path is normally unreachable, but example_files
// carries raw source identifiers (file paths), which are not
// similarly restricted.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
