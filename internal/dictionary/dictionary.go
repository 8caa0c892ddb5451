// Package dictionary implements the bijection between surface word
// forms and dense 32-bit token ids (spec.md §4.1), plus the
// document-frequency side table built alongside encoding.
package dictionary

import (
	"github.com/tddhit/tools/log"

	"github.com/arlobridge/phrasecorpus/internal/corpustypes"
)

// Dictionary assigns a new id to a surface form the first time it is
// seen and returns the existing id otherwise. Encoding is
// deterministic given the input order: ids 0..n-1 are handed out in
// first-occurrence order across the corpus.
type Dictionary struct {
	wordToID map[string]corpustypes.Token
	idToWord []string

	df          []uint32 // document frequency per token
	lastDocSeen []uint32 // last doc index (+1) this token was counted in; 0 = never
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{
		wordToID: make(map[string]corpustypes.Token),
	}
}

// Size reports the number of distinct surface forms seen so far.
func (d *Dictionary) Size() int { return len(d.idToWord) }

// Surface returns the surface form for id, or "" if out of range.
func (d *Dictionary) Surface(id corpustypes.Token) string {
	if int(id) >= len(d.idToWord) {
		return ""
	}
	return d.idToWord[id]
}

// ID returns the id for a surface form and whether it has been seen.
func (d *Dictionary) ID(surface string) (corpustypes.Token, bool) {
	id, ok := d.wordToID[surface]
	return id, ok
}

// DF returns the document-frequency counter for every token, indexed
// by token id. DF is produced as a side effect of Encode but is not
// itself a mining filter (spec.md §4.1); it is exposed read-only to
// collaborators.
func (d *Dictionary) DF() []uint32 {
	out := make([]uint32, len(d.df))
	copy(out, d.df)
	return out
}

// Encode assigns ids to every word in words, in order, growing the
// dictionary for any surface not seen before, and bumps each token's
// DF counter at most once for this call. docIndex is the zero-based
// position of this document in load order; it drives the "last doc
// seen" dedup (spec.md §4.1's "+1 to keep the sentinel 0 meaning
// never seen").
func (d *Dictionary) Encode(docIndex int, words []string) corpustypes.Document {
	doc := make(corpustypes.Document, 0, len(words))
	marker := uint32(docIndex) + 1

	for _, w := range words {
		id, ok := d.wordToID[w]
		if !ok {
			id = corpustypes.Token(len(d.idToWord))
			d.wordToID[w] = id
			d.idToWord = append(d.idToWord, w)
			d.df = append(d.df, 0)
			d.lastDocSeen = append(d.lastDocSeen, 0)
		}
		doc = append(doc, id)

		if d.lastDocSeen[id] != marker {
			d.df[id]++
			d.lastDocSeen[id] = marker
		}
	}
	return doc
}

// Decode renders a token sequence back to its surface words, one
// slice element per token (the caller joins them). Used by the result
// sink and by the
// encoding-round-trip property in spec.md §8.
func (d *Dictionary) Decode(tokens []corpustypes.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = d.Surface(t)
	}
	return out
}

// LogSummary writes a one-line summary of the dictionary's final size
// and the corpus's average document frequency; called once after
// loading completes.
func (d *Dictionary) LogSummary() {
	var total uint64
	for _, c := range d.df {
		total += uint64(c)
	}
	avg := float64(0)
	if len(d.df) > 0 {
		avg = float64(total) / float64(len(d.df))
	}
	log.Info("dictionary built, vocab:", len(d.idToWord), "avg_df:", avg)
}
