// Package cps implements the Contiguous PrefixSpan mining engine
// (spec.md §4.3): a depth-first, projected-database sequence miner
// producing closed, maximal, or all frequent contiguous patterns of
// length at least L.
//
// Grounded on original_source/prefixspan/corpus_miner.cpp's
// PrefixSpanEngine, adapted to avoid the original's static per-call
// "last doc seen" array (spec.md §9): each call to occurrenceDelivery
// allocates its own map, which is correct by construction and simple
// enough at the corpus sizes this engine targets.
package cps

import (
	"errors"
	"sort"

	"github.com/tddhit/tools/log"

	"github.com/arlobridge/phrasecorpus/internal/control"
	"github.com/arlobridge/phrasecorpus/internal/corpustypes"
)

// Mode selects which frequent contiguous patterns are emitted.
type Mode int

const (
	ModeAll Mode = iota
	ModeClosed
	ModeMaximal
)

// ErrNotInMemory is returned by Mine when the engine is asked to run
// over a corpus that was not fully loaded into memory. CPS requires
// the corpus fully resident (spec.md §5's explicit precondition);
// unlike the C++ original, which silently reloads from the on-disk
// cache, this reimplementation surfaces the precondition as an error
// so the CLI layer can report it instead of paying a hidden reload.
var ErrNotInMemory = errors.New("cps: corpus must be fully resident in memory")

// Sink receives phrases in DFS emission order.
type Sink interface {
	Emit(*corpustypes.Phrase)
}

// Engine mines a read-only, fully-resident encoded corpus.
type Engine struct {
	Docs []corpustypes.Document
	Stop *control.StopFlag
}

// New returns an engine over docs, which must already be fully
// resident (see ErrNotInMemory).
func New(docs []corpustypes.Document, stop *control.StopFlag) *Engine {
	return &Engine{Docs: docs, Stop: stop}
}

// continuation is one (doc, pos) pointer into the projected database:
// the suffix of doc starting at pos matches the current prefix.
type continuation struct {
	docID uint32
	pos   uint32
}

// Mine runs the recursive descent described in spec.md §4.3 and
// emits every pattern that satisfies the mode's output decision.
func (e *Engine) Mine(minDocs, minLength int, mode Mode, sink Sink) error {
	if e.Docs == nil {
		return ErrNotInMemory
	}

	var initial []continuation
	for d, doc := range e.Docs {
		if len(doc) == 0 {
			continue
		}
		for p := range doc {
			initial = append(initial, continuation{docID: uint32(d), pos: uint32(p)})
		}
	}

	initialSupport := distinctDocCount(initial)
	emitted := 0
	e.mineRecursive(initial, nil, initialSupport, minDocs, minLength, mode, sink, &emitted)
	log.Info("cps: done, emitted", emitted, "phrases")
	return nil
}

// mineRecursive is the projected-database DFS (spec.md §4.3 steps
// 1-4). db holds the continuation points for the current prefix;
// support is the prefix's precomputed distinct-doc count.
func (e *Engine) mineRecursive(
	db []continuation,
	prefix []corpustypes.Token,
	support int,
	minDocs, minLength int,
	mode Mode,
	sink Sink,
	emitted *int,
) {
	if e.Stop != nil && e.Stop.Stopped() {
		return
	}

	extensions := e.occurrenceDelivery(db)

	hasFrequentExtension := false
	hasSameSupportExtension := false
	var frequentTokens []corpustypes.Token
	for tok, docs := range extensions {
		s := len(docs)
		if s >= minDocs {
			hasFrequentExtension = true
			frequentTokens = append(frequentTokens, tok)
			if s == support {
				hasSameSupportExtension = true
			}
		}
	}

	if len(prefix) >= minLength {
		shouldOutput := false
		switch mode {
		case ModeAll:
			shouldOutput = true
		case ModeMaximal:
			shouldOutput = !hasFrequentExtension
		case ModeClosed:
			shouldOutput = !hasSameSupportExtension
		}
		if shouldOutput {
			sink.Emit(buildPhrase(prefix, db, support))
			*emitted++
			if *emitted%1000 == 0 {
				log.Debug("cps: progress, emitted", *emitted, "phrases")
			}
		}
	}

	// Ascending token id gives a deterministic sibling order
	// (spec.md §4.3's "natural choice").
	sort.Slice(frequentTokens, func(i, j int) bool { return frequentTokens[i] < frequentTokens[j] })

	for _, tok := range frequentTokens {
		if e.Stop != nil && e.Stop.Stopped() {
			return
		}
		childSupport := len(extensions[tok])
		childDB := e.project(db, tok)
		if len(childDB) == 0 {
			continue
		}
		prefix = append(prefix, tok)
		e.mineRecursive(childDB, prefix, childSupport, minDocs, minLength, mode, sink, emitted)
		prefix = prefix[:len(prefix)-1]
	}
}

// occurrenceDelivery scans db once and returns, for each distinct
// next token, the distinct set of doc ids at which it occurs at the
// continuation point. Grounded on the original's occ_delivery, but
// uses a locally allocated "last doc id per token" map instead of a
// static array threaded across recursive calls (spec.md §9).
func (e *Engine) occurrenceDelivery(db []continuation) map[corpustypes.Token][]uint32 {
	lastDocPerToken := make(map[corpustypes.Token]uint32)
	out := make(map[corpustypes.Token][]uint32)

	for _, c := range db {
		doc := e.Docs[c.docID]
		if int(c.pos) >= len(doc) {
			continue
		}
		tok := doc[c.pos]
		last, seen := lastDocPerToken[tok]
		if seen && last == c.docID+1 {
			continue
		}
		lastDocPerToken[tok] = c.docID + 1
		out[tok] = append(out[tok], c.docID)
	}
	return out
}

// project builds the child projected database for extending the
// current prefix by tok: every continuation point whose next token is
// tok advances by exactly one position (the defining contiguity
// constraint of spec.md §4.3).
func (e *Engine) project(db []continuation, tok corpustypes.Token) []continuation {
	var next []continuation
	for _, c := range db {
		doc := e.Docs[c.docID]
		if int(c.pos) < len(doc) && doc[c.pos] == tok {
			// pos+1 may land on len(doc): a terminal continuation with
			// no further token to extend with, but still a valid
			// occurrence of the extended prefix. occurrenceDelivery's own
			// pos>=len(doc) guard already skips terminal continuations
			// when looking for further extensions, so keeping them here
			// is what lets a phrase ending at the last token of every
			// document it occurs in still reach buildPhrase (spec.md §8
			// scenario 3) instead of being dropped before its node is
			// ever entered.
			next = append(next, continuation{docID: c.docID, pos: c.pos + 1})
		}
	}
	return next
}

func distinctDocCount(db []continuation) int {
	seen := make(map[uint32]struct{})
	for _, c := range db {
		seen[c.docID] = struct{}{}
	}
	return len(seen)
}

// buildPhrase materializes a Phrase from the current prefix and
// projected database. Occurrence positions are recovered as
// current-position minus prefix length, since a continuation's pos
// always points just past the matched prefix. Every continuation
// becomes an occurrence (spec.md §3 defines Phrase.occurrences as the
// full set of matches, not one representative per document); the C++
// original's CPS variant dropped position entirely and kept only one
// doc-id stub per document, which spec.md's Occurrence type — shared
// with GME — does not allow.
func buildPhrase(prefix []corpustypes.Token, db []continuation, support int) *corpustypes.Phrase {
	tokens := append([]corpustypes.Token(nil), prefix...)
	occs := make([]corpustypes.Occurrence, 0, len(db))
	for _, c := range db {
		start := int(c.pos) - len(prefix)
		if start < 0 {
			continue
		}
		occs = append(occs, corpustypes.Occurrence{DocID: c.docID, Pos: uint32(start)})
	}
	return &corpustypes.Phrase{Tokens: tokens, Occurrences: occs, Support: support}
}
