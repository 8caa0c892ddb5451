// Package gme implements the Greedy Maximal Extension mining engine
// (spec.md §4.2): seed generation from contiguous L-grams, filtering
// by minimum document frequency, support-descending ordering, and
// greedy one-token-at-a-time extension with path-compression
// (non-overlap by start position).
//
// Grounded on original_source/corpus_miner.cpp's CorpusMiner::mine,
// adapted from the teacher's indexer.Indexer.Index loop shape (walk
// every document, accumulate into a map keyed by content, then sort
// and consume).
package gme

import (
	"encoding/binary"
	"sort"

	"github.com/tddhit/tools/log"

	"github.com/arlobridge/phrasecorpus/internal/control"
	"github.com/arlobridge/phrasecorpus/internal/corpustypes"
)

// Sink receives phrases in emission order. The mining engine never
// mutates a phrase after handing it to the sink.
type Sink interface {
	Emit(*corpustypes.Phrase)
}

// Engine mines a read-only encoded corpus.
type Engine struct {
	Docs []corpustypes.Document
	Stop *control.StopFlag
}

// New returns an engine over docs. stop may be nil, in which case the
// run is never cooperatively cancelled.
func New(docs []corpustypes.Document, stop *control.StopFlag) *Engine {
	return &Engine{Docs: docs, Stop: stop}
}

// candidate is a seed or partially-extended phrase awaiting either
// further extension or rejection by the freshness check.
type candidate struct {
	tokens []corpustypes.Token
	occs   []corpustypes.Occurrence
}

func (c *candidate) support() int {
	seen := make(map[uint32]struct{}, len(c.occs))
	for _, o := range c.occs {
		seen[o.DocID] = struct{}{}
	}
	return len(seen)
}

// Mine runs phases S1-S4 of spec.md §4.2 and emits every accepted
// phrase to sink, in the order it was accepted. If the engine's stop
// flag is raised between candidates, Mine returns with whatever was
// emitted so far (spec.md §5).
func (e *Engine) Mine(minDocs, seedLen int, sink Sink) {
	candidates := e.seedAndFilter(seedLen, minDocs)
	log.Info("gme: candidates after seed filtering:", len(candidates))

	sortCandidates(candidates)

	processed := corpustypes.NewProcessedMap(e.Docs)
	emitted := 0

	for _, cand := range candidates {
		if e.Stop != nil && e.Stop.Stopped() {
			log.Info("gme: stop requested, halting after", emitted, "phrases")
			break
		}
		if e.allStartsProcessed(cand, processed) {
			continue
		}

		e.extend(cand, minDocs, processed)

		for _, o := range cand.occs {
			processed.MarkRange(o.DocID, o.Pos, len(cand.tokens))
		}

		sink.Emit(&corpustypes.Phrase{
			Tokens:      cand.tokens,
			Occurrences: cand.occs,
			Support:     cand.support(),
		})
		emitted++
		if emitted%1000 == 0 {
			log.Debug("gme: progress, emitted", emitted, "phrases")
		}
	}
	log.Info("gme: done, emitted", emitted, "phrases")
}

// seedAndFilter is phases S1-S2: bucket every contiguous seedLen-gram
// by its exact token content, then discard buckets whose distinct
// doc_id count is below minDocs.
//
// Buckets are kept by the seed's byte-encoded content as the map key
// rather than a hash, per spec.md §9's "use a content hash over the
// tuple with equality on full contents" — a string key over the raw
// bytes gives exact equality for free, with no risk of two distinct
// seeds colliding under the same bucket.
func (e *Engine) seedAndFilter(seedLen, minDocs int) []*candidate {
	buckets := make(map[string]*candidate)
	order := make([]string, 0)

	for d, doc := range e.Docs {
		if len(doc) < seedLen {
			continue
		}
		for p := 0; p+seedLen <= len(doc); p++ {
			seed := doc[p : p+seedLen]
			key := string(encodeTokens(seed))
			c, ok := buckets[key]
			if !ok {
				c = &candidate{tokens: append([]corpustypes.Token(nil), seed...)}
				buckets[key] = c
				order = append(order, key)
			}
			c.occs = append(c.occs, corpustypes.Occurrence{DocID: uint32(d), Pos: uint32(p)})
		}
	}

	out := make([]*candidate, 0, len(order))
	for _, key := range order {
		c := buckets[key]
		if c.support() >= minDocs {
			out = append(out, c)
		}
	}
	return out
}

// sortCandidates orders by support descending (phase S3). Ties break
// on the lexicographic token sequence so the order is deterministic
// given the input, independent of map iteration order.
func sortCandidates(cands []*candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		si, sj := cands[i].support(), cands[j].support()
		if si != sj {
			return si > sj
		}
		return lexLess(cands[i].tokens, cands[j].tokens)
	})
}

func lexLess(a, b []corpustypes.Token) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// allStartsProcessed is the freshness check in phase S4 step 1: it
// inspects only each occurrence's start position, not its full span
// (spec.md §9's documented weaker gate).
func (e *Engine) allStartsProcessed(c *candidate, processed *corpustypes.ProcessedMap) bool {
	for _, o := range c.occs {
		if !processed.IsMarked(o.DocID, o.Pos) {
			return false
		}
	}
	return true
}

// extend repeatedly grows c by one token, choosing at each step the
// next token with the largest distinct-doc support among candidate
// next tokens, breaking ties by smallest token id (spec.md §9's
// documented deterministic tie-break). Stops when no next token
// reaches minDocs.
func (e *Engine) extend(c *candidate, minDocs int, processed *corpustypes.ProcessedMap) {
	for {
		nextOccs := make(map[corpustypes.Token][]corpustypes.Occurrence)
		for _, o := range c.occs {
			np := int(o.Pos) + len(c.tokens)
			doc := e.Docs[o.DocID]
			if np >= len(doc) {
				continue
			}
			w := doc[np]
			nextOccs[w] = append(nextOccs[w], o)
		}
		if len(nextOccs) == 0 {
			return
		}

		bestWord, bestSupport := corpustypes.Token(0), -1
		haveBest := false
		for w, occs := range nextOccs {
			support := distinctDocs(occs)
			if support > bestSupport || (support == bestSupport && (!haveBest || w < bestWord)) {
				bestSupport = support
				bestWord = w
				haveBest = true
			}
		}
		if bestSupport < minDocs {
			return
		}

		c.tokens = append(c.tokens, bestWord)
		c.occs = nextOccs[bestWord]
	}
}

func distinctDocs(occs []corpustypes.Occurrence) int {
	seen := make(map[uint32]struct{}, len(occs))
	for _, o := range occs {
		seen[o.DocID] = struct{}{}
	}
	return len(seen)
}

func encodeTokens(tokens []corpustypes.Token) []byte {
	buf := make([]byte, 4*len(tokens))
	for i, t := range tokens {
		binary.LittleEndian.PutUint32(buf[i*4:], t)
	}
	return buf
}
