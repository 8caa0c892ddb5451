// Package corpustypes holds the data model shared by the dictionary
// encoder and both mining engines: tokens, documents, occurrences and
// phrases.
package corpustypes

// Token is a dense 32-bit id assigned in first-occurrence order.
type Token = uint32

// Document is an ordered sequence of tokens. Documents may be empty.
type Document []Token

// Occurrence marks a phrase start: tokens begin at Pos in document
// DocID. Positions are token offsets, not byte offsets.
type Occurrence struct {
	DocID uint32
	Pos   uint32
}

// Phrase is a contiguous token run together with every place it
// occurs and the number of distinct documents that place spans.
type Phrase struct {
	Tokens      []Token
	Occurrences []Occurrence
	Support     int
}

// Len reports the phrase length in tokens.
func (p *Phrase) Len() int { return len(p.Tokens) }

// DistinctDocs recomputes the support from Occurrences, for checking
// a Phrase against the invariant in spec.md §3.
func (p *Phrase) DistinctDocs() int {
	seen := make(map[uint32]struct{}, len(p.Occurrences))
	for _, o := range p.Occurrences {
		seen[o.DocID] = struct{}{}
	}
	return len(seen)
}

// Corpus is an ordered sequence of encoded documents with a parallel
// sequence of source identifiers (file path, CSV row label) used only
// for reporting.
type Corpus struct {
	Docs    []Document
	Sources []string
}

// NumDocs reports the document count.
func (c *Corpus) NumDocs() int { return len(c.Docs) }

// ProcessedMap is the GME engine's per-document consumed-position
// bitmap. It exists only for the duration of one GME run.
type ProcessedMap struct {
	marks [][]bool
}

// NewProcessedMap allocates one bitmap per document sized to that
// document's length.
func NewProcessedMap(docs []Document) *ProcessedMap {
	m := &ProcessedMap{marks: make([][]bool, len(docs))}
	for i, d := range docs {
		m.marks[i] = make([]bool, len(d))
	}
	return m
}

// IsMarked reports whether position pos in document docID was already
// consumed by a previously accepted phrase.
func (m *ProcessedMap) IsMarked(docID, pos uint32) bool {
	if int(docID) >= len(m.marks) {
		return false
	}
	row := m.marks[docID]
	if int(pos) >= len(row) {
		return false
	}
	return row[pos]
}

// MarkRange marks positions [pos, pos+length) as consumed, clamped to
// the document's length.
func (m *ProcessedMap) MarkRange(docID, pos uint32, length int) {
	if int(docID) >= len(m.marks) {
		return
	}
	row := m.marks[docID]
	end := int(pos) + length
	if end > len(row) {
		end = len(row)
	}
	for i := int(pos); i < end; i++ {
		if i >= 0 {
			row[i] = true
		}
	}
}
