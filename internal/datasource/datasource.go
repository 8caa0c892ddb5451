// Package datasource is the Corpus Loader collaborator named in
// spec.md §2 and §6: it turns a filesystem path (a directory or a
// single CSV file) into an ordered stream of documents-as-word-lists,
// each carrying a source identifier used only for reporting.
//
// This mirrors the teacher's internal/datasource.DataSource interface
// (a channel of *types.Document) but carries raw words rather than a
// pre-tokenized Document, since tokenization itself now lives here
// too (spec.md treats it as a black-box service at this same
// boundary).
package datasource

import "context"

// RawDocument is one loaded, tokenized document awaiting dictionary
// encoding.
type RawDocument struct {
	Index  int      // position in load order; becomes the doc id
	Source string   // file path or "row_<n>" label, for reporting only
	Words  []string // tokenized surface forms, in order
}

// Source streams documents in a fixed, deterministic load order. The
// order must be preserved even though tokenization work inside an
// implementation may run concurrently (spec.md §5: "parallel
// tokenization may reorder per-document work but not the documents
// themselves").
type Source interface {
	// Documents tokenizes and streams every document. The returned
	// channel is closed once every document has been sent or ctx is
	// canceled. Errors that abort the whole load (root unreadable) are
	// sent on the error channel and the document channel is then
	// closed; per-file errors are swallowed per spec.md §4.1/§7 and
	// surface only as an empty Words slice for that document.
	Documents(ctx context.Context) (<-chan RawDocument, <-chan error)
}
