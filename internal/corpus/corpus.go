// Package corpus wires the Corpus Loader collaborator
// (internal/datasource) through the Dictionary Encoder into either a
// fully-resident in-memory corpus or a streaming on-disk cache
// (spec.md §2 items 1-2, §5's memory model).
package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/tddhit/tools/log"

	"github.com/arlobridge/phrasecorpus/internal/corpuscache"
	"github.com/arlobridge/phrasecorpus/internal/corpustypes"
	"github.com/arlobridge/phrasecorpus/internal/datasource"
	"github.com/arlobridge/phrasecorpus/internal/dictionary"
)

// ErrCPSRequiresInMem is the startup precondition failure named in
// spec.md §5: CPS must run over a fully-resident corpus.
var ErrCPSRequiresInMem = errors.New("corpus: CPS engine requires --in-mem")

// Options controls how Load materializes a corpus.
type Options struct {
	InMem        bool // load fully into memory (required for CPS)
	CachePath    string
	PreloadLimit int // max retained docs if Preload is set; 0 disables preload
}

// Loaded is the result of Load: either docs is populated (in-memory
// mode) or cache is non-nil (streaming mode), never both.
type Loaded struct {
	Dict    *dictionary.Dictionary
	Sources []string
	Docs    []corpustypes.Document // nil unless InMem
	Cache   *corpuscache.Reader    // nil unless streaming
	NumDocs int
}

// Load drains src, encoding every document through dict in load order
// (spec.md §5: "the encoder processes documents in the original load
// order so that doc ids match the input ordering"), and either keeps
// the encoded documents resident or spills them to the on-disk cache
// at opts.CachePath.
func Load(ctx context.Context, src datasource.Source, opts Options) (*Loaded, error) {
	if !opts.InMem && opts.CachePath == "" {
		return nil, errors.New("corpus: streaming mode requires a cache path")
	}

	dict := dictionary.New()
	docCh, errCh := src.Documents(ctx)

	var (
		docs    []corpustypes.Document
		sources []string
		writer  *corpuscache.Writer
		reader  *corpuscache.Reader
		err     error
	)

	if opts.InMem {
		docs = make([]corpustypes.Document, 0)
	} else {
		writer, err = corpuscache.NewWriter(opts.CachePath)
		if err != nil {
			return nil, err
		}
	}

	// pending buffers out-of-order arrivals so encoding still proceeds
	// in load order even if the loader's internal fan-out completes
	// documents unevenly (spec.md §5).
	pending := make(map[int]datasource.RawDocument)
	next := 0
	numDocs := 0

	flush := func(raw datasource.RawDocument) error {
		doc := dict.Encode(raw.Index, raw.Words)
		sources = append(sources, raw.Source)
		numDocs++
		if opts.InMem {
			docs = append(docs, doc)
		} else {
			if err := writer.Append(uint32(raw.Index), doc); err != nil {
				return err
			}
		}
		return nil
	}

	for raw := range docCh {
		pending[raw.Index] = raw
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			if err := flush(r); err != nil {
				return nil, err
			}
			delete(pending, next)
			next++
		}
	}
	if loadErr := <-errCh; loadErr != nil {
		return nil, fmt.Errorf("corpus: load: %w", loadErr)
	}
	// Drain any documents left in order behind a gap that never
	// closed; this only happens if the loader dropped an index, which
	// indicates a loader bug rather than a recoverable condition.
	for len(pending) > 0 {
		r, ok := pending[next]
		if !ok {
			return nil, fmt.Errorf("corpus: missing document at index %d", next)
		}
		if err := flush(r); err != nil {
			return nil, err
		}
		delete(pending, next)
		next++
	}

	dict.LogSummary()

	if !opts.InMem {
		if err := writer.Close(); err != nil {
			return nil, err
		}
		preload := opts.PreloadLimit
		reader, err = corpuscache.NewReader(opts.CachePath, preload)
		if err != nil {
			return nil, err
		}
	}

	log.Info("corpus: loaded", numDocs, "documents")
	return &Loaded{
		Dict:    dict,
		Sources: sources,
		Docs:    docs,
		Cache:   reader,
		NumDocs: numDocs,
	}, nil
}

// InMemoryDocs returns l.Docs if the corpus was loaded with InMem, or
// materializes them from the streaming cache otherwise. CPS callers
// should prefer checking InMem directly so a misconfigured run fails
// up front (cmd/phrasecorpus reports cps.ErrNotInMemory) instead of
// paying a hidden reload.
func (l *Loaded) InMemoryDocs() ([]corpustypes.Document, error) {
	if l.Docs != nil {
		return l.Docs, nil
	}
	if l.Cache == nil {
		return nil, ErrCPSRequiresInMem
	}
	return l.Cache.LoadAll(l.NumDocs)
}
