package datasource

import (
	"context"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/tddhit/tools/log"
)

// DirectorySource recursively scans a directory for regular files
// matching Mask, and when Sampling < 1.0 shuffles them and keeps the
// first Sampling fraction (at 1.0 every file is kept in scan order),
// then tokenizes each one. Grounded on
// original_source/prefixspan/corpus_miner.cpp::load_directory.
type DirectorySource struct {
	Root     string
	Mask     string  // "" or "*" = all, "*.EXT" = by extension, else exact filename
	Sampling float64 // fraction in [0,1] retained after shuffling; 1.0 = all
}

func (s *DirectorySource) Documents(ctx context.Context) (<-chan RawDocument, <-chan error) {
	out := make(chan RawDocument)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		paths, err := s.scan()
		if err != nil {
			errc <- err
			return
		}
		log.Info("directory scan found", len(paths), "files matching mask", s.Mask)

		paths = shuffleAndSample(paths, s.Sampling)
		log.Info("processing", len(paths), "files after sampling")

		for i, p := range paths {
			select {
			case <-ctx.Done():
				return
			default:
			}
			words := tokenizeFile(p)
			select {
			case out <- RawDocument{Index: i, Source: p, Words: words}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errc
}

func (s *DirectorySource) scan() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// An unreadable root aborts the load; unreadable entries
			// below it are skipped rather than aborting the whole scan
			// (spec.md §7: per-file I/O errors are swallowed).
			if path == s.Root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if matchesMask(d.Name(), s.Mask) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func matchesMask(name, mask string) bool {
	if mask == "" || mask == "*" {
		return true
	}
	if strings.HasPrefix(mask, "*.") {
		return strings.HasSuffix(name, mask[1:])
	}
	return name == mask
}

// shuffleAndSample performs a Fisher-Yates shuffle then truncates to
// the sampling fraction, matching the original's
// "shuffle then resize" ordering. At sampling>=1.0 nothing is ever
// dropped, so the shuffle is skipped entirely: spec.md §8's
// determinism property ("byte-identical inputs produce byte-identical
// outputs") must hold for a default, full-corpus run, and shuffling
// unconditionally would reorder doc ids on every invocation.
func shuffleAndSample(paths []string, sampling float64) []string {
	if sampling >= 1.0 {
		return paths
	}
	rand.Shuffle(len(paths), func(i, j int) { paths[i], paths[j] = paths[j], paths[i] })
	if sampling < 0 {
		sampling = 0
	}
	n := int(float64(len(paths)) * sampling)
	if n > len(paths) {
		n = len(paths)
	}
	return paths[:n]
}

func tokenizeFile(path string) []string {
	raw, err := os.ReadFile(path)
	if err != nil {
		// A file that fails to open contributes an empty document; no
		// mining error is raised (spec.md §4.1, §7).
		log.Error("failed to read", path, err)
		return nil
	}
	return Tokenize(DecodeBytes(raw))
}
