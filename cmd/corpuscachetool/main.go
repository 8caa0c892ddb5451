// corpuscachetool is a diagnostic CLI over a binary corpus cache
// (spec.md §5/§6), adapted from the teacher's tools/main.go: instead
// of dumping a vocab/meta/invert index triple, it dumps the single
// offset/length index that internal/corpuscache.Writer produces
// alongside the raw token data file.
package main

import (
	"flag"
	"os"

	"github.com/tddhit/bindex"
	"github.com/tddhit/tools/log"
)

var dataPath string

func init() {
	flag.StringVar(&dataPath, "data", "", "path to a corpus cache data file (index is read from <data>.idx)")
	flag.Parse()
}

func main() {
	if dataPath == "" {
		log.Fatal("usage: corpuscachetool -data <path>")
	}
	if _, err := os.Stat(dataPath); err != nil {
		log.Fatal(err)
	}

	idx, err := bindex.New(dataPath+".idx", true)
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	idx.Traverse()
}
