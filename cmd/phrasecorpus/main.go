package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tddhit/tools/log"

	"github.com/arlobridge/phrasecorpus/internal/config"
	"github.com/arlobridge/phrasecorpus/internal/control"
	"github.com/arlobridge/phrasecorpus/internal/corpus"
	"github.com/arlobridge/phrasecorpus/internal/cps"
	"github.com/arlobridge/phrasecorpus/internal/datasource"
	"github.com/arlobridge/phrasecorpus/internal/gme"
	"github.com/arlobridge/phrasecorpus/internal/sink"
)

var (
	confPath string

	n        int
	ngrams   int
	sampling float64
	mask     string
	threads  int
	mem      int
	cache    int
	inMem    bool
	preload  bool
	csvDelim string
	engine   string
	mode     string
	out      string
	logPath  string
	logLevel int
)

func init() {
	flag.StringVar(&confPath, "config", "", "optional YAML file supplying flag defaults")

	flag.IntVar(&n, "n", 10, "minimum document frequency")
	flag.IntVar(&ngrams, "ngrams", 4, "minimum phrase length / GME seed length")
	flag.Float64Var(&sampling, "sampling", 1.0, "fraction of inputs retained after shuffling")
	flag.StringVar(&mask, "mask", "*", "filename filter for directory scan")
	flag.IntVar(&threads, "threads", 0, "accepted but not used: documents are tokenized sequentially")
	flag.IntVar(&mem, "mem", 0, "memory hint in MB (advisory only)")
	flag.IntVar(&cache, "cache", 0, "max docs kept in memory when reading the on-disk cache (only with --preload)")
	flag.BoolVar(&inMem, "in-mem", false, "load entire corpus into memory (required by CPS)")
	flag.BoolVar(&preload, "preload", false, "keep the first --cache docs read back from the on-disk cache in memory; nothing is read ahead during loading")
	flag.StringVar(&csvDelim, "csv-delim", ",", `CSV field delimiter; \t and \n recognized`)
	flag.StringVar(&engine, "engine", "cps", "mining engine: gme or cps")
	flag.StringVar(&mode, "mode", "closed", "CPS output mode: all, closed, or maximal")
	flag.StringVar(&out, "out", "results.csv", "output CSV path")
	flag.StringVar(&logPath, "logpath", "", "log file path (empty = stderr)")
	flag.IntVar(&logLevel, "loglevel", 1, "log verbosity level")
}

func main() {
	flag.Parse()
	if confPath != "" {
		applyConfig(confPath)
	}

	log.Init(logPath, logLevel)

	if flag.NArg() < 1 {
		log.Fatal("usage: phrasecorpus [flags] <input-path>")
	}
	inputPath := flag.Arg(0)

	stop := &control.StopFlag{}
	registerSignalHandler(stop)

	src, err := buildSource(inputPath)
	if err != nil {
		log.Fatal(err)
	}

	opts := corpus.Options{InMem: inMem}
	if !inMem {
		opts.CachePath = cachePath(inputPath)
	}
	if preload {
		opts.PreloadLimit = cache
	}

	loaded, err := corpus.Load(context.Background(), src, opts)
	if err != nil {
		log.Fatal(err)
	}
	if loaded.Cache != nil {
		defer loaded.Cache.Close()
	}

	result := sink.NewCollecting()

	switch engine {
	case "gme":
		docs, err := loaded.InMemoryDocs()
		if err != nil {
			log.Fatal(err)
		}
		e := gme.New(docs, stop)
		e.Mine(n, ngrams, result)

	case "cps":
		if !inMem {
			log.Fatal(cps.ErrNotInMemory)
		}
		docs, err := loaded.InMemoryDocs()
		if err != nil {
			log.Fatal(err)
		}
		e := cps.New(docs, stop)
		m, err := parseMode(mode)
		if err != nil {
			log.Fatal(err)
		}
		if err := e.Mine(n, ngrams, m, result); err != nil {
			log.Fatal(err)
		}

	default:
		log.Fatal("unknown --engine: " + engine)
	}

	if err := sink.WriteCSV(out, result.Phrases(), loaded.Dict, loaded.Sources); err != nil {
		log.Fatal(err)
	}
}

// registerSignalHandler raises stop on SIGINT/SIGTERM, the only
// cancellation path named in spec.md §5; the mining engines poll it
// at their own suspension points rather than being preempted.
func registerSignalHandler(stop *control.StopFlag) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Info("phrasecorpus: interrupt received, stopping after current candidate")
		stop.Stop()
	}()
}

func buildSource(inputPath string) (datasource.Source, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return &datasource.DirectorySource{Root: inputPath, Mask: mask, Sampling: sampling}, nil
	}
	delim, err := datasource.ParseDelimiter(csvDelim)
	if err != nil {
		return nil, err
	}
	return &datasource.CSVSource{Path: inputPath, Delimiter: delim, Sampling: sampling}, nil
}

func cachePath(inputPath string) string {
	base := strings.TrimSuffix(inputPath, "/")
	return base + ".corpuscache"
}

func parseMode(s string) (cps.Mode, error) {
	switch s {
	case "all":
		return cps.ModeAll, nil
	case "closed":
		return cps.ModeClosed, nil
	case "maximal":
		return cps.ModeMaximal, nil
	}
	return 0, errUnknownMode(s)
}

type errUnknownMode string

func (e errUnknownMode) Error() string { return "unknown --mode: " + string(e) }

// applyConfig loads path and fills every flag that was not passed on
// the command line from its non-zero config value, replacing the
// flag's built-in default; explicit command-line flags always win
// (SPEC_FULL.md's AMBIENT STACK: "flags passed on the command line
// override the loaded config").
func applyConfig(path string) {
	c, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	apply := func(name string, yes bool, assign func()) {
		if !set[name] && yes {
			assign()
		}
	}

	apply("n", c.N != 0, func() { n = c.N })
	apply("ngrams", c.Ngrams != 0, func() { ngrams = c.Ngrams })
	apply("sampling", c.Sampling != 0, func() { sampling = c.Sampling })
	apply("mask", c.Mask != "", func() { mask = c.Mask })
	apply("threads", c.Threads != 0, func() { threads = c.Threads })
	apply("mem", c.Mem != 0, func() { mem = c.Mem })
	apply("cache", c.Cache != 0, func() { cache = c.Cache })
	apply("in-mem", c.InMem, func() { inMem = c.InMem })
	apply("preload", c.Preload, func() { preload = c.Preload })
	apply("csv-delim", c.CSVDelim != "", func() { csvDelim = c.CSVDelim })
	apply("engine", c.Engine != "", func() { engine = c.Engine })
	apply("mode", c.Mode != "", func() { mode = c.Mode })
	apply("out", c.Out != "", func() { out = c.Out })
	apply("logpath", c.LogPath != "", func() { logPath = c.LogPath })
	apply("loglevel", c.LogLevel != 0, func() { logLevel = c.LogLevel })
}
