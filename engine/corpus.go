package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"
)

// FileParser parses a single AIML source file into categories. It's
// supplied by the caller (cmd/golem wires in parser.ParseFile) so engine
// never has to import the parser package.
type FileParser func(path string) ([]Category, error)

// LoadCorpusConcurrent parses every *.aiml file directly inside dir
// concurrently via an errgroup, inserting each file's categories into
// loader as its parse completes, and optionally renders an mpb progress
// bar across stderr while it works. Insertion is serialized behind a
// mutex since Trie.Insert is not itself safe for concurrent writers; only
// the parsing (I/O plus XML decoding) happens in parallel.
func LoadCorpusConcurrent(ctx context.Context, loader Loader, dir string, parse FileParser, showProgress bool) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.aiml"))
	if err != nil {
		return wrapErr(ErrKindLoad, "LoadCorpusConcurrent", err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil
	}

	var progress *mpb.Progress
	var bar *mpb.Bar
	if showProgress {
		progress = mpb.NewWithContext(ctx, mpb.WithOutput(os.Stderr))
		bar = progress.AddBar(int64(len(files)),
			mpb.PrependDecorators(decor.Name("loading corpus ")),
			mpb.AppendDecorators(decor.CountersNoUnit("%d / %d"), decor.Percentage()),
		)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	var insertMu sync.Mutex

	for _, path := range files {
		path := path
		group.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			cats, err := parse(path)
			if err != nil {
				return wrapErr(ErrKindLoad, "LoadCorpusConcurrent:"+path, err)
			}
			insertMu.Lock()
			for _, c := range cats {
				loader.Insert(c)
			}
			insertMu.Unlock()
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}

	err = group.Wait()
	if progress != nil {
		progress.Wait()
	}
	return err
}

// CorpusLoadTimeout bounds how long a single corpus load is allowed to run
// before LoadCorpusConcurrent's context is cancelled by the caller.
const CorpusLoadTimeout = 5 * time.Minute
