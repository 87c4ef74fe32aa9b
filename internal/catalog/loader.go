package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/roadprep/signquiz/internal/quiz"
	"github.com/roadprep/signquiz/internal/trace"
)

// Fetcher retrieves the raw bytes of one bundle. The HTTP client that
// talks to the real content service lives with the host; this package
// only defines the seam and the bundled-data implementation.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// FileFetcher serves bundles shipped with the app: <Dir>/<key>.json.
type FileFetcher struct {
	Dir string
}

func (f FileFetcher) Fetch(_ context.Context, key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(f.Dir, filepath.Base(key)+".json"))
}

// Loader builds a Catalog by fetching and normalizing bundles
// concurrently. A failure on one key degrades that key to "not
// populated"; it never aborts the rest of the build.
type Loader struct {
	Primary    Fetcher
	Fallback   Fetcher // optional bundled data, tried when Primary fails
	Normalizer *quiz.Normalizer
	Tracer     trace.Tracer
	Limit      int // max in-flight fetches; default 4
}

// Build fans out over the keys and fans in before returning; the
// resulting Catalog is complete and immutable.
func (l *Loader) Build(ctx context.Context, keys []string) *Catalog {
	tracer := l.Tracer
	if tracer == nil {
		tracer = trace.Nop{}
	}
	limit := l.Limit
	if limit <= 0 {
		limit = 4
	}

	var (
		mu      sync.Mutex
		bundles = make(map[string][]quiz.Question, len(keys))
		g       errgroup.Group
	)
	g.SetLimit(limit)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			qs, err := l.load(ctx, key)
			if err != nil {
				tracer.Event("catalog", "bundle_failed", map[string]string{"key": key, "error": err.Error()})
				return nil
			}
			mu.Lock()
			bundles[key] = qs
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return New(bundles)
}

func (l *Loader) load(ctx context.Context, key string) ([]quiz.Question, error) {
	qs, err := l.fetchNormalize(ctx, l.Primary, key)
	if err == nil {
		return qs, nil
	}
	if l.Fallback == nil {
		return nil, err
	}
	qs, ferr := l.fetchNormalize(ctx, l.Fallback, key)
	if ferr != nil {
		return nil, fmt.Errorf("primary: %v; fallback: %w", err, ferr)
	}
	return qs, nil
}

func (l *Loader) fetchNormalize(ctx context.Context, f Fetcher, key string) ([]quiz.Question, error) {
	if f == nil {
		return nil, fmt.Errorf("no fetcher")
	}
	raw, err := f.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	qs := l.Normalizer.NormalizeBatch(raw)
	if len(qs) == 0 {
		return nil, fmt.Errorf("bundle %s: no usable questions", key)
	}
	return qs, nil
}
