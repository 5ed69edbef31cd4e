package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/budgetviz/internal/config"
	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/source"
	"github.com/theirongolddev/budgetviz/internal/store"

	"golang.org/x/sync/errgroup"
)

// Source names one dataset to load.
type Source struct {
	Topic    model.View
	Location string
}

// Sources returns the configured dataset locations in view order.
// Topics without a location are skipped; Overview is always required.
func Sources(cfg config.Config) []Source {
	var out []Source
	for _, v := range model.Views {
		loc := cfg.SourceFor(v)
		if loc == "" && v != model.Overview {
			continue
		}
		out = append(out, Source{Topic: v, Location: loc})
	}
	return out
}

// LoadError reports which source broke the all-or-nothing load.
type LoadError struct {
	Source Source
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s dataset from %q: %v", e.Source.Topic, e.Source.Location, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Options controls a Load call.
type Options struct {
	// Cache, when non-nil, is refreshed after a successful fetch and is the
	// only source consulted when Offline is set.
	Cache   *store.Cache
	Offline bool
	Timeout time.Duration
	Client  *source.Client
}

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Datasets  model.Datasets
	Sources   []Source
	FromCache bool
	CacheErr  error // non-fatal: refreshing the cache failed
	LoadTime  time.Duration
}

// ProgressFunc is called as each source completes.
// current is the number of sources finished so far, total is the total count.
type ProgressFunc func(current, total int)

// Load fetches every source concurrently and joins the results. It succeeds
// only if every source succeeds; the first failure cancels the rest and no
// partial data is returned.
func Load(ctx context.Context, sources []Source, opts Options, progressFn ProgressFunc) (*LoadResult, error) {
	start := time.Now()
	if len(sources) == 0 {
		return nil, &LoadError{Source: Source{Topic: model.Overview}, Err: errors.New("no dataset sources configured")}
	}
	if opts.Offline && opts.Cache == nil {
		return nil, errors.New("offline load requested without a cache")
	}

	client := opts.Client
	if client == nil {
		client = source.NewClient(opts.Timeout)
	}

	results := make([]model.Dataset, len(sources))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			var (
				d   model.Dataset
				err error
			)
			if opts.Offline {
				d, err = opts.Cache.LoadDataset(src.Topic, src.Location)
			} else {
				d, err = client.FetchDataset(gctx, src.Topic, src.Location)
			}
			if err != nil {
				return &LoadError{Source: src, Err: err}
			}
			results[i] = d
			n := done.Add(1)
			if progressFn != nil {
				progressFn(int(n), len(sources))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &LoadResult{
		Datasets:  model.NewDatasets(results...),
		Sources:   sources,
		FromCache: opts.Offline,
	}

	if opts.Cache != nil && !opts.Offline {
		for _, d := range results {
			if err := opts.Cache.SaveDataset(d); err != nil {
				res.CacheErr = fmt.Errorf("caching %s: %w", d.Source, err)
				break
			}
		}
	}

	res.LoadTime = time.Since(start)
	return res, nil
}
