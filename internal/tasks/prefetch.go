package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/shared"
	"golang.org/x/time/rate"
)

// PrefetchOpts contains configuration for concurrent detail fetches.
type PrefetchOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Requests per second (default: 5)
}

func (o PrefetchOpts) withDefaults() PrefetchOpts {
	if o.NumWorkers <= 0 {
		o.NumWorkers = 4
	}
	if o.NumWorkers > 10 {
		o.NumWorkers = 10
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 5.0
	}
	return o
}

// PrefetchResult holds the details fetched by Prefetch.
type PrefetchResult struct {
	Chalets []models.Chalet  // In request order, failed ids omitted
	Errors  []EndpointResult // One entry per failed id
}

type prefetchJob struct {
	index int
	id    string
}

type prefetchOutcome struct {
	index  int
	id     string
	chalet *models.Chalet
	err    error
}

// Prefetch fetches chalet details for ids with a rate-limited worker pool.
//
// Individual failures are collected in the result. The returned error is non-nil only when ctx ends before all ids were
// dispatched; the partial result is still returned.
func (e *Engine) Prefetch(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts PrefetchOpts) (*PrefetchResult, error) {
	if e.backend == nil {
		return nil, fmt.Errorf("%w: backend not initialized", shared.ErrServiceUnavailable)
	}

	opts = opts.withDefaults()
	result := &PrefetchResult{
		Chalets: []models.Chalet{},
		Errors:  []EndpointResult{},
	}
	if len(ids) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan prefetchJob, len(ids))
	results := make(chan prefetchOutcome, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < min(opts.NumWorkers, len(ids)); i++ {
		wg.Add(1)
		go e.prefetchWorker(ctx, &wg, jobs, results)
	}

	dispatchErr := make(chan error, 1)
	go func() {
		defer close(jobs)
		e.sendProgress(prog, prefetchingUpdate(len(ids)))
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				dispatchErr <- err
				return
			}
			jobs <- prefetchJob{index: i, id: id}
		}
		dispatchErr <- nil
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	found := make([]*models.Chalet, len(ids))
	completed := 0
	for res := range results {
		completed++
		if res.err != nil {
			result.Errors = append(result.Errors, EndpointResult{
				Endpoint: "/api/chalets/" + res.id,
				Data:     res.id,
				Error:    res.err,
			})
			e.sendProgress(prog, prefetchFailedUpdate(completed, len(ids), res.id, res.err))
			continue
		}
		found[res.index] = res.chalet
		e.sendProgress(prog, prefetchedUpdate(completed, len(ids), res.chalet))
	}

	for _, c := range found {
		if c != nil {
			result.Chalets = append(result.Chalets, *c)
		}
	}

	if err := <-dispatchErr; err != nil {
		return result, fmt.Errorf("prefetch interrupted: %w", err)
	}
	return result, nil
}

// prefetchWorker is a worker goroutine that fetches chalet details from the jobs channel.
func (e *Engine) prefetchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan prefetchJob,
	results chan<- prefetchOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			results <- prefetchOutcome{index: job.index, id: job.id, err: ctx.Err()}
			continue
		default:
		}

		c, err := e.backend.GetChalet(ctx, job.id)
		if err == nil && c == nil {
			err = fmt.Errorf("%w: %s", shared.ErrChaletNotFound, job.id)
		}
		results <- prefetchOutcome{index: job.index, id: job.id, chalet: c, err: err}
	}
}
