// internal/engine/batch/pool.go
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Func processes one URL
type Func[T any] func(ctx context.Context, url string) (T, error)

// Result is the outcome of one job
type Result[T any] struct {
	URL     string
	Value   T
	Err     error
	Elapsed time.Duration
}

// Pool runs a Func over a list of URLs with a fixed number of workers
type Pool[T any] struct {
	fn      Func[T]
	workers int

	// OnResult, when set, is called from the collecting goroutine for every
	// finished job
	OnResult func(Result[T])
}

// NewPool creates a pool of the given width (see ClampWorkers)
func NewPool[T any](workers int, fn Func[T]) *Pool[T] {
	return &Pool[T]{fn: fn, workers: ClampWorkers(workers)}
}

// Workers returns the pool width
func (p *Pool[T]) Workers() int {
	return p.workers
}

// Run processes every URL and returns the results in completion order.
// Jobs not yet started when ctx is cancelled are dropped.
func (p *Pool[T]) Run(ctx context.Context, urls []string) []Result[T] {
	if len(urls) == 0 {
		return []Result[T]{}
	}

	jobs := make(chan string, len(urls))
	results := make(chan Result[T], len(urls))

	var wg sync.WaitGroup
	for w := 1; w <= p.workers; w++ {
		wg.Add(1)
		go p.worker(ctx, w, jobs, results, &wg)
	}

	for _, u := range urls {
		jobs <- u
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]Result[T], 0, len(urls))
	for r := range results {
		if p.OnResult != nil {
			p.OnResult(r)
		}
		all = append(all, r)
	}
	return all
}

func (p *Pool[T]) worker(ctx context.Context, id int, jobs <-chan string, results chan<- Result[T], wg *sync.WaitGroup) {
	defer wg.Done()

	log.Debug().Int("worker_id", id).Msg("Worker started")

	for url := range jobs {
		select {
		case <-ctx.Done():
			log.Debug().Int("worker_id", id).Msg("Worker cancelled")
			return
		default:
		}

		start := time.Now()
		value, err := p.fn(ctx, url)
		results <- Result[T]{URL: url, Value: value, Err: err, Elapsed: time.Since(start)}
	}

	log.Debug().Int("worker_id", id).Msg("Worker finished")
}
