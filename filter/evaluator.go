package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/stranadev/helpdesk-client/helpdesk"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.workerCount = workers
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator implements Evaluator, splitting large ticket lists
// across a worker pool
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.workerCount <= 0 {
		e.workerCount = 1
	}

	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate returns the tickets matching filter, in input order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, tickets []helpdesk.Ticket) ([]helpdesk.Ticket, error) {
	if len(tickets) == 0 {
		return []helpdesk.Ticket{}, nil
	}

	// Small lists and filters that cannot run concurrently stay sequential
	if len(tickets) < e.batchSize || !filter.IsThreadSafe() {
		return evaluateSequential(filter, tickets), nil
	}

	return e.evaluateConcurrent(ctx, filter, tickets)
}

func evaluateSequential(filter Filter, tickets []helpdesk.Ticket) []helpdesk.Ticket {
	matches := make([]helpdesk.Ticket, 0, len(tickets)/4)
	for _, ticket := range tickets {
		if filter.Evaluate(ticket) {
			matches = append(matches, ticket)
		}
	}
	return matches
}

func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, tickets []helpdesk.Ticket) ([]helpdesk.Ticket, error) {
	chunkSize := max(len(tickets)/e.workerCount, e.batchSize)
	chunks := (len(tickets) + chunkSize - 1) / chunkSize

	results := make([][]helpdesk.Ticket, chunks)
	var wg sync.WaitGroup

	for index := range chunks {
		start := index * chunkSize
		chunk := tickets[start:min(start+chunkSize, len(tickets))]

		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			default:
			}

			// each worker owns one slot
			results[index] = evaluateSequential(filter, chunk)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	matches := make([]helpdesk.Ticket, 0, total)
	for _, r := range results {
		matches = append(matches, r...)
	}

	return matches, nil
}

// Stop gracefully stops the evaluator's worker pool
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
