package filter

import (
	"context"

	"github.com/stranadev/helpdesk-client/helpdesk"
)

// Filter defines the basic interface for ticket filters
type Filter interface {
	// Evaluate checks if a ticket matches the filter criteria
	Evaluate(ticket helpdesk.Ticket) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Match is Evaluate with the runtime error surfaced
	Match(ticket helpdesk.Ticket) (bool, error)

	// Expression returns the original filter expression
	Expression() string

	// IsThreadSafe indicates if the filter can be evaluated concurrently
	IsThreadSafe() bool
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Evaluator evaluates filters against tickets
type Evaluator interface {
	// Evaluate returns the tickets matching filter, in input order
	Evaluate(ctx context.Context, filter CompiledFilter, tickets []helpdesk.Ticket) ([]helpdesk.Ticket, error)
}

// WorkerPool defines the interface for concurrent work execution
type WorkerPool interface {
	// Submit submits work to the pool
	Submit(work func()) error

	// Stop gracefully stops the worker pool
	Stop(ctx context.Context) error
}
