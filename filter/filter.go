// Package filter narrows ticket lists locally with expr-lang expressions.
//
// Expressions see the ticket's flattened fields (Subject, Status, Group,
// Requester, RequesterEmail, Technician, Urgency, Created, DueBy,
// AttachmentCount) and helpers such as statusIs, requestedBy, overdue and
// daysSince:
//
//	statusIs("open") and daysSince(Created) > 7 and not hasTechnician()
package filter

import (
	"context"
	"strings"

	"github.com/stranadev/helpdesk-client/helpdesk"
)

var defaultCompiler = NewExprCompiler(WithCache(100))

// Compile compiles expression with the shared caching compiler
func Compile(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}

// Apply returns the tickets matching expression. An empty expression
// matches everything.
func Apply(ctx context.Context, expression string, tickets []helpdesk.Ticket) ([]helpdesk.Ticket, error) {
	if strings.TrimSpace(expression) == "" {
		return tickets, nil
	}

	filter, err := Compile(expression)
	if err != nil {
		return nil, err
	}

	evaluator := NewConcurrentEvaluator()
	defer evaluator.Stop(context.Background())

	return evaluator.Evaluate(ctx, filter, tickets)
}

// ApplyAll returns the tickets matching every expression
func ApplyAll(ctx context.Context, expressions []string, tickets []helpdesk.Ticket) ([]helpdesk.Ticket, error) {
	parts := make([]string, 0, len(expressions))
	for _, e := range expressions {
		if e = strings.TrimSpace(e); e != "" {
			parts = append(parts, "("+e+")")
		}
	}
	return Apply(ctx, strings.Join(parts, " and "), tickets)
}
