package filter

import (
	"maps"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/stranadev/helpdesk-client/helpdesk"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	custom     map[string]any
	now        func() time.Time
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[string, *exprFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.customFuncs, funcs)
	}
}

// WithClock replaces time.Now for the date helpers
func WithClock(now func() time.Time) ExprCompilerOption {
	return func(c *exprCompiler) {
		if now != nil {
			c.now = now
		}
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		customFuncs: make(map[string]any),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements CachingCompiler for expr-based filters
type exprCompiler struct {
	customFuncs map[string]any
	cache       *lruCache[string, *exprFilter]
	now         func() time.Time
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Compile against a sample environment so unknown names fail early
	env := newEnvironment(helpdesk.Ticket{}, c.now)
	maps.Copy(env, c.customFuncs)

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		custom:     c.customFuncs,
		now:        c.now,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a ticket. Tickets that fail to
// evaluate do not match.
func (f *exprFilter) Evaluate(ticket helpdesk.Ticket) bool {
	ok, err := f.Match(ticket)
	return err == nil && ok
}

// Match evaluates the filter against a ticket
func (f *exprFilter) Match(ticket helpdesk.Ticket) (bool, error) {
	env := newEnvironment(ticket, f.now)
	maps.Copy(env, f.custom)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, TicketID: ticket.ID, Err: err}
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// IsThreadSafe indicates that expr filters are thread-safe
func (f *exprFilter) IsThreadSafe() bool {
	return true
}

// newEnvironment flattens a ticket into the names an expression can use
func newEnvironment(ticket helpdesk.Ticket, now func() time.Time) map[string]any {
	env := make(map[string]any, 48)
	addHelperFunctions(env, now)

	var technician, urgency string
	if ticket.Technician != nil {
		technician = ticket.Technician.DisplayName()
	}
	if ticket.Urgency != nil {
		urgency = ticket.Urgency.Name
	}
	var dueBy time.Time
	if ticket.DueByTime != nil {
		dueBy = ticket.DueByTime.Value
	}

	env["Ticket"] = ticket
	env["ID"] = int64(ticket.ID)
	env["Subject"] = ticket.Subject
	env["Description"] = ticket.Description
	env["Status"] = ticket.Status.Name
	env["Group"] = ticket.Group.Name
	env["Requester"] = ticket.Requester.DisplayName()
	env["RequesterEmail"] = ticket.Requester.Email
	env["Technician"] = technician
	env["Urgency"] = urgency
	env["Created"] = ticket.CreatedTime.Value
	env["DueBy"] = dueBy
	env["AttachmentCount"] = len(ticket.Attachments)

	// Ticket helpers
	env["statusIs"] = func(status string) bool {
		return strings.EqualFold(ticket.Status.Name, status)
	}
	env["inGroup"] = func(group string) bool {
		return strings.EqualFold(ticket.Group.Name, group)
	}
	env["requestedBy"] = func(who string) bool {
		return strings.EqualFold(ticket.Requester.Name, who) || strings.EqualFold(ticket.Requester.Email, who)
	}
	env["assignedTo"] = func(who string) bool {
		if ticket.Technician == nil {
			return false
		}
		return strings.EqualFold(ticket.Technician.Name, who) || strings.EqualFold(ticket.Technician.Email, who)
	}
	env["hasTechnician"] = func() bool {
		return ticket.Technician != nil
	}
	env["hasAttachment"] = func(name string) bool {
		for _, a := range ticket.Attachments {
			if strings.EqualFold(a.Name, name) {
				return true
			}
		}
		return false
	}
	env["overdue"] = func() bool {
		return ticket.IsOverdue(now())
	}

	return env
}

// addHelperFunctions adds the ticket-independent helpers to env
func addHelperFunctions(env map[string]any, now func() time.Time) {
	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(now().Sub(t).Hours() / 24)
	}
	env["hoursSince"] = func(t time.Time) int {
		return int(now().Sub(t).Hours())
	}
	env["daysAgo"] = func(days int) time.Time {
		return now().AddDate(0, 0, -days)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// Case-insensitive string helpers; contains, startsWith and endsWith are
	// expr operators
	env["containsFold"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWithFold"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWithFold"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Current time
	env["now"] = now
}
