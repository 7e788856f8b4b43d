package helpdesk

import (
	"context"
	"io"
)

// Future is the pending result of a call started by AsyncClient.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn in its own goroutine and returns a future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn()
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the call completes or ctx is done. Returning early on
// ctx does not stop the call; cancel the context the call was started with
// for that.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AsyncClient exposes the Client operations as futures. Each call starts one
// goroutine performing a single round trip through the wrapped Client.
type AsyncClient struct {
	client *Client
}

// NewAsyncClient wraps client.
func NewAsyncClient(client *Client) *AsyncClient {
	return &AsyncClient{client: client}
}

// Client returns the blocking client behind a.
func (a *AsyncClient) Client() *Client {
	return a.client
}

func (a *AsyncClient) GetTicket(ctx context.Context, id ID) *Future[*Ticket] {
	return Go(func() (*Ticket, error) { return a.client.GetTicket(ctx, id) })
}

func (a *AsyncClient) ListTickets(ctx context.Context, query TicketQuery) *Future[*TicketList] {
	return Go(func() (*TicketList, error) { return a.client.ListTickets(ctx, query) })
}

func (a *AsyncClient) CreateTicket(ctx context.Context, payload TicketCreate) *Future[*Ticket] {
	return Go(func() (*Ticket, error) { return a.client.CreateTicket(ctx, payload) })
}

func (a *AsyncClient) UpdateTicket(ctx context.Context, id ID, payload TicketUpdate) *Future[*Ticket] {
	return Go(func() (*Ticket, error) { return a.client.UpdateTicket(ctx, id, payload) })
}

func (a *AsyncClient) CancelTicket(ctx context.Context, id ID) *Future[struct{}] {
	return Go(func() (struct{}, error) { return struct{}{}, a.client.CancelTicket(ctx, id) })
}

func (a *AsyncClient) AttachFile(ctx context.Context, id ID, file FileUpload) *Future[*Attachment] {
	return Go(func() (*Attachment, error) { return a.client.AttachFile(ctx, id, file) })
}

func (a *AsyncClient) ListCategories(ctx context.Context, filter CategoryFilter) *Future[*CategoryPage] {
	return Go(func() (*CategoryPage, error) { return a.client.ListCategories(ctx, filter) })
}

func (a *AsyncClient) ListServiceCategories(ctx context.Context, filter CategoryFilter) *Future[*ServiceCategoryPage] {
	return Go(func() (*ServiceCategoryPage, error) { return a.client.ListServiceCategories(ctx, filter) })
}

func (a *AsyncClient) ListSubcategories(ctx context.Context, filter SubcategoryFilter) *Future[*SubcategoryPage] {
	return Go(func() (*SubcategoryPage, error) { return a.client.ListSubcategories(ctx, filter) })
}

func (a *AsyncClient) ListTemplates(ctx context.Context, filter TemplateFilter) *Future[*TemplatePage] {
	return Go(func() (*TemplatePage, error) { return a.client.ListTemplates(ctx, filter) })
}

func (a *AsyncClient) GetTemplate(ctx context.Context, id ID) *Future[*Template] {
	return Go(func() (*Template, error) { return a.client.GetTemplate(ctx, id) })
}

func (a *AsyncClient) ListUrgencies(ctx context.Context, filter UrgencyFilter) *Future[*UrgencyPage] {
	return Go(func() (*UrgencyPage, error) { return a.client.ListUrgencies(ctx, filter) })
}

func (a *AsyncClient) AddNote(ctx context.Context, ticketID ID, payload NoteCreate) *Future[*Note] {
	return Go(func() (*Note, error) { return a.client.AddNote(ctx, ticketID, payload) })
}

func (a *AsyncClient) GetResolution(ctx context.Context, ticketID ID) *Future[*Resolution] {
	return Go(func() (*Resolution, error) { return a.client.GetResolution(ctx, ticketID) })
}

func (a *AsyncClient) Download(ctx context.Context, contentURL string) *Future[[]byte] {
	return Go(func() ([]byte, error) { return a.client.Download(ctx, contentURL) })
}

func (a *AsyncClient) Stream(ctx context.Context, contentURL string) *Future[io.ReadCloser] {
	return Go(func() (io.ReadCloser, error) { return a.client.Stream(ctx, contentURL) })
}
