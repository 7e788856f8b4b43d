package helpdesk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Client is a ServiceDesk v3 API client. It keeps no state between calls and
// is safe for concurrent use.
type Client struct {
	transport       Transport
	urls            URLs
	logger          zerolog.Logger
	attachmentField AttachmentField
}

// NewClient creates a client issuing its calls through transport.
func NewClient(transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInvalidConfig)
	}

	c := &Client{
		transport:       transport,
		urls:            DefaultURLs(),
		logger:          zerolog.Nop(),
		attachmentField: AttachmentFieldInput,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.attachmentField.Valid() {
		return nil, fmt.Errorf("%w: unknown attachment field %q", ErrInvalidConfig, c.attachmentField)
	}

	return c, nil
}

// URLs returns the path table the client resolves resources with.
func (c *Client) URLs() URLs {
	return c.urls
}

// do performs a single round trip.
func (c *Client) do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Int("bytes", len(resp.Body)).
		Msg("Helpdesk API round trip")

	return resp, nil
}

// fetchOptional GETs path; a 404 yields (nil, nil).
func fetchOptional[E any](ctx context.Context, c *Client, op, path string) (*E, error) {
	resp, err := c.do(ctx, &Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug().Str("op", op).Str("path", path).Msg("Resource not found")
		return nil, nil
	}
	if err := raiseForStatus(resp); err != nil {
		return nil, err
	}
	return decodeSchema[E](op, resp.Body)
}

// send performs req and decodes a 2xx body into E.
func send[E any](ctx context.Context, c *Client, op string, req *Request) (*E, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := raiseForStatus(resp); err != nil {
		return nil, err
	}
	return decodeSchema[E](op, resp.Body)
}

// list GETs path with filter encoded under input_data.
func list[E any, F ListFilter](ctx context.Context, c *Client, op, path string, filter F) (*E, error) {
	document, err := EncodeListInfo(filter)
	if err != nil {
		return nil, err
	}
	return send[E](ctx, c, op, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  inputData(document),
	})
}

// submit sends payload wrapped as {key: payload} in the input_data form field.
func submit[E any](ctx context.Context, c *Client, op, method, path, key string, payload any) (*E, error) {
	document, err := EncodeEnvelope(key, payload)
	if err != nil {
		return nil, err
	}
	return send[E](ctx, c, op, &Request{
		Method: method,
		Path:   path,
		Form:   inputData(document),
	})
}

// GetTicket returns the ticket, or nil if it does not exist.
func (c *Client) GetTicket(ctx context.Context, id ID) (*Ticket, error) {
	envelope, err := fetchOptional[ticketEnvelope](ctx, c, "get ticket", c.urls.Ticket(id))
	if err != nil || envelope == nil {
		return nil, err
	}
	return &envelope.Request, nil
}

// ListTickets lists tickets matching query.
func (c *Client) ListTickets(ctx context.Context, query TicketQuery) (*TicketList, error) {
	if query == nil {
		return nil, &ValidationError{Op: "list tickets", Reason: "query is required"}
	}
	return list[TicketList](ctx, c, "list tickets", c.urls.Tickets(), query)
}

// CreateTicket creates a ticket.
func (c *Client) CreateTicket(ctx context.Context, payload TicketCreate) (*Ticket, error) {
	envelope, err := submit[ticketEnvelope](ctx, c, "create ticket",
		http.MethodPost, c.urls.Tickets(), "request", payload)
	if err != nil {
		return nil, err
	}
	return &envelope.Request, nil
}

// UpdateTicket applies a partial update. An update with no field set is
// rejected before any request is made.
func (c *Client) UpdateTicket(ctx context.Context, id ID, payload TicketUpdate) (*Ticket, error) {
	if payload.IsEmpty() {
		return nil, &ValidationError{Op: "update ticket", Reason: ErrEmptyUpdate.Error(), Err: ErrEmptyUpdate}
	}

	envelope, err := submit[ticketEnvelope](ctx, c, "update ticket",
		http.MethodPut, c.urls.Ticket(id), "request", payload)
	if err != nil {
		return nil, err
	}
	return &envelope.Request, nil
}

// CancelTicket cancels a ticket. Only the status is checked.
func (c *Client) CancelTicket(ctx context.Context, id ID) error {
	resp, err := c.do(ctx, &Request{Method: http.MethodPut, Path: c.urls.CancelTicket(id)})
	if err != nil {
		return err
	}
	return raiseForStatus(resp)
}

// AttachFile uploads a file to a ticket.
func (c *Client) AttachFile(ctx context.Context, id ID, file FileUpload) (*Attachment, error) {
	if file.Field == "" {
		file.Field = c.attachmentField
	}
	if file.Filename == "" {
		return nil, &ValidationError{Op: "attach file", Reason: "filename is required"}
	}

	envelope, err := send[attachmentEnvelope](ctx, c, "attach file", &Request{
		Method: http.MethodPut,
		Path:   c.urls.UploadAttachment(id),
		File:   &file,
	})
	if err != nil {
		return nil, err
	}
	return &envelope.Attachment, nil
}

// ListCategories lists ticket categories.
func (c *Client) ListCategories(ctx context.Context, filter CategoryFilter) (*CategoryPage, error) {
	return list[CategoryPage](ctx, c, "list categories", c.urls.Categories(), filter)
}

// ListServiceCategories lists service categories.
func (c *Client) ListServiceCategories(ctx context.Context, filter CategoryFilter) (*ServiceCategoryPage, error) {
	return list[ServiceCategoryPage](ctx, c, "list service categories", c.urls.ServiceCategories(), filter)
}

// ListSubcategories lists subcategories.
func (c *Client) ListSubcategories(ctx context.Context, filter SubcategoryFilter) (*SubcategoryPage, error) {
	return list[SubcategoryPage](ctx, c, "list subcategories", c.urls.Subcategories(), filter)
}

// ListTemplates lists request templates.
func (c *Client) ListTemplates(ctx context.Context, filter TemplateFilter) (*TemplatePage, error) {
	return list[TemplatePage](ctx, c, "list templates", c.urls.Templates(), filter)
}

// GetTemplate returns the template, or nil if it does not exist.
func (c *Client) GetTemplate(ctx context.Context, id ID) (*Template, error) {
	envelope, err := fetchOptional[templateEnvelope](ctx, c, "get template", c.urls.Template(id))
	if err != nil || envelope == nil {
		return nil, err
	}
	return &envelope.RequestTemplate, nil
}

// ListUrgencies lists urgencies.
func (c *Client) ListUrgencies(ctx context.Context, filter UrgencyFilter) (*UrgencyPage, error) {
	return list[UrgencyPage](ctx, c, "list urgencies", c.urls.Urgencies(), filter)
}

// AddNote adds a note to a ticket.
func (c *Client) AddNote(ctx context.Context, ticketID ID, payload NoteCreate) (*Note, error) {
	envelope, err := submit[noteEnvelope](ctx, c, "add note",
		http.MethodPost, c.urls.Notes(ticketID), "note", payload)
	if err != nil {
		return nil, err
	}
	return &envelope.Note, nil
}

// GetResolution returns the ticket's resolution, or nil if it has none.
func (c *Client) GetResolution(ctx context.Context, ticketID ID) (*Resolution, error) {
	envelope, err := fetchOptional[resolutionEnvelope](ctx, c, "get resolution", c.urls.Resolutions(ticketID))
	if err != nil || envelope == nil {
		return nil, err
	}
	return &envelope.Resolution, nil
}

// Download fetches a resource such as an attachment's content_url or an
// image referenced from resolution markup. It returns nil on 404.
func (c *Client) Download(ctx context.Context, contentURL string) ([]byte, error) {
	resp, err := c.do(ctx, &Request{Method: http.MethodGet, Path: strings.TrimPrefix(contentURL, "/")})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := raiseForStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Stream opens a resource for reading. The caller must close the returned
// reader. Transports that cannot stream have the body buffered instead.
func (c *Client) Stream(ctx context.Context, contentURL string) (io.ReadCloser, error) {
	req := &Request{Method: http.MethodGet, Path: strings.TrimPrefix(contentURL, "/")}

	streamer, ok := c.transport.(Streamer)
	if !ok {
		resp, err := c.do(ctx, req)
		if err != nil {
			return nil, err
		}
		if err := raiseForStatus(resp); err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(resp.Body)), nil
	}

	resp, err := streamer.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return nil, NewAPIError(resp.StatusCode, body)
	}

	c.logger.Debug().Str("path", req.Path).Int("status", resp.StatusCode).Msg("Streaming helpdesk resource")
	return resp.Body, nil
}
