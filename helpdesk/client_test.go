package helpdesk

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ticketJSON = `{
	"id": "101",
	"subject": "VPN is down",
	"description": "<p>Cannot connect</p>",
	"created_time": {"display_value": "Oct 1, 2026 10:00 AM", "value": "1790848800000"},
	"group": {"name": "Network"},
	"status": {"name": "Open"},
	"requester": {"id": "7", "name": "Jane Doe", "email_id": "jane@example.com"},
	"urgency": {"id": "2", "name": "High"}
}`

const attachmentJSON = `{
	"id": "55",
	"name": "screenshot.png",
	"content_url": "/api/v3/requests/101/attachments/55/download",
	"content_type": "image/png",
	"attached_by": {"id": "7", "name": "Jane Doe"},
	"attached_on": {"display_value": "Oct 1, 2026 10:05 AM", "value": "1790849100000"},
	"size": {"display_value": "12.5 KB", "value": "12800"}
}`

// fakeTransport records every request and answers with handler.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []*Request
	handler func(req *Request) (*Response, error)
}

func (f *fakeTransport) Do(_ context.Context, req *Request) (*Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.handler(req)
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) lastCall() *Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func respondWith(status int, body string) *fakeTransport {
	return &fakeTransport{
		handler: func(*Request) (*Response, error) {
			return &Response{StatusCode: status, Body: []byte(body)}, nil
		},
	}
}

func newTestClient(t *testing.T, transport Transport, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(transport, opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name      string
		transport Transport
		opts      []Option
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "valid config",
			transport: respondWith(http.StatusOK, `{}`),
		},
		{
			name:    "missing transport",
			wantErr: true,
			errMsg:  "transport is required",
		},
		{
			name:      "unknown attachment field",
			transport: respondWith(http.StatusOK, `{}`),
			opts:      []Option{WithAttachmentField("attachment")},
			wantErr:   true,
			errMsg:    "unknown attachment field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.transport, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultURLs(), client.URLs())
			assert.Equal(t, AttachmentFieldInput, client.attachmentField)
		})
	}
}

func TestClientOptions(t *testing.T) {
	client := newTestClient(t, respondWith(http.StatusOK, `{}`),
		WithURLs(URLs{Root: "custom/v3"}),
		WithLogger(zerolog.New(io.Discard)),
		WithAttachmentField(AttachmentFieldLegacy),
		WithAttachmentField(""),
	)

	assert.Equal(t, "custom/v3", client.URLs().Root)
	assert.Equal(t, AttachmentFieldLegacy, client.attachmentField)
}

func TestGetTicket(t *testing.T) {
	transport := respondWith(http.StatusOK, `{"request":`+ticketJSON+`}`)
	client := newTestClient(t, transport)

	ticket, err := client.GetTicket(context.Background(), 101)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, ID(101), ticket.ID)
	assert.Equal(t, "VPN is down", ticket.Subject)

	req := transport.lastCall()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "api/v3/requests/101", req.Path)
}

func TestAbsentOnNotFound(t *testing.T) {
	ctx := context.Background()
	notFound := `{"response_status":{"status_code":4000,"status":"failed"}}`

	tests := []struct {
		name string
		call func(c *Client) (bool, error)
	}{
		{
			name: "get ticket",
			call: func(c *Client) (bool, error) {
				v, err := c.GetTicket(ctx, 1)
				return v == nil, err
			},
		},
		{
			name: "get template",
			call: func(c *Client) (bool, error) {
				v, err := c.GetTemplate(ctx, 1)
				return v == nil, err
			},
		},
		{
			name: "get resolution",
			call: func(c *Client) (bool, error) {
				v, err := c.GetResolution(ctx, 1)
				return v == nil, err
			},
		},
		{
			name: "download",
			call: func(c *Client) (bool, error) {
				v, err := c.Download(ctx, "/api/v3/requests/1/attachments/2/download")
				return v == nil, err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respondWith(http.StatusNotFound, notFound))
			absent, err := tt.call(client)
			require.NoError(t, err)
			assert.True(t, absent)
		})
	}
}

func TestListTicketsRaisesOnNotFound(t *testing.T) {
	client := newTestClient(t, respondWith(http.StatusNotFound, `{"response_status":[{"status_code":4000}]}`))

	list, err := client.ListTickets(context.Background(), TicketFilter{Pagination: Pagination{Limit: 10}})
	assert.Nil(t, list)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
}

func TestListTicketsEncodesQuery(t *testing.T) {
	transport := respondWith(http.StatusOK, `{
		"requests": [`+ticketJSON+`],
		"list_info": {"row_count": 10, "start_index": 0, "has_more_rows": false}
	}`)
	client := newTestClient(t, transport)

	list, err := client.ListTickets(context.Background(), TicketFilter{Pagination: Pagination{Limit: 10, Offset: 0}})
	require.NoError(t, err)
	require.Len(t, list.Requests, 1)
	require.NotNil(t, list.ListInfo)
	assert.False(t, list.ListInfo.HasNext)

	req := transport.lastCall()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "api/v3/requests", req.Path)
	assert.Nil(t, req.Form)
	assert.JSONEq(t, `{"list_info":{"row_count":10,"start_index":0}}`, req.Query.Get(InputDataKey))
}

func TestListTicketsRequiresQuery(t *testing.T) {
	transport := respondWith(http.StatusOK, `{}`)
	client := newTestClient(t, transport)

	_, err := client.ListTickets(context.Background(), nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, transport.callCount())
}

func TestCreateTicket(t *testing.T) {
	transport := respondWith(http.StatusCreated, `{"request":`+ticketJSON+`}`)
	client := newTestClient(t, transport)

	ticket, err := client.CreateTicket(context.Background(), TicketCreate{
		Subject:     "VPN is down",
		Description: "Cannot connect",
		Requester:   RequesterRef{Email: Set("jane@example.com")},
		Urgency:     IdentRef{ID: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, ID(101), ticket.ID)

	req := transport.lastCall()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "api/v3/requests", req.Path)
	assert.JSONEq(t, `{"request":{
		"subject": "VPN is down",
		"description": "Cannot connect",
		"requester": {"email_id": "jane@example.com"},
		"urgency": {"id": 2}
	}}`, req.Form.Get(InputDataKey))
}

func TestUpdateTicket(t *testing.T) {
	transport := respondWith(http.StatusOK, `{"request":`+ticketJSON+`}`)
	client := newTestClient(t, transport)

	_, err := client.UpdateTicket(context.Background(), 101, TicketUpdate{Subject: Set("VPN is down")})
	require.NoError(t, err)

	req := transport.lastCall()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "api/v3/requests/101", req.Path)
	assert.JSONEq(t, `{"request":{"subject":"VPN is down"}}`, req.Form.Get(InputDataKey))
}

func TestUpdateTicketRejectsEmptyPayload(t *testing.T) {
	transport := respondWith(http.StatusOK, `{"request":`+ticketJSON+`}`)
	client := newTestClient(t, transport)

	ticket, err := client.UpdateTicket(context.Background(), 101, TicketUpdate{})
	assert.Nil(t, ticket)
	require.ErrorIs(t, err, ErrEmptyUpdate)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "update ticket", vErr.Op)
	assert.Equal(t, 0, transport.callCount())
}

func TestCancelTicket(t *testing.T) {
	transport := respondWith(http.StatusOK, `{"response_status":{"status_code":2000,"status":"success"}}`)
	client := newTestClient(t, transport)

	require.NoError(t, client.CancelTicket(context.Background(), 101))
	req := transport.lastCall()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "api/v3/requests/101/cancel", req.Path)

	client = newTestClient(t, respondWith(http.StatusBadRequest, `{"response_status":{"status":"failed"}}`))
	err := client.CancelTicket(context.Background(), 101)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestAttachFile(t *testing.T) {
	tests := []struct {
		name      string
		opts      []Option
		field     AttachmentField
		wantField AttachmentField
	}{
		{name: "default field", wantField: AttachmentFieldInput},
		{name: "configured legacy field", opts: []Option{WithAttachmentField(AttachmentFieldLegacy)}, wantField: AttachmentFieldLegacy},
		{name: "upload overrides client", field: AttachmentFieldLegacy, wantField: AttachmentFieldLegacy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := respondWith(http.StatusOK, `{"attachment":`+attachmentJSON+`}`)
			client := newTestClient(t, transport, tt.opts...)

			attachment, err := client.AttachFile(context.Background(), 101, FileUpload{
				Filename:    "screenshot.png",
				ContentType: "image/png",
				Content:     strings.NewReader("png-bytes"),
				Field:       tt.field,
			})
			require.NoError(t, err)
			assert.Equal(t, ID(55), attachment.ID)
			assert.Equal(t, int64(12800), attachment.Size.Value)

			req := transport.lastCall()
			assert.Equal(t, http.MethodPut, req.Method)
			assert.Equal(t, "api/v3/requests/101/upload", req.Path)
			require.NotNil(t, req.File)
			assert.Equal(t, tt.wantField, req.File.Field)
			assert.Equal(t, "screenshot.png", req.File.Filename)
		})
	}
}

func TestAttachFileRequiresFilename(t *testing.T) {
	transport := respondWith(http.StatusOK, `{}`)
	client := newTestClient(t, transport)

	_, err := client.AttachFile(context.Background(), 101, FileUpload{Content: strings.NewReader("x")})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, transport.callCount())
}

func TestCatalogListings(t *testing.T) {
	ctx := context.Background()
	listInfo := `"list_info":{"row_count":100,"start_index":0,"has_more_rows":false}`

	tests := []struct {
		name     string
		body     string
		wantPath string
		call     func(c *Client) (int, error)
	}{
		{
			name:     "categories",
			body:     `{` + listInfo + `,"categories":[{"id":"1","name":"Hardware","deleted":false}]}`,
			wantPath: "api/v3/categories",
			call: func(c *Client) (int, error) {
				page, err := c.ListCategories(ctx, CategoryFilter{Pagination: Pagination{Limit: 100}})
				if err != nil {
					return 0, err
				}
				return len(page.Categories), nil
			},
		},
		{
			name:     "service categories",
			body:     `{` + listInfo + `,"service_categories":[{"id":"4","name":"Access"}]}`,
			wantPath: "api/v3/service_categories",
			call: func(c *Client) (int, error) {
				page, err := c.ListServiceCategories(ctx, CategoryFilter{Pagination: Pagination{Limit: 100}})
				if err != nil {
					return 0, err
				}
				return len(page.ServiceCategories), nil
			},
		},
		{
			name:     "subcategories",
			body:     `{` + listInfo + `,"subcategories":[{"id":"3","name":"Laptop","category":{"id":"1","name":"Hardware"}}]}`,
			wantPath: "api/v3/subcategories",
			call: func(c *Client) (int, error) {
				page, err := c.ListSubcategories(ctx, SubcategoryFilter{Pagination: Pagination{Limit: 100}})
				if err != nil {
					return 0, err
				}
				return len(page.Subcategories), nil
			},
		},
		{
			name:     "urgencies",
			body:     `{` + listInfo + `,"urgencies":[{"id":"2","name":"High"},{"id":"3","name":"Low"}]}`,
			wantPath: "api/v3/urgencies",
			call: func(c *Client) (int, error) {
				page, err := c.ListUrgencies(ctx, UrgencyFilter{Pagination: Pagination{Limit: 100}})
				if err != nil {
					return 0, err
				}
				return len(page.Urgencies), nil
			},
		},
		{
			name:     "templates",
			body:     `{` + listInfo + `,"request_templates":[{"id":"5","name":"Default Request","is_default_template":true}]}`,
			wantPath: "api/v3/request_templates",
			call: func(c *Client) (int, error) {
				page, err := c.ListTemplates(ctx, TemplateFilter{Pagination: Pagination{Limit: 100}})
				if err != nil {
					return 0, err
				}
				return len(page.RequestTemplates), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := respondWith(http.StatusOK, tt.body)
			client := newTestClient(t, transport)

			n, err := tt.call(client)
			require.NoError(t, err)
			assert.Positive(t, n)

			req := transport.lastCall()
			assert.Equal(t, tt.wantPath, req.Path)
			assert.JSONEq(t, `{"list_info":{"row_count":100,"start_index":0}}`, req.Query.Get(InputDataKey))
		})
	}
}

func TestGetTemplate(t *testing.T) {
	const template = `{"id":"5","name":"Default Request","is_service_template":false}`

	tests := []struct {
		name string
		body string
	}{
		{name: "bare object", body: template},
		{name: "request_template wrapper", body: `{"request_template":` + template + `}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := respondWith(http.StatusOK, tt.body)
			client := newTestClient(t, transport)

			tpl, err := client.GetTemplate(context.Background(), 5)
			require.NoError(t, err)
			require.NotNil(t, tpl)
			assert.Equal(t, ID(5), tpl.ID)
			assert.Equal(t, "Default Request", tpl.Name)
			assert.False(t, tpl.IsServiceTemplate)
			assert.Equal(t, "api/v3/request_templates/5", transport.lastCall().Path)
		})
	}
}

func TestAddNote(t *testing.T) {
	transport := respondWith(http.StatusCreated, `{"note":{
		"id": "900",
		"description": "Called the user",
		"added_by": {"id": "3", "name": "Tech"},
		"added_time": {"display_value": "Oct 1, 2026 11:00 AM", "value": "1790852400000"},
		"show_to_requester": true
	}}`)
	client := newTestClient(t, transport)

	note, err := client.AddNote(context.Background(), 101, NoteCreate{Description: "Called the user", ShowToRequester: true})
	require.NoError(t, err)
	assert.Equal(t, ID(900), note.ID)
	assert.True(t, note.ShowToRequester)

	req := transport.lastCall()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "api/v3/requests/101/notes", req.Path)
	assert.JSONEq(t, `{"note":{"description":"Called the user","show_to_requester":true,
		"mark_first_response":false,"add_to_linked_requests":false}}`, req.Form.Get(InputDataKey))
}

func TestGetResolution(t *testing.T) {
	transport := respondWith(http.StatusOK, `{"resolution":{
		"content": "<p>Hello <b>World</b></p>",
		"submitted_by": {"id": "3", "name": "Tech"},
		"submitted_on": {"display_value": "Oct 2, 2026", "value": "1790935200000"},
		"resolution_attachments": [`+attachmentJSON+`]
	}}`)
	client := newTestClient(t, transport)

	resolution, err := client.GetResolution(context.Background(), 101)
	require.NoError(t, err)
	require.NotNil(t, resolution)
	assert.Equal(t, "Hello World", resolution.Content)
	require.Len(t, resolution.Attachments, 1)
	assert.Equal(t, "api/v3/requests/101/resolutions", transport.lastCall().Path)
}

func TestDownload(t *testing.T) {
	transport := respondWith(http.StatusOK, "file-bytes")
	client := newTestClient(t, transport)

	data, err := client.Download(context.Background(), "/api/v3/requests/101/attachments/55/download")
	require.NoError(t, err)
	assert.Equal(t, []byte("file-bytes"), data)
	assert.Equal(t, "api/v3/requests/101/attachments/55/download", transport.lastCall().Path)

	client = newTestClient(t, respondWith(http.StatusForbidden, "denied"))
	_, err = client.Download(context.Background(), "x")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsUnauthorized())
}

func TestStreamBuffersWithoutStreamer(t *testing.T) {
	client := newTestClient(t, respondWith(http.StatusOK, "streamed"))

	rc, err := client.Stream(context.Background(), "/inline/image.png")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "streamed", string(data))

	client = newTestClient(t, respondWith(http.StatusNotFound, ""))
	_, err = client.Stream(context.Background(), "/inline/missing.png")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
}

func TestTransportErrorsPassThrough(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")
	client := newTestClient(t, &fakeTransport{
		handler: func(*Request) (*Response, error) { return nil, netErr },
	})

	_, err := client.GetTicket(context.Background(), 1)
	assert.Same(t, netErr, err)

	err = client.CancelTicket(context.Background(), 1)
	assert.Same(t, netErr, err)
}

func TestResponseDecodingFailures(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		client := newTestClient(t, respondWith(http.StatusOK, `{"request":`))
		_, err := client.GetTicket(context.Background(), 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode get ticket response")
	})

	t.Run("missing required field", func(t *testing.T) {
		client := newTestClient(t, respondWith(http.StatusOK, `{"request":{"id":"1","subject":"no status"}}`))
		_, err := client.GetTicket(context.Background(), 1)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "get ticket", vErr.Op)
	})

	t.Run("missing requester id", func(t *testing.T) {
		body := `{"request":{"id":"1","group":{"name":"G"},"status":{"name":"Open"},"requester":{"name":"Jane"}}}`
		client := newTestClient(t, respondWith(http.StatusOK, body))
		_, err := client.GetTicket(context.Background(), 1)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "get ticket", vErr.Op)
		assert.Contains(t, vErr.Reason, `"id"`)
	})
}

func TestGetTicketAcceptsZeroActorID(t *testing.T) {
	body := `{"request":{
		"id": "0",
		"created_time": {"display_value": "Oct 1, 2026 10:00 AM", "value": "1790848800000"},
		"group": {"name": "Network"},
		"status": {"name": "Open"},
		"requester": {"id": "0", "name": "System"}
	}}`
	client := newTestClient(t, respondWith(http.StatusOK, body))

	ticket, err := client.GetTicket(context.Background(), 0)
	require.NoError(t, err)
	require.NotNil(t, ticket)
	assert.Equal(t, ID(0), ticket.ID)
	assert.Equal(t, ID(0), ticket.Requester.ID)
	assert.Equal(t, "System", ticket.Requester.Name)
}
