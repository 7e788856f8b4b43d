package helpdesk

import (
	"context"
	"io"
)

// API defines the blocking helpdesk operations
type API interface {
	// GetTicket returns a ticket, or nil when it does not exist
	GetTicket(ctx context.Context, id ID) (*Ticket, error)

	// ListTickets lists tickets with offset, page or criteria filters
	ListTickets(ctx context.Context, query TicketQuery) (*TicketList, error)

	CreateTicket(ctx context.Context, payload TicketCreate) (*Ticket, error)
	UpdateTicket(ctx context.Context, id ID, payload TicketUpdate) (*Ticket, error)
	CancelTicket(ctx context.Context, id ID) error
	AttachFile(ctx context.Context, id ID, file FileUpload) (*Attachment, error)

	AddNote(ctx context.Context, ticketID ID, payload NoteCreate) (*Note, error)

	// GetResolution returns the resolution, or nil when none was recorded
	GetResolution(ctx context.Context, ticketID ID) (*Resolution, error)

	CatalogAPI
	Downloader
}

// CatalogAPI lists the reference data tickets point at
type CatalogAPI interface {
	ListCategories(ctx context.Context, filter CategoryFilter) (*CategoryPage, error)
	ListServiceCategories(ctx context.Context, filter CategoryFilter) (*ServiceCategoryPage, error)
	ListSubcategories(ctx context.Context, filter SubcategoryFilter) (*SubcategoryPage, error)
	ListUrgencies(ctx context.Context, filter UrgencyFilter) (*UrgencyPage, error)
	ListTemplates(ctx context.Context, filter TemplateFilter) (*TemplatePage, error)

	// GetTemplate returns a template, or nil when it does not exist
	GetTemplate(ctx context.Context, id ID) (*Template, error)
}

// Downloader fetches attachment content and inline images
type Downloader interface {
	Download(ctx context.Context, contentURL string) ([]byte, error)
	Stream(ctx context.Context, contentURL string) (io.ReadCloser, error)
}

var _ API = (*Client)(nil)
