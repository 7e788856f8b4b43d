package helpdesk

import "fmt"

// DefaultAPIRoot is the API-version root every path is relative to.
const DefaultAPIRoot = "api/v3"

// URLs maps resources to paths relative to the portal base URL.
type URLs struct {
	Root string
}

// DefaultURLs returns the v3 path table.
func DefaultURLs() URLs {
	return URLs{Root: DefaultAPIRoot}
}

// Tickets is the ticket collection.
func (u URLs) Tickets() string {
	return u.Root + "/requests"
}

// Ticket is a single ticket.
func (u URLs) Ticket(id ID) string {
	return fmt.Sprintf("%s/%d", u.Tickets(), id)
}

// CancelTicket cancels a ticket.
func (u URLs) CancelTicket(id ID) string {
	return u.Ticket(id) + "/cancel"
}

// UploadAttachment attaches a file to a ticket.
func (u URLs) UploadAttachment(id ID) string {
	return u.Ticket(id) + "/upload"
}

// Notes is the note collection of a ticket.
func (u URLs) Notes(id ID) string {
	return u.Ticket(id) + "/notes"
}

// Resolutions is the resolution of a ticket.
func (u URLs) Resolutions(id ID) string {
	return u.Ticket(id) + "/resolutions"
}

// Templates is the request template collection.
func (u URLs) Templates() string {
	return u.Root + "/request_templates"
}

// Template is a single request template.
func (u URLs) Template(id ID) string {
	return fmt.Sprintf("%s/%d", u.Templates(), id)
}

// Categories is the category collection.
func (u URLs) Categories() string {
	return u.Root + "/categories"
}

// ServiceCategories is the service category collection.
func (u URLs) ServiceCategories() string {
	return u.Root + "/service_categories"
}

// Subcategories is the subcategory collection.
func (u URLs) Subcategories() string {
	return u.Root + "/subcategories"
}

// Urgencies is the urgency collection.
func (u URLs) Urgencies() string {
	return u.Root + "/urgencies"
}
