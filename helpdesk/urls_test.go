package helpdesk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLs(t *testing.T) {
	urls := DefaultURLs()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "tickets", got: urls.Tickets(), want: "api/v3/requests"},
		{name: "ticket", got: urls.Ticket(42), want: "api/v3/requests/42"},
		{name: "cancel", got: urls.CancelTicket(42), want: "api/v3/requests/42/cancel"},
		{name: "upload", got: urls.UploadAttachment(42), want: "api/v3/requests/42/upload"},
		{name: "notes", got: urls.Notes(42), want: "api/v3/requests/42/notes"},
		{name: "resolutions", got: urls.Resolutions(42), want: "api/v3/requests/42/resolutions"},
		{name: "templates", got: urls.Templates(), want: "api/v3/request_templates"},
		{name: "template", got: urls.Template(7), want: "api/v3/request_templates/7"},
		{name: "categories", got: urls.Categories(), want: "api/v3/categories"},
		{name: "service categories", got: urls.ServiceCategories(), want: "api/v3/service_categories"},
		{name: "subcategories", got: urls.Subcategories(), want: "api/v3/subcategories"},
		{name: "urgencies", got: urls.Urgencies(), want: "api/v3/urgencies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestURLsCustomRoot(t *testing.T) {
	urls := URLs{Root: "sdpapi/v3"}
	assert.Equal(t, "sdpapi/v3/requests/1/notes", urls.Notes(1))
}
