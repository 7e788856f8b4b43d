package helpdesk

import "github.com/rs/zerolog"

// Option configures a Client.
type Option func(*Client)

// WithURLs replaces the default v3 path table.
func WithURLs(urls URLs) Option {
	return func(c *Client) {
		c.urls = urls
	}
}

// WithLogger sets the logger round trips are reported to.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithAttachmentField sets the multipart field used when a FileUpload does
// not name one. Portals older than 14.8 expect AttachmentFieldLegacy.
func WithAttachmentField(field AttachmentField) Option {
	return func(c *Client) {
		if field != "" {
			c.attachmentField = field
		}
	}
}
