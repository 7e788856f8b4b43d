package helpdesk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
const epochMillisThreshold = 20_000_000_000

// DateTime pairs the display string the upstream renders in the portal's
// timezone with the machine-readable instant. DisplayValue is passed through
// untouched and never parsed.
type DateTime struct {
	DisplayValue string
	Value        time.Time `validate:"required"`
}

type wireDateTime struct {
	DisplayValue string          `json:"display_value"`
	Value        json.RawMessage `json:"value"`
}

// MarshalJSON implements json.Marshaler. The instant is written as epoch
// milliseconds in a string, matching the upstream.
func (d DateTime) MarshalJSON() ([]byte, error) {
	value, err := json.Marshal(strconv.FormatInt(d.Value.UnixMilli(), 10))
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireDateTime{DisplayValue: d.DisplayValue, Value: value})
}

// UnmarshalJSON implements json.Unmarshaler. value may be epoch seconds or
// milliseconds (string or number) or an RFC 3339 timestamp.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	var aux wireDateTime
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	instant, err := parseInstant(aux.Value)
	if err != nil {
		return fmt.Errorf("invalid datetime value: %w", err)
	}

	d.DisplayValue = aux.DisplayValue
	d.Value = instant
	return nil
}

func (d DateTime) String() string {
	return d.DisplayValue
}

func parseInstant(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return time.Time{}, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return time.Time{}, err
		}
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if n > epochMillisThreshold || n < -epochMillisThreshold {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}

	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FileSize pairs a display string ("12.5 KB") with the size in bytes.
type FileSize struct {
	DisplayValue string
	Value        int64
}

type wireFileSize struct {
	DisplayValue string          `json:"display_value"`
	Value        json.RawMessage `json:"value"`
}

// MarshalJSON implements json.Marshaler
func (s FileSize) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireFileSize{
		DisplayValue: s.DisplayValue,
		Value:        json.RawMessage(strconv.FormatInt(s.Value, 10)),
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (s *FileSize) UnmarshalJSON(data []byte) error {
	var aux wireFileSize
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	n, err := decodeFlexInt(aux.Value)
	if err != nil {
		return fmt.Errorf("invalid file size: %w", err)
	}

	s.DisplayValue = aux.DisplayValue
	s.Value = n
	return nil
}

// Person is an actor denormalized into a response: a requester, technician,
// uploader, note author or resolution submitter.
type Person struct {
	ID    ID     `json:"id"`
	Email string `json:"email_id,omitempty"`
	Phone string `json:"phone,omitempty"`
	Name  string `json:"name,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. The email is read from
// email_id, or from email when email_id is absent.
func (p *Person) UnmarshalJSON(data []byte) error {
	type plain Person
	return decodeEntity(data, &personFields, (*plain)(p))
}

// DisplayName returns the best available label for the person.
func (p *Person) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		return p.Email
	}
	return "#" + p.ID.String()
}

// NameRef is a reference the upstream renders by name only (status, group).
type NameRef struct {
	Name string `json:"name"`
}

// UnmarshalJSON implements json.Unmarshaler
func (n *NameRef) UnmarshalJSON(data []byte) error {
	type plain NameRef
	return decodeEntity(data, &nameRefFields, (*plain)(n))
}

// ShortRef is a compact id + name reference.
type ShortRef struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON implements json.Unmarshaler
func (r *ShortRef) UnmarshalJSON(data []byte) error {
	type plain ShortRef
	return decodeEntity(data, &shortRefFields, (*plain)(r))
}

// Ticket is a helpdesk support case ("request" on the wire).
type Ticket struct {
	ID          ID           `json:"id"`
	Subject     string       `json:"subject,omitempty"`
	Description string       `json:"description,omitempty"`
	CreatedTime DateTime     `json:"created_time"`
	DueByTime   *DateTime    `json:"due_by_time,omitempty"`
	Group       NameRef      `json:"group"`
	Status      NameRef      `json:"status"`
	Requester   Person       `json:"requester"`
	Technician  *Person      `json:"technician,omitempty"`
	Attachments []Attachment `json:"attachments" validate:"dive"`
	Urgency     *ShortRef    `json:"urgency,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. Attachments default to an
// empty list.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	type plain Ticket
	if err := decodeEntity(data, &ticketFields, (*plain)(t)); err != nil {
		return err
	}
	if t.Attachments == nil {
		t.Attachments = []Attachment{}
	}
	return nil
}

// IsOverdue reports whether the ticket has a due date before now.
func (t *Ticket) IsOverdue(now time.Time) bool {
	return t.DueByTime != nil && !t.DueByTime.Value.IsZero() && t.DueByTime.Value.Before(now)
}

// TicketList is the response of the ticket collection endpoint.
type TicketList struct {
	Requests []Ticket  `json:"requests" validate:"dive"`
	ListInfo *PageInfo `json:"list_info,omitempty"`
}

// Category is a ticket category or service category.
type Category struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDeleted   bool   `json:"deleted"`
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	return decodeEntity(data, &categoryFields, (*plain)(c))
}

// Subcategory belongs to a Category.
type Subcategory struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	IsDeleted   bool     `json:"deleted"`
	Category    ShortRef `json:"category"`
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Subcategory) UnmarshalJSON(data []byte) error {
	type plain Subcategory
	return decodeEntity(data, &subcategoryFields, (*plain)(s))
}

// Urgency is a ticket urgency level.
type Urgency struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDeleted   bool   `json:"deleted"`
}

// UnmarshalJSON implements json.Unmarshaler
func (u *Urgency) UnmarshalJSON(data []byte) error {
	type plain Urgency
	return decodeEntity(data, &urgencyFields, (*plain)(u))
}

// Template is a request template.
type Template struct {
	ID                ID     `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	IsDeleted         bool   `json:"deleted"`
	IsServiceTemplate bool   `json:"is_service_template"`
	IsEnabled         bool   `json:"is_enabled"`
	Inactive          bool   `json:"inactive"`
	IsDefaultTemplate bool   `json:"is_default_template"`
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Template) UnmarshalJSON(data []byte) error {
	type plain Template
	return decodeEntity(data, &templateFields, (*plain)(t))
}

// Attachment is a file attached to a ticket or resolution.
type Attachment struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	ContentURL  string   `json:"content_url"`
	Description string   `json:"description,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
	AttachedBy  Person   `json:"attached_by"`
	AttachedOn  DateTime `json:"attached_on"`
	Size        FileSize `json:"size"`
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Attachment) UnmarshalJSON(data []byte) error {
	type plain Attachment
	return decodeEntity(data, &attachmentFields, (*plain)(a))
}

// Note is a conversation entry added to a ticket.
type Note struct {
	ID              ID       `json:"id"`
	Description     string   `json:"description"`
	AddedBy         Person   `json:"added_by"`
	AddedTime       DateTime `json:"added_time"`
	ShowToRequester bool     `json:"show_to_requester"`
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	return decodeEntity(data, &noteFields, (*plain)(n))
}

// Resolution is the resolution a technician recorded on a ticket.
//
// Content is RawContent with anything matching <...> removed. The pass is a
// plain regular expression: it does not decode entities and does not
// understand nested or malformed markup, so `a < b > c` also loses text.
type Resolution struct {
	Content     string       `json:"-"`
	RawContent  string       `json:"content"`
	Attachments []Attachment `json:"resolution_attachments" validate:"dive"`
	SubmittedBy Person       `json:"submitted_by"`
	SubmittedOn DateTime     `json:"submitted_on"`
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Resolution) UnmarshalJSON(data []byte) error {
	type plain Resolution
	if err := decodeEntity(data, &resolutionFields, (*plain)(r)); err != nil {
		return err
	}
	r.Content = StripHTMLTags(r.RawContent)
	return nil
}

var htmlTagPattern = regexp.MustCompile(`<[^<]+?>`)

// StripHTMLTags removes anything that looks like a tag.
func StripHTMLTags(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}

// CategoryPage is a page of categories.
type CategoryPage struct {
	ListInfo   PageInfo   `json:"list_info"`
	Categories []Category `json:"categories" validate:"dive"`
}

// ServiceCategoryPage is a page of service categories.
type ServiceCategoryPage struct {
	ListInfo          PageInfo   `json:"list_info"`
	ServiceCategories []Category `json:"service_categories" validate:"dive"`
}

// SubcategoryPage is a page of subcategories.
type SubcategoryPage struct {
	ListInfo      PageInfo      `json:"list_info"`
	Subcategories []Subcategory `json:"subcategories" validate:"dive"`
}

// UrgencyPage is a page of urgencies.
type UrgencyPage struct {
	ListInfo  PageInfo  `json:"list_info"`
	Urgencies []Urgency `json:"urgencies" validate:"dive"`
}

// TemplatePage is a page of request templates.
type TemplatePage struct {
	ListInfo         PageInfo   `json:"list_info"`
	RequestTemplates []Template `json:"request_templates" validate:"dive"`
}

// Single-entity response envelopes.
type (
	ticketEnvelope struct {
		Request Ticket `json:"request"`
	}
	templateEnvelope struct {
		RequestTemplate Template
	}
	attachmentEnvelope struct {
		Attachment Attachment `json:"attachment"`
	}
	noteEnvelope struct {
		Note Note `json:"note"`
	}
	resolutionEnvelope struct {
		Resolution Resolution `json:"resolution"`
	}
)

// UnmarshalJSON implements json.Unmarshaler. The template endpoint answers
// with the bare template object; a request_template wrapper is unwrapped
// when present.
func (e *templateEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		RequestTemplate json.RawMessage `json:"request_template"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	if len(wrapped.RequestTemplate) > 0 {
		data = wrapped.RequestTemplate
	}
	return json.Unmarshal(data, &e.RequestTemplate)
}
