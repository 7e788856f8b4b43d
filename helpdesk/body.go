package helpdesk

import (
	"encoding/json"
	"fmt"
	"io"
)

// IdentRef references an entity by id in a request body.
type IdentRef struct {
	ID ID `json:"id"`
}

// TemplateRef selects the template a new ticket is created from.
type TemplateRef struct {
	ID                ID              `json:"id"`
	IsServiceTemplate Field[bool]     `json:"is_service_template,omitzero"`
	ServiceCategory   Field[IdentRef] `json:"service_category,omitzero"`
}

// RequesterRef identifies the requester of a new ticket. Any subset of the
// fields may be given.
type RequesterRef struct {
	ID    Field[ID]     `json:"id,omitzero"`
	Name  Field[string] `json:"name,omitzero"`
	Email Field[string] `json:"email_id,omitzero"`
	Phone Field[string] `json:"phone,omitzero"`
}

// TicketCreate is the body of a ticket creation.
type TicketCreate struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Requester   RequesterRef          `json:"requester"`
	Template    Field[TemplateRef]    `json:"template,omitzero"`
	Urgency     IdentRef              `json:"urgency"`
	Mode        Field[IdentRef]       `json:"mode,omitzero"`
	UDFFields   Field[map[string]any] `json:"udf_fields,omitzero"`
}

// TicketUpdate is a partial ticket update; unset fields are left untouched
// upstream.
type TicketUpdate struct {
	Subject     Field[string]   `json:"subject,omitzero"`
	Description Field[string]   `json:"description,omitzero"`
	Urgency     Field[IdentRef] `json:"urgency,omitzero"`
}

// IsEmpty reports whether no field of the update was set.
func (u TicketUpdate) IsEmpty() bool {
	return !u.Subject.IsSet() && !u.Description.IsSet() && !u.Urgency.IsSet()
}

// NoteCreate is the body of a new ticket note.
type NoteCreate struct {
	Description         string `json:"description"`
	ShowToRequester     bool   `json:"show_to_requester"`
	MarkFirstResponse   bool   `json:"mark_first_response"`
	AddToLinkedRequests bool   `json:"add_to_linked_requests"`
}

// createKeys are the keys only the creation shape requires.
var createKeys = []string{"subject", "description", "requester", "urgency"}

// TicketPayload holds either a creation or an update body. The client sends
// the concrete types directly; TicketPayload exists for decoding documents
// whose shape is not known up front.
type TicketPayload struct {
	Create *TicketCreate
	Update *TicketUpdate
}

// MarshalJSON implements json.Marshaler
func (p TicketPayload) MarshalJSON() ([]byte, error) {
	switch {
	case p.Create != nil:
		return json.Marshal(p.Create)
	case p.Update != nil:
		return json.Marshal(p.Update)
	default:
		return jsonNull, nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. The creation shape is chosen
// when all of its required keys are present, the update shape otherwise.
func (p *TicketPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	isCreate := true
	for _, key := range createKeys {
		if _, ok := raw[key]; !ok {
			isCreate = false
			break
		}
	}

	*p = TicketPayload{}
	if isCreate {
		var create TicketCreate
		if err := json.Unmarshal(data, &create); err != nil {
			return err
		}
		p.Create = &create
		return nil
	}

	var update TicketUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return err
	}
	p.Update = &update
	return nil
}

// DecodeTicketPayload decodes a `{"request": {...}}` document.
func DecodeTicketPayload(data []byte) (TicketPayload, error) {
	var envelope struct {
		Request *TicketPayload `json:"request"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return TicketPayload{}, fmt.Errorf("failed to decode ticket payload: %w", err)
	}
	if envelope.Request == nil {
		return TicketPayload{}, &ValidationError{Op: "decode ticket payload", Reason: `missing "request" key`}
	}
	return *envelope.Request, nil
}

// FileUpload is a file to attach to a ticket. Field selects the multipart
// field name; when empty the client's configured field is used.
type FileUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
	Field       AttachmentField
}
