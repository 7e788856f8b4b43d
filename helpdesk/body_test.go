package helpdesk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketUpdateIsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		update TicketUpdate
		want   bool
	}{
		{name: "nothing set", update: TicketUpdate{}, want: true},
		{name: "subject set", update: TicketUpdate{Subject: Set("new")}, want: false},
		{name: "explicit null counts as set", update: TicketUpdate{Description: Null[string]()}, want: false},
		{name: "urgency set", update: TicketUpdate{Urgency: Set(IdentRef{ID: 3})}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.update.IsEmpty())
		})
	}
}

func TestTicketUpdateEncoding(t *testing.T) {
	data, err := json.Marshal(TicketUpdate{Subject: Set("new subject")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"subject":"new subject"}`, string(data))

	data, err = json.Marshal(TicketUpdate{Description: Null[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":null}`, string(data))
}

func TestTicketCreateEncoding(t *testing.T) {
	create := TicketCreate{
		Subject:     "Printer jam",
		Description: "Floor 3",
		Requester:   RequesterRef{Name: Set("Jane Doe"), Email: Set("jane@example.com")},
		Urgency:     IdentRef{ID: 2},
		Template: Set(TemplateRef{
			ID:                5,
			IsServiceTemplate: Set(true),
			ServiceCategory:   Set(IdentRef{ID: 9}),
		}),
		UDFFields: Set(map[string]any{"udf_sline_1": "asset-17"}),
	}

	data, err := json.Marshal(create)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"subject": "Printer jam",
		"description": "Floor 3",
		"requester": {"name": "Jane Doe", "email_id": "jane@example.com"},
		"urgency": {"id": 2},
		"template": {"id": 5, "is_service_template": true, "service_category": {"id": 9}},
		"udf_fields": {"udf_sline_1": "asset-17"}
	}`, string(data))
}

func TestNoteCreateEncoding(t *testing.T) {
	data, err := json.Marshal(NoteCreate{Description: "Called the user", ShowToRequester: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"description": "Called the user",
		"show_to_requester": true,
		"mark_first_response": false,
		"add_to_linked_requests": false
	}`, string(data))
}

func TestTicketPayloadDiscrimination(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantCreate bool
	}{
		{
			name:       "creation shape",
			input:      `{"request":{"subject":"s","description":"d","requester":{"id":1},"urgency":{"id":2}}}`,
			wantCreate: true,
		},
		{
			name:  "partial update",
			input: `{"request":{"subject":"s"}}`,
		},
		{
			name:  "missing urgency is an update",
			input: `{"request":{"subject":"s","description":"d","requester":{"id":1}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := DecodeTicketPayload([]byte(tt.input))
			require.NoError(t, err)
			if tt.wantCreate {
				require.NotNil(t, payload.Create)
				assert.Nil(t, payload.Update)
				assert.Equal(t, ID(2), payload.Create.Urgency.ID)
				return
			}
			require.NotNil(t, payload.Update)
			assert.Nil(t, payload.Create)
			assert.Equal(t, "s", payload.Update.Subject.OrElse(""))
		})
	}
}

func TestTicketPayloadMarshal(t *testing.T) {
	data, err := json.Marshal(TicketPayload{Update: &TicketUpdate{Subject: Set("s")}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"subject":"s"}`, string(data))

	data, err = json.Marshal(TicketPayload{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestDecodeTicketPayloadErrors(t *testing.T) {
	_, err := DecodeTicketPayload([]byte(`{"note":{}}`))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, `"request"`)

	_, err = DecodeTicketPayload([]byte(`not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode ticket payload")
}
