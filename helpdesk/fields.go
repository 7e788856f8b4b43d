package helpdesk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// fieldAlias pairs a wire key with the declared field name accepted in its
// place. The wire key wins when both are present.
type fieldAlias struct {
	wire string
	name string
}

// fieldTable describes how a response entity is read: the keys that must be
// present (null counts as absent) and the aliases accepted for its fields.
type fieldTable struct {
	entity   string
	required []string
	aliases  []fieldAlias
}

var deletedAlias = fieldAlias{wire: "deleted", name: "is_deleted"}

var (
	personFields = fieldTable{
		entity:   "person",
		required: []string{"id"},
		aliases:  []fieldAlias{{wire: "email_id", name: "email"}},
	}
	nameRefFields = fieldTable{
		entity:   "reference",
		required: []string{"name"},
	}
	shortRefFields = fieldTable{
		entity:   "reference",
		required: []string{"id", "name"},
	}
	ticketFields = fieldTable{
		entity:   "ticket",
		required: []string{"id", "group", "status", "requester"},
	}
	categoryFields = fieldTable{
		entity:   "category",
		required: []string{"id", "name"},
		aliases:  []fieldAlias{deletedAlias},
	}
	subcategoryFields = fieldTable{
		entity:   "subcategory",
		required: []string{"id", "name"},
		aliases:  []fieldAlias{deletedAlias},
	}
	urgencyFields = fieldTable{
		entity:   "urgency",
		required: []string{"id", "name"},
		aliases:  []fieldAlias{deletedAlias},
	}
	templateFields = fieldTable{
		entity:   "template",
		required: []string{"id", "name"},
		aliases:  []fieldAlias{deletedAlias},
	}
	attachmentFields = fieldTable{
		entity:   "attachment",
		required: []string{"id", "name", "content_url"},
	}
	noteFields = fieldTable{
		entity:   "note",
		required: []string{"id"},
	}
	resolutionFields = fieldTable{
		entity: "resolution",
		aliases: []fieldAlias{
			{wire: "content", name: "raw_content"},
			{wire: "resolution_attachments", name: "attachments"},
		},
	}
	pageInfoFields = fieldTable{
		entity: "list_info",
		aliases: []fieldAlias{
			{wire: "row_count", name: "limit"},
			{wire: "start_index", name: "offset"},
			{wire: "get_total_count", name: "can_include_count"},
			{wire: "has_more_rows", name: "has_next"},
		},
	}
)

// decodeEntity applies table to the JSON object in data and decodes the
// result into dst, which must not have an UnmarshalJSON of its own.
func decodeEntity(data []byte, table *fieldTable, dst any) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	renamed := false
	for _, alias := range table.aliases {
		if _, ok := raw[alias.wire]; ok {
			continue
		}
		if value, ok := raw[alias.name]; ok {
			raw[alias.wire] = value
			delete(raw, alias.name)
			renamed = true
		}
	}

	for _, key := range table.required {
		value, ok := raw[key]
		if !ok || bytes.Equal(bytes.TrimSpace(value), jsonNull) {
			return &ValidationError{
				Op:     "decode " + table.entity,
				Reason: fmt.Sprintf("missing required field %q", key),
			}
		}
	}

	if renamed {
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return err
		}
	}
	return json.Unmarshal(data, dst)
}
