package helpdesk

import (
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	// InputDataKey is the query parameter or form field carrying the JSON
	// document of every list, create and update call.
	InputDataKey = "input_data"
	// ListInfoKey nests filters and paging inside input_data.
	ListInfoKey = "list_info"
)

// ListFilter is implemented by every list_info document.
type ListFilter interface {
	listFilter()
}

// TicketQuery is implemented by the filters the ticket collection accepts.
type TicketQuery interface {
	ListFilter
	ticketQuery()
}

// TicketSearchFields are exact-match ticket search fields.
type TicketSearchFields struct {
	RequesterName Field[string] `json:"requester.name,omitzero"`
	RequesterID   Field[ID]     `json:"requester.id,omitzero"`
}

// CategorySearchFields are exact-match category search fields.
type CategorySearchFields struct {
	IsDeleted Field[bool]   `json:"deleted,omitzero"`
	Name      Field[string] `json:"name,omitzero"`
}

// SubcategorySearchFields are exact-match subcategory search fields.
type SubcategorySearchFields struct {
	IsDeleted    Field[bool]   `json:"deleted,omitzero"`
	Name         Field[string] `json:"name,omitzero"`
	CategoryName Field[string] `json:"category.name,omitzero"`
}

// UrgencySearchFields are exact-match urgency search fields.
type UrgencySearchFields struct {
	IsDeleted Field[bool]   `json:"deleted,omitzero"`
	Name      Field[string] `json:"name,omitzero"`
}

// TemplateSearchFields are exact-match template search fields.
type TemplateSearchFields struct {
	IsServiceTemplate Field[bool]   `json:"is_service_template,omitzero"`
	Name              Field[string] `json:"name,omitzero"`
	ServiceCategoryID Field[ID]     `json:"service_category,omitzero"`
}

// SearchCriteria is one condition of a criteria search. LogicalOperator joins
// it to the previous condition and is left empty on the first one.
type SearchCriteria struct {
	Field           CriteriaField     `json:"field"`
	Value           string            `json:"value"`
	Condition       CriteriaCondition `json:"condition"`
	LogicalOperator LogicalOperator   `json:"logical_operator,omitempty"`
}

// Criteria is an ordered list of search conditions.
type Criteria []SearchCriteria

// Where starts a criteria list.
func Where(field CriteriaField, condition CriteriaCondition, value string) Criteria {
	return Criteria{{Field: field, Value: value, Condition: condition}}
}

// And appends a condition joined with "and".
func (c Criteria) And(field CriteriaField, condition CriteriaCondition, value string) Criteria {
	return c.join(OperatorAnd, field, condition, value)
}

// Or appends a condition joined with "or".
func (c Criteria) Or(field CriteriaField, condition CriteriaCondition, value string) Criteria {
	return c.join(OperatorOr, field, condition, value)
}

func (c Criteria) join(op LogicalOperator, field CriteriaField, condition CriteriaCondition, value string) Criteria {
	next := SearchCriteria{Field: field, Value: value, Condition: condition}
	if len(c) > 0 {
		next.LogicalOperator = op
	}
	out := make(Criteria, len(c), len(c)+1)
	copy(out, c)
	return append(out, next)
}

// TicketFilter lists tickets with offset paging.
type TicketFilter struct {
	Pagination
	Ordering
	SearchFields JSONText[TicketSearchFields] `json:"search_fields,omitzero"`
}

// TicketPageFilter lists tickets with page-number paging.
type TicketPageFilter struct {
	PagePagination
	Ordering
	SearchFields JSONText[TicketSearchFields] `json:"search_fields,omitzero"`
}

// TicketCriteriaFilter searches tickets with an ordered criteria list.
type TicketCriteriaFilter struct {
	PagePagination
	Ordering
	SearchCriteria Criteria `json:"search_criteria,omitempty"`
}

// CategoryFilter lists categories and service categories.
type CategoryFilter struct {
	Pagination
	Ordering
	SearchFields JSONText[CategorySearchFields] `json:"search_fields,omitzero"`
}

// SubcategoryFilter lists subcategories.
type SubcategoryFilter struct {
	Pagination
	Ordering
	SearchFields JSONText[SubcategorySearchFields] `json:"search_fields,omitzero"`
}

// UrgencyFilter lists urgencies.
type UrgencyFilter struct {
	Pagination
	Ordering
	SearchFields JSONText[UrgencySearchFields] `json:"search_fields,omitzero"`
}

// TemplateFilter lists request templates.
type TemplateFilter struct {
	Pagination
	Ordering
	SearchFields JSONText[TemplateSearchFields] `json:"search_fields,omitzero"`
}

func (TicketFilter) listFilter()         {}
func (TicketPageFilter) listFilter()     {}
func (TicketCriteriaFilter) listFilter() {}
func (CategoryFilter) listFilter()       {}
func (SubcategoryFilter) listFilter()    {}
func (UrgencyFilter) listFilter()        {}
func (TemplateFilter) listFilter()       {}

func (TicketFilter) ticketQuery()         {}
func (TicketPageFilter) ticketQuery()     {}
func (TicketCriteriaFilter) ticketQuery() {}

// listInfo is the `{"list_info": ...}` wrapper around a filter.
type listInfo[F ListFilter] struct {
	ListInfo F `json:"list_info"`
}

// EncodeListInfo renders filter as the JSON text `{"list_info": {...}}`.
func EncodeListInfo[F ListFilter](filter F) (string, error) {
	data, err := json.Marshal(listInfo[F]{ListInfo: filter})
	if err != nil {
		return "", fmt.Errorf("failed to encode list_info: %w", err)
	}
	return string(data), nil
}

// EncodeEnvelope renders payload as the JSON text `{"<key>": {...}}`.
func EncodeEnvelope(key string, payload any) (string, error) {
	data, err := json.Marshal(map[string]any{key: payload})
	if err != nil {
		return "", fmt.Errorf("failed to encode %s envelope: %w", key, err)
	}
	return string(data), nil
}

// inputData places an encoded document under the input_data key.
func inputData(document string) url.Values {
	return url.Values{InputDataKey: {document}}
}
