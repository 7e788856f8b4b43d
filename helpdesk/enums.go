package helpdesk

// SortOrder is the direction of a sort_field ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// CriteriaField names the attribute a SearchCriteria matches on. Any string
// the upstream accepts may be used; the constants cover the common ones.
type CriteriaField string

const (
	FieldRequesterEmail CriteriaField = "requester.email_id"
	FieldStatusName     CriteriaField = "status.name"
)

// CriteriaCondition is the comparison a SearchCriteria applies.
type CriteriaCondition string

const (
	ConditionEq       CriteriaCondition = "eq"
	ConditionNeq      CriteriaCondition = "neq"
	ConditionContains CriteriaCondition = "contains"
)

// LogicalOperator joins a SearchCriteria to the one before it.
type LogicalOperator string

const (
	OperatorOr  LogicalOperator = "or"
	OperatorAnd LogicalOperator = "and"
)

// AttachmentField is the multipart field name the upload endpoint reads the
// file from. ServiceDesk 14.8 renamed it from "file" to "input_file".
type AttachmentField string

const (
	AttachmentFieldLegacy AttachmentField = "file"
	AttachmentFieldInput  AttachmentField = "input_file"
)

// Valid reports whether f is one of the known upload field names.
func (f AttachmentField) Valid() bool {
	return f == AttachmentFieldLegacy || f == AttachmentFieldInput
}
