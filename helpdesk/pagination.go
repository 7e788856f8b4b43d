package helpdesk

// Pagination is offset-based paging for list requests.
type Pagination struct {
	Limit           int         `json:"row_count"`
	Offset          int         `json:"start_index"`
	CanIncludeCount Field[bool] `json:"get_total_count,omitzero"`
}

// PagePagination is page-number paging for list requests.
type PagePagination struct {
	Page            int         `json:"page"`
	Limit           int         `json:"row_count"`
	CanIncludeCount Field[bool] `json:"get_total_count,omitzero"`
}

// Ordering sorts a list request.
type Ordering struct {
	SortField Field[string]    `json:"sort_field,omitzero"`
	SortOrder Field[SortOrder] `json:"sort_order,omitzero"`
}

// PageInfo is the list_info block of a list response. The declared names
// (limit, offset, can_include_count, has_next) are accepted in place of the
// wire keys.
//
// Two API revisions report the page number under different keys: page and
// page_number. Page prefers page when both are present.
type PageInfo struct {
	Limit           int        `json:"row_count"`
	Offset          int        `json:"start_index"`
	CanIncludeCount bool       `json:"get_total_count"`
	HasNext         bool       `json:"has_more_rows"`
	Total           Field[int] `json:"total_count,omitzero"`
	CurrentPage     Field[int] `json:"page,omitzero"`
	PageNumber      Field[int] `json:"page_number,omitzero"`
}

// UnmarshalJSON implements json.Unmarshaler
func (p *PageInfo) UnmarshalJSON(data []byte) error {
	type plain PageInfo
	return decodeEntity(data, &pageInfoFields, (*plain)(p))
}

// TotalCount returns total_count, or ErrMissingTotalCount when the response
// did not carry one (get_total_count was not requested).
func (p PageInfo) TotalCount() (int, error) {
	if total, ok := p.Total.Get(); ok {
		return total, nil
	}
	return 0, ErrMissingTotalCount
}

// Page returns the page number, or ErrMissingPage when neither key is present.
// A present page wins over page_number even when it is 0; zero is a value,
// not a missing key.
func (p PageInfo) Page() (int, error) {
	if page, ok := p.CurrentPage.Get(); ok {
		return page, nil
	}
	if page, ok := p.PageNumber.Get(); ok {
		return page, nil
	}
	return 0, ErrMissingPage
}

// NextOffset returns the start_index of the following page.
func (p PageInfo) NextOffset() (int, bool) {
	if !p.HasNext {
		return 0, false
	}
	return p.Offset + p.Limit, true
}
