// Package pagination carries offset-token paging through list queries.
package pagination

import "strconv"

type Pagination struct {
	PageSize  int    `form:"page_size"`
	PageToken string `form:"page_token"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	PageSize      int    `json:"page_size"`
}

const defaultPageSize = 50

func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return defaultPageSize
	}
	return p.PageSize
}

func (p Pagination) Offset() int {
	off, err := strconv.Atoi(p.PageToken)
	if err != nil || off < 0 {
		return 0
	}
	return off
}

// Next returns the page info for the next request, or nil when the
// current page was not full.
func (p Pagination) Next(returned int) *PageInfo {
	if returned < p.Limit() {
		return nil
	}
	return &PageInfo{
		NextPageToken: strconv.Itoa(p.Offset() + returned),
		PageSize:      p.Limit(),
	}
}
