package pagination

import (
	"math"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 10000
	// MaxPage keeps (page-1)*limit within int64 for every allowed limit.
	MaxPage      = math.MaxInt32
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// Parse reads page/limit query values. Missing or non-positive values fall
// back to the defaults. limit is capped at MaxLimit and page at MaxPage.
func Parse(page, limit string) Page {
	p := Page{Number: 1, Limit: DefaultLimit}
	if n, err := strconv.ParseInt(page, 10, 64); err == nil && n > 0 {
		if n > MaxPage {
			n = MaxPage
		}
		p.Number = int(n)
	}
	if n, err := strconv.Atoi(limit); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Limit)
}

// Meta is the pagination block of a list response.
type Meta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
	Limit       int   `json:"limit"`
}

func (p Page) Meta(total int64) Meta {
	limit := int64(p.Limit)
	return Meta{
		CurrentPage: p.Number,
		TotalPages:  int((total + limit - 1) / limit),
		TotalCount:  total,
		HasNext:     int64(p.Number)*limit < total,
		HasPrev:     p.Number > 1,
		Limit:       p.Limit,
	}
}
