package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Page is a clamped page request.
type Page struct {
	Page   int
	Limit  int
	Offset int
}

// Metadata describes a page of results.
type Metadata struct {
	Offset      int  `json:"offset"`
	Limit       int  `json:"limit"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// New clamps page to >= 1 and limit to [1, MaxLimit].
func New(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// FromQuery reads page and limit query parameters; bad values fall back to defaults.
func FromQuery(q url.Values) Page {
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return New(page, limit)
}

func (p Page) Metadata(totalItems int) Metadata {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (totalItems + p.Limit - 1) / p.Limit
	}
	return Metadata{
		Offset:      p.Offset,
		Limit:       p.Limit,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: p.Page,
		HasNext:     p.Page < totalPages,
		HasPrevious: p.Page > 1,
	}
}
