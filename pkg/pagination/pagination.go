// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination reads ?page=&limit= and builds the "meta" block of
// list responses.
package pagination

import (
	"net/http"

	"github.com/taibuivan/jasht/pkg/convert"
)

// Bounds is the default and maximum page size of one list endpoint.
type Bounds struct {
	Default int
	Max     int
}

// Standard applies to lists without their own page size.
var Standard = Bounds{Default: 20, Max: 100}

// Params is a 1-indexed page request.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before Page.
func (p Params) Offset() int {
	return max(p.Page-1, 0) * p.Limit
}

// Meta is the "meta" block of a paginated response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewMeta(page, limit, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	return meta
}

// FromRequest parses page and limit. A missing or non-positive value takes
// its default; a limit above bounds.Max is capped at it.
func FromRequest(request *http.Request, bounds Bounds) Params {
	query := request.URL.Query()

	page := convert.ToIntD(query.Get("page"), 1)
	if page < 1 {
		page = 1
	}

	limit := convert.ToIntD(query.Get("limit"), bounds.Default)
	switch {
	case limit < 1:
		limit = bounds.Default
	case limit > bounds.Max:
		limit = bounds.Max
	}

	return Params{Page: page, Limit: limit}
}
