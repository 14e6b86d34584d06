// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/jasht/pkg/pagination"
)

/*
TestFromRequest clamps page and limit into the endpoint bounds.
*/
func TestFromRequest(t *testing.T) {
	catalog := pagination.Bounds{Default: 48, Max: 48}

	tests := []struct {
		name   string
		query  string
		bounds pagination.Bounds
		page   int
		limit  int
		offset int
	}{
		{"defaults", "", pagination.Standard, 1, 20, 0},
		{"explicit", "?page=3&limit=10", pagination.Standard, 3, 10, 20},
		{"zero_page", "?page=0&limit=5", pagination.Standard, 1, 5, 0},
		{"limit_capped", "?limit=500", pagination.Standard, 1, 100, 0},
		{"garbage", "?page=abc&limit=-4", pagination.Standard, 1, 20, 0},
		{"catalog_default", "?page=2", catalog, 2, 48, 48},
		{"catalog_capped", "?limit=200", catalog, 1, 48, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := pagination.FromRequest(httptest.NewRequest("GET", "/catalog"+tt.query, nil), tt.bounds)
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
			assert.Equal(t, tt.offset, params.Offset())
		})
	}
}

/*
TestNewMeta rounds the page count up.
*/
func TestNewMeta(t *testing.T) {
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 48, Total: 97, TotalPages: 3}, pagination.NewMeta(2, 48, 97))
	assert.Equal(t, 0, pagination.NewMeta(1, 0, 10).TotalPages)
	assert.Equal(t, 0, pagination.NewMeta(1, 20, 0).TotalPages)
}
