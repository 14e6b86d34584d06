// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/jasht/pkg/convert"
)

/*
TestToIntD falls back to the default on blank and malformed input.
*/
func TestToIntD(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"number", "42", 42},
		{"padded", " 7 ", 7},
		{"negative", "-3", -3},
		{"blank", "", 20},
		{"malformed", "ten", 20},
		{"float", "1.5", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convert.ToIntD(tt.in, 20))
		})
	}

	assert.Zero(t, convert.ToInt("nope"))
}
