// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert parses query string values leniently.

Malformed input falls back to a default instead of failing the request. Use
[strconv] directly where a malformed value must be rejected.
*/
package convert

import (
	"strconv"
	"strings"
)

// ToIntD parses s as an integer, returning def when s is blank or malformed.
func ToIntD(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// ToInt parses s as an integer, returning 0 when s is blank or malformed.
func ToInt(s string) int {
	return ToIntD(s, 0)
}
