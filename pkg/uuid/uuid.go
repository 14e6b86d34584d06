// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid generates the primary keys of every Jasht table.

Keys are UUIDv7: time-ordered, so new rows land at the end of the B-tree
instead of fragmenting it.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// Only fails when the OS entropy source does
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

// Valid reports whether s is a UUID of any version in the canonical
// 36 character form. URN and braced forms are rejected.
func Valid(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
}
