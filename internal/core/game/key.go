// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// # Canonical Keys

const (
	// KeySeparator joins the title and developer parts of a canonical key.
	KeySeparator = "::"

	// LegacyKeySeparator is accepted on input only. Older shared reviews
	// were written as "title|developer".
	LegacyKeySeparator = "|"
)

/*
CanonicalKey derives the identity of a game from its title and developer.

Each part is trimmed, normalized to NFC and lowercased with Unicode rules.
A missing developer yields "title::".

Parameters:
  - title: string (Must not be blank)
  - developer: string (May be empty)

Returns:
  - string: The canonical key
  - error: ErrInvalidKeyInput if the title is blank
*/
func CanonicalKey(title, developer string) (string, error) {
	normalizedTitle := normalizePart(title)
	if normalizedTitle == "" {
		return "", ErrInvalidKeyInput
	}
	return normalizedTitle + KeySeparator + normalizePart(developer), nil
}

/*
NormalizeKey brings a client-supplied key into canonical form.

The input is split at the first "::", or at the first "|" when the modern
separator is absent. Input without any separator is read as a bare title.
Both parts then go through [CanonicalKey].
*/
func NormalizeKey(raw string) (string, error) {
	title, developer := splitRaw(raw)
	return CanonicalKey(title, developer)
}

// SplitKey returns the title and developer parts of a canonical key.
func SplitKey(key string) (title, developer string) {
	title, developer, _ = strings.Cut(key, KeySeparator)
	return title, developer
}

// splitRaw cuts at the first modern separator, falling back to the legacy one.
func splitRaw(raw string) (string, string) {
	if title, developer, found := strings.Cut(raw, KeySeparator); found {
		return title, developer
	}
	if title, developer, found := strings.Cut(raw, LegacyKeySeparator); found {
		return title, developer
	}
	return raw, ""
}

// normalizePart applies trim, NFC and lowercase to one key component.
// A Caser keeps state, so a fresh one is built per call.
func normalizePart(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	return cases.Lower(language.Und).String(norm.NFC.String(trimmed))
}
