// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package game defines the Jasht catalog and personal library.

A single game record plays one of two roles:

  - Catalog entry: public, ownerless, curated by administrators.
  - Library copy: private, owned by one user, derived from a catalog entry.

Both roles are linked by a canonical key derived from title and developer.
The key is what keeps a copy attached to its origin when administrators
rename or delete the entry, and what groups reviews from every user into
one shared pool.
*/
package game

import (
	"strings"
	"time"

	"github.com/taibuivan/jasht/internal/platform/sec"
	"github.com/taibuivan/jasht/pkg/uuid"
)

// # Field Names

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldImage       = "image"
	FieldDeveloper   = "developer"
	FieldSize        = "size"
	FieldVersion     = "version"
	FieldYear        = "year"
	FieldRating      = "rating"
	FieldProgress    = "progress"
	FieldCompleted   = "completed"
	FieldText        = "text"
	FieldKey         = "key"
)

// # Core Entities

// Details are the descriptive attributes an administrator curates.
// They are copied verbatim into every library copy.
type Details struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Developer   string `json:"developer"`
	Size        string `json:"size"`
	Version     string `json:"version"`
	Year        *int   `json:"year,omitempty"`
}

// Review is a rating left by the owner of a library copy.
type Review struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// Game is the stored record behind both catalog entries and library copies.
type Game struct {
	ID string `json:"id"`
	Details

	// Rating is the administrator's value for public entries and the mean
	// of own reviews for library copies, rounded to one decimal.
	Rating  float64  `json:"rating"`
	Reviews []Review `json:"reviews"`

	// Owner state, meaningful only for library copies.
	Completed bool `json:"completed"`
	Progress  int  `json:"progress"`

	IsPublic  bool      `json:"public"`
	OwnerID   string    `json:"owner_id,omitempty"`
	SourceKey string    `json:"source_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCatalogEntry reports whether the record satisfies the public role.
func (game *Game) IsCatalogEntry() bool {
	return game.IsPublic && game.OwnerID == ""
}

// IsLibraryCopy reports whether the record satisfies the private role.
func (game *Game) IsLibraryCopy() bool {
	return !game.IsPublic && game.OwnerID != ""
}

// CatalogEntry is a [Game] known to be public.
type CatalogEntry struct{ *Game }

// LibraryCopy is a [Game] known to be private and owned.
type LibraryCopy struct{ *Game }

// AsCatalogEntry narrows a record to its public role.
func AsCatalogEntry(game *Game) (CatalogEntry, bool) {
	if game == nil || !game.IsCatalogEntry() {
		return CatalogEntry{}, false
	}
	return CatalogEntry{game}, true
}

// AsLibraryCopy narrows a record to its private role.
func AsLibraryCopy(game *Game) (LibraryCopy, bool) {
	if game == nil || !game.IsLibraryCopy() {
		return LibraryCopy{}, false
	}
	return LibraryCopy{game}, true
}

// View is the shape returned to clients. EffectiveRating is only filled for
// library copies.
type View struct {
	*Game
	EffectiveRating *float64 `json:"effective_rating,omitempty"`
}

// SharedReview is one entry of the cross-user review pool.
// It outlives the copy it was written on.
type SharedReview struct {
	ID          string    `json:"id"`
	ReviewID    string    `json:"review_id,omitempty"`
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Developer   string    `json:"developer"`
	Text        string    `json:"text"`
	Rating      int       `json:"rating"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// SharedRating is the slice of a [SharedReview] needed to compute ratings.
type SharedRating struct {
	ReviewID string
	Rating   int
}

// # Requests

// Requester identifies the caller of a service operation.
type Requester struct {
	ID    string
	Email string
	Role  sec.UserRole
}

// IsAdmin reports whether the requester holds the administrator role.
func (requester Requester) IsAdmin() bool {
	return requester.Role.IsAdmin()
}

// RequesterFromClaims builds a [Requester] from verified token claims.
// Nil claims yield an anonymous requester.
func RequesterFromClaims(claims *sec.AuthClaims) Requester {
	if claims == nil {
		return Requester{}
	}
	return Requester{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  sec.UserRole(claims.Role),
	}
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
	Developer   *string  `json:"developer"`
	Size        *string  `json:"size"`
	Version     *string  `json:"version"`
	Year        *int     `json:"year"`
	Rating      *float64 `json:"rating"`
	Progress    *int     `json:"progress"`
	Completed   *bool    `json:"completed"`
}

// touchedShared returns the JSON names of catalog-managed fields set in the patch.
func (patch Patch) touchedShared() []string {
	var fields []string
	check := func(name string, set bool) {
		if set {
			fields = append(fields, name)
		}
	}
	check(FieldTitle, patch.Title != nil)
	check(FieldDescription, patch.Description != nil)
	check(FieldCategory, patch.Category != nil)
	check(FieldImage, patch.Image != nil)
	check(FieldDeveloper, patch.Developer != nil)
	check(FieldSize, patch.Size != nil)
	check(FieldVersion, patch.Version != nil)
	check(FieldYear, patch.Year != nil)
	check(FieldRating, patch.Rating != nil)
	return fields
}

// applyDetails copies the descriptive fields of the patch onto details.
func (patch Patch) applyDetails(details *Details) {
	assign := func(target *string, value *string) {
		if value != nil {
			*target = strings.TrimSpace(*value)
		}
	}
	assign(&details.Title, patch.Title)
	assign(&details.Description, patch.Description)
	assign(&details.Category, patch.Category)
	assign(&details.Image, patch.Image)
	assign(&details.Developer, patch.Developer)
	assign(&details.Size, patch.Size)
	assign(&details.Version, patch.Version)
	if patch.Year != nil {
		year := *patch.Year
		details.Year = &year
	}
}

// SourceRef names the catalog entry a user wants to copy.
// Resolution tries ID, then Key, then Title with optional Developer.
type SourceRef struct {
	ID        string  `json:"source_id"`
	Key       string  `json:"source_key"`
	Title     string  `json:"title"`
	Developer *string `json:"developer"`
}

// IsEmpty reports whether no reference field is set.
func (ref SourceRef) IsEmpty() bool {
	return strings.TrimSpace(ref.ID) == "" && strings.TrimSpace(ref.Key) == "" && strings.TrimSpace(ref.Title) == ""
}

// ParseSourceRef turns a single path identifier into a [SourceRef].
//
// UUIDs are looked up by ID, strings carrying a key separator by key, and
// anything else as a bare title.
func ParseSourceRef(identifier string) SourceRef {
	identifier = strings.TrimSpace(identifier)
	switch {
	case uuid.Valid(identifier):
		return SourceRef{ID: identifier}
	case strings.Contains(identifier, KeySeparator) || strings.Contains(identifier, LegacyKeySeparator):
		return SourceRef{Key: identifier}
	default:
		return SourceRef{Title: identifier}
	}
}

// Filter narrows catalog and library listings.
type Filter struct {
	// Query matches title, category or developer, case-insensitively.
	Query string
}

// PropagationResult summarizes a fan-out over derived copies.
type PropagationResult struct {
	Matched int `json:"matched"`
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
}

// # Statistics

// CopyCount is the number of library copies derived from one key.
type CopyCount struct {
	Key       string `json:"source_key"`
	Title     string `json:"title"`
	Developer string `json:"developer"`
	Image     string `json:"image,omitempty"`
	Copies    int    `json:"count"`
}

// RatedTitle is the shared-pool average for one key.
type RatedTitle struct {
	Key       string  `json:"key"`
	Title     string  `json:"title"`
	Developer string  `json:"developer"`
	Image     string  `json:"image,omitempty"`
	Average   float64 `json:"avg"`
	Reviews   int     `json:"count"`
}

// Dashboard is the administrator statistics payload.
type Dashboard struct {
	TopCopies   []CopyCount  `json:"top_copies"`
	BestRated   []RatedTitle `json:"best_rated"`
	WorstRated  []RatedTitle `json:"worst_rated"`
	GeneratedAt time.Time    `json:"generated_at"`
}
