// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/jasht/internal/platform/apperr"
	"github.com/taibuivan/jasht/internal/platform/sec"
	"github.com/taibuivan/jasht/pkg/pointer"
)

// # Fixtures

var (
	admin = Requester{ID: "admin-1", Email: "admin@jasht.dev", Role: sec.RoleAdmin}
	alice = Requester{ID: "user-alice", Email: "alice@jasht.dev", Role: sec.RoleMember}
	bob   = Requester{ID: "user-bob", Email: "bob@jasht.dev", Role: sec.RoleMember}
)

func newTestService(t *testing.T, store *memoryStore) *Service {
	t.Helper()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
		Clock: func() time.Time { return fixed },
	})
}

// seedEntry creates a catalog entry through the service.
func seedEntry(t *testing.T, service *Service, title, developer string, rating float64) *Game {
	t.Helper()
	entry, created, err := service.UpsertPublic(context.Background(), admin, Details{
		Title:       title,
		Developer:   developer,
		Description: title + " description",
		Category:    "Platformer",
		Image:       "https://img.jasht.dev/" + title + ".png",
		Year:        pointer.To(2017),
	}, &rating)
	require.NoError(t, err)
	require.True(t, created)
	return entry
}

// seedCopy copies a catalog entry into the owner's library by ID.
func seedCopy(t *testing.T, service *Service, owner Requester, entry *Game) *Game {
	t.Helper()
	libraryCopy, err := service.CopyToLibrary(context.Background(), owner, SourceRef{ID: entry.ID})
	require.NoError(t, err)
	return libraryCopy
}

func statusOf(err error) int {
	if appError := apperr.As(err); appError != nil {
		return appError.HTTPStatus
	}
	return 0
}

// # Catalog

/*
TestUpsertPublic_CreateThenUpdate checks that one key converges on one entry.
*/
func TestUpsertPublic_CreateThenUpdate(t *testing.T) {
	store := newMemoryStore()
	service := newTestService(t, store)
	ctx := context.Background()

	first := seedEntry(t, service, "Hollow Knight", "Team Cherry", 4.44)
	assert.Equal(t, "hollow knight::team cherry", first.SourceKey)
	assert.True(t, first.IsPublic)
	assert.Equal(t, 4.4, first.Rating)

	second, created, err := service.UpsertPublic(ctx, admin, Details{Title: " hollow KNIGHT ", Developer: "team cherry", Category: "Metroidvania"}, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4.4, second.Rating, "nil rating keeps the stored value")

	games, total, err := service.ListCatalog(ctx, Filter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Metroidvania", games[0].Category)
}

/*
TestUpsertPublic_LeavesCopiesUntouched re-upserts an entry that already has a library copy.
*/
func TestUpsertPublic_LeavesCopiesUntouched(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	ctx := context.Background()
	entry := seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.0)
	libraryCopy := seedCopy(t, service, alice, entry)

	updated, created, err := service.UpsertPublic(ctx, admin, Details{
		Title:       "Celeste",
		Developer:   "Maddy Makes Games",
		Description: "Rewritten blurb",
	}, pointer.To(1.0))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Rewritten blurb", updated.Description)
	assert.Equal(t, 1.0, updated.Rating)

	unchanged := mustGet(t, service, libraryCopy.ID)
	assert.Equal(t, "Celeste description", unchanged.Description)
	assert.Equal(t, 4.0, unchanged.Rating)
}

/*
TestUpsertPublic_Rejections covers role and validation failures.
*/
func TestUpsertPublic_Rejections(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	ctx := context.Background()

	tests := []struct {
		name      string
		requester Requester
		details   Details
		rating    *float64
		status    int
	}{
		{"member", alice, Details{Title: "Celeste"}, nil, 403},
		{"blank_title", admin, Details{Title: "  "}, nil, 400},
		{"rating_above_five", admin, Details{Title: "Celeste"}, pointer.To(5.5), 400},
		{"negative_rating", admin, Details{Title: "Celeste"}, pointer.To(-1.0), 400},
		{"year_out_of_range", admin, Details{Title: "Celeste", Year: pointer.To(1800)}, nil, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.UpsertPublic(ctx, tt.requester, tt.details, tt.rating)
			require.Error(t, err)
			assert.Equal(t, tt.status, statusOf(err))
		})
	}
}

/*
TestListCatalog_Search matches title, category and developer case-insensitively.
*/
func TestListCatalog_Search(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	seedEntry(t, service, "Hollow Knight", "Team Cherry", 4.5)
	seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.8)

	games, total, err := service.ListCatalog(context.Background(), Filter{Query: "CHERRY"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Hollow Knight", games[0].Title)

	games, total, err = service.ListCatalog(context.Background(), Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "Celeste", games[0].Title, "newest first")
}

// # Library

/*
TestCopyToLibrary_ClonesEntry checks the copied fields and fresh owner state.
*/
func TestCopyToLibrary_ClonesEntry(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	entry := seedEntry(t, service, "Hollow Knight", "Team Cherry", 4.5)

	libraryCopy := seedCopy(t, service, alice, entry)

	assert.NotEqual(t, entry.ID, libraryCopy.ID)
	assert.False(t, libraryCopy.IsPublic)
	assert.Equal(t, alice.ID, libraryCopy.OwnerID)
	assert.Equal(t, entry.SourceKey, libraryCopy.SourceKey)
	assert.Equal(t, entry.Details.Title, libraryCopy.Title)
	assert.Equal(t, entry.Description, libraryCopy.Description)
	assert.Equal(t, 2017, *libraryCopy.Year)
	assert.Equal(t, 4.5, libraryCopy.Rating)
	assert.Equal(t, 0, libraryCopy.Progress)
	assert.False(t, libraryCopy.Completed)
	assert.Empty(t, libraryCopy.Reviews)
}

/*
TestCopyToLibrary_Resolution covers every way of naming the catalog entry.
*/
func TestCopyToLibrary_Resolution(t *testing.T) {
	tests := []struct {
		name    string
		ref     SourceRef
		wantDev string
		wantErr error
	}{
		{"by_key_any_case", SourceRef{Key: "HOLLOW KNIGHT::Team Cherry"}, "Team Cherry", nil},
		{"by_legacy_key", SourceRef{Key: "hollow knight|team cherry"}, "Team Cherry", nil},
		{"by_title_and_developer", SourceRef{Title: "doom", Developer: pointer.To("id Software")}, "id Software", nil},
		{"by_unique_title", SourceRef{Title: "hollow knight"}, "Team Cherry", nil},
		{"ambiguous_title", SourceRef{Title: "Doom"}, "", ErrAmbiguousSource},
		{"unknown_title", SourceRef{Title: "Braid"}, "", ErrSourceNotFound},
		{"unknown_key", SourceRef{Key: "braid::number none"}, "", ErrSourceNotFound},
		{"unknown_id", SourceRef{ID: "0190f5c2-7d7e-7c3a-9b1e-2f4d5a6b7c8d"}, "", ErrSourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(t, newMemoryStore())
			seedEntry(t, service, "Hollow Knight", "Team Cherry", 4.5)
			seedEntry(t, service, "Doom", "id Software", 4.2)
			seedEntry(t, service, "Doom", "Bethesda", 3.9)

			libraryCopy, err := service.CopyToLibrary(context.Background(), alice, tt.ref)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDev, libraryCopy.Developer)
		})
	}
}

/*
TestCopyToLibrary_Duplicate allows one copy per owner and key.
*/
func TestCopyToLibrary_Duplicate(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	entry := seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.8)
	seedCopy(t, service, alice, entry)

	_, err := service.CopyToLibrary(context.Background(), alice, SourceRef{Title: "CELESTE"})
	assert.ErrorIs(t, err, ErrAlreadyInLibrary)
	assert.Equal(t, 409, statusOf(err))

	// Another owner is unaffected
	seedCopy(t, service, bob, entry)
}

/*
TestCopyToLibrary_RequiresIdentity rejects anonymous callers and empty references.
*/
func TestCopyToLibrary_RequiresIdentity(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	entry := seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.8)

	_, err := service.CopyToLibrary(context.Background(), Requester{}, SourceRef{ID: entry.ID})
	assert.Equal(t, 401, statusOf(err))

	_, err = service.CopyToLibrary(context.Background(), alice, SourceRef{})
	assert.Equal(t, 400, statusOf(err))
}

/*
TestListLibrary_OwnerScope lists only the requester's copies.
*/
func TestListLibrary_OwnerScope(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	celeste := seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.8)
	hollow := seedEntry(t, service, "Hollow Knight", "Team Cherry", 4.5)
	seedCopy(t, service, alice, celeste)
	seedCopy(t, service, alice, hollow)
	seedCopy(t, service, bob, hollow)

	views, total, err := service.ListLibrary(context.Background(), alice, Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, view := range views {
		assert.Equal(t, alice.ID, view.OwnerID)
		require.NotNil(t, view.EffectiveRating)
	}

	views, total, err = service.ListLibrary(context.Background(), alice, Filter{Query: "hollow"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Hollow Knight", views[0].Title)
}

/*
TestListLibrary_ClampsPage replaces out-of-range limits and offsets.
*/
func TestListLibrary_ClampsPage(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	celeste := seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.8)
	hollow := seedEntry(t, service, "Hollow Knight", "Team Cherry", 4.5)
	seedCopy(t, service, alice, celeste)
	seedCopy(t, service, alice, hollow)

	tests := []struct {
		name   string
		limit  int
		offset int
		want   int
	}{
		{"negative_limit", -5, 0, 2},
		{"negative_offset", 10, -3, 2},
		{"above_max", 1000, 0, 2},
		{"second_page", 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, total, err := service.ListLibrary(context.Background(), alice, Filter{}, tt.limit, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, 2, total)
			assert.Len(t, views, tt.want)
		})
	}
}

// # Single Records

/*
TestGet_Visibility hides other owners' copies behind a not-found answer.
*/
func TestGet_Visibility(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	entry := seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.8)
	libraryCopy := seedCopy(t, service, alice, entry)

	tests := []struct {
		name      string
		requester Requester
		id        string
		wantErr   bool
	}{
		{"owner_reads_copy", alice, libraryCopy.ID, false},
		{"admin_reads_copy", admin, libraryCopy.ID, false},
		{"stranger_reads_copy", bob, libraryCopy.ID, true},
		{"anonymous_reads_entry", Requester{}, entry.ID, false},
		{"missing", alice, "0190f5c2-7d7e-7c3a-9b1e-2f4d5a6b7c8d", true},
		{"malformed", alice, "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := service.Get(context.Background(), tt.requester, tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, view.ID)
		})
	}
}

/*
TestUpdate_OwnerState clamps progress and stores completion on a copy.
*/
func TestUpdate_OwnerState(t *testing.T) {
	tests := []struct {
		name     string
		progress int
		want     int
	}{
		{"above_range", 150, 100},
		{"below_range", -5, 0},
		{"in_range", 42, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(t, newMemoryStore())
			entry := seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.8)
			libraryCopy := seedCopy(t, service, alice, entry)

			updated, err := service.Update(context.Background(), alice, libraryCopy.ID, Patch{Progress: pointer.To(tt.progress), Completed: pointer.To(true)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, updated.Progress)
			assert.True(t, updated.Completed)

			view, err := service.Get(context.Background(), alice, libraryCopy.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, view.Progress)
		})
	}
}

/*
TestUpdate_Rejections covers fields and records a member may not change.
*/
func TestUpdate_Rejections(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	entry := seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.8)
	libraryCopy := seedCopy(t, service, alice, entry)
	ctx := context.Background()

	_, err := service.Update(ctx, alice, libraryCopy.ID, Patch{Title: pointer.To("Celeste 2")})
	assert.Equal(t, 400, statusOf(err), "descriptive fields are managed by the catalog")

	_, err = service.Update(ctx, bob, libraryCopy.ID, Patch{Progress: pointer.To(10)})
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)

	_, err = service.Update(ctx, alice, entry.ID, Patch{Title: pointer.To("Celeste 2")})
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)

	_, err = service.Update(ctx, admin, entry.ID, Patch{Progress: pointer.To(10)})
	assert.Equal(t, 400, statusOf(err), "catalog entries have no progress")

	view, err := service.Get(ctx, alice, libraryCopy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Celeste", view.Title)
	assert.Equal(t, 0, view.Progress)
}

/*
TestDelete_PrivateCopy removes only the requester's copy.
*/
func TestDelete_PrivateCopy(t *testing.T) {
	service := newTestService(t, newMemoryStore())
	entry := seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.8)
	aliceCopy := seedCopy(t, service, alice, entry)
	bobCopy := seedCopy(t, service, bob, entry)
	ctx := context.Background()

	_, err := service.Delete(ctx, bob, aliceCopy.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)

	result, err := service.Delete(ctx, alice, aliceCopy.ID)
	require.NoError(t, err)
	assert.Equal(t, PropagationResult{}, result)

	_, err = service.Get(ctx, alice, aliceCopy.ID)
	assert.ErrorIs(t, err, ErrNotFoundOrForbidden)
	_, err = service.Get(ctx, bob, bobCopy.ID)
	assert.NoError(t, err)
	_, err = service.Get(ctx, alice, entry.ID)
	assert.NoError(t, err)
}

/*
TestService_StoreUnavailable reports an unreachable store as a 503.
*/
func TestService_StoreUnavailable(t *testing.T) {
	store := newMemoryStore()
	service := newTestService(t, store)
	entry := seedEntry(t, service, "Celeste", "Maddy Makes Games", 4.8)
	store.down = true
	ctx := context.Background()

	_, err := service.CopyToLibrary(ctx, alice, SourceRef{ID: entry.ID})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, _, err = service.ListCatalog(ctx, Filter{}, 10, 0)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = service.Get(ctx, alice, entry.ID)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 503, statusOf(err))
}

/*
TestService_MalformedID answers not found before the store sees a non-UUID id.
*/
func TestService_MalformedID(t *testing.T) {
	store := newMemoryStore()
	service := newTestService(t, store)
	store.down = true
	ctx := context.Background()

	tests := []struct {
		name string
		call func(id string) error
	}{
		{"get", func(id string) error {
			_, err := service.Get(ctx, alice, id)
			return err
		}},
		{"update", func(id string) error {
			_, err := service.Update(ctx, alice, id, Patch{Progress: pointer.To(10)})
			return err
		}},
		{"delete", func(id string) error {
			_, err := service.Delete(ctx, admin, id)
			return err
		}},
		{"submit_review", func(id string) error {
			_, err := service.SubmitReview(ctx, alice, id, "Fine", 3)
			return err
		}},
		{"effective_rating", func(id string) error {
			_, err := service.EffectiveRating(ctx, alice, id)
			return err
		}},
		{"propagate_edit", func(id string) error {
			_, err := service.PropagateEdit(ctx, admin, "", "", "", id)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, id := range []string{"abc", "", "0190f5c2-7d7e-7c3a-9b1e"} {
				err := tt.call(id)
				assert.ErrorIs(t, err, ErrNotFoundOrForbidden, id)
				assert.Equal(t, 404, statusOf(err), id)
			}
		})
	}
}
