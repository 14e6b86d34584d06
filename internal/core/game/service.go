// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/taibuivan/jasht/internal/platform/apperr"
	"github.com/taibuivan/jasht/internal/platform/constants"
	"github.com/taibuivan/jasht/internal/platform/dberr"
	"github.com/taibuivan/jasht/internal/platform/metrics"
	"github.com/taibuivan/jasht/internal/platform/validate"
	"github.com/taibuivan/jasht/pkg/pagination"
	"github.com/taibuivan/jasht/pkg/pointer"
	"github.com/taibuivan/jasht/pkg/slice"
	"github.com/taibuivan/jasht/pkg/uuid"
)

// # Service Layer

const (
	defaultStoreTimeout = 5 * time.Second
	defaultStatsTTL     = time.Minute

	maxTitleLength = 200
	maxTextLength  = 4000
	minYear        = 1950
	maxYear        = 2100
)

// Options carries the optional collaborators of a [Service].
type Options struct {
	// Timeout bounds every store operation. Zero means five seconds.
	Timeout time.Duration

	// StatsTTL is how long a computed dashboard stays cached. Zero means one minute.
	StatsTTL time.Duration

	// Cache stores computed dashboards. Nil disables caching.
	Cache StatsCache

	// Metrics receives domain counters. Nil disables them.
	Metrics *metrics.Metrics

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Service implements the catalog, library, review and statistics operations.
type Service struct {
	repository Repository
	logger     *slog.Logger
	metrics    *metrics.Metrics
	cache      StatsCache
	timeout    time.Duration
	statsTTL   time.Duration
	now        func() time.Time

	// statsFlight collapses concurrent dashboard computations.
	statsFlight singleflight.Group
}

// NewService constructs a new [Service].
func NewService(repository Repository, logger *slog.Logger, options Options) *Service {
	service := &Service{
		repository: repository,
		logger:     logger,
		metrics:    options.Metrics,
		cache:      options.Cache,
		timeout:    options.Timeout,
		statsTTL:   options.StatsTTL,
		now:        options.Clock,
	}

	if service.logger == nil {
		service.logger = slog.Default()
	}
	if service.timeout <= 0 {
		service.timeout = defaultStoreTimeout
	}
	if service.statsTTL <= 0 {
		service.statsTTL = defaultStatsTTL
	}
	if service.now == nil {
		service.now = time.Now
	}
	return service
}

// # Catalog

/*
UpsertPublic creates a catalog entry or updates the one sharing its key.

Description: The key is derived from title and developer, so two upserts of
the same game converge on one row. Private copies are left untouched;
refreshing them is the job of [Service.PropagateEdit]. A nil rating keeps
the stored value.

Parameters:
  - context: context.Context
  - requester: Requester (Must be an administrator)
  - details: Details (Title is required)
  - rating: *float64 (0..5, optional)

Returns:
  - *Game: The stored catalog entry
  - bool: True when the entry was created
  - error: ErrAdminOnly, validation errors or ErrStoreUnavailable
*/
func (service *Service) UpsertPublic(context context.Context, requester Requester, details Details, rating *float64) (*Game, bool, error) {
	if !requester.IsAdmin() {
		return nil, false, ErrAdminOnly
	}

	// 1. Validation
	details = trimDetails(details)
	validator := &validate.Validator{}
	validator.Required(FieldTitle, details.Title).MaxLen(FieldTitle, details.Title, maxTitleLength)
	validateYear(validator, details.Year)
	if rating != nil {
		validator.Custom(FieldRating, *rating < 0 || *rating > 5, "Must be between 0 and 5")
	}
	if err := validator.Err(); err != nil {
		return nil, false, err
	}

	key, err := CanonicalKey(details.Title, details.Developer)
	if err != nil {
		return nil, false, err
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	entry := &Game{ID: uuid.New(), Details: details, Reviews: []Review{}, IsPublic: true, SourceKey: key}
	var created bool

	// 2. Upsert, keeping the stored rating when none is given
	err = service.repository.WithinTx(context, func(repository Repository) error {
		existing, err := repository.FindPublicByKey(context, key)
		if err != nil && !errors.Is(err, dberr.ErrNotFound) {
			return err
		}

		switch {
		case rating != nil:
			entry.Rating = roundRating(*rating)
		case existing != nil:
			entry.Rating = existing.Rating
		}

		created, err = repository.UpsertPublic(context, entry)
		return err
	})
	if err != nil {
		return nil, false, storeError(err)
	}

	service.logger.InfoContext(context, "catalog_entry_upserted",
		slog.String("game_id", entry.ID),
		slog.String("source_key", key),
		slog.Bool("created", created),
	)
	return entry, created, nil
}

/*
ListCatalog returns public entries, newest first.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int (Clamped to the catalog page size)
  - offset: int

Returns:
  - []*Game: Entries of the page
  - int: Total count matching the filter
  - error: ErrStoreUnavailable
*/
func (service *Service) ListCatalog(context context.Context, filter Filter, limit, offset int) ([]*Game, int, error) {
	if limit <= 0 || limit > constants.CatalogPageLimit {
		limit = constants.CatalogPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	games, total, err := service.repository.ListCatalog(context, filter, limit, offset)
	if err != nil {
		return nil, 0, storeError(err)
	}
	return games, total, nil
}

/*
ResolveCatalog looks up one public entry by ID, key or title.

Returns:
  - *Game: The catalog entry
  - error: ErrSourceNotFound, ErrAmbiguousSource or ErrStoreUnavailable
*/
func (service *Service) ResolveCatalog(context context.Context, identifier string) (*Game, error) {
	context, cancel := service.withDeadline(context)
	defer cancel()

	entry, err := service.resolveSource(context, service.repository, ParseSourceRef(identifier))
	if err != nil {
		return nil, storeError(err)
	}
	return entry, nil
}

// # Library

/*
CopyToLibrary clones a catalog entry into the requester's library.

Description: The copy receives the entry's details and rating, starts at
zero progress and stores the entry's key. A requester owns at most one copy
per key; the partial unique index backs the check against races.

Parameters:
  - context: context.Context
  - requester: Requester (Must be authenticated)
  - ref: SourceRef (ID, key, or title with optional developer)

Returns:
  - *Game: The new library copy
  - error: ErrSourceNotFound, ErrAmbiguousSource, ErrAlreadyInLibrary
*/
func (service *Service) CopyToLibrary(context context.Context, requester Requester, ref SourceRef) (*Game, error) {
	if requester.ID == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}
	if ref.IsEmpty() {
		return nil, validate.RequiredError(FieldTitle, "A catalog reference is required")
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	var libraryCopy *Game
	err := service.repository.WithinTx(context, func(repository Repository) error {

		// 1. Resolve the catalog entry
		source, err := service.resolveSource(context, repository, ref)
		if err != nil {
			return err
		}

		// 2. One copy per owner and key
		exists, err := repository.HasCopy(context, requester.ID, source.SourceKey)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyInLibrary
		}

		// 3. Clone
		libraryCopy = &Game{
			ID:        uuid.New(),
			Details:   cloneDetails(source.Details),
			Rating:    source.Rating,
			Reviews:   []Review{},
			Progress:  0,
			IsPublic:  false,
			OwnerID:   requester.ID,
			SourceKey: source.SourceKey,
		}
		return repository.Insert(context, libraryCopy)
	})
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, ErrAlreadyInLibrary.Wrap(err)
		}
		return nil, storeError(err)
	}

	service.metrics.LibraryCopyCreated()
	service.logger.InfoContext(context, "library_copy_created",
		slog.String("game_id", libraryCopy.ID),
		slog.String("owner_id", requester.ID),
		slog.String("source_key", libraryCopy.SourceKey),
	)
	return libraryCopy, nil
}

/*
ListLibrary returns the requester's copies with their effective ratings.
*/
func (service *Service) ListLibrary(context context.Context, requester Requester, filter Filter, limit, offset int) ([]View, int, error) {
	if requester.ID == "" {
		return nil, 0, apperr.Unauthorized("Authentication required")
	}
	if limit <= 0 {
		limit = pagination.Standard.Default
	}
	if limit > pagination.Standard.Max {
		limit = pagination.Standard.Max
	}
	if offset < 0 {
		offset = 0
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	games, total, err := service.repository.ListLibrary(context, requester.ID, filter, limit, offset)
	if err != nil {
		return nil, 0, storeError(err)
	}

	views, err := service.withEffectiveRatings(context, games)
	if err != nil {
		return nil, 0, storeError(err)
	}
	return views, total, nil
}

// # Single Records

/*
Get returns one record the requester may see.

Description: Administrators see every record. Owners see their own copies.
Anyone sees catalog entries. Everything else is reported as not found.
*/
func (service *Service) Get(context context.Context, requester Requester, id string) (*View, error) {
	if !uuid.Valid(id) {
		return nil, ErrNotFoundOrForbidden
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	game, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, storeError(notFoundOrForbidden(err))
	}
	if err := authorize(requester, game, false); err != nil {
		return nil, err
	}

	views, err := service.withEffectiveRatings(context, []*Game{game})
	if err != nil {
		return nil, storeError(err)
	}
	return &views[0], nil
}

/*
Update applies a partial update.

Description: On a catalog entry (administrators only) descriptive fields
and rating may change; the key is recomputed and derived copies are
updated in the same transaction. On a library copy only progress and
completion may change, and progress is clamped to 0..100.

Returns:
  - *Game: The updated record
  - error: ErrNotFoundOrForbidden, validation errors, ErrStoreUnavailable
*/
func (service *Service) Update(context context.Context, requester Requester, id string, patch Patch) (*Game, error) {
	if !uuid.Valid(id) {
		return nil, ErrNotFoundOrForbidden
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	var updated *Game
	var result PropagationResult

	err := service.repository.WithinTx(context, func(repository Repository) error {
		game, err := repository.LockByID(context, id)
		if err != nil {
			return notFoundOrForbidden(err)
		}
		if err := authorize(requester, game, true); err != nil {
			return err
		}

		// Library copy: owner state only
		if !game.IsPublic {
			if err := validateOwnerPatch(patch); err != nil {
				return err
			}
			applyOwnerState(game, patch)
			updated = game
			return repository.Update(context, game)
		}

		// Catalog entry: descriptive fields, then fan out
		if err := validateCatalogPatch(patch); err != nil {
			return err
		}

		oldKey, oldTitle, oldDeveloper := game.SourceKey, game.Title, game.Developer
		patch.applyDetails(&game.Details)
		if patch.Rating != nil {
			game.Rating = roundRating(*patch.Rating)
		}

		newKey, err := CanonicalKey(game.Title, game.Developer)
		if err != nil {
			return err
		}
		game.SourceKey = newKey

		if err := repository.Update(context, game); err != nil {
			return err
		}
		updated = game

		result, err = service.propagateEdit(context, repository, oldKey, oldTitle, oldDeveloper, game)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}

	if updated.IsPublic {
		service.logger.InfoContext(context, "catalog_entry_updated",
			slog.String("game_id", updated.ID),
			slog.String("source_key", updated.SourceKey),
			slog.Int("copies_matched", result.Matched),
			slog.Int("copies_applied", result.Applied),
			slog.Int("copies_failed", result.Failed),
		)
	}
	return updated, nil
}

/*
Delete removes a record. Deleting a catalog entry also removes every copy
derived from it. Shared reviews are kept.
*/
func (service *Service) Delete(context context.Context, requester Requester, id string) (PropagationResult, error) {
	if !uuid.Valid(id) {
		return PropagationResult{}, ErrNotFoundOrForbidden
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	var deleted *Game
	var result PropagationResult

	err := service.repository.WithinTx(context, func(repository Repository) error {
		game, err := repository.LockByID(context, id)
		if err != nil {
			return notFoundOrForbidden(err)
		}
		if err := authorize(requester, game, true); err != nil {
			return err
		}
		if err := repository.Delete(context, game.ID); err != nil {
			return err
		}
		deleted = game

		if !game.IsPublic {
			return nil
		}

		// Key from the deleted entry's own title and developer
		key, err := CanonicalKey(game.Title, game.Developer)
		if err != nil {
			key = game.SourceKey
		}
		result, err = service.propagateDelete(context, repository, key, game.Title, game.Developer)
		return err
	})
	if err != nil {
		return PropagationResult{}, storeError(err)
	}

	service.logger.InfoContext(context, "game_deleted",
		slog.String("game_id", deleted.ID),
		slog.Bool("public", deleted.IsPublic),
		slog.Int("copies_removed", result.Applied),
		slog.Int("copies_failed", result.Failed),
	)
	return result, nil
}

// # Resolution

/*
resolveSource finds the catalog entry named by ref.

Description: Precedence is an exact public ID, then an exact key after
normalization, then a case-insensitive title match narrowed by developer.
A bare title matching entries under more than one key is ambiguous.
*/
func (service *Service) resolveSource(context context.Context, repository Repository, ref SourceRef) (*Game, error) {

	// 1. Exact ID of a public entry
	if id := strings.TrimSpace(ref.ID); id != "" {
		game, err := repository.FindByID(context, id)
		switch {
		case err == nil && game.IsPublic:
			return game, nil
		case err != nil && !errors.Is(err, dberr.ErrNotFound):
			return nil, err
		}
	}

	// 2. Exact key
	if strings.TrimSpace(ref.Key) != "" {
		key, err := NormalizeKey(ref.Key)
		if err != nil {
			return nil, err
		}
		game, err := repository.FindPublicByKey(context, key)
		switch {
		case err == nil:
			return game, nil
		case !errors.Is(err, dberr.ErrNotFound):
			return nil, err
		}
	}

	// 3. Title, optionally narrowed by developer
	if title := strings.TrimSpace(ref.Title); title != "" {
		candidates, err := repository.FindPublicByTitle(context, title, ref.Developer)
		if err != nil {
			return nil, err
		}

		keys := make(map[string]struct{}, len(candidates))
		for _, candidate := range candidates {
			keys[candidate.SourceKey] = struct{}{}
		}

		switch {
		case len(candidates) == 0:
		case ref.Developer == nil && len(keys) > 1:
			return nil, ErrAmbiguousSource
		default:
			return candidates[0], nil
		}
	}

	return nil, ErrSourceNotFound
}

// # Helpers

// withDeadline bounds a store interaction by the configured timeout.
func (service *Service) withDeadline(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, service.timeout)
}

// withEffectiveRatings attaches effective ratings to library copies in one batch.
func (service *Service) withEffectiveRatings(context context.Context, games []*Game) ([]View, error) {
	views := make([]View, len(games))
	keys := make([]string, 0, len(games))

	for index, game := range games {
		views[index] = View{Game: game}
		if game.IsLibraryCopy() {
			if key, err := CanonicalKey(game.Title, game.Developer); err == nil {
				keys = append(keys, key)
			}
		}
	}
	if len(keys) == 0 {
		return views, nil
	}

	shared, err := service.repository.SharedRatings(context, keys)
	if err != nil {
		return nil, err
	}

	for index, game := range games {
		libraryCopy, ok := AsLibraryCopy(game)
		if !ok {
			continue
		}
		key, _ := CanonicalKey(game.Title, game.Developer)
		rating := effectiveRating(libraryCopy, shared[key])
		views[index].EffectiveRating = &rating
	}
	return views, nil
}

// authorize applies the visibility rules. write is true for mutations.
func authorize(requester Requester, game *Game, write bool) error {
	switch {
	case requester.IsAdmin():
		return nil
	case game.IsLibraryCopy() && requester.ID != "" && game.OwnerID == requester.ID:
		return nil
	case game.IsCatalogEntry() && !write:
		return nil
	default:
		return ErrNotFoundOrForbidden
	}
}

// validateOwnerPatch rejects catalog-managed fields on a library copy.
func validateOwnerPatch(patch Patch) error {
	touched := patch.touchedShared()
	if len(touched) == 0 {
		return nil
	}

	details := slice.Map(touched, func(field string) apperr.FieldError {
		return apperr.FieldError{Field: field, Message: "Managed by the catalog"}
	})
	return apperr.ValidationError("Only progress and completion can change on a library copy", details...)
}

// validateCatalogPatch checks descriptive fields on a catalog entry.
func validateCatalogPatch(patch Patch) error {
	validator := &validate.Validator{}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		validator.Required(FieldTitle, title).MaxLen(FieldTitle, title, maxTitleLength)
	}
	validateYear(validator, patch.Year)
	if patch.Rating != nil {
		validator.Custom(FieldRating, *patch.Rating < 0 || *patch.Rating > 5, "Must be between 0 and 5")
	}
	validator.Custom(FieldProgress, patch.Progress != nil, "Only library copies track progress")
	validator.Custom(FieldCompleted, patch.Completed != nil, "Only library copies track completion")

	return validator.Err()
}

// applyOwnerState writes progress and completion onto a copy.
func applyOwnerState(game *Game, patch Patch) {
	if patch.Progress != nil {
		game.Progress = clampProgress(*patch.Progress)
	}
	if patch.Completed != nil {
		game.Completed = *patch.Completed
	}
}

func validateYear(validator *validate.Validator, year *int) {
	if year != nil {
		validator.Range(FieldYear, *year, minYear, maxYear)
	}
}

func clampProgress(progress int) int {
	return max(0, min(100, progress))
}

// roundRating rounds half-up to one decimal.
func roundRating(value float64) float64 {
	return math.Floor(value*10+0.5) / 10
}

func trimDetails(details Details) Details {
	details.Title = strings.TrimSpace(details.Title)
	details.Description = strings.TrimSpace(details.Description)
	details.Category = strings.TrimSpace(details.Category)
	details.Image = strings.TrimSpace(details.Image)
	details.Developer = strings.TrimSpace(details.Developer)
	details.Size = strings.TrimSpace(details.Size)
	details.Version = strings.TrimSpace(details.Version)
	return details
}

// cloneDetails copies details without sharing the Year pointer.
func cloneDetails(details Details) Details {
	details.Year = pointer.Clone(details.Year)
	return details
}
