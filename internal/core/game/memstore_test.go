// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/jasht/internal/platform/dberr"
)

// memoryStore is an in-memory [Repository] with transactional snapshots.
// Nested WithinTx calls restore only their own writes, like savepoints.
type memoryStore struct {
	mutex *sync.RWMutex
	state *memoryState

	// failUpdate makes Update fail for the listed IDs.
	failUpdate map[string]bool

	// failSharedInsert makes InsertSharedReview fail.
	failSharedInsert bool

	// down makes every call fail as an unreachable store.
	down bool

	clock time.Time
}

type memoryState struct {
	games  map[string]*Game
	shared []*SharedReview
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		mutex:      &sync.RWMutex{},
		state:      &memoryState{games: map[string]*Game{}},
		failUpdate: map[string]bool{},
		clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (state *memoryState) clone() memoryState {
	games := make(map[string]*Game, len(state.games))
	for id, game := range state.games {
		games[id] = cloneGame(game)
	}
	shared := make([]*SharedReview, len(state.shared))
	for index, review := range state.shared {
		copied := *review
		shared[index] = &copied
	}
	return memoryState{games: games, shared: shared}
}

func cloneGame(game *Game) *Game {
	copied := *game
	copied.Details = cloneDetails(game.Details)
	copied.Reviews = append([]Review{}, game.Reviews...)
	return &copied
}

func (store *memoryStore) tick() time.Time {
	store.clock = store.clock.Add(time.Second)
	return store.clock
}

func (store *memoryStore) unavailable() error {
	if store.down {
		return dberr.Wrap(context.DeadlineExceeded, "memory")
	}
	return nil
}

func uniqueViolation(action string) error {
	return dberr.Wrap(&pgconn.PgError{Code: "23505"}, action)
}

func fold(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// # Transactions

func (store *memoryStore) WithinTx(context context.Context, fn func(repository Repository) error) error {
	if err := store.unavailable(); err != nil {
		return err
	}

	store.mutex.RLock()
	snapshot := store.state.clone()
	store.mutex.RUnlock()

	if err := fn(store); err != nil {
		store.mutex.Lock()
		*store.state = snapshot
		store.mutex.Unlock()
		return err
	}
	return nil
}

// # Lookups

func (store *memoryStore) FindByID(context context.Context, id string) (*Game, error) {
	if err := store.unavailable(); err != nil {
		return nil, err
	}
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	game, ok := store.state.games[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return cloneGame(game), nil
}

func (store *memoryStore) LockByID(context context.Context, id string) (*Game, error) {
	return store.FindByID(context, id)
}

func (store *memoryStore) FindPublicByKey(context context.Context, key string) (*Game, error) {
	if err := store.unavailable(); err != nil {
		return nil, err
	}
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	for _, game := range store.state.games {
		if game.IsPublic && game.SourceKey == key {
			return cloneGame(game), nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *memoryStore) FindPublicByTitle(context context.Context, title string, developer *string) ([]*Game, error) {
	if err := store.unavailable(); err != nil {
		return nil, err
	}

	matches := store.filter(func(game *Game) bool {
		if !game.IsPublic || fold(game.Title) != fold(title) {
			return false
		}
		return developer == nil || fold(game.Developer) == fold(*developer)
	})
	sortNewestFirst(matches)
	return matches, nil
}

func (store *memoryStore) FindPublicByKeys(context context.Context, keys []string) (map[string]*Game, error) {
	if err := store.unavailable(); err != nil {
		return nil, err
	}

	wanted := map[string]bool{}
	for _, key := range keys {
		wanted[key] = true
	}

	result := map[string]*Game{}
	for _, game := range store.filter(func(game *Game) bool { return game.IsPublic && wanted[game.SourceKey] }) {
		result[game.SourceKey] = game
	}
	return result, nil
}

func (store *memoryStore) HasCopy(context context.Context, ownerID, key string) (bool, error) {
	if err := store.unavailable(); err != nil {
		return false, err
	}
	copies := store.filter(func(game *Game) bool {
		return !game.IsPublic && game.OwnerID == ownerID && game.SourceKey == key
	})
	return len(copies) > 0, nil
}

func (store *memoryStore) ListCatalog(context context.Context, filter Filter, limit, offset int) ([]*Game, int, error) {
	if err := store.unavailable(); err != nil {
		return nil, 0, err
	}

	query := fold(filter.Query)
	matches := store.filter(func(game *Game) bool {
		if !game.IsPublic {
			return false
		}
		return query == "" ||
			strings.Contains(fold(game.Title), query) ||
			strings.Contains(fold(game.Category), query) ||
			strings.Contains(fold(game.Developer), query)
	})
	sortNewestFirst(matches)
	return page(matches, limit, offset), len(matches), nil
}

func (store *memoryStore) ListLibrary(context context.Context, ownerID string, filter Filter, limit, offset int) ([]*Game, int, error) {
	if err := store.unavailable(); err != nil {
		return nil, 0, err
	}

	query := fold(filter.Query)
	matches := store.filter(func(game *Game) bool {
		if game.IsPublic || game.OwnerID != ownerID {
			return false
		}
		return query == "" || strings.Contains(fold(game.Title), query) || strings.Contains(fold(game.Category), query)
	})
	sortNewestFirst(matches)
	return page(matches, limit, offset), len(matches), nil
}

// # Writes

func (store *memoryStore) UpsertPublic(context context.Context, game *Game) (bool, error) {
	if err := store.unavailable(); err != nil {
		return false, err
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()

	for _, existing := range store.state.games {
		if existing.IsPublic && existing.SourceKey == game.SourceKey {
			existing.Details = cloneDetails(game.Details)
			existing.Rating = game.Rating
			existing.UpdatedAt = store.tick()

			game.ID, game.CreatedAt, game.UpdatedAt = existing.ID, existing.CreatedAt, existing.UpdatedAt
			return false, nil
		}
	}

	game.IsPublic, game.OwnerID = true, ""
	game.CreatedAt = store.tick()
	game.UpdatedAt = game.CreatedAt
	store.state.games[game.ID] = cloneGame(game)
	return true, nil
}

func (store *memoryStore) Insert(context context.Context, game *Game) error {
	if err := store.unavailable(); err != nil {
		return err
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.conflicts(game) {
		return uniqueViolation("insert_game")
	}

	game.CreatedAt = store.tick()
	game.UpdatedAt = game.CreatedAt
	store.state.games[game.ID] = cloneGame(game)
	return nil
}

func (store *memoryStore) Update(context context.Context, game *Game) error {
	if err := store.unavailable(); err != nil {
		return err
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.failUpdate[game.ID] {
		return dberr.Wrap(&pgconn.PgError{Code: "23514"}, "update_game")
	}

	existing, ok := store.state.games[game.ID]
	if !ok {
		return dberr.ErrNotFound
	}
	if store.conflicts(game) {
		return uniqueViolation("update_game")
	}

	reviews := existing.Reviews
	updated := cloneGame(game)
	updated.Reviews = reviews
	updated.IsPublic, updated.OwnerID, updated.CreatedAt = existing.IsPublic, existing.OwnerID, existing.CreatedAt
	updated.UpdatedAt = store.tick()
	store.state.games[game.ID] = updated
	game.UpdatedAt = updated.UpdatedAt
	return nil
}

func (store *memoryStore) Delete(context context.Context, id string) error {
	if err := store.unavailable(); err != nil {
		return err
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if _, ok := store.state.games[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(store.state.games, id)
	return nil
}

func (store *memoryStore) FindDerivedCopies(context context.Context, key, title, developer string) ([]string, error) {
	if err := store.unavailable(); err != nil {
		return nil, err
	}

	copies := store.filter(func(game *Game) bool {
		if game.IsPublic {
			return false
		}
		return game.SourceKey == key || (fold(game.Title) == fold(title) && fold(game.Developer) == fold(developer))
	})
	sort.Slice(copies, func(i, j int) bool { return copies[i].CreatedAt.Before(copies[j].CreatedAt) })

	ids := make([]string, 0, len(copies))
	for _, game := range copies {
		ids = append(ids, game.ID)
	}
	return ids, nil
}

// # Reviews

func (store *memoryStore) InsertReview(context context.Context, gameID string, review Review) error {
	if err := store.unavailable(); err != nil {
		return err
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()

	game, ok := store.state.games[gameID]
	if !ok {
		return dberr.ErrNotFound
	}
	game.Reviews = append(game.Reviews, review)
	return nil
}

func (store *memoryStore) InsertSharedReview(context context.Context, review *SharedReview) error {
	if err := store.unavailable(); err != nil {
		return err
	}
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.failSharedInsert {
		return dberr.Wrap(&pgconn.PgError{Code: "23514"}, "insert_shared_review")
	}

	copied := *review
	store.state.shared = append(store.state.shared, &copied)
	return nil
}

func (store *memoryStore) ListSharedReviews(context context.Context, key string, limit int) ([]*SharedReview, error) {
	if err := store.unavailable(); err != nil {
		return nil, err
	}
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	reviews := make([]*SharedReview, 0)
	for index := len(store.state.shared) - 1; index >= 0 && len(reviews) < limit; index-- {
		if review := store.state.shared[index]; review.Key == key {
			copied := *review
			reviews = append(reviews, &copied)
		}
	}
	return reviews, nil
}

func (store *memoryStore) SharedRatings(context context.Context, keys []string) (map[string][]SharedRating, error) {
	if err := store.unavailable(); err != nil {
		return nil, err
	}
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	wanted := map[string]bool{}
	for _, key := range keys {
		wanted[key] = true
	}

	result := map[string][]SharedRating{}
	for _, review := range store.state.shared {
		if wanted[review.Key] {
			result[review.Key] = append(result[review.Key], SharedRating{ReviewID: review.ReviewID, Rating: review.Rating})
		}
	}
	return result, nil
}

// # Statistics

func (store *memoryStore) CountCopiesByKey(context context.Context, limit int) ([]CopyCount, error) {
	if err := store.unavailable(); err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, game := range store.filter(func(game *Game) bool { return !game.IsPublic }) {
		counts[game.SourceKey]++
	}

	result := make([]CopyCount, 0, len(counts))
	for key, copies := range counts {
		result = append(result, CopyCount{Key: key, Copies: copies})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Copies != result[j].Copies {
			return result[i].Copies > result[j].Copies
		}
		return result[i].Key < result[j].Key
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (store *memoryStore) RankSharedRatings(context context.Context, limit int, ascending bool) ([]RatedTitle, error) {
	if err := store.unavailable(); err != nil {
		return nil, err
	}
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	totals := map[string]*RatedTitle{}
	sums := map[string]int{}
	for _, review := range store.state.shared {
		title, ok := totals[review.Key]
		if !ok {
			title = &RatedTitle{Key: review.Key}
			totals[review.Key] = title
		}
		title.Title, title.Developer = review.Title, review.Developer
		title.Reviews++
		sums[review.Key] += review.Rating
	}

	result := make([]RatedTitle, 0, len(totals))
	for key, title := range totals {
		title.Average = float64(sums[key]) / float64(title.Reviews)
		result = append(result, *title)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Average != result[j].Average {
			if ascending {
				return result[i].Average < result[j].Average
			}
			return result[i].Average > result[j].Average
		}
		if result[i].Reviews != result[j].Reviews {
			return result[i].Reviews > result[j].Reviews
		}
		return result[i].Key < result[j].Key
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// # Helpers

func (store *memoryStore) filter(match func(game *Game) bool) []*Game {
	store.mutex.RLock()
	defer store.mutex.RUnlock()

	var games []*Game
	for _, game := range store.state.games {
		if match(game) {
			games = append(games, cloneGame(game))
		}
	}
	return games
}

// conflicts mirrors the partial unique indexes. Caller holds the write lock.
func (store *memoryStore) conflicts(candidate *Game) bool {
	public, owner := candidate.IsPublic, candidate.OwnerID
	if existing, ok := store.state.games[candidate.ID]; ok {
		public, owner = existing.IsPublic, existing.OwnerID
	}

	for id, game := range store.state.games {
		if id == candidate.ID || game.SourceKey != candidate.SourceKey {
			continue
		}
		if public && game.IsPublic {
			return true
		}
		if !public && !game.IsPublic && game.OwnerID == owner {
			return true
		}
	}
	return false
}

func sortNewestFirst(games []*Game) {
	sort.Slice(games, func(i, j int) bool { return games[i].CreatedAt.After(games[j].CreatedAt) })
}

func page(games []*Game, limit, offset int) []*Game {
	if offset >= len(games) {
		return []*Game{}
	}
	end := min(len(games), offset+limit)
	return games[offset:end]
}
