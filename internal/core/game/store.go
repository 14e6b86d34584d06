// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import "context"

// # Game Data Access

// Repository defines the data access contract for catalog entries, library
// copies and the shared review pool.
type Repository interface {

	/*
		WithinTx runs fn against a transactional view of the repository.

		Description: Calling WithinTx on a transactional view opens a nested
		savepoint, so a failed inner fn only discards its own writes.

		Parameters:
		  - context: context.Context
		  - fn: func(Repository) error (Rolled back when it returns an error)

		Returns:
		  - error: The error returned by fn, or a commit failure
	*/
	WithinTx(context context.Context, fn func(repository Repository) error) error

	// # Lookups

	/*
		FindByID returns a record with its own reviews.

		Returns:
		  - *Game: The hydrated record
		  - error: dberr.ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Game, error)

	/*
		LockByID is FindByID with a row lock held until the transaction ends.
	*/
	LockByID(context context.Context, id string) (*Game, error)

	/*
		FindPublicByKey returns the catalog entry stored under key.

		Returns:
		  - *Game: The catalog entry
		  - error: dberr.ErrNotFound if missing
	*/
	FindPublicByKey(context context.Context, key string) (*Game, error)

	/*
		FindPublicByTitle returns catalog entries whose trimmed title matches
		case-insensitively. A non-nil developer narrows the match the same way.

		Returns:
		  - []*Game: Candidates ordered by creation, newest first
		  - error: Retrieval failures
	*/
	FindPublicByTitle(context context.Context, title string, developer *string) ([]*Game, error)

	/*
		FindPublicByKeys returns catalog entries indexed by their key.
		Keys without an entry are absent from the map.
	*/
	FindPublicByKeys(context context.Context, keys []string) (map[string]*Game, error)

	/*
		HasCopy reports whether owner already holds a library copy of key.
	*/
	HasCopy(context context.Context, ownerID, key string) (bool, error)

	/*
		ListCatalog returns a page of catalog entries, newest first.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Search over title, category, developer)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Game: Entries of the page
		  - int: Total count matching the filter
		  - error: Retrieval failures
	*/
	ListCatalog(context context.Context, filter Filter, limit, offset int) ([]*Game, int, error)

	/*
		ListLibrary returns a page of the owner's library copies with their reviews.
	*/
	ListLibrary(context context.Context, ownerID string, filter Filter, limit, offset int) ([]*Game, int, error)

	// # Writes

	/*
		UpsertPublic inserts a catalog entry or rewrites the one stored under key.

		Parameters:
		  - context: context.Context
		  - game: *Game (ID and timestamps are filled in on return)

		Returns:
		  - bool: True when a new entry was created
		  - error: Persistence failures
	*/
	UpsertPublic(context context.Context, game *Game) (bool, error)

	/*
		Insert persists a new library copy.

		Returns:
		  - error: A unique violation when the owner already holds the key
	*/
	Insert(context context.Context, game *Game) error

	/*
		Update rewrites the details, rating, owner state and key of a record.
	*/
	Update(context context.Context, game *Game) error

	/*
		Delete removes a record and its own reviews.
	*/
	Delete(context context.Context, id string) error

	/*
		FindDerivedCopies returns the IDs of library copies derived from a
		catalog entry.

		Description: A copy matches when its stored key equals key, or when its
		trimmed title and developer equal the given ones case-insensitively.
		The second branch reaches copies whose stored key predates the
		current normalization.
	*/
	FindDerivedCopies(context context.Context, key, title, developer string) ([]string, error)

	// # Reviews

	/*
		InsertReview appends an own review to a library copy.
	*/
	InsertReview(context context.Context, gameID string, review Review) error

	/*
		InsertSharedReview appends a review to the shared pool.
	*/
	InsertSharedReview(context context.Context, review *SharedReview) error

	/*
		ListSharedReviews returns the newest shared reviews stored under key.
	*/
	ListSharedReviews(context context.Context, key string, limit int) ([]*SharedReview, error)

	/*
		SharedRatings returns the pooled ratings of each key.
		Keys without reviews are absent from the map.
	*/
	SharedRatings(context context.Context, keys []string) (map[string][]SharedRating, error)

	// # Statistics

	/*
		CountCopiesByKey ranks keys by the number of library copies, most first.
	*/
	CountCopiesByKey(context context.Context, limit int) ([]CopyCount, error)

	/*
		RankSharedRatings ranks keys by the mean of their pooled ratings.
		Ascending order yields the worst rated titles.
	*/
	RankSharedRatings(context context.Context, limit int, ascending bool) ([]RatedTitle, error)
}
