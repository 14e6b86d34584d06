// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/jasht/internal/platform/database/schema"
	"github.com/taibuivan/jasht/internal/platform/dberr"
)

// # PostgreSQL Repository

// dbtx is satisfied by both [pgxpool.Pool] and [pgx.Tx]. Begin on a
// transaction opens a savepoint.
type dbtx interface {
	Begin(context context.Context) (pgx.Tx, error)
	Exec(context context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(context context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(context context.Context, sql string, arguments ...any) pgx.Row
}

// postgresRepository implements [Repository] using pgx.
type postgresRepository struct {
	db dbtx
}

// NewPostgresRepository constructs a PostgreSQL backed game store.
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{db: pool}
}

var (
	gameTable   = schema.CatalogGame
	reviewTable = schema.CatalogReview
	sharedTable = schema.SocialSharedReview

	// gameSelect reads a record with its own reviews folded into a JSON array.
	gameSelect = fmt.Sprintf(`
		SELECT
			g.%[2]s, g.%[3]s, g.%[4]s, g.%[5]s, g.%[6]s, g.%[7]s, g.%[8]s, g.%[9]s, g.%[10]s,
			g.%[11]s::float8, g.%[12]s, g.%[13]s, g.%[14]s, COALESCE(g.%[15]s::text, ''),
			g.%[16]s, g.%[17]s, g.%[18]s,
			COALESCE((
				SELECT json_agg(json_build_object(
					'id', r.%[20]s, 'text', r.%[22]s, 'rating', r.%[23]s, 'created_at', r.%[24]s
				) ORDER BY r.%[24]s)
				FROM %[19]s r
				WHERE r.%[21]s = g.%[2]s
			), '[]') AS reviews`,
		gameTable.Table,
		gameTable.ID, gameTable.Title, gameTable.Description, gameTable.Category, gameTable.Image,
		gameTable.Developer, gameTable.Size, gameTable.Version, gameTable.Year,
		gameTable.Rating, gameTable.Completed, gameTable.Progress, gameTable.IsPublic, gameTable.OwnerID,
		gameTable.SourceKey, gameTable.CreatedAt, gameTable.UpdatedAt,
		reviewTable.Table, reviewTable.ID, reviewTable.GameID, reviewTable.Text, reviewTable.Rating, reviewTable.CreatedAt,
	)
)

/*
WithinTx runs fn inside a transaction, or inside a savepoint when the
repository is already transactional.
*/
func (repository *postgresRepository) WithinTx(context context.Context, fn func(repository Repository) error) error {

	// 1. Open the transaction (a savepoint when nested)
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_tx")
	}
	defer func() { _ = tx.Rollback(context) }()

	// 2. Run the unit of work against the transactional view
	if err := fn(&postgresRepository{db: tx}); err != nil {
		return err
	}

	// 3. Commit (or release the savepoint)
	if err := tx.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_tx")
	}
	return nil
}

// # Lookups

// FindByID retrieves a record with its own reviews.
func (repository *postgresRepository) FindByID(context context.Context, id string) (*Game, error) {
	query := fmt.Sprintf(`%s FROM %s g WHERE g.%s = $1`, gameSelect, gameTable.Table, gameTable.ID)

	game, err := scanGame(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_game_by_id")
	}
	return game, nil
}

// LockByID retrieves a record and holds a row lock on it until the transaction ends.
func (repository *postgresRepository) LockByID(context context.Context, id string) (*Game, error) {
	query := fmt.Sprintf(`%s FROM %s g WHERE g.%s = $1 FOR UPDATE OF g`, gameSelect, gameTable.Table, gameTable.ID)

	game, err := scanGame(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "lock_game_by_id")
	}
	return game, nil
}

// FindPublicByKey retrieves the catalog entry stored under key.
func (repository *postgresRepository) FindPublicByKey(context context.Context, key string) (*Game, error) {
	query := fmt.Sprintf(`%s FROM %s g WHERE g.%s AND g.%s = $1`,
		gameSelect, gameTable.Table, gameTable.IsPublic, gameTable.SourceKey)

	game, err := scanGame(repository.db.QueryRow(context, query, key))
	if err != nil {
		return nil, dberr.Wrap(err, "find_public_by_key")
	}
	return game, nil
}

/*
FindPublicByTitle matches catalog entries on trimmed, case-insensitive title
and, when given, developer.
*/
func (repository *postgresRepository) FindPublicByTitle(context context.Context, title string, developer *string) ([]*Game, error) {
	var queryBuilder strings.Builder
	arguments := []any{title}

	queryBuilder.WriteString(fmt.Sprintf(`%s FROM %s g WHERE g.%s AND lower(btrim(g.%s)) = lower(btrim($1))`,
		gameSelect, gameTable.Table, gameTable.IsPublic, gameTable.Title))

	// Developer narrowing
	if developer != nil {
		queryBuilder.WriteString(fmt.Sprintf(` AND lower(btrim(g.%s)) = lower(btrim($2))`, gameTable.Developer))
		arguments = append(arguments, *developer)
	}

	queryBuilder.WriteString(fmt.Sprintf(` ORDER BY g.%s DESC, g.%s DESC`, gameTable.CreatedAt, gameTable.ID))

	games, _, err := repository.queryGames(context, queryBuilder.String(), false, arguments...)
	if err != nil {
		return nil, dberr.Wrap(err, "find_public_by_title")
	}
	return games, nil
}

// FindPublicByKeys retrieves catalog entries for a batch of keys.
func (repository *postgresRepository) FindPublicByKeys(context context.Context, keys []string) (map[string]*Game, error) {
	result := make(map[string]*Game, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`%s FROM %s g WHERE g.%s AND g.%s = ANY($1)`,
		gameSelect, gameTable.Table, gameTable.IsPublic, gameTable.SourceKey)

	games, _, err := repository.queryGames(context, query, false, keys)
	if err != nil {
		return nil, dberr.Wrap(err, "find_public_by_keys")
	}

	for _, game := range games {
		result[game.SourceKey] = game
	}
	return result, nil
}

// HasCopy reports whether the owner holds a library copy of key.
func (repository *postgresRepository) HasCopy(context context.Context, ownerID, key string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE NOT %s AND %s = $1 AND %s = $2)`,
		gameTable.Table, gameTable.IsPublic, gameTable.OwnerID, gameTable.SourceKey)

	var exists bool
	if err := repository.db.QueryRow(context, query, ownerID, key).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "has_copy")
	}
	return exists, nil
}

/*
ListCatalog returns a page of catalog entries, newest first.

Description: The search term is matched as a literal substring against
title, category and developer. COUNT(*) OVER() returns the total in the
same round-trip.
*/
func (repository *postgresRepository) ListCatalog(context context.Context, filter Filter, limit, offset int) ([]*Game, int, error) {
	var queryBuilder strings.Builder
	var arguments []any
	argumentID := 1

	queryBuilder.WriteString(fmt.Sprintf(`%s, COUNT(*) OVER() AS total_count FROM %s g WHERE g.%s`,
		gameSelect, gameTable.Table, gameTable.IsPublic))

	// Search Query Filtering
	if query := strings.TrimSpace(filter.Query); query != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND (g.%[1]s ILIKE $%[4]d OR g.%[2]s ILIKE $%[4]d OR g.%[3]s ILIKE $%[4]d)`,
			gameTable.Title, gameTable.Category, gameTable.Developer, argumentID))
		arguments = append(arguments, likePattern(query))
		argumentID++
	}

	queryBuilder.WriteString(fmt.Sprintf(` ORDER BY g.%s DESC, g.%s DESC LIMIT $%d OFFSET $%d`,
		gameTable.CreatedAt, gameTable.ID, argumentID, argumentID+1))
	arguments = append(arguments, limit, offset)

	games, total, err := repository.queryGames(context, queryBuilder.String(), true, arguments...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_catalog")
	}
	return games, total, nil
}

// ListLibrary returns a page of the owner's copies. Search covers title and category.
func (repository *postgresRepository) ListLibrary(context context.Context, ownerID string, filter Filter, limit, offset int) ([]*Game, int, error) {
	var queryBuilder strings.Builder
	arguments := []any{ownerID}
	argumentID := 2

	queryBuilder.WriteString(fmt.Sprintf(`%s, COUNT(*) OVER() AS total_count FROM %s g WHERE NOT g.%s AND g.%s = $1`,
		gameSelect, gameTable.Table, gameTable.IsPublic, gameTable.OwnerID))

	// Search Query Filtering
	if query := strings.TrimSpace(filter.Query); query != "" {
		queryBuilder.WriteString(fmt.Sprintf(` AND (g.%[1]s ILIKE $%[3]d OR g.%[2]s ILIKE $%[3]d)`,
			gameTable.Title, gameTable.Category, argumentID))
		arguments = append(arguments, likePattern(query))
		argumentID++
	}

	queryBuilder.WriteString(fmt.Sprintf(` ORDER BY g.%s DESC, g.%s DESC LIMIT $%d OFFSET $%d`,
		gameTable.CreatedAt, gameTable.ID, argumentID, argumentID+1))
	arguments = append(arguments, limit, offset)

	games, total, err := repository.queryGames(context, queryBuilder.String(), true, arguments...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_library")
	}
	return games, total, nil
}

// # Writes

/*
UpsertPublic inserts a catalog entry or rewrites the one stored under the
same key.

Description: The partial unique index on the key of public rows is the
conflict target, so concurrent upserts of one title converge on a single
row. (xmax = 0) is true only for freshly inserted tuples.
*/
func (repository *postgresRepository) UpsertPublic(context context.Context, game *Game) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (
			%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s, %[10]s,
			%[11]s, %[12]s, %[13]s, %[14]s, %[15]s
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, 0, TRUE, $11)
		ON CONFLICT (%[15]s) WHERE %[14]s DO UPDATE SET
			%[3]s = EXCLUDED.%[3]s,
			%[4]s = EXCLUDED.%[4]s,
			%[5]s = EXCLUDED.%[5]s,
			%[6]s = EXCLUDED.%[6]s,
			%[7]s = EXCLUDED.%[7]s,
			%[8]s = EXCLUDED.%[8]s,
			%[9]s = EXCLUDED.%[9]s,
			%[10]s = EXCLUDED.%[10]s,
			%[11]s = EXCLUDED.%[11]s,
			%[17]s = now()
		RETURNING %[2]s, %[16]s, %[17]s, (xmax = 0)`,
		gameTable.Table,
		gameTable.ID, gameTable.Title, gameTable.Description, gameTable.Category, gameTable.Image,
		gameTable.Developer, gameTable.Size, gameTable.Version, gameTable.Year, gameTable.Rating,
		gameTable.Completed, gameTable.Progress, gameTable.IsPublic, gameTable.SourceKey,
		gameTable.CreatedAt, gameTable.UpdatedAt,
	)

	var inserted bool
	err := repository.db.QueryRow(context, query,
		game.ID, game.Title, game.Description, game.Category, game.Image,
		game.Developer, game.Size, game.Version, game.Year, game.Rating, game.SourceKey,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt, &inserted)
	if err != nil {
		return false, dberr.Wrap(err, "upsert_public_game")
	}

	game.IsPublic = true
	game.OwnerID = ""
	return inserted, nil
}

// Insert persists a new library copy.
func (repository *postgresRepository) Insert(context context.Context, game *Game) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (
			%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s, %[10]s,
			%[11]s, %[12]s, %[13]s, %[14]s, %[15]s, %[16]s
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING %[17]s, %[18]s`,
		gameTable.Table,
		gameTable.ID, gameTable.Title, gameTable.Description, gameTable.Category, gameTable.Image,
		gameTable.Developer, gameTable.Size, gameTable.Version, gameTable.Year, gameTable.Rating,
		gameTable.Completed, gameTable.Progress, gameTable.IsPublic, gameTable.OwnerID, gameTable.SourceKey,
		gameTable.CreatedAt, gameTable.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		game.ID, game.Title, game.Description, game.Category, game.Image,
		game.Developer, game.Size, game.Version, game.Year, game.Rating,
		game.Completed, game.Progress, game.IsPublic, nullable(game.OwnerID), game.SourceKey,
	).Scan(&game.CreatedAt, &game.UpdatedAt)

	return dberr.Wrap(err, "insert_game")
}

// Update rewrites the mutable columns of a record.
func (repository *postgresRepository) Update(context context.Context, game *Game) error {
	query := fmt.Sprintf(`
		UPDATE %[1]s SET
			%[3]s = $2, %[4]s = $3, %[5]s = $4, %[6]s = $5, %[7]s = $6,
			%[8]s = $7, %[9]s = $8, %[10]s = $9, %[11]s = $10,
			%[12]s = $11, %[13]s = $12, %[14]s = $13, %[15]s = now()
		WHERE %[2]s = $1
		RETURNING %[15]s`,
		gameTable.Table,
		gameTable.ID, gameTable.Title, gameTable.Description, gameTable.Category, gameTable.Image,
		gameTable.Developer, gameTable.Size, gameTable.Version, gameTable.Year, gameTable.Rating,
		gameTable.Completed, gameTable.Progress, gameTable.SourceKey, gameTable.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		game.ID, game.Title, game.Description, game.Category, game.Image,
		game.Developer, game.Size, game.Version, game.Year, game.Rating,
		game.Completed, game.Progress, game.SourceKey,
	).Scan(&game.UpdatedAt)

	return dberr.Wrap(err, "update_game")
}

// Delete removes a record. Own reviews go with it through the foreign key.
func (repository *postgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, gameTable.Table, gameTable.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_game")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
FindDerivedCopies returns the copies linked to a catalog entry by key or by
the case-insensitive title and developer pair.
*/
func (repository *postgresRepository) FindDerivedCopies(context context.Context, key, title, developer string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT %[2]s FROM %[1]s
		WHERE NOT %[3]s AND (
			%[4]s = $1
			OR (lower(btrim(%[5]s)) = lower(btrim($2)) AND lower(btrim(%[6]s)) = lower(btrim($3)))
		)
		ORDER BY %[7]s, %[2]s`,
		gameTable.Table, gameTable.ID, gameTable.IsPublic, gameTable.SourceKey,
		gameTable.Title, gameTable.Developer, gameTable.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, key, title, developer)
	if err != nil {
		return nil, dberr.Wrap(err, "find_derived_copies")
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, dberr.Wrap(err, "scan_derived_copies")
	}
	return ids, nil
}

// # Reviews

// InsertReview appends an own review to a library copy.
func (repository *postgresRepository) InsertReview(context context.Context, gameID string, review Review) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		reviewTable.Table, reviewTable.ID, reviewTable.GameID, reviewTable.Text, reviewTable.Rating, reviewTable.CreatedAt)

	_, err := repository.db.Exec(context, query, review.ID, gameID, review.Text, review.Rating, review.CreatedAt)
	return dberr.Wrap(err, "insert_review")
}

// InsertSharedReview appends a review to the shared pool.
func (repository *postgresRepository) InsertSharedReview(context context.Context, review *SharedReview) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sharedTable.Table,
		sharedTable.ID, sharedTable.ReviewID, sharedTable.Key, sharedTable.Title, sharedTable.Developer,
		sharedTable.Text, sharedTable.Rating, sharedTable.AuthorEmail, sharedTable.CreatedAt,
	)

	_, err := repository.db.Exec(context, query,
		review.ID, nullable(review.ReviewID), review.Key, review.Title, review.Developer,
		review.Text, review.Rating, review.AuthorEmail, review.CreatedAt,
	)
	return dberr.Wrap(err, "insert_shared_review")
}

// ListSharedReviews returns the newest pooled reviews for key.
func (repository *postgresRepository) ListSharedReviews(context context.Context, key string, limit int) ([]*SharedReview, error) {
	query := fmt.Sprintf(`
		SELECT %[2]s, COALESCE(%[3]s::text, ''), %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s, %[10]s
		FROM %[1]s
		WHERE %[4]s = $1
		ORDER BY %[10]s DESC, %[2]s DESC
		LIMIT $2`,
		sharedTable.Table,
		sharedTable.ID, sharedTable.ReviewID, sharedTable.Key, sharedTable.Title, sharedTable.Developer,
		sharedTable.Text, sharedTable.Rating, sharedTable.AuthorEmail, sharedTable.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, key, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_shared_reviews")
	}
	defer rows.Close()

	reviews := make([]*SharedReview, 0)
	for rows.Next() {
		review := &SharedReview{}
		if err := rows.Scan(
			&review.ID, &review.ReviewID, &review.Key, &review.Title, &review.Developer,
			&review.Text, &review.Rating, &review.AuthorEmail, &review.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_shared_review")
		}
		reviews = append(reviews, review)
	}
	return reviews, dberr.Wrap(rows.Err(), "iterate_shared_reviews")
}

// SharedRatings returns the pooled ratings for a batch of keys.
func (repository *postgresRepository) SharedRatings(context context.Context, keys []string) (map[string][]SharedRating, error) {
	result := make(map[string][]SharedRating, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`SELECT %s, COALESCE(%s::text, ''), %s FROM %s WHERE %s = ANY($1)`,
		sharedTable.Key, sharedTable.ReviewID, sharedTable.Rating, sharedTable.Table, sharedTable.Key)

	rows, err := repository.db.Query(context, query, keys)
	if err != nil {
		return nil, dberr.Wrap(err, "shared_ratings")
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var rating SharedRating
		if err := rows.Scan(&key, &rating.ReviewID, &rating.Rating); err != nil {
			return nil, dberr.Wrap(err, "scan_shared_rating")
		}
		result[key] = append(result[key], rating)
	}
	return result, dberr.Wrap(rows.Err(), "iterate_shared_ratings")
}

// # Statistics

// CountCopiesByKey groups library copies by key, most copied first.
func (repository *postgresRepository) CountCopiesByKey(context context.Context, limit int) ([]CopyCount, error) {
	query := fmt.Sprintf(`
		SELECT %[2]s, COUNT(*)
		FROM %[1]s
		WHERE NOT %[3]s
		GROUP BY %[2]s
		ORDER BY COUNT(*) DESC, %[2]s
		LIMIT $1`,
		gameTable.Table, gameTable.SourceKey, gameTable.IsPublic,
	)

	rows, err := repository.db.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "count_copies_by_key")
	}
	defer rows.Close()

	counts := make([]CopyCount, 0)
	for rows.Next() {
		var count CopyCount
		if err := rows.Scan(&count.Key, &count.Copies); err != nil {
			return nil, dberr.Wrap(err, "scan_copy_count")
		}
		counts = append(counts, count)
	}
	return counts, dberr.Wrap(rows.Err(), "iterate_copy_counts")
}

/*
RankSharedRatings ranks keys by pooled mean rating.

Description: The display title and developer are taken from the newest
review of each key. Ties are broken by review count, then key.
*/
func (repository *postgresRepository) RankSharedRatings(context context.Context, limit int, ascending bool) ([]RatedTitle, error) {
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT
			%[2]s,
			(array_agg(%[3]s ORDER BY %[6]s DESC))[1],
			(array_agg(%[4]s ORDER BY %[6]s DESC))[1],
			AVG(%[5]s)::float8,
			COUNT(*)
		FROM %[1]s
		GROUP BY %[2]s
		ORDER BY AVG(%[5]s) %[7]s, COUNT(*) DESC, %[2]s
		LIMIT $1`,
		sharedTable.Table, sharedTable.Key, sharedTable.Title, sharedTable.Developer,
		sharedTable.Rating, sharedTable.CreatedAt, direction,
	)

	rows, err := repository.db.Query(context, query, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "rank_shared_ratings")
	}
	defer rows.Close()

	ranked := make([]RatedTitle, 0)
	for rows.Next() {
		var title RatedTitle
		if err := rows.Scan(&title.Key, &title.Title, &title.Developer, &title.Average, &title.Reviews); err != nil {
			return nil, dberr.Wrap(err, "scan_rated_title")
		}
		ranked = append(ranked, title)
	}
	return ranked, dberr.Wrap(rows.Err(), "iterate_rated_titles")
}

// # Helpers

// queryGames runs a gameSelect query. withTotal expects a trailing total_count column.
func (repository *postgresRepository) queryGames(context context.Context, query string, withTotal bool, arguments ...any) ([]*Game, int, error) {
	rows, err := repository.db.Query(context, query, arguments...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	games := make([]*Game, 0)
	var total int
	for rows.Next() {
		var game *Game
		if withTotal {
			game, err = scanGame(rows, &total)
		} else {
			game, err = scanGame(rows)
		}
		if err != nil {
			return nil, 0, err
		}
		games = append(games, game)
	}
	return games, total, rows.Err()
}

// scanGame maps one gameSelect row. Extra destinations follow the review array.
func scanGame(row pgx.Row, extra ...any) (*Game, error) {
	game := &Game{}
	var reviewsJSON []byte

	destinations := []any{
		&game.ID, &game.Title, &game.Description, &game.Category, &game.Image,
		&game.Developer, &game.Size, &game.Version, &game.Year,
		&game.Rating, &game.Completed, &game.Progress, &game.IsPublic, &game.OwnerID,
		&game.SourceKey, &game.CreatedAt, &game.UpdatedAt,
		&reviewsJSON,
	}
	if err := row.Scan(append(destinations, extra...)...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(reviewsJSON, &game.Reviews); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal reviews: %w", err)
	}
	return game, nil
}

// likePattern escapes LIKE wildcards so the term matches literally.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}

// nullable maps an empty identifier to SQL NULL.
func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
