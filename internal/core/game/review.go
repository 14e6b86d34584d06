// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/jasht/internal/platform/apperr"
	"github.com/taibuivan/jasht/internal/platform/constants"
	"github.com/taibuivan/jasht/pkg/uuid"
)

// # Reviews

/*
SubmitReview records a review on the requester's own library copy.

Description: The review is appended to the copy, the copy's rating becomes
the mean of its own reviews, and a matching entry is added to the shared
pool under the key of the copy's current title and developer. All three
writes commit together.

Parameters:
  - context: context.Context
  - requester: Requester (Must own the copy)
  - gameID: string (Library copy UUID)
  - text: string (Trimmed, must not be blank)
  - rating: int (1..5)

Returns:
  - *Game: The updated copy
  - error: ErrInvalidReview, ErrNotFoundOrForbidden or ErrStoreUnavailable
*/
func (service *Service) SubmitReview(context context.Context, requester Requester, gameID, text string, rating int) (*Game, error) {

	// 1. Validation
	text = strings.TrimSpace(text)
	if err := validateReview(text, rating); err != nil {
		return nil, err
	}
	if requester.ID == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}
	if !uuid.Valid(gameID) {
		return nil, ErrNotFoundOrForbidden
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	var reviewed *Game
	err := service.repository.WithinTx(context, func(repository Repository) error {

		// 2. Only the owner may review a copy
		game, err := repository.LockByID(context, gameID)
		if err != nil {
			return notFoundOrForbidden(err)
		}
		if !game.IsLibraryCopy() || game.OwnerID != requester.ID {
			return ErrNotFoundOrForbidden
		}

		key, err := CanonicalKey(game.Title, game.Developer)
		if err != nil {
			return err
		}

		// 3. Own review and recomputed rating
		review := Review{ID: uuid.New(), Text: text, Rating: rating, CreatedAt: service.now().UTC()}
		if err := repository.InsertReview(context, game.ID, review); err != nil {
			return err
		}
		game.Reviews = append(game.Reviews, review)
		game.Rating = meanOwnRating(game.Reviews)
		if err := repository.Update(context, game); err != nil {
			return err
		}

		// 4. Shared pool
		reviewed = game
		return repository.InsertSharedReview(context, &SharedReview{
			ID:          uuid.New(),
			ReviewID:    review.ID,
			Key:         key,
			Title:       game.Title,
			Developer:   game.Developer,
			Text:        text,
			Rating:      rating,
			AuthorEmail: requester.Email,
			CreatedAt:   review.CreatedAt,
		})
	})
	if err != nil {
		return nil, storeError(err)
	}

	service.metrics.ReviewSubmitted()
	service.logger.InfoContext(context, "review_submitted",
		slog.String("game_id", reviewed.ID),
		slog.String("owner_id", requester.ID),
		slog.Int("rating", rating),
	)
	return reviewed, nil
}

/*
SharedReviews returns the newest pooled reviews for a key.

Description: The key is normalized first, so "Foo::Bar", "foo::bar" and the
legacy "foo|bar" read the same pool. A blank key yields an empty list.
*/
func (service *Service) SharedReviews(context context.Context, key string) ([]*SharedReview, error) {
	if strings.TrimSpace(key) == "" {
		return []*SharedReview{}, nil
	}

	normalized, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	reviews, err := service.repository.ListSharedReviews(context, normalized, constants.SharedReviewLimit)
	if err != nil {
		return nil, storeError(err)
	}
	return reviews, nil
}

/*
EffectiveRating combines a copy's own reviews with the shared pool of its key.

Returns:
  - float64: Mean rounded to one decimal, 0 without any review
  - error: ErrNotFoundOrForbidden or ErrStoreUnavailable
*/
func (service *Service) EffectiveRating(context context.Context, requester Requester, gameID string) (float64, error) {
	view, err := service.Get(context, requester, gameID)
	if err != nil {
		return 0, err
	}
	if view.EffectiveRating == nil {
		return 0, ErrNotFoundOrForbidden
	}
	return *view.EffectiveRating, nil
}

// effectiveRating averages own ratings with pooled ones. Pooled entries that
// originate from one of the copy's own reviews are counted once.
func effectiveRating(libraryCopy LibraryCopy, shared []SharedRating) float64 {
	own := make(map[string]struct{}, len(libraryCopy.Reviews))
	total, count := 0, 0

	for _, review := range libraryCopy.Reviews {
		own[review.ID] = struct{}{}
		total += review.Rating
		count++
	}
	for _, rating := range shared {
		if _, duplicate := own[rating.ReviewID]; duplicate && rating.ReviewID != "" {
			continue
		}
		total += rating.Rating
		count++
	}

	if count == 0 {
		return 0
	}
	return roundRating(float64(total) / float64(count))
}

// meanOwnRating is the rounded mean of a copy's own reviews.
func meanOwnRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, review := range reviews {
		total += review.Rating
	}
	return roundRating(float64(total) / float64(len(reviews)))
}

// validateReview checks text and rating bounds.
func validateReview(text string, rating int) error {
	var details []apperr.FieldError
	if text == "" {
		details = append(details, apperr.FieldError{Field: FieldText, Message: "This field is required"})
	}
	if len(text) > maxTextLength {
		details = append(details, apperr.FieldError{Field: FieldText, Message: "Review text is too long"})
	}
	if rating < 1 || rating > 5 {
		details = append(details, apperr.FieldError{Field: FieldRating, Message: "Must be between 1 and 5"})
	}
	if len(details) == 0 {
		return nil
	}

	invalid := ErrInvalidReview.Wrap(nil)
	invalid.Details = details
	return invalid
}
