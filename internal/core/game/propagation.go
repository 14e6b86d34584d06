// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"context"
	"log/slog"

	"github.com/taibuivan/jasht/internal/platform/metrics"
	"github.com/taibuivan/jasht/pkg/uuid"
)

// # Propagation

const (
	operationEdit   = "edit"
	operationDelete = "delete"
)

/*
PropagateEdit pushes the shared fields of a catalog entry to its derived copies.

Description: Copies are matched by the old key, or by the old title and
developer for copies stored under an outdated key. Each matched copy is
rewritten in its own savepoint: details, rating and key follow the entry
while progress, reviews and ownership stay as they are. A copy that cannot
be written is logged and skipped. Running the same edit twice leaves the same state.

Parameters:
  - context: context.Context
  - requester: Requester (Must be an administrator)
  - oldKey: string (Key the copies were derived under)
  - oldTitle: string
  - oldDeveloper: string
  - entryID: string (The catalog entry holding the new shared fields)

Returns:
  - PropagationResult: Matched, applied and failed copy counts
  - error: ErrAdminOnly, ErrNotFoundOrForbidden or ErrStoreUnavailable
*/
func (service *Service) PropagateEdit(context context.Context, requester Requester, oldKey, oldTitle, oldDeveloper, entryID string) (PropagationResult, error) {
	if !requester.IsAdmin() {
		return PropagationResult{}, ErrAdminOnly
	}
	if !uuid.Valid(entryID) {
		return PropagationResult{}, ErrNotFoundOrForbidden
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	var result PropagationResult
	err := service.repository.WithinTx(context, func(repository Repository) error {
		entry, err := repository.LockByID(context, entryID)
		if err != nil {
			return notFoundOrForbidden(err)
		}
		if !entry.IsCatalogEntry() {
			return ErrNotFoundOrForbidden
		}

		if oldKey == "" {
			oldKey = entry.SourceKey
		} else if oldKey, err = NormalizeKey(oldKey); err != nil {
			return err
		}
		if oldTitle == "" {
			oldTitle, oldDeveloper = entry.Title, entry.Developer
		}

		result, err = service.propagateEdit(context, repository, oldKey, oldTitle, oldDeveloper, entry)
		return err
	})
	if err != nil {
		return PropagationResult{}, storeError(err)
	}
	return result, nil
}

/*
PropagateDelete removes every copy derived from a catalog entry that no
longer exists. Shared reviews under the key are kept.
*/
func (service *Service) PropagateDelete(context context.Context, requester Requester, key, title, developer string) (PropagationResult, error) {
	if !requester.IsAdmin() {
		return PropagationResult{}, ErrAdminOnly
	}

	normalized, err := NormalizeKey(key)
	if err != nil {
		return PropagationResult{}, err
	}

	context, cancel := service.withDeadline(context)
	defer cancel()

	var result PropagationResult
	err = service.repository.WithinTx(context, func(repository Repository) error {
		result, err = service.propagateDelete(context, repository, normalized, title, developer)
		return err
	})
	if err != nil {
		return PropagationResult{}, storeError(err)
	}
	return result, nil
}

// propagateEdit runs the edit fan-out on an open transaction.
func (service *Service) propagateEdit(context context.Context, repository Repository, oldKey, oldTitle, oldDeveloper string, entry *Game) (PropagationResult, error) {
	ids, err := repository.FindDerivedCopies(context, oldKey, oldTitle, oldDeveloper)
	if err != nil {
		return PropagationResult{}, err
	}

	result := PropagationResult{Matched: len(ids)}
	for _, id := range ids {
		err := repository.WithinTx(context, func(record Repository) error {
			game, err := record.LockByID(context, id)
			if err != nil {
				return err
			}
			if !game.IsLibraryCopy() {
				return nil
			}

			game.Details = cloneDetails(entry.Details)
			game.SourceKey = entry.SourceKey
			game.Rating = entry.Rating
			return record.Update(context, game)
		})
		service.countRecord(context, &result, operationEdit, id, err)
	}
	return result, nil
}

// propagateDelete runs the delete fan-out on an open transaction.
func (service *Service) propagateDelete(context context.Context, repository Repository, key, title, developer string) (PropagationResult, error) {
	ids, err := repository.FindDerivedCopies(context, key, title, developer)
	if err != nil {
		return PropagationResult{}, err
	}

	result := PropagationResult{Matched: len(ids)}
	for _, id := range ids {
		err := repository.WithinTx(context, func(record Repository) error {
			return record.Delete(context, id)
		})
		service.countRecord(context, &result, operationDelete, id, err)
	}
	return result, nil
}

// countRecord tallies one fan-out outcome. Failures are logged, never returned.
func (service *Service) countRecord(context context.Context, result *PropagationResult, operation, id string, err error) {
	if err == nil {
		result.Applied++
		service.metrics.PropagationRecord(operation, metrics.OutcomeApplied)
		return
	}

	result.Failed++
	service.metrics.PropagationRecord(operation, metrics.OutcomeFailed)
	service.logger.WarnContext(context, "propagation_record_failed",
		slog.String("operation", operation),
		slog.String("game_id", id),
		slog.Any("error", err),
	)
}
