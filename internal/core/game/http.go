// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package game

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/jasht/internal/platform/constants"
	"github.com/taibuivan/jasht/internal/platform/middleware"
	requestutil "github.com/taibuivan/jasht/internal/platform/request"
	"github.com/taibuivan/jasht/internal/platform/respond"
	"github.com/taibuivan/jasht/internal/platform/sec"
	"github.com/taibuivan/jasht/internal/platform/validate"
	"github.com/taibuivan/jasht/pkg/convert"
	"github.com/taibuivan/jasht/pkg/pagination"
)

// # Routing
//
// Public routes browse the catalog and shared reviews without a token.
// Member routes work on the caller's library, copies and reviews. Admin
// routes curate the catalog, repair propagation and read statistics.

// # Handler Implementation

// Handler implements the HTTP layer for games.
type Handler struct {
	service *Service
}

// NewHandler constructs a new game [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the game endpoints. It is mounted at the API root.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Catalog
	router.Get("/catalog", handler.listCatalog)
	router.Get("/catalog/{identifier}", handler.getCatalogEntry)
	router.Get("/shared-reviews", handler.listSharedReviews)

	// ## Library (Authenticated)
	router.Group(func(member chi.Router) {
		member.Use(middleware.RequireRole(sec.RoleMember))

		member.Get("/games", handler.listLibrary)
		member.Post("/games", handler.createGame)
		member.Get("/games/{id}", handler.getGame)
		member.Patch("/games/{id}", handler.updateGame)
		member.Put("/games/{id}", handler.updateGame)
		member.Delete("/games/{id}", handler.deleteGame)
		member.Post("/games/{id}/reviews", handler.submitReview)
		member.Get("/games/{id}/rating", handler.getEffectiveRating)
	})

	// ## Administration
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Get("/admin/stats", handler.getStats)
		admin.Post("/admin/catalog/{id}/propagate", handler.propagateEdit)
		admin.Post("/admin/catalog/propagate-delete", handler.propagateDelete)
	})

	return router
}

// # Request Payloads

// createGameRequest serves both roles of POST /games. Administrators send
// catalog details, members send a reference to a catalog entry.
type createGameRequest struct {
	Title       string   `json:"title" validate:"max=200"`
	Description string   `json:"description" validate:"max=4000"`
	Category    string   `json:"category" validate:"max=100"`
	Image       string   `json:"image" validate:"max=2048"`
	Developer   *string  `json:"developer" validate:"omitempty,max=200"`
	Size        string   `json:"size" validate:"max=50"`
	Version     string   `json:"version" validate:"max=50"`
	Year        *int     `json:"year" validate:"omitempty,gte=1950,lte=2100"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`

	SourceID  string `json:"source_id" validate:"omitempty,uuid"`
	SourceKey string `json:"source_key" validate:"max=420"`
}

func (request createGameRequest) details() Details {
	details := Details{
		Title:       request.Title,
		Description: request.Description,
		Category:    request.Category,
		Image:       request.Image,
		Size:        request.Size,
		Version:     request.Version,
		Year:        request.Year,
	}
	if request.Developer != nil {
		details.Developer = *request.Developer
	}
	return details
}

func (request createGameRequest) sourceRef() SourceRef {
	return SourceRef{
		ID:        request.SourceID,
		Key:       request.SourceKey,
		Title:     request.Title,
		Developer: request.Developer,
	}
}

type reviewRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

type propagateEditRequest struct {
	OldKey       string `json:"old_key"`
	OldTitle     string `json:"old_title"`
	OldDeveloper string `json:"old_developer"`
}

type propagateDeleteRequest struct {
	Key       string `json:"key" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Developer string `json:"developer"`
}

// # Catalog Endpoints

/*
GET /api/v1/catalog.

Description: Lists public entries, newest first.

Request:
  - search: string (Matches title, category or developer)
  - page: int
  - limit: int (At most 48)

Response:
  - 200: []Game
*/
func (handler *Handler) listCatalog(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request, catalogPages)

	games, total, err := handler.service.ListCatalog(request.Context(), searchFilter(request), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, games, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/catalog/{identifier}.

Description: Resolves an entry by UUID, key ("title::developer") or title.

Response:
  - 200: Game
  - 404: SOURCE_NOT_FOUND
*/
func (handler *Handler) getCatalogEntry(writer http.ResponseWriter, request *http.Request) {
	entry, err := handler.service.ResolveCatalog(request.Context(), requestutil.Param(request, "identifier"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
GET /api/v1/shared-reviews?key=title::developer.

Response:
  - 200: []SharedReview (Newest first, at most 50)
*/
func (handler *Handler) listSharedReviews(writer http.ResponseWriter, request *http.Request) {
	reviews, err := handler.service.SharedReviews(request.Context(), request.URL.Query().Get(FieldKey))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, reviews)
}

// # Library Endpoints

/*
GET /api/v1/games.

Description: Lists the caller's library copies with effective ratings.
*/
func (handler *Handler) listLibrary(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request, pagination.Standard)

	views, total, err := handler.service.ListLibrary(request.Context(), requester(request), searchFilter(request), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, views, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
POST /api/v1/games.

Description: Administrators upsert a catalog entry. Members copy a catalog
entry into their library.

Response:
  - 201: Game (New entry or copy)
  - 200: Game (Existing catalog entry updated)
  - 404: SOURCE_NOT_FOUND
  - 409: ALREADY_IN_LIBRARY
*/
func (handler *Handler) createGame(writer http.ResponseWriter, request *http.Request) {
	var body createGameRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	caller := requester(request)

	// Catalog curation
	if caller.IsAdmin() {
		entry, created, err := handler.service.UpsertPublic(request.Context(), caller, body.details(), body.Rating)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		if !created {
			respond.OK(writer, entry)
			return
		}
		respond.Created(writer, entry)
		return
	}

	// Library copy
	libraryCopy, err := handler.service.CopyToLibrary(request.Context(), caller, body.sourceRef())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, libraryCopy)
}

// GET /api/v1/games/{id}.
func (handler *Handler) getGame(writer http.ResponseWriter, request *http.Request) {
	view, err := handler.service.Get(request.Context(), requester(request), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
PATCH /api/v1/games/{id}.

Description: Owners may change progress and completed on their copies.
Administrators edit catalog entries; the response arrives after derived
copies have been updated.
*/
func (handler *Handler) updateGame(writer http.ResponseWriter, request *http.Request) {
	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	game, err := handler.service.Update(request.Context(), requester(request), requestutil.Param(request, "id"), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, game)
}

/*
DELETE /api/v1/games/{id}.

Response:
  - 200: PropagationResult (Copies removed with a catalog entry)
*/
func (handler *Handler) deleteGame(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.Delete(request.Context(), requester(request), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
POST /api/v1/games/{id}/reviews.

Request:
  - text: string (Required)
  - rating: int (1..5)

Response:
  - 200: Game (The copy with its recomputed rating)
  - 400: INVALID_REVIEW
*/
func (handler *Handler) submitReview(writer http.ResponseWriter, request *http.Request) {
	var body reviewRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	game, err := handler.service.SubmitReview(request.Context(), requester(request), requestutil.Param(request, "id"), body.Text, body.Rating)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, game)
}

// GET /api/v1/games/{id}/rating.
func (handler *Handler) getEffectiveRating(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	rating, err := handler.service.EffectiveRating(request.Context(), requester(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"id": id, "effective_rating": rating})
}

// # Admin Endpoints

/*
GET /api/v1/admin/stats?limit=20.

Response:
  - 200: Dashboard
*/
func (handler *Handler) getStats(writer http.ResponseWriter, request *http.Request) {
	limit := convert.ToInt(request.URL.Query().Get("limit"))

	dashboard, err := handler.service.Stats(request.Context(), requester(request), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, dashboard)
}

/*
POST /api/v1/admin/catalog/{id}/propagate.

Description: Re-applies a catalog entry to its derived copies. Empty old
fields default to the entry's current key, title and developer.
*/
func (handler *Handler) propagateEdit(writer http.ResponseWriter, request *http.Request) {
	var body propagateEditRequest
	if request.ContentLength != 0 {
		if err := requestutil.DecodeJSON(request, &body); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	result, err := handler.service.PropagateEdit(request.Context(), requester(request),
		body.OldKey, body.OldTitle, body.OldDeveloper, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// POST /api/v1/admin/catalog/propagate-delete removes copies left behind by a deleted entry.
func (handler *Handler) propagateDelete(writer http.ResponseWriter, request *http.Request) {
	var body propagateDeleteRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.PropagateDelete(request.Context(), requester(request), body.Key, body.Title, body.Developer)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// # Helpers

func requester(request *http.Request) Requester {
	return RequesterFromClaims(requestutil.Claims(request))
}

// searchFilter accepts both "search" and the shorter "q".
func searchFilter(request *http.Request) Filter {
	query := request.URL.Query()
	search := query.Get("search")
	if search == "" {
		search = query.Get("q")
	}
	return Filter{Query: strings.TrimSpace(search)}
}

// catalogPages caps catalog listings at one page of the storefront grid.
var catalogPages = pagination.Bounds{Default: constants.CatalogPageLimit, Max: constants.CatalogPageLimit}
