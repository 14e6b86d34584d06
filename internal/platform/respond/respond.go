// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package respond writes every JSON body the API produces.

Successful responses are wrapped as {"data": ...}, list endpoints add
{"meta": ...}, and failures are {"error", "code", "details"}. Handlers never
encode JSON themselves.
*/
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/taibuivan/jasht/internal/platform/apperr"
	"github.com/taibuivan/jasht/internal/platform/ctxutil"
	"github.com/taibuivan/jasht/pkg/pagination"
)

// # Envelopes

// SuccessEnvelope wraps a single resource or an ad-hoc payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// PaginatedEnvelope wraps one page of a list.
type PaginatedEnvelope struct {
	Data any             `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// # Success

// JSON writes payload as-is with the given status.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data})
}

func Paginated(writer http.ResponseWriter, data any, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, PaginatedEnvelope{Data: data, Meta: metadata})
}

func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// # Failure

// Error renders err as an [ErrorEnvelope].
//
// Errors that are not an [*apperr.AppError] become a generic 500 so internal
// messages never leak. Every 5xx is logged with the request ID and captured
// on the request's Sentry hub.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		logServerError(request, appError)
		reportToSentry(request, appError)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:   appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}

func logServerError(request *http.Request, appError *apperr.AppError) {
	attributes := []any{
		slog.String("code", appError.Code),
		slog.String("request_id", ctxutil.GetRequestID(request.Context())),
	}
	if appError.Cause != nil {
		attributes = append(attributes, slog.String("cause", appError.Cause.Error()))
	}
	ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "api_server_error", attributes...)
}

// reportToSentry is inert unless the error reporting middleware attached a hub.
func reportToSentry(request *http.Request, appError *apperr.AppError) {
	hub := sentry.GetHubFromContext(request.Context())
	if hub == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("code", appError.Code)
		scope.SetTag("request_id", ctxutil.GetRequestID(request.Context()))

		var captured error = appError
		if appError.Cause != nil {
			captured = appError.Cause
		}
		hub.CaptureException(captured)
	})
}
