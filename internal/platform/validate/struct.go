// Copyright (c) 2026 Jasht. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/taibuivan/jasht/internal/platform/apperr"
)

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

// structEngine lazily builds the shared validator. It reports JSON field names
// so that Details match the payload the client sent.
func structEngine() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
	})
	return engine
}

// Struct validates target against its `validate` struct tags.
//
// It returns a VALIDATION_ERROR [apperr.AppError] listing every failing field,
// or nil when the payload is valid.
func Struct(target any) error {
	err := structEngine().Struct(target)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperr.Internal(fmt.Errorf("validate: %w", err))
	}

	details := make([]apperr.FieldError, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		details = append(details, apperr.FieldError{
			Field:   fieldError.Field(),
			Message: friendlyMessage(fieldError),
		})
	}

	return apperr.ValidationError(failedMessage, details...)
}

func friendlyMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		if fieldError.Kind() == reflect.String {
			return fmt.Sprintf("Minimum %s characters", fieldError.Param())
		}
		return "Must be at least " + fieldError.Param()
	case "max":
		if fieldError.Kind() == reflect.String {
			return fmt.Sprintf("Maximum %s characters", fieldError.Param())
		}
		return "Must be at most " + fieldError.Param()
	case "gte":
		return "Must be greater than or equal to " + fieldError.Param()
	case "lte":
		return "Must be less than or equal to " + fieldError.Param()
	case "uuid":
		return "Must be a valid UUID"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fieldError.Param(), " ", ", ")
	case "url":
		return "Must be a valid URL"
	default:
		return "Is invalid"
	}
}
