package api

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Kind tags which external dependency a failure came from. Every failure is
// caught at the call site nearest the dependency, classified once, and
// rendered by the central ErrorHandler. No retries, no backoff.
type Kind string

const (
	KindExtraction Kind = "extraction"
	KindStorage    Kind = "storage"
	KindModel      Kind = "model"
	KindMissing    Kind = "missing"
)

type Error struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"error"`
}

func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

// Classify maps a dependency failure to the error taxonomy. Missing-resource
// conditions are user-correctable warnings, not failures.
func Classify(kind Kind, err error) Error {
	switch kind {
	case KindExtraction:
		return Error{Code: fiber.StatusUnprocessableEntity, Kind: kind, Message: "failed to extract text: " + err.Error()}
	case KindStorage:
		if errors.Is(err, sql.ErrNoRows) {
			return Classify(KindMissing, err)
		}
		return Error{Code: fiber.StatusBadGateway, Kind: kind, Message: "storage error: " + err.Error()}
	case KindModel:
		return Error{Code: fiber.StatusBadGateway, Kind: kind, Message: "model error: " + err.Error()}
	case KindMissing:
		return Error{Code: fiber.StatusNotFound, Kind: kind, Message: "resource not found"}
	default:
		return Error{Code: fiber.StatusInternalServerError, Kind: kind, Message: err.Error()}
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}

	code := fiber.StatusInternalServerError
	if fiberError, ok := err.(*fiber.Error); ok {
		code = fiberError.Code
	}
	apiError := NewError(code, err.Error())
	slog.Error("request failed", "code", apiError.Code, "message", apiError.Message)
	return c.Status(apiError.Code).JSON(apiError)
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrNoDocumentSelected() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Kind:    KindMissing,
		Message: "select a document first",
	}
}
