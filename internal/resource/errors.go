package resource

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by the gateway when a single-row lookup matches
// nothing.
var ErrNotFound = errors.New("row not found")

// Error is a classified, client-safe error. The original store error never
// reaches a response body; it is logged once at classification time.
type Error struct {
	Status  int
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Messages lets a resource configuration override the default message per
// category. Overrides change text only, never the status.
type Messages struct {
	BadRequest string
	Conflict   string
	NotFound   string
	Internal   string
	// Deleted is the success message for a first-time delete.
	Deleted string
}

const (
	pgUndefinedColumn  = "42703"
	pgUndefinedTable   = "42P01"
	pgUniqueViolation  = "23505"
	pgForeignKeyAbsent = "23503"
	pgRaiseException   = "P0001"
)

// Classify maps a store error to a client-safe Error, merging caller
// message overrides. The raw error is logged here with full detail so the
// response body can stay generic.
func Classify(ctx context.Context, err error, msgs Messages) *Error {
	out := classify(err, msgs)

	slog.Default().ErrorContext(ctx, "store_error",
		"status", out.Status,
		"code", out.Code,
		"err", err,
	)

	return out
}

func classify(err error, msgs Messages) *Error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
		return &Error{
			Status:  http.StatusNotFound,
			Code:    "not_found",
			Message: orDefault(msgs.NotFound, "Does not exist"),
			cause:   err,
		}
	}

	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedColumn, pgUndefinedTable:
			return &Error{
				Status:  http.StatusBadRequest,
				Code:    "invalid_fields",
				Message: orDefault(msgs.BadRequest, "Wrong fields"),
				cause:   err,
			}
		case pgUniqueViolation:
			return &Error{
				Status:  http.StatusConflict,
				Code:    "already_exists",
				Message: orDefault(msgs.Conflict, "Already exists"),
				cause:   err,
			}
		case pgForeignKeyAbsent:
			return &Error{
				Status:  http.StatusNotFound,
				Code:    "not_found",
				Message: orDefault(msgs.NotFound, "Does not exist"),
				cause:   err,
			}
		case pgRaiseException:
			// Store-raised validation carries its own human-readable text.
			return &Error{
				Status:  http.StatusBadRequest,
				Code:    "validation_failed",
				Message: orDefault(msgs.BadRequest, pgErr.Message),
				cause:   err,
			}
		}
	}

	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: orDefault(msgs.Internal, "Something went wrong"),
		cause:   err,
	}
}

func orDefault(custom, fallback string) string {
	if custom != "" {
		return custom
	}
	return fallback
}
