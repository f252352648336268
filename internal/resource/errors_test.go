package resource_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stockhubapp/stockhub/internal/resource"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		msgs        resource.Messages
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "unknown column",
			err:         &pgconn.PgError{Code: "42703"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Wrong fields",
		},
		{
			name:        "unknown table",
			err:         &pgconn.PgError{Code: "42P01"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Wrong fields",
		},
		{
			name:        "uniqueness violation",
			err:         &pgconn.PgError{Code: "23505"},
			wantStatus:  http.StatusConflict,
			wantMessage: "Already exists",
		},
		{
			name:        "referenced row absent",
			err:         &pgconn.PgError{Code: "23503"},
			wantStatus:  http.StatusNotFound,
			wantMessage: "Does not exist",
		},
		{
			name:        "store validation carries its own text",
			err:         &pgconn.PgError{Code: "P0001", Message: "due_back must be after started_at"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "due_back must be after started_at",
		},
		{
			name:        "no rows",
			err:         pgx.ErrNoRows,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Does not exist",
		},
		{
			name:        "gateway not found",
			err:         resource.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Does not exist",
		},
		{
			name:        "anything else",
			err:         errors.New("connection reset"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Something went wrong",
		},
		{
			name:        "custom message changes text only",
			err:         &pgconn.PgError{Code: "23505"},
			msgs:        resource.Messages{Conflict: "Serial number already tracked"},
			wantStatus:  http.StatusConflict,
			wantMessage: "Serial number already tracked",
		},
		{
			name:        "custom not-found message",
			err:         resource.ErrNotFound,
			msgs:        resource.Messages{NotFound: "Rental does not exist"},
			wantStatus:  http.StatusNotFound,
			wantMessage: "Rental does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resource.Classify(context.Background(), tt.err, tt.msgs)

			if got.Status != tt.wantStatus {
				t.Fatalf("status: got %d want %d", got.Status, tt.wantStatus)
			}

			if got.Message != tt.wantMessage {
				t.Fatalf("message: got %q want %q", got.Message, tt.wantMessage)
			}

			// the raw store error stays reachable for logging, never for clients
			if !errors.Is(got, tt.err) && got.Unwrap() == nil {
				t.Fatal("classified error should wrap its cause")
			}
		})
	}
}
