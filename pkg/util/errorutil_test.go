package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"domain error kept", NewAlreadyReviewed(nil), CodeAlreadyReviewed, http.StatusConflict},
		{"wrapped domain error", fmt.Errorf("review: %w", NewForbidden("no")), CodeForbidden, http.StatusForbidden},
		{"no rows", fmt.Errorf("load: %w", pgx.ErrNoRows), CodeNotFound, http.StatusNotFound},
		{"unknown", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
		{"capacity", NewCapacityExceeded("full", nil), CodeCapacityExceeded, http.StatusUnprocessableEntity},
		{"malformed uuid", fmt.Errorf("load ticket: %w", &pgconn.PgError{Code: "22P02"}), CodeValidation, http.StatusBadRequest},
		{"other pg error", &pgconn.PgError{Code: "57014"}, CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.wantCode || got.HTTPStatus != tt.wantStatus {
				t.Fatalf("got %s/%d, want %s/%d", got.Code, got.HTTPStatus, tt.wantCode, tt.wantStatus)
			}
		})
	}
}

func TestMapErrorNil(t *testing.T) {
	if err := MapError(nil); err != nil {
		t.Fatalf("MapError(nil) = %v", err)
	}
	if ToDomainError(nil) != nil {
		t.Fatalf("ToDomainError(nil) must be nil")
	}
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("internal error must wrap its cause")
	}
	if CodeOf(err) != CodeInternal || CodeOf(cause) != "" {
		t.Fatalf("unexpected codes %q %q", CodeOf(err), CodeOf(cause))
	}
}

func TestInvalidMembersDetails(t *testing.T) {
	var de *DomainError
	if !errors.As(NewInvalidMembers([]string{"u9"}), &de) {
		t.Fatalf("expected DomainError")
	}
	ids, ok := de.Details["invalid_members"].([]string)
	if !ok || len(ids) != 1 || ids[0] != "u9" {
		t.Fatalf("unexpected details %v", de.Details)
	}
}
