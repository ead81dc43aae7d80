package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapWriteErr(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "task_submissions_user_id_task_id_key"}
	if err := mapWriteErr(fmt.Errorf("insert: %w", unique)); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	fk := &pgconn.PgError{Code: "23503"}
	if err := mapWriteErr(fk); errors.Is(err, ErrDuplicate) {
		t.Fatalf("foreign key violation must not map to ErrDuplicate")
	}

	if err := mapWriteErr(nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestExpectRows(t *testing.T) {
	if err := expectRows(pgconn.NewCommandTag("UPDATE 0"), nil); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	if err := expectRows(pgconn.NewCommandTag("UPDATE 1"), nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
