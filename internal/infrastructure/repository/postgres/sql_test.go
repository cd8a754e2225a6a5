package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows to be not found")
	}
	if !isNotFound(fmt.Errorf("get actor: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("pq: relation actors does not exist")) {
		t.Fatalf("expected unrelated error to be found")
	}
}

func TestOptionalString(t *testing.T) {
	if got := optionalString("  "); got != nil {
		t.Fatalf("expected nil for blank value, got %q", *got)
	}
	got := optionalString(" boom ")
	if got == nil || *got != "boom" {
		t.Fatalf("unexpected optional string: %v", got)
	}
}

func TestNullIntRoundTrip(t *testing.T) {
	if got := nullIntToPointer(sql.NullInt64{}); got != nil {
		t.Fatalf("expected nil rank, got %d", *got)
	}
	rank := 3
	value := pointerToNullInt(&rank)
	if !value.Valid || value.Int64 != 3 {
		t.Fatalf("unexpected null int: %+v", value)
	}
	if back := nullIntToPointer(value); back == nil || *back != 3 {
		t.Fatalf("unexpected rank: %v", back)
	}
	if pointerToNullInt(nil).Valid {
		t.Fatalf("expected invalid null int for nil rank")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert purchase: %w", &pq.Error{Code: "23505"})
	if !isUniqueViolation(err) {
		t.Fatalf("expected unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if isUniqueViolation(fmt.Errorf("boom")) {
		t.Fatalf("plain error is not a unique violation")
	}
}
