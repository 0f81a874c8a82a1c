package postgres

import (
	"database/sql"
	"errors"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if isNotFound(errors.New("connection refused")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestNullIntToIntPtr(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		got := nullIntToIntPtr(sql.NullInt64{Int64: 3, Valid: true})
		if got == nil || *got != 3 {
			t.Fatalf("unexpected pointer: %v", got)
		}
	})

	t.Run("null", func(t *testing.T) {
		if got := nullIntToIntPtr(sql.NullInt64{}); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})
}

func TestIntPtrToNullInt(t *testing.T) {
	t.Run("non-nil", func(t *testing.T) {
		v := 7
		got := intPtrToNullInt(&v)
		if !got.Valid || got.Int64 != 7 {
			t.Fatalf("unexpected null int: %+v", got)
		}
	})

	t.Run("nil", func(t *testing.T) {
		got := intPtrToNullInt(nil)
		if got.Valid {
			t.Fatalf("expected invalid null int, got %+v", got)
		}
	})
}
