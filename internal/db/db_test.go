package db

import (
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestItemsCountCheck(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(
		`INSERT INTO items (code, name, description, location, count) VALUES ('X', 'n', 'd', 'l', -1)`,
	)
	if err == nil {
		t.Fatal("expected CHECK constraint to reject a negative count")
	}
}

func TestItemsCountDefault(t *testing.T) {
	database := NewTestDB(t)

	if _, err := database.Exec(
		`INSERT INTO items (code, name, description, location) VALUES ('X', 'n', 'd', 'l')`,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var count int
	if err := database.QueryRow(`SELECT count FROM items WHERE code = 'X'`).Scan(&count); err != nil {
		t.Fatalf("select: %v", err)
	}
	if count != 0 {
		t.Errorf("expected default count 0, got %d", count)
	}
}

func TestJournalModeWAL(t *testing.T) {
	database := NewTestDB(t)

	var mode string
	if err := database.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("reading journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected journal_mode wal, got %q", mode)
	}
}
