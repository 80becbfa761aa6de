package migrate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bher20/gasbillmanager/internal/storage"
)

// Runs the sqlite migrations and then opens the gorm layer against the
// same file. Linking both paths into one binary also checks that they
// share a single registration of the "sqlite" database/sql driver.
func TestUpThenOpenSqlite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "gasbill.db")

	if err := Up(ctx, "sqlite", dsn); err != nil {
		t.Fatalf("Up: %v", err)
	}
	// A second Up over an applied schema is a no-op, not an error.
	if err := Up(ctx, "sqlite", dsn); err != nil {
		t.Fatalf("second Up: %v", err)
	}

	st, err := storage.Open(ctx, storage.Config{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpenDBDriverAliases(t *testing.T) {
	cases := map[string]string{
		"sqlite3":      "sqlite",
		"postgres":     "pgx",
		"postgrespool": "pgx",
	}
	for alias, want := range cases {
		got := normalizeDriver(alias)
		if got != want {
			t.Errorf("normalizeDriver(%q) = %q, want %q", alias, got, want)
		}
	}
}
