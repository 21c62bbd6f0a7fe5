package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"calmcompanion/migrations"
)

func setupSQLite(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupSQLite(t)
	ctx := context.Background()

	var name string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", "kv_entries").Scan(&name)
	if err != nil {
		t.Errorf("Table kv_entries not found: %v", err)
	}

	// Running again must be a no-op
	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 recorded migration, got %d", count)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupSQLite(t)
	ctx := context.Background()
	upsert := db.Dialect.UpsertEntryQuery()

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, upsert, "calm_app_committed", "1")
		return err
	})
	if err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	boom := errors.New("boom")
	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, upsert, "calm_app_rolled_back", "1"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom error, got %v", err)
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_entries WHERE entry_key = ?", "calm_app_committed").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 committed row, got %d", count)
	}

	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv_entries WHERE entry_key = ?", "calm_app_rolled_back").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 rows after rollback, got %d", count)
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupSQLite(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, db.Dialect.UpsertEntryQuery(), "calm_app_shared", "hello"); err != nil {
		t.Fatalf("Failed to create test row: %v", err)
	}

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			var value string
			err := db.QueryRowContext(ctx, "SELECT entry_value FROM kv_entries WHERE entry_key = ?", "calm_app_shared").Scan(&value)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
			if value != "hello" {
				t.Errorf("Expected value 'hello', got '%s'", value)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
