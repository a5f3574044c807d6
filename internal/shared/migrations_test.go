package shared

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" {
				t.Errorf("migration %s missing up SQL", m)
			}
			if m.Down == "" {
				t.Errorf("migration %s missing down SQL", m)
			}
		}

		if got := migrations[0].String(); got != "0001_create_local_storage" {
			t.Errorf("expected first migration 0001_create_local_storage, got %s", got)
		}
	})

	t.Run("Migrate Logs Applied Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		var buf bytes.Buffer
		logger := log.New(&buf)

		applied, err := Migrate(db, logger)
		if err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		migrations, _ := loadMigrations()
		if len(applied) != len(migrations) {
			t.Fatalf("expected %d applied migrations, got %d", len(migrations), len(applied))
		}
		for _, m := range migrations {
			if !strings.Contains(buf.String(), "name="+m.Name) {
				t.Errorf("expected log line for %s, got %q", m, buf.String())
			}
		}

		buf.Reset()
		again, err := Migrate(db, logger)
		if err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}
		if len(again) != 0 {
			t.Errorf("expected nothing to apply, got %v", again)
		}
		if buf.Len() != 0 {
			t.Errorf("expected no log output, got %q", buf.String())
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		before, err := AppliedMigrations(db)
		if err != nil {
			t.Fatalf("failed to list migrations: %v", err)
		}
		if len(before) == 0 {
			t.Fatal("expected at least one migration to be applied")
		}
		if before[0].AppliedAt.IsZero() {
			t.Error("expected applied_at to be recorded")
		}

		for _, table := range []string{"kv_store", "sessions", "sessions_sequence"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		var buf bytes.Buffer
		m, err := RollbackMigration(db, log.New(&buf))
		if err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}
		if m.Version != before[len(before)-1].Version || m.Name != "create_sessions" {
			t.Errorf("expected latest migration to be rolled back, got %s", m)
		}
		if !strings.Contains(buf.String(), "rolled back migration") {
			t.Errorf("expected rollback log line, got %q", buf.String())
		}

		after, err := AppliedMigrations(db)
		if err != nil {
			t.Fatalf("failed to list migrations after rollback: %v", err)
		}
		if len(after) != len(before)-1 {
			t.Errorf("expected %d applied migrations after rollback, got %d", len(before)-1, len(after))
		}

		if _, err := db.Exec("SELECT 1 FROM sessions LIMIT 1"); err == nil {
			t.Error("sessions table should be dropped by rollback")
		}
		if _, err := db.Exec("SELECT 1 FROM kv_store LIMIT 1"); err != nil {
			t.Errorf("kv_store should survive a single rollback: %v", err)
		}
	})

	t.Run("Rollback Everything", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		for range migrations {
			if _, err := RollbackMigration(db, nil); err != nil {
				t.Fatalf("failed to rollback migration: %v", err)
			}
		}

		if _, err := RollbackMigration(db, nil); !errors.Is(err, ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations, got %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM kv_store LIMIT 1"); err == nil {
			t.Error("kv_store should be dropped once every migration is reverted")
		}
	})

	t.Run("Rollback Fresh Database", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if _, err := RollbackMigration(db, nil); !errors.Is(err, ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations, got %v", err)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		if err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})

	t.Run("splitStatements", func(t *testing.T) {
		tests := []struct {
			name   string
			script string
			want   []string
		}{
			{
				name:   "Strips Comments",
				script: "-- header\nCREATE TABLE a (id INTEGER); -- trailing\n",
				want:   []string{"CREATE TABLE a (id INTEGER)"},
			},
			{
				name:   "Multiple Statements",
				script: "CREATE TABLE a (id INTEGER);\nCREATE INDEX idx_a ON a(id);",
				want:   []string{"CREATE TABLE a (id INTEGER)", "CREATE INDEX idx_a ON a(id)"},
			},
			{
				name:   "Only Comments",
				script: "-- nothing here\n",
				want:   nil,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := splitStatements(tt.script); !reflect.DeepEqual(got, tt.want) {
					t.Errorf("splitStatements() = %q, want %q", got, tt.want)
				}
			})
		}
	})
}
