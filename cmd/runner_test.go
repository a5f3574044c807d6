package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/chalet/internal/favorites"
	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/repositories"
	"github.com/desertthunder/chalet/internal/services"
	"github.com/desertthunder/chalet/internal/shared"
	"github.com/desertthunder/chalet/internal/tasks"
	tu "github.com/desertthunder/chalet/internal/testing"
	"github.com/desertthunder/chalet/internal/testing/fake"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			backend := fake.NewBackend()
			store := favorites.NewLocalStore(favorites.NewMemoryCache(), nil)

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Backend: backend,
				Store:   store,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.backend != backend {
				t.Error("expected backend to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be created for the backend")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil store uses memory", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.store == nil {
				t.Fatal("expected a store")
			}
			if _, ok := runner.store.Cache().(*favorites.MemoryCache); !ok {
				t.Errorf("expected memory cache, got %T", runner.store.Cache())
			}
		})

		t.Run("without backend has no engine", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.engine != nil {
				t.Error("expected no engine without a backend")
			}
			if err := runner.requireBackend(); err == nil {
				t.Error("expected requireBackend to fail")
			}
		})
	})

	t.Run("restoreSession", func(t *testing.T) {
		t.Run("restores the latest active session", func(t *testing.T) {
			db := setupTestDB(t)
			repo := repositories.NewSessionRepository(db)
			if err := repo.Create(models.NewSession(0, "stored-token", "password")); err != nil {
				t.Fatalf("failed to create session: %v", err)
			}

			runner := NewRunner(RunnerOpts{DB: db, Backend: fake.NewBackend()})

			if !runner.authenticated() {
				t.Fatal("expected restored session to be authenticated")
			}
			if runner.session.Token() != "stored-token" {
				t.Errorf("expected stored-token, got %s", runner.session.Token())
			}
		})

		t.Run("ignores expired sessions", func(t *testing.T) {
			db := setupTestDB(t)
			repo := repositories.NewSessionRepository(db)
			session := models.NewSession(0, "old-token", "password")
			past := time.Now().Add(-time.Hour)
			session.SetExpiresAt(&past)
			if err := repo.Create(session); err != nil {
				t.Fatalf("failed to create session: %v", err)
			}

			runner := NewRunner(RunnerOpts{DB: db})

			if runner.authenticated() {
				t.Error("expected expired session to be ignored")
			}
		})

		t.Run("empty database", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: setupTestDB(t)})

			if runner.authenticated() {
				t.Error("expected no session")
			}
		})
	})

	t.Run("saveSession", func(t *testing.T) {
		t.Run("replaces previous sessions", func(t *testing.T) {
			db := setupTestDB(t)
			repo := repositories.NewSessionRepository(db)
			repo.Create(models.NewSession(0, "first", "password"))

			runner := NewRunner(RunnerOpts{DB: db})
			user := &models.User{ID: "u1", Email: "ana@example.com", Role: models.RoleAdmin}
			if err := runner.saveSession(&services.AuthResult{Success: true, Token: "second", User: user}, "google"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			active, err := repo.List(nil)
			if err != nil {
				t.Fatalf("failed to list sessions: %v", err)
			}
			if len(active) != 1 || active[0].Token() != "second" {
				t.Fatalf("expected only the new session, got %d", len(active))
			}
			if active[0].Role() != models.RoleAdmin || active[0].Provider() != "google" {
				t.Errorf("unexpected session %s/%s", active[0].Role(), active[0].Provider())
			}
		})

		t.Run("without database keeps the session in memory", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if err := runner.saveSession(&services.AuthResult{Success: true, Token: "tok"}, "password"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !runner.authenticated() {
				t.Error("expected in-memory session")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "auth", "chalets", "favorites", "contact", "dashboard", "tui"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("track", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Backend: fake.NewBackend(models.Chalet{ID: "c1"})})

		updates, finish := runner.track(false)
		if _, err := runner.engine.Catalog(context.Background(), updates, tasks.Filter{}, 1, 9); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		finish()

		if !strings.Contains(output.String(), "📥") {
			t.Errorf("expected progress output, got %q", output.String())
		}
	})
}
