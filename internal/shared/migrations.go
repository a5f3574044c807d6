package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Schema changes live in sql/ as NNNN_name_up.sql and NNNN_name_down.sql pairs.
//
//go:embed sql/*.sql
var migrationFiles embed.FS

var migrationFile = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)_(up|down)\.sql$`)

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

func (m Migration) String() string {
	return fmt.Sprintf("%04d_%s", m.Version, m.Name)
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version   int
	AppliedAt time.Time
}

// loadMigrations reads the embedded migration pairs sorted by version.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		match := migrationFile.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			continue
		}

		version, _ := strconv.Atoi(match[1])
		content, err := migrationFiles.ReadFile(path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		m := byVersion[version]
		switch {
		case m == nil:
			m = &Migration{Version: version, Name: match[2]}
			byVersion[version] = m
		case m.Name != match[2]:
			return nil, fmt.Errorf("migration %04d has conflicting names %q and %q", version, m.Name, match[2])
		}

		if match[3] == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("incomplete migration %s: both up and down files are required", m)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Migrate applies every pending migration in version order and returns the ones it applied.
//
// Each migration runs in its own transaction, so a failure leaves earlier migrations applied.
func Migrate(db *sql.DB, logger *log.Logger) ([]Migration, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := createMigrationsTable(db); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := AppliedMigrations(db)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}

	var ran []Migration
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		if err := execMigration(db, m.Version, m.Up, true); err != nil {
			return ran, fmt.Errorf("failed to apply migration %s: %w", m, err)
		}
		logger.Info("applied migration", "version", m.Version, "name", m.Name)
		ran = append(ran, m)
	}
	return ran, nil
}

// RunMigrations applies pending migrations without logging.
func RunMigrations(db *sql.DB) error {
	_, err := Migrate(db, nil)
	return err
}

// RollbackMigration reverts the most recently applied migration and returns it.
// It returns [ErrNoMigrations] when nothing has been applied.
func RollbackMigration(db *sql.DB, logger *log.Logger) (*Migration, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := createMigrationsTable(db); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&current); err != nil {
		return nil, fmt.Errorf("failed to get current version: %w", err)
	}
	if !current.Valid {
		return nil, ErrNoMigrations
	}

	for _, m := range migrations {
		if m.Version != int(current.Int64) {
			continue
		}
		if err := execMigration(db, m.Version, m.Down, false); err != nil {
			return nil, fmt.Errorf("failed to roll back migration %s: %w", m, err)
		}
		logger.Info("rolled back migration", "version", m.Version, "name", m.Name)
		return &m, nil
	}
	return nil, fmt.Errorf("migration %04d is recorded but not known to this build", current.Int64)
}

// AppliedMigrations lists the recorded migrations in version order.
func AppliedMigrations(db *sql.DB) ([]AppliedMigration, error) {
	rows, err := db.Query("SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var a AppliedMigration
		if err := rows.Scan(&a.Version, &a.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied = append(applied, a)
	}
	return applied, rows.Err()
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// execMigration runs script in a transaction and records (up) or forgets (down) the version.
func execMigration(db *sql.DB, version int, script string, up bool) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\nStatement: %s", err, stmt)
		}
	}

	record := "DELETE FROM schema_migrations WHERE version = ?"
	if up {
		record = "INSERT INTO schema_migrations (version) VALUES (?)"
	}
	if _, err := tx.Exec(record, version); err != nil {
		return err
	}
	return tx.Commit()
}

// splitStatements strips "--" line comments and splits script on semicolons.
func splitStatements(script string) []string {
	lines := strings.Split(script, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "--"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
