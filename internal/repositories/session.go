package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/shared"
)

// SessionRepository implements [models.Repository] for [models.Session] persistence.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, sequence, token, user_id, email, name, role, provider, expires_at, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		id, token, userID, email, name, role, provider string
		sequence                                       int
		expiresAt, deletedAt                           sql.NullTime
		createdAt, updatedAt                           time.Time
	)

	if err := row.Scan(&id, &sequence, &token, &userID, &email, &name, &role, &provider, &expiresAt, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	session := models.NewSession(sequence, token, provider)
	session.SetID(id)
	session.SetUser(models.User{ID: userID, Email: email, Name: name, Role: models.Role(role)})
	session.SetCreatedAt(createdAt)
	session.SetUpdatedAt(updatedAt)
	if expiresAt.Valid {
		session.SetExpiresAt(&expiresAt.Time)
	}
	if deletedAt.Valid {
		session.SetDeletedAt(&deletedAt.Time)
	}
	return session, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create inserts a new session into the database with generated ID and sequence
func (r *SessionRepository) Create(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sessions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	session.SetID(shared.GenerateID())
	session.SetSequence(sequence)

	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = r.db.Exec(query,
		session.ID(), sequence, session.Token(), session.UserID(), session.Email(), session.Name(),
		string(session.Role()), session.Provider(), nullTime(session.ExpiresAt()), session.CreatedAt(), session.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID, excluding soft-deleted sessions
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ? AND deleted_at IS NULL`

	session, err := scanSession(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return session, nil
}

// Current returns the most recently created active session.
func (r *SessionRepository) Current() (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE deleted_at IS NULL ORDER BY sequence DESC LIMIT 1`

	session, err := scanSession(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, shared.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return session, nil
}

// Update modifies an existing session in the database
func (r *SessionRepository) Update(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	session.SetUpdatedAt(now)

	query := `
		UPDATE sessions
		SET token = ?, user_id = ?, email = ?, name = ?, role = ?, expires_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		session.Token(), session.UserID(), session.Email(), session.Name(), string(session.Role()),
		nullTime(session.ExpiresAt()), now, session.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, session.ID())
	}

	return nil
}

// Delete soft-deletes a session by ID
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec("UPDATE sessions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}

	return nil
}

// DeleteAll soft-deletes every active session and returns how many were ended.
func (r *SessionRepository) DeleteAll() (int64, error) {
	result, err := r.db.Exec("UPDATE sessions SET deleted_at = ? WHERE deleted_at IS NULL", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	return result.RowsAffected()
}

// List retrieves all sessions matching the given criteria, excluding soft-deleted sessions.
//
// Supported criteria: "provider" (string), "email" (string).
func (r *SessionRepository) List(criteria map[string]any) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE deleted_at IS NULL`
	args := []any{}

	if provider, ok := criteria["provider"].(string); ok && provider != "" {
		query += " AND provider = ?"
		args = append(args, provider)
	}
	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

var _ models.Repository[*models.Session] = (*SessionRepository)(nil)
