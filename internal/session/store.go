// Package session persists conversations: one chat session per thread, its
// messages ordered by sequence number.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultHistoryLimit bounds how much history a turn loads.
const DefaultHistoryLimit = 50

// ErrNotFound means the session does not exist in the given household.
var ErrNotFound = errors.New("session: not found")

// Session is one conversation thread.
type Session struct {
	ID          uuid.UUID `json:"id"`
	HouseholdID uuid.UUID `json:"householdId"`
	Title       string    `json:"title,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Message is one stored turn of a conversation.
type Message struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"sessionId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	SequenceNumber int       `json:"sequenceNumber"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Store persists sessions and messages. Safe for concurrent use; message
// appends serialize per session through a row lock.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Create starts a new session for the household.
func (s *Store) Create(ctx context.Context, householdID, createdBy uuid.UUID) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chat_sessions (household_id, created_by)
		VALUES ($1, $2)
		RETURNING id, household_id, COALESCE(title, ''), created_at, updated_at`,
		householdID, createdBy).
		Scan(&sess.ID, &sess.HouseholdID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	s.logger.Debug("session created", "session_id", sess.ID, "household_id", householdID)
	return &sess, nil
}

// Get loads a session, scoped to its household.
func (s *Store) Get(ctx context.Context, householdID, sessionID uuid.UUID) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx, `
		SELECT id, household_id, COALESCE(title, ''), created_at, updated_at
		FROM chat_sessions
		WHERE id = $1 AND household_id = $2`,
		sessionID, householdID).
		Scan(&sess.ID, &sess.HouseholdID, &sess.Title, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &sess, nil
}

// SetTitle stores a display title on the session.
func (s *Store) SetTitle(ctx context.Context, sessionID uuid.UUID, title string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE chat_sessions SET title = $2, updated_at = now() WHERE id = $1`,
		sessionID, title)
	if err != nil {
		return fmt.Errorf("update session title: %w", err)
	}
	return nil
}

// Append stores messages at the end of the session. The session row is
// locked for the duration so concurrent appends cannot race on sequence
// numbers; all messages land or none do.
func (s *Store) Append(ctx context.Context, householdID, sessionID uuid.UUID, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM chat_sessions WHERE id = $1 AND household_id = $2 FOR UPDATE`,
		sessionID, householdID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}

	var maxSeq int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(sequence_number), 0) FROM chat_messages WHERE session_id = $1`,
		sessionID).Scan(&maxSeq)
	if err != nil {
		return fmt.Errorf("query max sequence: %w", err)
	}

	for i, m := range messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("session: invalid message role %q", m.Role)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO chat_messages (household_id, session_id, role, content, sequence_number)
			VALUES ($1, $2, $3, $4, $5)`,
			householdID, sessionID, m.Role, m.Content, maxSeq+i+1); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE chat_sessions SET updated_at = now() WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	s.logger.Debug("messages appended", "session_id", sessionID, "count", len(messages))
	return nil
}

// Recent returns the latest messages of a session in chronological order,
// bounded by limit.
func (s *Store) Recent(ctx context.Context, sessionID uuid.UUID, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, role, content, sequence_number, created_at
		FROM (
			SELECT id, session_id, role, content, sequence_number, created_at
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY sequence_number DESC
			LIMIT $2
		) latest
		ORDER BY sequence_number`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content,
			&m.SequenceNumber, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
