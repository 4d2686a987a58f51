package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"maru/internal/database"
	"maru/internal/models"
)

// SessionStore persists sessions and their messages in SQLite.
//
// Every operation converts storage failures into a benign return value
// (false, empty, zero) plus a logged error. Callers cannot tell "absent"
// from "storage broken" through the return value alone. That tradeoff is
// deliberate: the manager above never has to handle a raised storage error.
type SessionStore struct {
	db *database.DB
}

// storedTimeLayout is fixed-width so stored timestamps compare correctly
// as strings in SQL (RFC3339Nano trims trailing zeros and does not).
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// NewSessionStore creates a store over the shared database
func NewSessionStore(db *database.DB) *SessionStore {
	return &SessionStore{db: db}
}

// SaveSession upserts session metadata. created_at is written once and
// never overwritten on conflict.
func (s *SessionStore) SaveSession(ctx context.Context, sessionID string, createdAt, lastAccessed, expiresAt time.Time) bool {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, created_at, last_accessed, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			last_accessed = excluded.last_accessed,
			expires_at = excluded.expires_at`,
		sessionID,
		createdAt.UTC().Format(storedTimeLayout),
		lastAccessed.UTC().Format(storedTimeLayout),
		expiresAt.UTC().Format(storedTimeLayout))
	if err != nil {
		log.Printf("❌ [STORE] Failed to save session %s: %v", sessionID, err)
		return false
	}
	return true
}

// GetSession returns session metadata, or nil if absent (or unreadable)
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) *models.Session {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, created_at, last_accessed, expires_at
		FROM sessions WHERE session_id = ?`, sessionID)

	var (
		session                            models.Session
		createdAt, lastAccessed, expiresAt string
	)
	if err := row.Scan(&session.SessionID, &createdAt, &lastAccessed, &expiresAt); err != nil {
		return nil
	}

	var err error
	if session.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		log.Printf("❌ [STORE] Bad created_at for session %s: %v", sessionID, err)
		return nil
	}
	if session.LastAccessed, err = time.Parse(time.RFC3339Nano, lastAccessed); err != nil {
		log.Printf("❌ [STORE] Bad last_accessed for session %s: %v", sessionID, err)
		return nil
	}
	if session.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt); err != nil {
		log.Printf("❌ [STORE] Bad expires_at for session %s: %v", sessionID, err)
		return nil
	}

	return &session
}

// DeleteSession removes a session; messages cascade. Returns true iff a
// row was removed.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) bool {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = ?", sessionID)
	if err != nil {
		log.Printf("❌ [STORE] Failed to delete session %s: %v", sessionID, err)
		return false
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false
	}
	if affected > 0 {
		log.Printf("🗑️  [STORE] Deleted session %s", sessionID)
	}
	return affected > 0
}

// SaveMessage appends one message to a session's history
func (s *SessionStore) SaveMessage(ctx context.Context, sessionID, role, content string, timestamp time.Time, metadata map[string]any) bool {
	var metadataJSON any
	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("⚠️  [STORE] Dropping unencodable metadata for session %s: %v", sessionID, err)
		} else {
			metadataJSON = string(encoded)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (session_id, role, content, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, role, content, timestamp.UTC().Format(storedTimeLayout), metadataJSON)
	if err != nil {
		log.Printf("❌ [STORE] Failed to save message for session %s: %v", sessionID, err)
		return false
	}
	return true
}

// GetMessages returns one page of a session's history. Pages run newest
// first (page 0 holds the most recent pageSize messages) but each page is
// in ascending time order, so a UI can render older pages above newer ones
// without re-sorting.
func (s *SessionStore) GetMessages(ctx context.Context, sessionID string, page, pageSize int) []models.ConversationMessage {
	if page < 0 || pageSize <= 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, timestamp, metadata FROM (
			SELECT id, role, content, timestamp, metadata
			FROM messages
			WHERE session_id = ?
			ORDER BY timestamp DESC, id DESC
			LIMIT ? OFFSET ?
		) ORDER BY timestamp ASC, id ASC`,
		sessionID, pageSize, page*pageSize)
	if err != nil {
		log.Printf("❌ [STORE] Failed to get messages for session %s: %v", sessionID, err)
		return nil
	}
	defer rows.Close()

	var messages []models.ConversationMessage
	for rows.Next() {
		var (
			msg          models.ConversationMessage
			timestamp    string
			metadataJSON *string
		)
		if err := rows.Scan(&msg.Role, &msg.Content, &timestamp, &metadataJSON); err != nil {
			log.Printf("❌ [STORE] Failed to scan message for session %s: %v", sessionID, err)
			continue
		}
		msg.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		if metadataJSON != nil {
			_ = json.Unmarshal([]byte(*metadataJSON), &msg.Metadata)
		}
		messages = append(messages, msg)
	}

	return messages
}

// DeleteMessages clears a session's history without removing the session row
func (s *SessionStore) DeleteMessages(ctx context.Context, sessionID string) bool {
	_, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE session_id = ?", sessionID)
	if err != nil {
		log.Printf("❌ [STORE] Failed to delete messages for session %s: %v", sessionID, err)
		return false
	}
	return true
}

// CleanupExpiredSessions deletes every session whose expires_at is before
// cutoff (messages cascade) and returns how many were removed.
func (s *SessionStore) CleanupExpiredSessions(ctx context.Context, cutoff time.Time) int {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?",
		cutoff.UTC().Format(storedTimeLayout))
	if err != nil {
		log.Printf("❌ [STORE] Failed to cleanup expired sessions: %v", err)
		return 0
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	if affected > 0 {
		log.Printf("🧹 [STORE] Cleaned up %d expired sessions", affected)
	}
	return int(affected)
}

// GetSessionCount returns the number of stored sessions
func (s *SessionStore) GetSessionCount(ctx context.Context) int {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		log.Printf("❌ [STORE] Failed to count sessions: %v", err)
		return 0
	}
	return count
}

// GetTotalMessageCount returns the number of stored messages across all sessions
func (s *SessionStore) GetTotalMessageCount(ctx context.Context) int {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&count); err != nil {
		log.Printf("❌ [STORE] Failed to count messages: %v", err)
		return 0
	}
	return count
}
