package services

import (
	"context"
	"log"
	"time"

	cache "github.com/patrickmn/go-cache"

	"maru/internal/models"
)

// SessionManager is the cached façade over the SessionStore. Touching a
// session through GetOrCreate always extends its life by the full TTL from
// now (sliding expiry); Get never does.
//
// Concurrent access to the same session id is not serialized: two requests
// can interleave message appends and expiry refreshes. Accepted for a
// personal-assistant workload with low same-session concurrency.
type SessionManager struct {
	store *SessionStore
	cache *cache.Cache
	ttl   time.Duration

	// now is swappable so expiry behavior is testable
	now func() time.Time
}

// NewSessionManager creates the manager with the given sliding TTL
func NewSessionManager(store *SessionStore, ttl time.Duration) *SessionManager {
	return &SessionManager{
		store: store,
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
		now:   time.Now,
	}
}

// GetOrCreateSession returns the session, creating it if needed. Every
// path refreshes last_accessed and expires_at in both cache and store.
func (m *SessionManager) GetOrCreateSession(ctx context.Context, sessionID string) *models.Session {
	now := m.now()

	if cached, found := m.cache.Get(sessionID); found {
		session := cached.(*models.Session)
		session.LastAccessed = now
		session.ExpiresAt = now.Add(m.ttl)
		m.cache.Set(sessionID, session, m.ttl)
		m.store.SaveSession(ctx, sessionID, session.CreatedAt, session.LastAccessed, session.ExpiresAt)
		return session
	}

	if stored := m.store.GetSession(ctx, sessionID); stored != nil {
		stored.LastAccessed = now
		stored.ExpiresAt = now.Add(m.ttl)
		m.cache.Set(sessionID, stored, m.ttl)
		m.store.SaveSession(ctx, sessionID, stored.CreatedAt, stored.LastAccessed, stored.ExpiresAt)
		return stored
	}

	session := &models.Session{
		SessionID:    sessionID,
		CreatedAt:    now,
		LastAccessed: now,
		ExpiresAt:    now.Add(m.ttl),
	}
	m.cache.Set(sessionID, session, m.ttl)
	m.store.SaveSession(ctx, sessionID, session.CreatedAt, session.LastAccessed, session.ExpiresAt)
	log.Printf("✨ [SESSION] Created session %s (expires %s)", sessionID, session.ExpiresAt.Format(time.RFC3339))
	return session
}

// GetSession is the read-only lookup: no refresh, no create. Returns nil
// when the session is unknown.
func (m *SessionManager) GetSession(ctx context.Context, sessionID string) *models.Session {
	if cached, found := m.cache.Get(sessionID); found {
		return cached.(*models.Session)
	}
	return m.store.GetSession(ctx, sessionID)
}

// DeleteSession removes the session from cache and store
func (m *SessionManager) DeleteSession(ctx context.Context, sessionID string) bool {
	m.cache.Delete(sessionID)
	return m.store.DeleteSession(ctx, sessionID)
}

// RecordExchange persists one user turn and the assistant's reply.
// metadata is attached to the assistant message only.
func (m *SessionManager) RecordExchange(ctx context.Context, sessionID, userText, reply string, metadata map[string]any) {
	now := m.now()
	m.store.SaveMessage(ctx, sessionID, models.RoleUser, userText, now, nil)
	m.store.SaveMessage(ctx, sessionID, models.RoleAssistant, reply, now.Add(time.Millisecond), metadata)
}

// RecentContext returns the newest `limit` messages as LLM chat turns,
// oldest first.
func (m *SessionManager) RecentContext(ctx context.Context, sessionID string, limit int) []models.ChatTurn {
	if limit <= 0 {
		return nil
	}
	messages := m.store.GetMessages(ctx, sessionID, 0, limit)
	turns := make([]models.ChatTurn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, models.ChatTurn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}

// Messages exposes one page of stored history (see SessionStore.GetMessages)
func (m *SessionManager) Messages(ctx context.Context, sessionID string, page, pageSize int) []models.ConversationMessage {
	return m.store.GetMessages(ctx, sessionID, page, pageSize)
}

// CleanupExpiredSessions sweeps the store, then drops any cached session
// the store no longer has. Expiry is enforced eventually, not on read: an
// expired-but-unswept session still answers until the next sweep.
func (m *SessionManager) CleanupExpiredSessions(ctx context.Context) int {
	removed := m.store.CleanupExpiredSessions(ctx, m.now())
	if removed == 0 {
		return 0
	}

	for sessionID := range m.cache.Items() {
		if m.store.GetSession(ctx, sessionID) == nil {
			m.cache.Delete(sessionID)
		}
	}
	return removed
}

// GetActiveSessionCount passes through the store's session count
func (m *SessionManager) GetActiveSessionCount(ctx context.Context) int {
	return m.store.GetSessionCount(ctx)
}

// GetTotalMessageCount passes through the store's message count
func (m *SessionManager) GetTotalMessageCount(ctx context.Context) int {
	return m.store.GetTotalMessageCount(ctx)
}
