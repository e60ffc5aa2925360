// Package service exposes the study assistant as a small API surface:
// search, memory stats, feedback, and cleanup, each a method on Service.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/studybuddyhq/studybuddy/pkg/logger"
	"github.com/studybuddyhq/studybuddy/pkg/memory"
	"github.com/studybuddyhq/studybuddy/pkg/providers"
)

// Session holds the in-process state for one conversation: the transcript
// fed to the model and the hierarchical memory behind it. Access is
// serialized so concurrent requests for the same conversation cannot
// interleave memory updates.
type Session struct {
	ID         string
	Memory     *memory.Memory
	Transcript []providers.Message

	mu sync.Mutex
}

func (s *Session) lock()   { s.mu.Lock() }
func (s *Session) unlock() { s.mu.Unlock() }

// sessionManager caches sessions by conversation id, backfilling from
// the store on first touch.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store     memory.Store
	memConfig memory.Config
	newScorer func() memory.Scorer
}

func newSessionManager(store memory.Store, memConfig memory.Config, newScorer func() memory.Scorer) *sessionManager {
	return &sessionManager{
		sessions:  map[string]*Session{},
		store:     store,
		memConfig: memConfig,
		newScorer: newScorer,
	}
}

// getOrCreate returns the session for a conversation, loading persisted
// memory when present. A corrupt or missing record falls back to a fresh
// memory rather than failing the turn.
func (m *sessionManager) getOrCreate(ctx context.Context, conversationID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[conversationID]; ok {
		return session
	}

	session := &Session{ID: conversationID}

	data, err := m.store.Get(ctx, conversationID)
	switch {
	case err == nil:
		mem, derr := memory.Deserialize(data, m.newScorer())
		if derr != nil {
			logger.WarnCF("service", "Stored memory unreadable, starting fresh",
				map[string]interface{}{
					"conversation_id": conversationID,
					"error":           derr.Error(),
				})
			mem = memory.New(m.memConfig, m.newScorer())
		}
		session.Memory = mem
	case errors.Is(err, memory.ErrNotFound):
		session.Memory = memory.New(m.memConfig, m.newScorer())
	default:
		logger.ErrorCF("service", "Memory load failed, starting fresh",
			map[string]interface{}{
				"conversation_id": conversationID,
				"error":           err.Error(),
			})
		session.Memory = memory.New(m.memConfig, m.newScorer())
	}

	m.sessions[conversationID] = session
	return session
}

// peek returns the cached session without creating one.
func (m *sessionManager) peek(conversationID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[conversationID]
	return session, ok
}

func (m *sessionManager) evict(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, conversationID)
}
