package chat_store

import (
	"context"
	"sync"
	"time"

	"github.com/serisow/ragone/ragtype"
)

// MemoryStore keeps session logs in process memory for tests and ephemeral
// mode.
type MemoryStore struct {
	mutex    sync.RWMutex
	sessions map[string][]ragtype.Turn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]ragtype.Turn),
	}
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, turn ragtype.Turn) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	s.sessions[sessionID] = append(s.sessions[sessionID], turn)
	return nil
}

func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]ragtype.Turn, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	turns := s.sessions[sessionID]
	out := make([]ragtype.Turn, len(turns))
	copy(out, turns)
	return out, nil
}
