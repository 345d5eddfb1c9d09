package store

import (
	"context"
	"sync"
)

// KV is the durable key-value contract the gateway sits on. Get reports a
// missing key with ok=false and a nil error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Logical keys of the durable store.
const (
	KeySavedQuizzes  = "savedQuizzes"
	KeyCurrentQuizID = "currentQuizId"
	KeyPreviewData   = "quizPreviewData"
	KeyEditHistory   = "quizEditHistory"
)

func ResponsesKey(quizID string) string {
	return "quizResponses_" + quizID
}

// MemoryKV keeps everything in process memory. Used by tests and the
// "memory" store backend.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string][]byte{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
