package service

import (
	"bytes"
	"context"
	"sync"
	"time"

	pkgerrors "github.com/Oskru/study-smart/pkg/errors"
)

// SessionStore 选择会话快照存储（Redis 实现见 pkg/redis）
type SessionStore interface {
	SaveSession(ctx context.Context, id string, data []byte, ttl time.Duration) error
	LoadSession(ctx context.Context, id string) ([]byte, error)
	// SwapSession 仅当当前快照仍为 prev 时写入 data，否则返回 ErrSessionConflict
	SwapSession(ctx context.Context, id string, prev, data []byte, ttl time.Duration) error
	DeleteSession(ctx context.Context, id string) error
}

// memorySessionStore Redis 不可用时的进程内存储，仅适合单实例部署
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	data      []byte
	expiresAt time.Time
}

// NewMemorySessionStore 创建进程内会话存储
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (m *memorySessionStore) SaveSession(_ context.Context, id string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep()
	m.sessions[id] = memorySession{
		data:      append([]byte(nil), data...),
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

func (m *memorySessionStore) LoadSession(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok || !m.now().Before(sess.expiresAt) {
		delete(m.sessions, id)
		return nil, pkgerrors.ErrSessionNotFound
	}
	return append([]byte(nil), sess.data...), nil
}

func (m *memorySessionStore) SwapSession(_ context.Context, id string, prev, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok || !m.now().Before(sess.expiresAt) {
		delete(m.sessions, id)
		return pkgerrors.ErrSessionNotFound
	}
	if !bytes.Equal(sess.data, prev) {
		return pkgerrors.ErrSessionConflict
	}
	m.sessions[id] = memorySession{
		data:      append([]byte(nil), data...),
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

func (m *memorySessionStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// sweep 清理过期会话，调用方持有锁
func (m *memorySessionStore) sweep() {
	now := m.now()
	for id, sess := range m.sessions {
		if !now.Before(sess.expiresAt) {
			delete(m.sessions, id)
		}
	}
}
