package session

import (
	"context"
	"sync"
	"time"

	"github.com/hm-community/hmnet/internal/model"
)

// MemoryStore はプロセス内メモリ上のセッションストア。
// プロセス再起動でセッションは失われる。
// mapへの並行アクセスはRWMutexで保護する。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session

	// テスト用にオーバーライド可能な現在時刻
	now func() time.Time
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*model.Session),
		now:      time.Now,
	}
}

// Create はセッションを保存する。
func (s *MemoryStore) Create(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sess
	s.sessions[sess.ID] = &copied
	return nil
}

// Find は指定IDのセッションを取得する。
// 見つからない場合はnilを返す。期限切れのセッションは削除してnilを返す。
// ExpiresAtがゼロ値のセッションは期限切れにならない。
func (s *MemoryStore) Find(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, nil
	}

	copied := *sess
	return &copied, nil
}

// Delete は指定IDのセッションを破棄する。
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Len は保持中のセッション数を返す。テスト用。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
