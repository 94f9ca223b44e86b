package credentials

import (
	"context"
	"sync"
)

// MemoryStore は開発・テスト用のインメモリ実装です。
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryStore は空の MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]Credential)}
}

// Lookup は認証情報を取得します。
func (s *MemoryStore) Lookup(ctx context.Context, userID string) (Credential, error) {
	if err := ctx.Err(); err != nil {
		return Credential{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[userID]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return cred, nil
}

// Insert は認証情報を登録します。既存IDは上書きしません。
func (s *MemoryStore) Insert(ctx context.Context, cred Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.creds[cred.UserID]; exists {
		return ErrDuplicateKey
	}
	s.creds[cred.UserID] = cred
	return nil
}

// Len は登録件数を返します。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.creds)
}
