package posts

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore は開発・テスト用のインメモリ実装です。
type MemoryStore struct {
	mu    sync.RWMutex
	posts []Post
}

// NewMemoryStore は空の MemoryStore を作成します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert は投稿を追加します。
func (s *MemoryStore) Insert(ctx context.Context, post Post) (InsertAck, error) {
	if err := ctx.Err(); err != nil {
		return InsertAck{}, err
	}
	if err := post.validate(); err != nil {
		return InsertAck{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, clonePost(post))
	return InsertAck{ID: post.ID}, nil
}

// List は新しい順に投稿を返します。作成時刻が同じ場合は後から追加したものが先です。
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Post, 0, len(s.posts))
	for i := len(s.posts) - 1; i >= 0; i-- {
		out = append(out, clonePost(s.posts[i]))
	}
	slices.SortStableFunc(out, func(a, b Post) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func clonePost(p Post) Post {
	p.Good.Users = append([]string{}, p.Good.Users...)
	p.Bad.Users = append([]string{}, p.Bad.Users...)
	return p
}
