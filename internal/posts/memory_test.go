package posts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)

	for i, id := range []string{"a", "b", "c"} {
		_, err := store.Insert(ctx, NewPost(id, "content "+id, "alice", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	// 時刻が古い投稿を後から追加しても順序は作成時刻で決まる
	_, err := store.Insert(ctx, NewPost("old", "old", "bob", base.Add(-time.Hour)))
	require.NoError(t, err)

	posts, err := store.List(ctx, 0)
	require.NoError(t, err)
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"c", "b", "a", "old"}, ids)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Insert(context.Background(), NewPost("id", "content", "", time.Now()))
	assert.ErrorIs(t, err, ErrInvalidPost)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.Insert(ctx, NewPost("a", "content", "alice", time.Now()))
	require.NoError(t, err)

	posts, err := store.List(ctx, 0)
	require.NoError(t, err)
	posts[0].Good.Users = append(posts[0].Good.Users, "mallory")

	again, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, again[0].Good.Users)
}
