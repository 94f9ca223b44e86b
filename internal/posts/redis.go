package posts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "postboard:"
	postKeyPrefix    = "post:"
	indexKey         = "posts:index"
)

// RedisStore は投稿を Redis に保存します。
// 本文は JSON で post:<id> に、作成時刻順の索引は sorted set に保持します。
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// OpenRedis は接続URLから Redis クライアントを作成し、疎通を確認します。
func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return rdb, nil
}

// NewRedisStore は RedisStore を作成します。prefix が空なら既定の名前空間を使います。
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{
		rdb:    rdb,
		prefix: prefix,
	}
}

// Insert は投稿と索引を 1 つのトランザクションで保存します。同じIDの投稿は上書きしません。
func (s *RedisStore) Insert(ctx context.Context, post Post) (InsertAck, error) {
	if err := post.validate(); err != nil {
		return InsertAck{}, err
	}
	payload, err := json.Marshal(post)
	if err != nil {
		return InsertAck{}, err
	}

	tx := s.rdb.TxPipeline()
	created := tx.SetNX(ctx, s.postKey(post.ID), payload, 0)
	// 既存IDの索引スコアは書き換えない
	tx.ZAddNX(ctx, s.indexKey(), redis.Z{Score: float64(post.CreatedAt), Member: post.ID})
	if _, err := tx.Exec(ctx); err != nil {
		return InsertAck{}, fmt.Errorf("failed to save post: %w", err)
	}
	if !created.Val() {
		return InsertAck{}, fmt.Errorf("%w: id %s already exists", ErrInvalidPost, post.ID)
	}
	return InsertAck{ID: post.ID}, nil
}

// List は新しい順に最大 limit 件を返します。limit が 0 以下なら全件です。
func (s *RedisStore) List(ctx context.Context, limit int) ([]Post, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.rdb.ZRevRange(ctx, s.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read post index: %w", err)
	}
	if len(ids) == 0 {
		return []Post{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.postKey(id)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read posts: %w", err)
	}

	posts := make([]Post, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// 索引だけが残っている投稿は読み飛ばす
			continue
		}
		var post Post
		if err := json.Unmarshal([]byte(raw), &post); err != nil {
			return nil, fmt.Errorf("failed to decode post %s: %w", ids[i], err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *RedisStore) postKey(id string) string {
	return s.prefix + postKeyPrefix + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + indexKey
}
