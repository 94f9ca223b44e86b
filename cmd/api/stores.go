package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/yourusername/postboard/internal/config"
	"github.com/yourusername/postboard/internal/credentials"
	"github.com/yourusername/postboard/internal/posts"
)

// stores はハンドラーが利用する外部ストアをまとめたものです。
type stores struct {
	creds   credentials.Store
	posts   posts.Store
	closers []func() error
}

// openStores は設定に応じてストアを接続します。
// 接続先が未設定の場合はインメモリ実装を使います（release モードでは設定で弾かれます）。
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	st := &stores{}

	if cfg.DatabaseURL != "" {
		db, err := credentials.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, db.Close)
		pg, err := credentials.NewPostgresStore(ctx, db)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		st.creds = pg
	} else {
		log.Warn().Msg("DATABASE_URL is not set; using in-memory credential store")
		st.creds = credentials.NewMemoryStore()
	}

	if cfg.PostsRedisURL != "" {
		rdb, err := posts.OpenRedis(ctx, cfg.PostsRedisURL)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		st.closers = append(st.closers, rdb.Close)
		st.posts = posts.NewRedisStore(rdb, "")
	} else {
		log.Warn().Msg("POSTS_REDIS_URL is not set; using in-memory post store")
		st.posts = posts.NewMemoryStore()
	}

	return st, nil
}

// Close は開いた接続をすべて閉じます。
func (s *stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
