// Package posts は投稿の作成（入力→確認→実行）と一覧表示を提供します。
package posts

import "context"

// DefaultListLimit は一覧表示で取得する最大件数です。
const DefaultListLimit = 100

// Store は投稿を保存するドキュメントストアです。
type Store interface {
	Insert(ctx context.Context, post Post) (InsertAck, error)
	// List は新しい順に最大 limit 件を返します。
	List(ctx context.Context, limit int) ([]Post, error)
}
