// Package credentials はユーザー認証情報（ハッシュとソルト）の永続化を担います。
package credentials

import (
	"context"
	"errors"
)

var (
	// ErrNotFound はユーザーIDに対応する認証情報が存在しないことを表します。
	ErrNotFound = errors.New("credential not found")
	// ErrDuplicateKey は同じユーザーIDが既に登録済みであることを表します。
	ErrDuplicateKey = errors.New("duplicate user id")
)

// Credential はユーザー1件分の認証情報です。登録後は変更されません。
type Credential struct {
	UserID       string
	PasswordHash string
	Salt         string
}

//go:generate mockgen -source=store.go -destination=../mocks/credentials_mock.go -package=mocks

// Store は認証情報ストアのポートです。
// Insert はユーザーIDの一意性について原子的で、競合時は ErrDuplicateKey を返します。
type Store interface {
	Lookup(ctx context.Context, userID string) (Credential, error)
	Insert(ctx context.Context, cred Credential) error
}
