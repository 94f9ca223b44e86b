package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore は PostgreSQL の users テーブルを使う Store 実装です。
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres は pgx ドライバで接続を開き、疎通を確認します。
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// NewPostgresStore は PostgresStore を作成し、テーブルが無ければ作成します。
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS users (
	user_id VARCHAR(100) PRIMARY KEY,
	password_hash TEXT NOT NULL,
	salt TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

// Lookup は認証情報を取得します。
func (s *PostgresStore) Lookup(ctx context.Context, userID string) (Credential, error) {
	const q = `SELECT user_id, password_hash, salt FROM users WHERE user_id = $1`

	var cred Credential
	err := s.db.QueryRowContext(ctx, q, userID).Scan(&cred.UserID, &cred.PasswordHash, &cred.Salt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credential{}, ErrNotFound
		}
		return Credential{}, fmt.Errorf("query credential: %w", err)
	}
	return cred, nil
}

// Insert は認証情報を登録します。一意制約違反は ErrDuplicateKey に変換します。
func (s *PostgresStore) Insert(ctx context.Context, cred Credential) error {
	if cred.UserID == "" || cred.PasswordHash == "" || cred.Salt == "" {
		return fmt.Errorf("user id, password hash, and salt are required")
	}

	const q = `INSERT INTO users (user_id, password_hash, salt) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, q, cred.UserID, cred.PasswordHash, cred.Salt); err != nil {
		return mapPostgresError(err)
	}
	return nil
}

// mapPostgresError は一意制約違反のみを番兵エラーに変換し、それ以外は包んで返します。
func mapPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicateKey
	}
	return fmt.Errorf("insert credential: %w", err)
}
