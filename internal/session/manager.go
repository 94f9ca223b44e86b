// Package session は署名付きクッキーによるログイン状態と一時メッセージを管理します。
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/postboard/internal/logger"
)

const (
	// CookieName はセッションクッキー名です。
	CookieName = "pb_session"
	// PayloadVersion はクッキー内ペイロードの形式バージョンです。一致しないものは匿名扱いです。
	PayloadVersion = 1

	keyVersion   = "v"
	keyUser      = "auth_user"
	keyPermanent = "permanent"
	keyExpiresAt = "expires_at"
	keyFlash     = "_flash"

	// ContextIdentityKey はリクエスト単位の Identity を gin.Context に保持するキーです。
	ContextIdentityKey = "session.identity"
)

// IdleTimeout は最終更新からセッションが有効な時間です。
const IdleTimeout = 15 * time.Minute

// Identity はログイン中のユーザーIDです。空文字は匿名を表します。
type Identity string

// Anonymous は未ログイン状態の Identity です。
const Anonymous Identity = ""

// IsAnonymous は未ログインかを返します。
func (i Identity) IsAnonymous() bool {
	return i == Anonymous
}

func (i Identity) String() string {
	return string(i)
}

// MaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func MaxAgeSeconds() int {
	return int(IdleTimeout.Seconds())
}

// NewStore は署名鍵からクッキーストアを作成します。全インスタンスで同じ鍵を使う必要があります。
func NewStore(secret []byte, secure bool) sessions.Store {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   MaxAgeSeconds(),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// Option は Manager の設定を変更します。
type Option func(*Manager)

// WithClock は現在時刻の取得関数を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger はリクエストロガーが無いときに使うロガーを設定します。
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = log
	}
}

// Manager はセッション上の Identity の束縛・検証・破棄を行います。
type Manager struct {
	now    func() time.Time
	idle   time.Duration
	logger zerolog.Logger
}

// NewManager は Manager を作成します。
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		now:    time.Now,
		idle:   IdleTimeout,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start は identity をセッションに束縛し、有効期限を現在時刻から再設定します。
func (m *Manager) Start(c *gin.Context, identity Identity) error {
	if identity.IsAnonymous() {
		return errors.New("identity is required")
	}
	s := sessions.Default(c)
	s.Clear()
	s.Set(keyVersion, PayloadVersion)
	s.Set(keyUser, identity.String())
	s.Set(keyPermanent, true)
	s.Set(keyExpiresAt, m.now().Add(m.idle).Unix())
	if err := s.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.Set(ContextIdentityKey, identity)
	return nil
}

// Current はセッションを検証して Identity を返します。
// 署名不正・形式不一致・期限切れはすべて Anonymous になります。
func (m *Manager) Current(c *gin.Context) Identity {
	s := sessions.Default(c)

	if version, ok := s.Get(keyVersion).(int); !ok || version != PayloadVersion {
		return Anonymous
	}
	user, ok := s.Get(keyUser).(string)
	if !ok || user == "" {
		return Anonymous
	}
	expiresAt := readUnix(s.Get(keyExpiresAt))
	if expiresAt.IsZero() || !m.now().Before(expiresAt) {
		return Anonymous
	}
	return Identity(user)
}

// End はセッションから Identity を外します。
func (m *Manager) End(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	if err := s.Save(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	c.Set(ContextIdentityKey, Anonymous)
	return nil
}

// Load はリクエストごとに Identity を一度だけ解決するミドルウェアです。
// 有効なセッションは有効期限を延長し、無効な残骸は消去します。
func (m *Manager) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		identity := m.Current(c)

		switch {
		case !identity.IsAnonymous():
			s.Set(keyExpiresAt, m.now().Add(m.idle).Unix())
			if err := s.Save(); err != nil {
				log := logger.FromContext(c, m.logger)
				log.Error().Err(err).Str("user_id", identity.String()).Msg("failed to renew session")
			}
		case s.Get(keyUser) != nil:
			s.Delete(keyVersion)
			s.Delete(keyUser)
			s.Delete(keyPermanent)
			s.Delete(keyExpiresAt)
			if err := s.Save(); err != nil {
				log := logger.FromContext(c, m.logger)
				log.Error().Err(err).Msg("failed to discard stale session")
			}
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// IdentityFrom は Load ミドルウェアが解決した Identity を返します。
func IdentityFrom(c *gin.Context) Identity {
	v, ok := c.Get(ContextIdentityKey)
	if !ok {
		return Anonymous
	}
	identity, ok := v.(Identity)
	if !ok {
		return Anonymous
	}
	return identity
}

// SetFlash は次に表示するページ向けのメッセージを 1 件だけ保存します。
func SetFlash(c *gin.Context, message string) error {
	s := sessions.Default(c)
	_ = s.Flashes(keyFlash)
	s.AddFlash(message, keyFlash)
	return s.Save()
}

// PopFlash は保存済みメッセージを取り出して消去します。
func PopFlash(c *gin.Context) string {
	s := sessions.Default(c)
	flashes := s.Flashes(keyFlash)
	if len(flashes) == 0 {
		return ""
	}
	if err := s.Save(); err != nil {
		log := logger.FromContext(c, zerolog.Nop())
		log.Error().Err(err).Msg("failed to clear flash message")
	}
	message, _ := flashes[len(flashes)-1].(string)
	return message
}

func readUnix(v interface{}) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	default:
		return time.Time{}
	}
}
