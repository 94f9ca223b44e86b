package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/postboard/internal/config"
	"github.com/yourusername/postboard/internal/credentials"
	"github.com/yourusername/postboard/internal/guard"
	"github.com/yourusername/postboard/internal/logger"
	"github.com/yourusername/postboard/internal/password"
	"github.com/yourusername/postboard/internal/session"
	"github.com/yourusername/postboard/internal/views"
)

// 利用者に表示するメッセージ
const (
	MsgMismatch        = "ユーザーIDまたはパスワードが一致しません"
	MsgTaken           = "このユーザーIDは既に使用されています"
	MsgFailure         = "処理に失敗しました。時間をおいて再度お試しください"
	MsgForbiddenOrigin = "不正な遷移元からのリクエストです"
	MsgUnsafeRedirect  = "不正な遷移先が指定されました"
	MsgInvalidInput    = "入力内容を読み取れませんでした"
)

// Manager は登録・ログイン・ログアウトを扱います。
type Manager struct {
	creds    credentials.Store
	sessions *session.Manager
	logger   zerolog.Logger

	redirectHosts     []string
	registerReferrers []string

	// 存在しないユーザーでも照合と同じ計算を行うためのダミー
	decoySalt string
	decoyHash string
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, creds credentials.Store, sessions *session.Manager, log zerolog.Logger) (*Manager, error) {
	if creds == nil || sessions == nil {
		return nil, errors.New("credential store and session manager are required")
	}
	salt, err := password.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare decoy salt: %w", err)
	}
	return &Manager{
		creds:             creds,
		sessions:          sessions,
		logger:            log,
		redirectHosts:     cfg.LoginRedirectHosts,
		registerReferrers: cfg.RegisterReferrers,
		decoySalt:         salt,
		decoyHash:         password.Hash(salt, salt),
	}, nil
}

type loginForm struct {
	UserID   string `form:"user_id"`
	Password string `form:"password"`
	Next     string `form:"next"`
}

// LoginForm は GET /login のハンドラーです。
func (m *Manager) LoginForm(c *gin.Context) {
	views.Render(c, http.StatusOK, "login.html", gin.H{
		"Next": c.DefaultQuery("next", "/"),
	})
}

// Login は POST /login のハンドラーです。
// 存在しないユーザーとパスワード誤りは同じ応答になります。
func (m *Manager) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		views.Error(c, http.StatusBadRequest, MsgInvalidInput)
		return
	}

	log := logger.FromContext(c, m.logger)

	ok, err := m.authenticate(c.Request.Context(), form.UserID, form.Password)
	if err != nil {
		log.Error().Err(err).Msg("credential lookup failed")
		views.Error(c, http.StatusInternalServerError, MsgFailure)
		return
	}
	if !ok {
		views.Render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Error": MsgMismatch,
			"Next":  form.Next,
		})
		return
	}

	if err := m.sessions.Start(c, session.Identity(form.UserID)); err != nil {
		log.Error().Err(err).Msg("failed to start session")
		views.Error(c, http.StatusInternalServerError, MsgFailure)
		return
	}

	if !guard.IsSafeRedirect(form.Next, m.redirectHosts) {
		log.Warn().Str("next", form.Next).Msg("rejected unsafe redirect target")
		views.Error(c, http.StatusBadRequest, MsgUnsafeRedirect)
		return
	}
	c.Redirect(http.StatusFound, form.Next)
}

// Logout は GET /logout のハンドラーです。
func (m *Manager) Logout(c *gin.Context) {
	if err := m.sessions.End(c); err != nil {
		log := logger.FromContext(c, m.logger)
		log.Error().Err(err).Msg("failed to end session")
		views.Error(c, http.StatusInternalServerError, MsgFailure)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// authenticate はユーザーIDとパスワードを照合します。
// 形式不正・未登録・不一致はいずれも false で、どの経路でもハッシュ計算を 1 回行います。
func (m *Manager) authenticate(ctx context.Context, userID, plain string) (bool, error) {
	if len(validateUserID(userID)) > 0 {
		password.Verify(plain, m.decoySalt, m.decoyHash)
		return false, nil
	}

	cred, err := m.creds.Lookup(ctx, userID)
	switch {
	case errors.Is(err, credentials.ErrNotFound):
		password.Verify(plain, m.decoySalt, m.decoyHash)
		return false, nil
	case err != nil:
		return false, err
	}
	return password.Verify(plain, cred.Salt, cred.PasswordHash), nil
}
