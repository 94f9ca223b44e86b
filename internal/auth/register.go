package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/postboard/internal/credentials"
	"github.com/yourusername/postboard/internal/guard"
	"github.com/yourusername/postboard/internal/logger"
	"github.com/yourusername/postboard/internal/password"
	"github.com/yourusername/postboard/internal/session"
	"github.com/yourusername/postboard/internal/views"
)

type registerForm struct {
	UserID   string `form:"user_id"`
	Password string `form:"password"`
}

// RegisterForm は GET /register のハンドラーです。
func (m *Manager) RegisterForm(c *gin.Context) {
	views.Render(c, http.StatusOK, "register.html", nil)
}

// Register は POST /register のハンドラーです。
// 入力検証、遷移元の確認、保存の順に進み、保存に成功した場合のみセッションを開始します。
func (m *Manager) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		views.Error(c, http.StatusBadRequest, MsgInvalidInput)
		return
	}

	if violations := validateRegistration(form.UserID, form.Password); len(violations) > 0 {
		views.Render(c, http.StatusBadRequest, "register.html", gin.H{
			"Errors": violations,
			"UserID": form.UserID,
		})
		return
	}

	log := logger.FromContext(c, m.logger)

	if referrer := c.Request.Referer(); !guard.IsAllowedOrigin(referrer, m.registerReferrers) {
		log.Warn().Str("referrer", referrer).Msg("rejected registration from unexpected referrer")
		views.Error(c, http.StatusForbidden, MsgForbiddenOrigin)
		return
	}

	salt, err := password.GenerateSalt()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate salt")
		views.Error(c, http.StatusInternalServerError, MsgFailure)
		return
	}

	cred := credentials.Credential{
		UserID:       form.UserID,
		PasswordHash: password.Hash(form.Password, salt),
		Salt:         salt,
	}
	if err := m.creds.Insert(c.Request.Context(), cred); err != nil {
		if errors.Is(err, credentials.ErrDuplicateKey) {
			views.Render(c, http.StatusConflict, "register.html", gin.H{
				"Errors": []string{MsgTaken},
				"UserID": form.UserID,
			})
			return
		}
		log.Error().Err(err).Msg("failed to insert credential")
		views.Error(c, http.StatusInternalServerError, MsgFailure)
		return
	}

	if err := m.sessions.Start(c, session.Identity(cred.UserID)); err != nil {
		log.Error().Err(err).Msg("failed to start session")
		views.Error(c, http.StatusInternalServerError, MsgFailure)
		return
	}
	log.Info().Str("user_id", cred.UserID).Msg("user registered")
	c.Redirect(http.StatusFound, "/")
}
