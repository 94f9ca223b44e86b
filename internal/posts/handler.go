package posts

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yourusername/postboard/internal/config"
	"github.com/yourusername/postboard/internal/guard"
	"github.com/yourusername/postboard/internal/logger"
	"github.com/yourusername/postboard/internal/session"
	"github.com/yourusername/postboard/internal/views"
)

// 利用者に表示するメッセージ
const (
	MsgContentLength   = "投稿内容は1文字以上100文字以下で入力してください"
	MsgUnexpectedRoute = "投稿は入力画面から順に操作してください"
	MsgPosted          = "投稿しました"
	MsgPostFailed      = "投稿に失敗しました。時間をおいて再度お試しください"
	MsgListFailed      = "投稿一覧を取得できませんでした"
)

var validate = validator.New()

// Handler は投稿の入力・確認・実行と一覧表示を扱います。
// 確認と実行はそれぞれ別の遷移元許可リストで保護され、実行は確認画面からしか到達できません。
type Handler struct {
	store  Store
	logger zerolog.Logger

	confirmReferrers []string
	executeReferrers []string

	now       func() time.Time
	newID     func() string
	listLimit int
}

// NewHandler は Handler を作成します。
func NewHandler(cfg *config.Config, store Store, log zerolog.Logger) *Handler {
	return &Handler{
		store:            store,
		logger:           log,
		confirmReferrers: cfg.PostConfirmReferrers,
		executeReferrers: cfg.PostExecuteReferrers,
		now:              time.Now,
		newID:            uuid.NewString,
		listLimit:        DefaultListLimit,
	}
}

// RegisterRoutes は投稿関連のルートを登録します。requireLogin は未ログインを弾くミドルウェアです。
func (h *Handler) RegisterRoutes(r gin.IRouter, requireLogin gin.HandlerFunc) {
	r.GET("/view", h.View)

	member := r.Group("/", requireLogin)
	member.GET("/post", h.Compose)
	member.POST("/post", h.Compose)
	member.POST("/post_confirm", h.Confirm)
	member.POST("/post_execute", h.Execute)
}

// Compose は入力フォームを返します。確認画面から戻った場合は内容を引き継ぎます。
func (h *Handler) Compose(c *gin.Context) {
	views.Render(c, http.StatusOK, "post.html", gin.H{
		"Content": c.PostForm("content"),
	})
}

// Confirm は入力画面からの内容を検証し、確認画面を返します。ここでは保存しません。
func (h *Handler) Confirm(c *gin.Context) {
	if !h.allowReferrer(c, h.confirmReferrers) {
		return
	}
	content, ok := normalizeContent(c.PostForm("content"))
	if !ok {
		h.renderInvalid(c)
		return
	}
	views.Render(c, http.StatusOK, "post_confirm.html", gin.H{
		"Content": content,
	})
}

// Execute は確認画面からの内容を再検証して保存します。
func (h *Handler) Execute(c *gin.Context) {
	if !h.allowReferrer(c, h.executeReferrers) {
		return
	}
	content, ok := normalizeContent(c.PostForm("content"))
	if !ok {
		h.renderInvalid(c)
		return
	}

	log := logger.FromContext(c, h.logger)
	identity := session.IdentityFrom(c)

	post := NewPost(h.newID(), content, identity.String(), h.now())
	ack, err := h.store.Insert(c.Request.Context(), post)
	if err != nil {
		log.Error().Err(err).Str("user_id", identity.String()).Msg("failed to insert post")
		views.Error(c, http.StatusInternalServerError, MsgPostFailed)
		return
	}
	log.Info().Str("post_id", ack.ID).Str("user_id", identity.String()).Msg("post created")

	_ = session.SetFlash(c, MsgPosted)
	c.Redirect(http.StatusFound, "/")
}

// View は投稿一覧を新しい順に返します。ログインは不要です。
func (h *Handler) View(c *gin.Context) {
	posts, err := h.store.List(c.Request.Context(), h.listLimit)
	if err != nil {
		log := logger.FromContext(c, h.logger)
		log.Error().Err(err).Msg("failed to list posts")
		views.Error(c, http.StatusInternalServerError, MsgListFailed)
		return
	}
	views.Render(c, http.StatusOK, "view.html", gin.H{
		"Posts": posts,
	})
}

// allowReferrer はリファラが許可リストに含まれなければ入力画面へ戻し false を返します。
func (h *Handler) allowReferrer(c *gin.Context, allowed []string) bool {
	referrer := c.Request.Referer()
	if guard.IsAllowedOrigin(referrer, allowed) {
		return true
	}
	log := logger.FromContext(c, h.logger)
	log.Warn().
		Str("referrer", referrer).
		Str("user_id", session.IdentityFrom(c).String()).
		Msg("rejected post request from unexpected referrer")
	_ = session.SetFlash(c, MsgUnexpectedRoute)
	c.Redirect(http.StatusFound, "/post")
	return false
}

func (h *Handler) renderInvalid(c *gin.Context) {
	views.Render(c, http.StatusBadRequest, "post.html", gin.H{
		"Errors":  []string{MsgContentLength},
		"Content": c.PostForm("content"),
	})
}

// normalizeContent は前後の空白を除いた本文が 1〜100 文字かを検証します。
func normalizeContent(raw string) (string, bool) {
	content := strings.TrimSpace(raw)
	if err := validate.Var(content, "min=1,max=100"); err != nil {
		return "", false
	}
	return content, true
}
