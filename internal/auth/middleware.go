package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/postboard/internal/session"
)

// LoginRequiredMessage は未ログインでログイン必須ページへ来た場合の案内です。
const LoginRequiredMessage = "サービスを利用するためにはログインが必要です．"

// RequireLogin は未ログインのリクエストをログインページへ誘導するミドルウェアです。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.IdentityFrom(c).IsAnonymous() {
			c.Next()
			return
		}

		_ = session.SetFlash(c, LoginRequiredMessage)

		// GET 以外はログイン後に同じリクエストを再現できないためトップへ戻す
		next := "/"
		if c.Request.Method == http.MethodGet {
			next = c.Request.URL.RequestURI()
		}
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(next))
		c.Abort()
	}
}

// RedirectIfAuthenticated はログイン済みのリクエストをトップへ戻すミドルウェアです。
func (m *Manager) RedirectIfAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session.IdentityFrom(c).IsAnonymous() {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, "/")
		c.Abort()
	}
}
