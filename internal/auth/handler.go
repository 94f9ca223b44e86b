// Package auth はユーザー登録・ログイン・ログアウトとログイン必須ページの保護を提供します。
package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes は認証関連のルートを登録します。
func (m *Manager) RegisterRoutes(r gin.IRouter) {
	guest := r.Group("/", m.RedirectIfAuthenticated())
	guest.GET("/login", m.LoginForm)
	guest.POST("/login", m.Login)
	guest.GET("/register", m.RegisterForm)
	guest.POST("/register", m.Register)

	r.GET("/logout", m.RequireLogin(), m.Logout)
}
