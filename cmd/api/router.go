package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/postboard/internal/auth"
	"github.com/yourusername/postboard/internal/config"
	"github.com/yourusername/postboard/internal/logger"
	"github.com/yourusername/postboard/internal/posts"
	"github.com/yourusername/postboard/internal/session"
	"github.com/yourusername/postboard/internal/views"
)

// newRouter はミドルウェアとルーティングを設定した gin エンジンを返します。
func newRouter(cfg *config.Config, st *stores, log zerolog.Logger, version string) (*gin.Engine, error) {
	router := gin.New()
	if err := views.Install(router); err != nil {
		return nil, err
	}

	// パニック時も内部情報を出さない汎用ページを返す
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Title":   "エラー",
			"Message": auth.MsgFailure,
		})
		c.Abort()
	}))
	router.Use(logger.Middleware(log))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	// セッション（署名付きクッキー）と Identity の解決
	router.Use(sessions.Sessions(session.CookieName, session.NewStore([]byte(cfg.SessionSecret), cfg.IsRelease())))
	sessionManager := session.NewManager(session.WithLogger(log))
	router.Use(sessionManager.Load())

	if err := setupRoutes(router, cfg, st, sessionManager, log, version); err != nil {
		return nil, err
	}
	return router, nil
}

// setupRoutes は各コントローラーのルートを登録します。
func setupRoutes(router *gin.Engine, cfg *config.Config, st *stores, sm *session.Manager, log zerolog.Logger, version string) error {
	router.GET("/health", healthHandler(version))
	router.GET("/", func(c *gin.Context) {
		views.Render(c, http.StatusOK, "index.html", nil)
	})

	authManager, err := auth.NewManager(cfg, st.creds, sm, log)
	if err != nil {
		return err
	}
	authManager.RegisterRoutes(router)

	posts.NewHandler(cfg, st.posts, log).RegisterRoutes(router, authManager.RequireLogin())
	return nil
}

// healthHandler はヘルスチェックエンドポイントのハンドラーです。
func healthHandler(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "postboard",
			"version": version,
		})
	}
}
