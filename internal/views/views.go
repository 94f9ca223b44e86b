// Package views は埋め込みテンプレートによる HTML 描画を提供します。
package views

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/postboard/internal/session"
)

//go:embed templates/*.html
var files embed.FS

var titles = map[string]string{
	"index.html":        "トップ",
	"login.html":        "ログイン",
	"register.html":     "新規登録",
	"post.html":         "投稿",
	"post_confirm.html": "投稿内容の確認",
	"view.html":         "投稿一覧",
	"error.html":        "エラー",
}

// Parse は埋め込みテンプレートを読み込みます。
func Parse() (*template.Template, error) {
	tmpl, err := template.ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// Install は gin エンジンにテンプレートを設定します。
func Install(engine *gin.Engine) error {
	tmpl, err := Parse()
	if err != nil {
		return err
	}
	engine.SetHTMLTemplate(tmpl)
	return nil
}

// Render はページを描画します。ログイン中のユーザーと一時メッセージは自動で渡されます。
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = titles[name]
	}
	data["CurrentUser"] = session.IdentityFrom(c).String()
	data["Flash"] = session.PopFlash(c)
	c.HTML(status, name, data)
}

// Error は汎用エラーページを描画します。
func Error(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	Render(c, status, "error.html", gin.H{"Message": message})
}
