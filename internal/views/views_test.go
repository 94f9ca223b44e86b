package views

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/postboard/internal/session"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if err := Install(router); err != nil {
		t.Fatalf("failed to install templates: %v", err)
	}
	router.Use(sessions.Sessions(session.CookieName, session.NewStore([]byte("0123456789abcdef0123456789abcdef"), false)))
	router.Use(session.NewManager().Load())
	return router
}

func TestParseAllPages(t *testing.T) {
	tmpl, err := Parse()
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	for name := range titles {
		if tmpl.Lookup(name) == nil {
			t.Errorf("template %s is missing", name)
		}
	}
}

func TestRenderEscapesAndShowsFlash(t *testing.T) {
	router := newRouter(t)
	router.GET("/", func(c *gin.Context) {
		if err := session.SetFlash(c, "保存しました"); err != nil {
			t.Fatalf("SetFlash returned error: %v", err)
		}
		Render(c, http.StatusOK, "error.html", gin.H{"Message": "<script>alert(1)</script>"})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"保存しました", "&lt;script&gt;", "<title>エラー | postboard</title>", `href="/login"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("message was not escaped")
	}
}

func TestErrorDefaultsToStatusText(t *testing.T) {
	router := newRouter(t)
	router.GET("/", func(c *gin.Context) {
		Error(c, http.StatusForbidden, "")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Forbidden") {
		t.Fatalf("expected status text in body, got %s", rec.Body.String())
	}
}
