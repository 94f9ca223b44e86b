package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, zerolog.InfoLevel, New(&buf, false, "").GetLevel())
	assert.Equal(t, zerolog.DebugLevel, New(&buf, true, "").GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New(&buf, false, "warn").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(&buf, false, "nonsense").GetLevel())
}

func TestMiddlewareLogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := New(&buf, false, "debug")

	router := gin.New()
	router.Use(Middleware(log))
	router.GET("/ok", func(c *gin.Context) {
		log := FromContext(c, zerolog.Nop())
		log.Debug().Msg("inside handler")
		c.Status(http.StatusNoContent)
	})
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)

	assert.Equal(t, "inside handler", lines[0]["message"])
	assert.Equal(t, "/ok", lines[0]["path"])

	assert.Equal(t, "request completed", lines[1]["message"])
	assert.Equal(t, "info", lines[1]["level"])
	assert.EqualValues(t, http.StatusNoContent, lines[1]["status"])

	assert.Equal(t, "warn", lines[2]["level"])
	assert.Equal(t, "GET", lines[2]["method"])
	assert.EqualValues(t, http.StatusNotFound, lines[2]["status"])
}
