package log

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var m map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &m))
	return m
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("chatty"))
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	l := New(Config{Level: "trace", Output: &buf})

	assert.Equal(t, zerolog.WarnLevel, SetLevel("warn"))
	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	SetLevel("debug")
	l.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewAddsServiceFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", ServiceName: "id-service", Environment: "staging", Output: &buf})
	l.Info().Msg("hello")

	m := lastLine(t, &buf)
	assert.Equal(t, "id-service", m[FieldService])
	assert.Equal(t, "staging", m[FieldEnvironment])
	assert.Equal(t, "hello", m["message"])
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf})

	ctx := WithLogger(context.Background(), l)
	got := Ctx(ctx)
	got.Info().Msg("from ctx")
	assert.Contains(t, buf.String(), "from ctx")

	assert.Equal(t, "", RequestID(context.Background()))
	assert.Equal(t, "abc", RequestID(WithRequestID(context.Background(), "abc")))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(GinMiddleware(New(Config{Output: &buf})))
	r.GET("/ping", func(c *gin.Context) {
		assert.Equal(t, "req-1", RequestID(c.Request.Context()))
		c.Set(FieldTenantID, "tnt-1-00000000-0000")
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	m := lastLine(t, &buf)
	assert.Equal(t, "warn", m["level"])
	assert.Equal(t, float64(http.StatusTeapot), m[FieldStatus])
	assert.Equal(t, "/ping", m[FieldPath])
	assert.Equal(t, "tnt-1-00000000-0000", m[FieldTenantID])
}

func TestHTTPMiddlewareMintsRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := HTTPMiddleware(New(Config{Output: &buf}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestID(r.Context()))
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	m := lastLine(t, &buf)
	assert.Equal(t, float64(http.StatusNotFound), m[FieldStatus])
	assert.Equal(t, "10.0.0.1", m[FieldClientIP])
}
