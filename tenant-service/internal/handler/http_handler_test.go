package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junoblue/launch/pkg/database"
	"github.com/junoblue/launch/pkg/health"
	"github.com/junoblue/launch/pkg/jwt"
	"github.com/junoblue/launch/pkg/middleware"
	"github.com/junoblue/launch/pkg/pubsub"
	"github.com/junoblue/launch/pkg/storage"
	"github.com/junoblue/launch/tenant-service/internal/consumer"
	"github.com/junoblue/launch/tenant-service/internal/domain"
	"github.com/junoblue/launch/tenant-service/internal/repository"
	"github.com/junoblue/launch/tenant-service/internal/service"
	"github.com/junoblue/launch/tenant-service/internal/stream"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

const testMaxLogoBytes = 4096

type testEnv struct {
	router *gin.Engine
	hub    *stream.Hub
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(database.Config{Driver: database.DriverSQLite, FilePath: ":memory:", MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, &domain.TenantModel{}))
	t.Cleanup(func() { database.Close(db) })

	tokens, err := jwt.NewManager("0123456789abcdef0123456789abcdef", 15*time.Minute, time.Hour, "test")
	require.NoError(t, err)

	assets, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir(), BaseURL: "/assets"})
	require.NoError(t, err)

	bus := pubsub.NewMemoryPubSub()
	t.Cleanup(func() { bus.Close() })

	svc := service.NewTenantService(service.Deps{
		Repo:   repository.NewGormTenantRepository(db),
		Tokens: tokens,
		Assets: assets,
		Events: bus,
	})

	hub := stream.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, consumer.NewDispatcher(bus, hub).Start(ctx))

	r := gin.New()
	NewHandler(svc, middleware.NewAuthMiddleware(tokens), health.NewChecker(health.WithEnvironment("test")), testMaxLogoBytes).
		WithEventStream(NewStreamHandler(hub, stream.Config{}, nil)).
		RegisterRoutes(r)
	return &testEnv{router: r, hub: hub}
}

func newRouter(t *testing.T) *gin.Engine {
	return newEnv(t).router
}

func do(t *testing.T, r *gin.Engine, method, path, body string, headers map[string]string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusOK || strings.HasPrefix(path, "/api/") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func createTenant(t *testing.T, r *gin.Engine, subdomain string) domain.CreateTenantResponse {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/api/v1/tenants", `{"name":"Acme","subdomain":"`+subdomain+`"}`, nil)
	require.Equal(t, http.StatusCreated, code)
	var out domain.CreateTenantResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealth(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"environment":"test"`)
}

func TestCreateAndLookup(t *testing.T) {
	r := newRouter(t)
	created := createTenant(t, r, "acme")
	assert.True(t, strings.HasPrefix(created.Tenant.ID, "tnt-"))
	assert.True(t, strings.HasPrefix(created.Auth.UserID, "usr-"))
	assert.NotEmpty(t, created.Auth.AccessToken)

	code, env := do(t, r, http.MethodGet, "/api/v1/tenants/acme", "", nil)
	require.Equal(t, http.StatusOK, code)
	var got domain.TenantResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, created.Tenant.ID, got.ID)

	code, env = do(t, r, http.MethodGet, "/api/v1/tenants/id/"+created.Tenant.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "acme", got.Subdomain)

	code, env = do(t, r, http.MethodGet, "/api/v1/subdomains/acme", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"subdomain":"acme","available":false,"reason":"subdomain is already taken"}`, string(env.Data))
}

func TestCreateErrors(t *testing.T) {
	r := newRouter(t)
	createTenant(t, r, "acme")

	tests := []struct {
		name string
		body string
		code int
		err  string
	}{
		{"missing name", `{"subdomain":"globex"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"short", `{"name":"x","subdomain":"ab"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"reserved", `{"name":"x","subdomain":"samurai"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"taken", `{"name":"x","subdomain":"acme"}`, http.StatusConflict, "CONFLICT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, r, http.MethodPost, "/api/v1/tenants", tt.body, nil)
			assert.Equal(t, tt.code, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.err, env.Error.Code)
		})
	}
}

func TestLookupErrors(t *testing.T) {
	r := newRouter(t)

	code, env := do(t, r, http.MethodGet, "/api/v1/tenants/id/not-a-uild", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	code, env = do(t, r, http.MethodGet, "/api/v1/tenants/globex", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestOwnerRoutes(t *testing.T) {
	r := newRouter(t)
	acme := createTenant(t, r, "acme")
	globex := createTenant(t, r, "globex")
	settingsPath := "/api/v1/tenants/id/" + acme.Tenant.ID + "/settings"

	code, _ := do(t, r, http.MethodPatch, settingsPath, `{"theme":"dark"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, r, http.MethodPatch, settingsPath, `{"theme":"dark"}`, bearer(globex.Auth.AccessToken))
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, r, http.MethodPatch, settingsPath, `{"theme":"neon"}`, bearer(acme.Auth.AccessToken))
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := do(t, r, http.MethodPatch, settingsPath, `{"theme":"dark","features":["crm"]}`, bearer(acme.Auth.AccessToken))
	require.Equal(t, http.StatusOK, code)
	var got domain.TenantResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "dark", got.Settings.Theme)
	assert.Equal(t, []string{"crm"}, got.Settings.Features)

	code, env = do(t, r, http.MethodPost, "/api/v1/tenants/id/"+acme.Tenant.ID+"/sessions", "", bearer(acme.Auth.AccessToken))
	require.Equal(t, http.StatusCreated, code)
	var sess domain.SessionResponse
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.True(t, strings.HasPrefix(sess.SessionID, "ses-"))
}

func TestUploadLogo(t *testing.T) {
	r := newRouter(t)
	acme := createTenant(t, r, "acme")
	path := "/api/v1/tenants/id/" + acme.Tenant.ID + "/logo"

	upload := func(contentType string, body []byte) (int, envelope) {
		req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+acme.Auth.AccessToken)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return w.Code, env
	}

	var logo bytes.Buffer
	require.NoError(t, png.Encode(&logo, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	code, env := upload("image/png", logo.Bytes())
	require.Equal(t, http.StatusOK, code)
	var got domain.TenantResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.True(t, strings.HasPrefix(got.LogoURL, "/assets/tenants/"+acme.Tenant.ID+"/doc-"), got.LogoURL)
	assert.Equal(t, got.LogoURL+".thumb.png", got.LogoThumbURL)

	code, env = upload("image/png", []byte("\x89PNG"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	code, env = upload("text/plain", []byte("hello"))
	assert.Equal(t, http.StatusUnsupportedMediaType, code)
	assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", env.Error.Code)

	code, env = upload("image/png", bytes.Repeat([]byte("x"), 2*testMaxLogoBytes))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", env.Error.Code)
}

func TestEventStream(t *testing.T) {
	env := newEnv(t)
	acme := createTenant(t, env.router, "acme")
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/tenants/id/" + acme.Tenant.ID + "/events"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer " + acme.Auth.AccessToken}})
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.hub.Count(acme.Tenant.ID) == 1 }, time.Second, 10*time.Millisecond)

	code, _ := do(t, env.router, http.MethodPatch, "/api/v1/tenants/id/"+acme.Tenant.ID+"/settings", `{"theme":"light"}`, bearer(acme.Auth.AccessToken))
	require.Equal(t, http.StatusOK, code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev pubsub.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, domain.EventSettingsUpdated, ev.Type)
	assert.Equal(t, acme.Tenant.ID, ev.Subject)

	var payload domain.SettingsUpdatedPayload
	require.NoError(t, ev.UnmarshalPayload(&payload))
	assert.Equal(t, "light", payload.Settings.Theme)
}

func TestRefresh(t *testing.T) {
	r := newRouter(t)
	acme := createTenant(t, r, "acme")

	code, env := do(t, r, http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"`+acme.Auth.RefreshToken+`"}`, nil)
	require.Equal(t, http.StatusOK, code)
	var got domain.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, acme.Tenant.ID, got.TenantID)

	code, _ = do(t, r, http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"garbage"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
