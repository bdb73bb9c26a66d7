package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/config"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/seed"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content/store"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/sessions"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/tokens"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/users"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authEnv struct {
	router *gin.Engine
	store  *store.Store
	cfg    config.JWTConfig
}

func newAuthEnv(t *testing.T, bl *sessions.Blacklist) *authEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fx, err := seed.Default()
	require.NoError(t, err)
	st, err := store.NewMemory(context.Background(), fx)
	require.NoError(t, err)

	cfg := config.JWTConfig{
		Secret:          "handler-test-secret-32-bytes-xxxxxxx",
		Issuer:          "homelab-docs",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	}
	ver := tokens.NewVerifier(cfg)
	h := NewAuthHandler(cfg, users.NewService(st), sessions.NewService(sessions.NewMemoryRepository()), bl, ver)

	r := gin.New()
	api := r.Group("/api")
	h.Register(api, middleware.AuthMiddleware(ver, middleware.WithRevocations(bl)))
	return &authEnv{router: r, store: st, cfg: cfg}
}

func (e *authEnv) post(path, body string, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *authEnv) me(bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type tokenPair struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int           `json:"expiresIn"`
	User         *content.User `json:"user"`
}

func (e *authEnv) login(t *testing.T) tokenPair {
	t.Helper()
	w := e.post("/api/auth/login", `{"username":"admin","password":"admin123"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tp tokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tp))
	return tp
}

func TestLoginSuccess(t *testing.T) {
	e := newAuthEnv(t, sessions.NewBlacklist(nil))
	w := e.post("/api/auth/login", `{"username":"admin","password":"admin123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "admin123")

	var tp tokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tp))
	assert.NotEmpty(t, tp.AccessToken)
	assert.NotEmpty(t, tp.RefreshToken)
	assert.Equal(t, 900, tp.ExpiresIn)
	require.NotNil(t, tp.User)
	assert.Equal(t, content.RoleAdmin, tp.User.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newAuthEnv(t, sessions.NewBlacklist(nil))

	w := e.post("/api/auth/login", `{"username":"admin","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.post("/api/auth/login", `{"username":"ghost","password":"admin123"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.post("/api/auth/login", `{"username":"admin"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	e := newAuthEnv(t, sessions.NewBlacklist(nil))
	tp := e.login(t)

	w := e.me(tp.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var u content.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "admin", u.Username)

	w = e.me("garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	e := newAuthEnv(t, sessions.NewBlacklist(nil))
	tp := e.login(t)

	w := e.post("/api/auth/refresh", `{"refreshToken":"`+tp.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var next tokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &next))
	assert.NotEmpty(t, next.AccessToken)
	assert.NotEqual(t, tp.RefreshToken, next.RefreshToken)

	// the old refresh token is spent
	w = e.post("/api/auth/refresh", `{"refreshToken":"`+tp.RefreshToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.post("/api/auth/refresh", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshAfterUserDeleted(t *testing.T) {
	e := newAuthEnv(t, sessions.NewBlacklist(nil))
	tp := e.login(t)

	ok, err := e.store.DeleteUser(context.Background(), tp.User.ID)
	require.NoError(t, err)
	require.True(t, ok)

	w := e.post("/api/auth/refresh", `{"refreshToken":"`+tp.RefreshToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutBlacklistsAccessToken(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	bl := sessions.NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))

	e := newAuthEnv(t, bl)
	tp := e.login(t)
	require.Equal(t, http.StatusOK, e.me(tp.AccessToken).Code)

	w := e.post("/api/auth/logout", `{"refreshToken":"`+tp.RefreshToken+`"}`, tp.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, e.me(tp.AccessToken).Code)
	assert.True(t, m.Exists("blacklist:access:"+tp.AccessToken))

	w = e.post("/api/auth/refresh", `{"refreshToken":"`+tp.RefreshToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutWithoutBearerStillEndsSession(t *testing.T) {
	e := newAuthEnv(t, sessions.NewBlacklist(nil))
	tp := e.login(t)

	w := e.post("/api/auth/logout", `{"refreshToken":"`+tp.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	// access token was not sent, so it stays valid until expiry
	assert.Equal(t, http.StatusOK, e.me(tp.AccessToken).Code)

	w = e.post("/api/auth/refresh", `{"refreshToken":"`+tp.RefreshToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type idpToken map[string]interface{}

func (t idpToken) Claims(v interface{}) error {
	b, err := json.Marshal(map[string]interface{}(t))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// idpVerifier accepts one fixed token the way an external provider would.
type idpVerifier struct{}

func (idpVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	if raw != "idp-token" {
		return nil, assert.AnError
	}
	return idpToken{"sub": "5f0c2c1e", "username": "alice", "role": "admin", "idp": "oidc", "exp": float64(time.Now().Add(time.Hour).Unix())}, nil
}

func TestMeWithProviderToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st, err := store.NewMemory(context.Background(), &seed.Fixtures{})
	require.NoError(t, err)
	cfg := config.JWTConfig{Secret: "handler-test-secret-32-bytes-xxxxxxx", AccessTokenTTL: time.Minute}
	ver := middleware.ChainVerifiers(tokens.NewVerifier(cfg), idpVerifier{})
	h := NewAuthHandler(cfg, users.NewService(st), sessions.NewService(sessions.NewMemoryRepository()), sessions.NewBlacklist(nil), ver)
	r := gin.New()
	h.Register(r.Group("/api"), middleware.AuthMiddleware(ver))
	e := &authEnv{router: r, store: st, cfg: cfg}

	w := e.me("idp-token")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "admin", body["role"])
	assert.Equal(t, "oidc", body["idp"])

	w = e.me("not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
