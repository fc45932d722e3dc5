package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/blendi-remade/reve-studio/internal/config"
	"github.com/blendi-remade/reve-studio/internal/database"
	"github.com/blendi-remade/reve-studio/internal/models"
	"github.com/blendi-remade/reve-studio/internal/provider"
	"github.com/blendi-remade/reve-studio/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testJWTSecret     = "server-test-secret-at-least-32-chars"
	testWebhookSecret = "hook-secret"
)

type stubGenerator struct {
	mu   sync.Mutex
	n    int
	last provider.SubmitRequest
	err  error
}

func (g *stubGenerator) Submit(_ context.Context, req provider.SubmitRequest) (*provider.SubmitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	g.last = req
	if g.err != nil {
		return nil, g.err
	}
	return &provider.SubmitResult{RequestID: "job-" + strconv.Itoa(g.n)}, nil
}

type testEnv struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	generator *stubGenerator
	app       *fiber.App
}

type envOption func(*Deps)

func withUploads(u *storage.Uploads) envOption {
	return func(d *Deps) { d.Uploads = u }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := newTestEnvConfig(testWebhookSecret)

	gen := &stubGenerator{}
	deps := Deps{Generator: gen}
	for _, opt := range opts {
		opt(&deps)
	}
	s, err := NewServerWithDeps(cfg, db, rdb, deps)
	require.NoError(t, err)

	return &testEnv{db: db, mr: mr, generator: gen, app: s.App()}
}

func newTestEnvConfig(webhookSecret string) *config.Config {
	return &config.Config{
		Env:              "test",
		Port:             "0",
		JWTSecret:        testJWTSecret,
		FalWebhookSecret: webhookSecret,
		AllowedOrigins:   "http://localhost:5173",
		PollIntervalMS:   1500,
	}
}

func tokenFor(t *testing.T, userID uint, jti string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if jti != "" {
		claims["jti"] = jti
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e *testEnv) post(t *testing.T, imageURL string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: 1, Title: "harbor", ImageURL: imageURL}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func decodeBody(resp *http.Response, dst any) error {
	return json.NewDecoder(resp.Body).Decode(dst)
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}
