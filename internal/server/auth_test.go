package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/blendi-remade/reve-studio/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequired_RevokedToken(t *testing.T) {
	env := newTestEnv(t)
	post := env.post(t, "https://img.example/p.png")
	path := fmt.Sprintf("/api/posts/%d/like", post.ID)
	token := tokenFor(t, 3, "jti-123")

	resp, _ := env.do(t, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, env.mr.Set(revokedTokenPrefix+"jti-123", "1"))

	resp, body := env.do(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", decode[models.ErrorResponse](t, body).Error)

	// the liked check degrades to anonymous instead of failing
	_, body = env.do(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/liked", post.ID), token, nil)
	assert.Equal(t, false, decode[map[string]bool](t, body)["liked"])
}

func TestAuthRequired_BadTokens(t *testing.T) {
	env := newTestEnv(t)
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "3",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("some-other-secret-of-enough-length"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"foreign signature", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, http.MethodDelete, "/api/comments/1", tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, string(body))
			assert.Equal(t, models.CodeUnauthorized, decode[models.ErrorResponse](t, body).Code)
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	checks := decode[map[string]any](t, body)["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "healthy", checks["redis"])
	assert.Equal(t, "disabled", checks["storage"])
}
