package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zakdoc/blog-backend/models"
)

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.addUser(t, "reader", models.RoleUser)

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/user/user-details", nil, "")
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/user/user-details", nil, "not-a-jwt")
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		forged, _, err := newTokenIssuer("other-secret", time.Hour).issue(user)
		require.NoError(t, err)
		rec := env.do(t, http.MethodGet, "/user/user-details", nil, forged)
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		past := newTokenIssuer(testSecret, time.Hour)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		expired, _, err := past.issue(user)
		require.NoError(t, err)

		rec := env.do(t, http.MethodGet, "/user/user-details", nil, expired)
		requireStatus(t, rec, http.StatusUnauthorized)
		assert.Contains(t, decodeBody(t, rec)["error"], "expired")
	})

	t.Run("valid bearer token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/user/user-details", nil, token)
		requireStatus(t, rec, http.StatusOK)
		got := decodeBody(t, rec)["user"].(map[string]interface{})
		assert.Equal(t, user.ID.String(), got["id"])
		assert.NotContains(t, got, "password")
	})

	t.Run("token cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/user/user-details", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		requireStatus(t, rec, http.StatusOK)
	})

	t.Run("deleted user", func(t *testing.T) {
		gone, goneToken := env.addUser(t, "gone", models.RoleUser)
		require.NoError(t, fakeUsers{env.store}.Delete(t.Context(), gone.ID))
		rec := env.do(t, http.MethodGet, "/user/user-details", nil, goneToken)
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("inactive user", func(t *testing.T) {
		banned, bannedToken := env.addUser(t, "banned", models.RoleUser)
		_, err := fakeUsers{env.store}.Update(t.Context(), banned.ID, map[string]interface{}{"status": models.UserInactive})
		require.NoError(t, err)
		rec := env.do(t, http.MethodGet, "/user/user-details", nil, bannedToken)
		requireStatus(t, rec, http.StatusForbidden)
	})
}

func TestAuthorize(t *testing.T) {
	env := newTestEnv(t)
	_, readerToken := env.addUser(t, "reader", models.RoleUser)
	_, authorToken := env.addUser(t, "writer", models.RoleAuthor)
	_, adminToken := env.addUser(t, "boss", models.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"member cannot list users", http.MethodGet, "/user/all-users", readerToken, http.StatusForbidden},
		{"author cannot list users", http.MethodGet, "/user/all-users", authorToken, http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/user/all-users", adminToken, http.StatusOK},
		{"member cannot read dashboard", http.MethodGet, "/dashboard/users-count", readerToken, http.StatusForbidden},
		{"admin reads dashboard", http.MethodGet, "/dashboard/users-count", adminToken, http.StatusOK},
		{"member cannot list categories", http.MethodGet, "/category/all-categories", readerToken, http.StatusForbidden},
		{"author lists categories", http.MethodGet, "/category/all-categories", authorToken, http.StatusOK},
		{"member lists blogs", http.MethodGet, "/blog/all-blogs", readerToken, http.StatusOK},
		{"admin cannot update profile", http.MethodPut, "/user/update-profile", adminToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, nil, tt.token)
			requireStatus(t, rec, tt.want)
		})
	}
}

func TestCORSCheckMiddleware(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusForbidden)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	rec := newTestEnv(t).do(t, http.MethodGet, "/health", nil, "")
	requireStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	assert.Equal(t, "up", body["database"].(map[string]interface{})["status"])
	assert.Contains(t, body, "uptime")

	rec = newTestEnv(t, withHealth("down")).do(t, http.MethodGet, "/health", nil, "")
	requireStatus(t, rec, http.StatusServiceUnavailable)
}
