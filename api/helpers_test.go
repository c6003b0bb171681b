package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zakdoc/blog-backend/models"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type testEnv struct {
	store  *memStore
	mailer *fakeMailer
	otp    *fakeOTP
	images *fakeUploader
	tokens tokenIssuer
	router *chi.Mux
}

type envOption func(*deps)

func withoutImages() envOption {
	return func(d *deps) { d.images = nil }
}

func withHealth(status string) envOption {
	return func(d *deps) { d.health = fakeHealth{status: status} }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	env := &testEnv{
		store:  newMemStore(),
		mailer: &fakeMailer{},
		otp:    &fakeOTP{},
		images: &fakeUploader{},
		tokens: newTokenIssuer(testSecret, time.Hour),
	}
	d := deps{
		users:      fakeUsers{env.store},
		blogs:      fakeBlogs{env.store},
		categories: fakeCategories{env.store},
		tags:       fakeTags{env.store},
		comments:   fakeComments{env.store},
		reactions:  fakeReactions{env.store},
		health:     fakeHealth{status: "up"},
		mailer:     env.mailer,
		otp:        env.otp,
		images:     env.images,
	}
	for _, opt := range opts {
		opt(&d)
	}
	env.router = newRouter(d,
		withConfig(map[string]string{"JWT_SECRET": testSecret, "JWT_TTL_HOURS": "1"}),
		withStartupTime(time.Now()),
	)
	return env
}

// addUser stores a verified, active user and returns it with a valid token
func (env *testEnv) addUser(t *testing.T, name string, role models.Role) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Name:          name,
		Email:         name + "@example.com",
		Password:      string(hash),
		Role:          role,
		Status:        models.UserActive,
		EmailVerified: true,
	}
	require.NoError(t, fakeUsers{env.store}.Add(t.Context(), user))
	token, _, err := env.tokens.issue(user)
	require.NoError(t, err)
	return user, token
}

func (env *testEnv) addCategory(t *testing.T, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: name}
	require.NoError(t, fakeCategories{env.store}.Add(t.Context(), &c))
	return c
}

func (env *testEnv) addTag(t *testing.T, name string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, Slug: name}
	require.NoError(t, fakeTags{env.store}.Add(t.Context(), &tag))
	return tag
}

func (env *testEnv) addBlog(t *testing.T, author *models.User, title string, status models.BlogStatus) models.Blog {
	t.Helper()
	b := models.Blog{AuthorID: author.ID, Title: title, Content: "body", Slug: uuid.NewString(), Status: status}
	require.NoError(t, fakeBlogs{env.store}.Add(t.Context(), &b))
	return b
}

// do sends body as JSON (or verbatim when it is a string) with an optional bearer token
func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
