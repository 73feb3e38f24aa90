package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/auth_service/internal/handlers"
	"github.com/Skotchmaster/auth_service/internal/hash"
	authmw "github.com/Skotchmaster/auth_service/internal/middleware/auth"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/revocation"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/token"
	httpserver "github.com/Skotchmaster/auth_service/internal/transport/http"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RevokedToken{}))

	svc := &service.AuthService{
		Users:   repo.NewGormUserRepo(db),
		Revoked: revocation.NewGormStore(db),
		Tokens:  token.NewManager([]byte("test-secret-key")),
	}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{Svc: svc},
		UserHandler: &handlers.UserHandler{Svc: svc},
		AuthMW:      authmw.NewRequireAuth(svc),
	})

	return &testEnv{T: t, E: e, DB: db}
}

func (env *testEnv) do(method, path string, body any, bearer string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) createUser(email, password string) *models.User {
	env.T.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)
	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    "Test",
		LastName:     "User",
	}
	require.NoError(env.T, env.DB.Create(user).Error)
	return user
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"email":     "new@b.com",
		"password":  "password",
		"firstName": "New",
		"lastName":  "User",
	}
	rec := env.do(http.MethodPost, "/auth/signup", payload, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	require.Equal(t, "User created successfully", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "new@b.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "PasswordHash")

	rec = env.do(http.MethodPost, "/auth/signup", payload, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decode(t, rec)["message"])
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("a@b.com", "password")

	rec := env.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.com", "password": "password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.NotEmpty(t, body["token"])
}

func TestLogin_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "nobody@b.com", "password": "password",
	}, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["message"])
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("a@b.com", "password")

	rec := env.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.com", "password": "wrong",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decode(t, rec)["message"])
}

func TestLogout_MissingHeader(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/logout", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_GarbageTokenStillSucceeds(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/logout", nil, "garbage")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", decode(t, rec)["message"])
}

func TestLogout_InvalidatesToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("a@b.com", "password")

	rec := env.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.com", "password": "password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decode(t, rec)["token"].(string)

	rec = env.do(http.MethodGet, "/user/me", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/auth/logout", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	// The same structurally valid token must now be rejected.
	rec = env.do(http.MethodGet, "/user/me", nil, tok)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout retry still reports success.
	rec = env.do(http.MethodPost, "/auth/logout", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("a@b.com", "password")

	rec := env.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.com", "password": "password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decode(t, rec)["token"].(string)

	rec = env.do(http.MethodGet, "/user/me", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, float64(user.ID), body["id"])
	assert.Equal(t, "a@b.com", body["email"])
	assert.Equal(t, "Test", body["firstName"])
	assert.NotContains(t, body, "password")
}

func TestMe_NoToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/user/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_InvalidToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/user/me", nil, "not-a-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe_SubjectDeleted(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser("a@b.com", "password")

	rec := env.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.com", "password": "password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decode(t, rec)["token"].(string)

	require.NoError(t, env.DB.Delete(&models.User{}, user.ID).Error)

	rec = env.do(http.MethodGet, "/user/me", nil, tok)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec)["message"])
}
