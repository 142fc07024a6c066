package handler_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arefin/learnhub/internal/auth"
	"github.com/arefin/learnhub/internal/handler"
	"github.com/arefin/learnhub/internal/repository/sqlite"
	"github.com/arefin/learnhub/internal/service"
)

const testSecret = "test-secret-at-least-16-chars!!"

// newTestRouter wires the full stack — router, middleware, handlers,
// services, and an in-memory database — exactly as the server does, so
// tests exercise real routing and the real auth middleware.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)
	passwords := auth.NewPasswordService(4) // minimum bcrypt cost keeps tests fast

	authService := service.NewAuthService(db, tokens, passwords, logger)
	profileService := service.NewProfileService(db, db, logger)

	authHandler := handler.NewAuthHandler(authService, logger, false)
	profileHandler := handler.NewProfileHandler(profileService, logger)

	r := chi.NewRouter()
	r.Route("/user", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/verify", authHandler.HandleVerify)
			r.Get("/profile", profileHandler.HandleGetProfile)
			r.Post("/profile", profileHandler.HandleSaveProfile)
			r.Post("/profile/course", profileHandler.HandleAddCourse)
			r.Post("/enroll-course", profileHandler.HandleEnrollCourse)
			r.Post("/update-progress", profileHandler.HandleUpdateProgress)
			r.Get("/course-status/{courseId}", profileHandler.HandleCourseStatus)
		})
	})
	return r
}

// doJSON sends a JSON request through the router. cookies (if any) are
// attached, so callers can carry a session across requests.
func doJSON(t *testing.T, r chi.Router, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	return m
}

// registerAndLogin creates an account and returns the session cookie.
func registerAndLogin(t *testing.T, r chi.Router, username string) *http.Cookie {
	t.Helper()

	rr := doJSON(t, r, http.MethodPost, "/user/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, http.MethodPost, "/user/login", map[string]string{
		"username": username,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("login response did not set the session cookie")
	return nil
}

func TestHandleRegister(t *testing.T) {
	r := newTestRouter(t)

	t.Run("creates account", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/user/register", map[string]string{
			"username": "Rahim",
			"email":    "rahim@example.com",
			"password": "secret123",
		})

		assert.Equal(t, http.StatusCreated, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "User registered successfully", body["message"])

		user := body["user"].(map[string]any)
		assert.Equal(t, "rahim", user["username"], "username is stored lowercased")
		assert.Equal(t, "rahim@example.com", user["email"])
		assert.NotContains(t, user, "passwordHash")
	})

	t.Run("reports every violated rule at once", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/user/register", map[string]string{
			"username": "ab",
			"email":    "a@b.c",
			"password": "pw",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "validation_error", body["error"])
		assert.Len(t, body["errors"], 3)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/user/register", map[string]string{
			"username": "rahim",
			"email":    "other@example.com",
			"password": "secret123",
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "conflict", decodeBody(t, rr)["error"])
	})

	t.Run("malformed JSON body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/user/register", bytes.NewBufferString(`{"username":`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleLogin(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/user/register", map[string]string{
		"username": "karim",
		"email":    "karim@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	t.Run("sets the session cookie", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/user/login", map[string]string{
			"username": "karim",
			"password": "secret123",
		})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Login successful", decodeBody(t, rr)["message"])

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, auth.CookieName, c.Name)
		assert.NotEmpty(t, c.Value)
		assert.True(t, c.HttpOnly, "session cookie must not be readable from JavaScript")
		assert.Equal(t, int(auth.TokenTTL.Seconds()), c.MaxAge)
		assert.False(t, c.Secure, "development mode keeps the cookie usable over plain HTTP")
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	})

	t.Run("wrong password and unknown user get the same answer", func(t *testing.T) {
		wrongPassword := doJSON(t, r, http.MethodPost, "/user/login", map[string]string{
			"username": "karim",
			"password": "not-the-password",
		})
		unknownUser := doJSON(t, r, http.MethodPost, "/user/login", map[string]string{
			"username": "nobody",
			"password": "secret123",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
		// Identical bodies: responses must not leak which accounts exist.
		assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	})

	t.Run("missing credentials", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodPost, "/user/login", map[string]string{
			"username": "karim",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleVerify(t *testing.T) {
	r := newTestRouter(t)
	cookie := registerAndLogin(t, r, "mina")

	t.Run("valid session echoes the claims", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/user/verify", nil, cookie)

		assert.Equal(t, http.StatusOK, rr.Code)
		user := decodeBody(t, rr)["user"].(map[string]any)
		assert.Equal(t, "mina", user["username"])
		assert.Equal(t, "mina@example.com", user["email"])
		assert.NotEmpty(t, user["userID"])

		// The registered claims come back too, not just the custom ones.
		assert.Equal(t, "learnhub", user["iss"])
		assert.Equal(t, user["userID"], user["sub"])
		assert.NotEmpty(t, user["iat"])
		assert.NotEmpty(t, user["exp"])
	})

	t.Run("no cookie is rejected", func(t *testing.T) {
		rr := doJSON(t, r, http.MethodGet, "/user/verify", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		bad := *cookie
		bad.Value = cookie.Value + "x"
		rr := doJSON(t, r, http.MethodGet, "/user/verify", nil, &bad)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestHandleLogout(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/user/logout", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Logged out successfully", decodeBody(t, rr)["message"])

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge, "expired max-age tells the browser to delete the cookie")
}
