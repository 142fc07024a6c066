package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/arefin/learnhub/internal/auth"
	"github.com/arefin/learnhub/internal/service"
)

// AuthHandler exposes registration, login, session verification, and
// logout over HTTP.
//
// COOKIE CONTRACT:
// Login sets the session JWT in an HttpOnly cookie named "token" with a
// 24h max-age. In production the cookie is Secure + SameSite=None (the
// SPA is served from a different origin over HTTPS); in development it
// is SameSite=Strict, which works on same-origin plain-HTTP localhost.
// Logout clears it with the same attributes.
type AuthHandler struct {
	svc           *service.AuthService
	logger        *slog.Logger
	secureCookies bool
}

// NewAuthHandler creates an AuthHandler. secureCookies selects the
// production cookie attributes (Secure, SameSite=None).
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// registerRequest is the POST /user/register body.
type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// userResponse is the public projection of an account: the password
// hash is structurally excluded, not just omitted by convention.
type userResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /user/register
// Success: 201 with the new account's public fields.
// Failure: 400 with every violated validation rule, 409 if the
// username or email is already taken.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    userResponse{Username: user.Username, Email: user.Email},
	})
}

// loginRequest is the POST /user/login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and starts a session.
//
// HTTP: POST /user/login
// Success: 200, session cookie set, public account fields in the body.
// Failure: 400 for malformed input, 401 with a deliberately generic
// message for bad credentials.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return
	}

	result, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(result.Token, int(auth.TokenTTL.Seconds())))

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    userResponse{Username: result.User.Username, Email: result.User.Email},
	})
}

// HandleVerify echoes the session claims back to the client.
//
// HTTP: GET /user/verify
// Auth: required — the middleware has already validated the cookie, so
// reaching this handler means the session is good.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		// Unreachable on a protected route, but don't panic if the
		// route wiring ever changes.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "not authenticated",
		})
		return
	}

	// The full claims object goes back as-is: the registered fields
	// (iat, exp, iss, sub) are part of the contract, not just the three
	// custom ones.
	writeJSON(w, http.StatusOK, map[string]any{"user": claims})
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /user/logout
//
// Sessions are stateless, so logout is purely client-side: the token
// stays cryptographically valid until its 24h expiry, but without the
// cookie the browser can no longer present it. Idempotent — logging out
// twice is fine.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// sessionCookie builds the session cookie with the deployment's
// attributes. maxAge -1 deletes the cookie.
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if h.secureCookies {
		// Cross-origin SPA deployments need SameSite=None, which
		// browsers only accept together with Secure.
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
