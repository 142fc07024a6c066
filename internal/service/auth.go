// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses, services enforce the business
// rules, repositories talk to the database. The services receive
// repository interfaces (not concrete types), so the tests in this
// package run against an in-memory fake instead of SQLite.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/arefin/learnhub/internal/apperror"
	"github.com/arefin/learnhub/internal/auth"
	"github.com/arefin/learnhub/internal/model"
	"github.com/arefin/learnhub/internal/repository"
)

// Validation bounds for registration.
//
// The 13-character email minimum looks odd but is the product contract:
// the shortest realistic address on the platform's domains is longer, and
// the bound filters obvious throwaways like a@b.c.
const (
	MinUsernameLength = 3
	MinEmailLength    = 13
	MinPasswordLength = 5
)

// loginFailedMessage is deliberately identical for "no such user" and
// "wrong password" — the response must not reveal which field was wrong.
const loginFailedMessage = "username or password is incorrect"

// AuthService handles registration, credential verification, and session
// token issuance.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user and the issued session token
// so the handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register validates the registration input, hashes the password, and
// creates the credential record.
//
// Every violated rule is collected and reported together — a client
// fixing a short password should learn about the short username in the
// same response, not on the next attempt.
//
// Uniqueness of username/email is NOT pre-checked here: the store's
// UNIQUE constraints decide, which closes the race between check and
// insert. A duplicate surfaces as apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))
	password = strings.TrimSpace(password)

	var violations []apperror.FieldViolation
	if _, err := mail.ParseAddress(email); err != nil {
		violations = append(violations, apperror.FieldViolation{
			Field: "email", Message: "invalid email address",
		})
	}
	if len(email) < MinEmailLength {
		violations = append(violations, apperror.FieldViolation{
			Field:   "email",
			Message: fmt.Sprintf("email must be at least %d characters long", MinEmailLength),
		})
	}
	if len(username) < MinUsernameLength {
		violations = append(violations, apperror.FieldViolation{
			Field:   "username",
			Message: fmt.Sprintf("username must be at least %d characters long", MinUsernameLength),
		})
	}
	if len(password) < MinPasswordLength {
		violations = append(violations, apperror.FieldViolation{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters long", MinPasswordLength),
		})
	}
	if len(violations) > 0 {
		return nil, apperror.ValidationFailedAll(violations)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Conflict is a normal outcome (taken username/email), not a
		// server fault — pass it through without logging an error.
		return nil, fmt.Errorf("service/auth: creating user %s: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies the credentials and issues a session token.
//
// Both failure paths — unknown username and wrong password — return the
// same apperror.ErrUnauthorized with the same message. The bcrypt
// comparison itself is constant-time, so neither the body nor the timing
// betrays which check failed.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	password = strings.TrimSpace(password)

	if len(username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Unauthorized(loginFailedMessage)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized(loginFailedMessage)
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}
