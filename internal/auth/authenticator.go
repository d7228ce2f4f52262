package auth

import (
	"context"
	"fmt"

	"github.com/mmynk/bordertrade/internal/models"
)

// Authenticator checks dashboard credentials. PasswordAuthenticator is the
// only implementation; SMS or ID-card verification would be further ones.
type Authenticator interface {
	// Register creates an account. The credential format is up to the implementation.
	Register(ctx context.Context, username, realName string, role models.Role, credential string) (*models.User, error)

	// Authenticate returns ErrUserNotFound or ErrInvalidCredentials on failure.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)

	ValidateCredential(credential string) error
}

// Session is what a successful login hands back to the dashboard.
type Session struct {
	User  *models.User
	Token string
}

// Sessions signs users in: it checks credentials and issues a role-bearing token.
type Sessions struct {
	auth Authenticator
	jwt  *JWTManager
}

func NewSessions(a Authenticator, m *JWTManager) *Sessions {
	return &Sessions{auth: a, jwt: m}
}

// Login authenticates username and returns a signed session.
func (s *Sessions) Login(ctx context.Context, username, credential string) (*Session, error) {
	user, err := s.auth.Authenticate(ctx, username, credential)
	if err != nil {
		return nil, err
	}
	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("issue session for %s: %w", username, err)
	}
	return &Session{User: user, Token: token}, nil
}
