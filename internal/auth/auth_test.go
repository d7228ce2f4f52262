package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/bordertrade/internal/models"
	"github.com/mmynk/bordertrade/internal/storage"
)

type memUsers struct {
	byName map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byName: make(map[string]*models.User)}
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	if _, ok := m.byName[u.Username]; ok {
		return storage.ErrDuplicate
	}
	m.byName[u.Username] = u
	return nil
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func TestPasswordAuthenticator_Register(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemUsers()).WithCost(bcrypt.MinCost)

	if _, err := a.Register(ctx, "agent01", "张三", models.RoleAgent, "secret123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		username string
		role     models.Role
		password string
		wantErr  error
	}{
		{"missing username", "", models.RoleAgent, "secret123", ErrMissingField},
		{"missing password", "agent02", models.RoleAgent, "", ErrMissingField},
		{"missing role", "agent02", "", "secret123", ErrMissingField},
		{"unknown role", "agent02", "admin", "secret123", ErrInvalidRole},
		{"short password", "agent02", models.RoleAgent, "abc", ErrWeakPassword},
		{"duplicate username", "agent01", models.RoleEnterprise, "secret123", ErrUsernameExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.username, "", tt.role, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPasswordAuthenticator_Authenticate(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemUsers()).WithCost(bcrypt.MinCost)

	registered, err := a.Register(ctx, "ent01", "鑫源坚果", models.RoleEnterprise, "secret123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if registered.PasswordHash == "secret123" {
		t.Fatal("Password stored in plain text")
	}

	t.Run("valid credentials", func(t *testing.T) {
		u, err := a.Authenticate(ctx, "ent01", "secret123")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if u.ID != registered.ID || u.Role != models.RoleEnterprise {
			t.Errorf("Unexpected user: %+v", u)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "ent01", "nope")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "ghost", "secret123")
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestJWTManager(t *testing.T) {
	user := models.NewUser("agent01", "张三", models.RoleAgent, "hash")

	t.Run("round trip carries role", func(t *testing.T) {
		m := NewJWTManager("test-secret", time.Hour)
		token, err := m.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		claims, err := m.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.UserID != user.ID || claims.Username != "agent01" || claims.Role != models.RoleAgent {
			t.Errorf("Unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := NewJWTManager("one", time.Hour).Generate(user)
		_, err := NewJWTManager("two", time.Hour).Validate(token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		m := NewJWTManager("test-secret", time.Minute)
		issued := time.Date(2023, 10, 26, 9, 0, 0, 0, time.UTC)
		m.now = func() time.Time { return issued }
		token, err := m.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		m.now = func() time.Time { return issued.Add(time.Hour) }
		_, err = m.Validate(token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		m := NewJWTManager("test-secret", time.Hour)
		token, err := m.Generate(models.NewUser("root", "", "admin", "hash"))
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewJWTManager("s", time.Hour).Validate(strings.Repeat("x", 20))
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestClaimsHasRole(t *testing.T) {
	c := &Claims{Role: models.RoleResident}
	if !c.HasRole(models.RoleAgent, models.RoleResident) {
		t.Error("Expected resident to match")
	}
	if c.HasRole(models.RoleAgent, models.RoleEnterprise) {
		t.Error("Expected resident not to match agent or enterprise")
	}
}

func TestSessionsLogin(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemUsers()).WithCost(bcrypt.MinCost)
	if _, err := a.Register(ctx, "res01", "岩帕", models.RoleResident, "secret123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	m := NewJWTManager("test-secret", time.Hour)
	sessions := NewSessions(a, m)

	session, err := sessions.Login(ctx, "res01", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	claims, err := m.Validate(session.Token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != session.User.ID || claims.RealName != "岩帕" || claims.Issuer != Issuer {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	if _, err := sessions.Login(ctx, "res01", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}
