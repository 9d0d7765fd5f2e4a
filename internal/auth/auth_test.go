package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
)

// memUsers is an in-memory storage.UserStore.
type memUsers struct {
	byEmail map[string]*models.User
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.byEmail[strings.ToLower(u.Email)] = u
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.byEmail[strings.ToLower(email)], nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(&memUsers{byEmail: map[string]*models.User{}}).WithCost(bcrypt.MinCost)

	user, err := a.Register(ctx, "alice@example.com", "", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.DisplayName != "alice" {
		t.Errorf("DisplayName = %q, want derived from email", user.DisplayName)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in clear text")
	}

	tests := []struct {
		name    string
		email   string
		pass    string
		wantErr error
	}{
		{"weak password", "bob@example.com", "short", ErrWeakPassword},
		{"duplicate email", "alice@example.com", "another one", ErrEmailExists},
		{"bad email", "not-an-email", "long enough", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Register(ctx, tt.email, "", tt.pass); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := a.Authenticate(ctx, "alice@example.com", "correct horse"); err != nil {
		t.Errorf("Authenticate failed: %v", err)
	}
	if _, err := a.Authenticate(ctx, "alice@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate wrong password error = %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "whatever1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate unknown user error = %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "u1", Email: "alice@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "alice@example.com" {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	other := NewJWTManager("other-secret", time.Hour)
	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate with wrong secret error = %v", err)
	}

	expired := NewJWTManager("test-secret", -time.Minute)
	old, _ := expired.Generate(user)
	if _, err := m.Validate(old); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate expired token error = %v", err)
	}

	if _, err := m.Validate("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate garbage error = %v", err)
	}
}

func TestJWTManager_Claims(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "u1", Email: "alice@example.com", DisplayName: "Alice"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Issuer != Issuer || claims.Subject != "u1" || claims.DisplayName != "Alice" {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	sign := func(c *Claims, method jwt.SigningMethod, key any) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{"foreign issuer", sign(&Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "elsewhere", Subject: "u1", ExpiresAt: exp}}, jwt.SigningMethodHS256, []byte("test-secret"))},
		{"no expiry", sign(&Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
			Issuer: Issuer, Subject: "u1"}}, jwt.SigningMethodHS256, []byte("test-secret"))},
		{"other HMAC size", sign(&Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
			Issuer: Issuer, Subject: "u1", ExpiresAt: exp}}, jwt.SigningMethodHS512, []byte("test-secret"))},
		{"subject mismatch", sign(&Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{
			Issuer: Issuer, Subject: "u2", ExpiresAt: exp}}, jwt.SigningMethodHS256, []byte("test-secret"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
