// Package auth handles user registration, password checks and session tokens.
package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator registers users and checks their credentials. The service
// layer only sees this interface; PasswordAuthenticator is the bcrypt-backed
// implementation.
type Authenticator interface {
	// Register stores a new user. displayName may be empty.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user when credential matches, and
	// ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
