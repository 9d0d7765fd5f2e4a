package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

// Session is returned by Register and Login.
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService registers users and issues session tokens.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*Session, error) {
	s.logger.Info("Register request", "email", email)

	if strings.TrimSpace(email) == "" {
		return nil, auth.ErrInvalidEmail
	}

	user, err := s.authenticator.Register(ctx, email, strings.TrimSpace(displayName), password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", email, "error", err)
		return nil, err
	}

	return s.session(user, "User registered successfully")
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	s.logger.Info("Login request", "email", email)

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return nil, err
	}

	return s.session(user, "User logged in successfully")
}

func (s *AuthService) session(user *models.User, msg string) (*Session, error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info(msg, "user_id", user.ID, "email", user.Email)
	return &Session{User: user, Token: token}, nil
}
