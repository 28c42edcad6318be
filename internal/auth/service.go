package auth

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"signal-sniper/internal/database"
)

// Service handles operator authentication against the database
type Service struct {
	cfg       Config
	repo      *database.Repository
	jwt       *JWTManager
	passwords *PasswordManager
}

// NewService creates an authentication service
func NewService(cfg Config, repo *database.Repository) *Service {
	return &Service{
		cfg:       cfg,
		repo:      repo,
		jwt:       NewJWTManager(cfg.JWTSecret, cfg.AccessTokenDuration),
		passwords: NewPasswordManager(DefaultBcryptCost),
	}
}

// JWT returns the token manager for middleware wiring
func (s *Service) JWT() *JWTManager {
	return s.jwt
}

// Login verifies credentials and issues an access token
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	op, err := s.repo.GetOperatorByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up operator: %w", err)
	}
	if op == nil || !s.passwords.VerifyPassword(req.Password, op.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(OperatorClaims{
		OperatorID: strconv.FormatInt(op.ID, 10),
		Username:   op.Username,
		Role:       op.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{
		Username:    op.Username,
		Role:        op.Role,
		AccessToken: token,
		ExpiresIn:   s.jwt.GetAccessTokenDuration(),
		TokenType:   "Bearer",
	}, nil
}

// SeedDefaultOperator ensures an operator account exists so the API is
// reachable on a fresh database. No-op when the default password is
// unset.
func (s *Service) SeedDefaultOperator(ctx context.Context) error {
	if s.cfg.DefaultUsername == "" || s.cfg.DefaultPassword == "" {
		return nil
	}

	existing, err := s.repo.GetOperatorByUsername(ctx, s.cfg.DefaultUsername)
	if err != nil {
		return fmt.Errorf("failed to check for default operator: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := s.passwords.HashPassword(s.cfg.DefaultPassword)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}
	if err := s.repo.CreateOperator(ctx, s.cfg.DefaultUsername, hash, "admin"); err != nil {
		return fmt.Errorf("failed to create default operator: %w", err)
	}

	log.Printf("Default operator created: %s", s.cfg.DefaultUsername)
	return nil
}
