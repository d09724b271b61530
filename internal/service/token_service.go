package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/currencyguard-server/internal/logger"
	"github.com/dtroode/currencyguard-server/internal/model"
)

// TokenService issues and verifies session tokens. Tokens are stateless:
// there is no revocation, a token stays valid until it expires.
type TokenService struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, logger: logger}
}

func (s *TokenService) Issue(_ context.Context, userID uuid.UUID) (string, error) {
	access, err := s.manager.GenerateAccessToken(userID)
	if err != nil {
		s.logger.Error("Token service: failed to issue access token",
			"user_id", userID,
			"error", err.Error())
		return "", fmt.Errorf("issue access: %w", err)
	}

	return access, nil
}

func (s *TokenService) GetUserID(_ context.Context, token string) (uuid.UUID, error) {
	return s.manager.ParseAccessToken(token)
}
