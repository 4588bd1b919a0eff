package auth

import (
	"context"

	"github.com/google/uuid"
)

// MockJWTService is a configurable JWTService implementation for tests.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID, role string) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID, role string) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*Claims, error)
}

var _ JWTService = (*MockJWTService)(nil)

func (m *MockJWTService) GenerateToken(
	ctx context.Context,
	userID uuid.UUID,
	role string,
) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID, role)
	}
	return "mock-access-token", nil
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return nil, ErrInvalidToken
}

func (m *MockJWTService) GenerateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
	role string,
) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID, role)
	}
	return "mock-refresh-token", nil
}

func (m *MockJWTService) ValidateRefreshToken(
	ctx context.Context,
	tokenString string,
) (*Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return nil, ErrInvalidRefreshToken
}
