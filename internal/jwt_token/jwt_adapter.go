package jwttoken

import (
	"github.com/google/uuid"

	"annexops/internal/platform/middleware"
	dErrors "annexops/pkg/domain-errors"
)

// JWTServiceAdapter bridges JWTService to the middleware.TokenValidator
// interface, parsing the string claims into typed IDs.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid user_id claim")
	}
	orgID, err := uuid.Parse(claims.OrgID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid org_id claim")
	}
	return &middleware.Claims{UserID: userID, OrgID: orgID, OrgName: claims.OrgName, Role: claims.Role}, nil
}
