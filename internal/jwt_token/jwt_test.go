package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "annexops/pkg/domain-errors"
)

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-key", "annexops-test")
	userID := uuid.New()
	orgID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, orgID, "Acme Corp", "editor", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, orgID.String(), claims.OrgID)
	assert.Equal(t, "Acme Corp", claims.OrgName)
	assert.Equal(t, "editor", claims.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewJWTService("test-signing-key", "annexops-test")

	token, err := svc.GenerateAccessToken(uuid.New(), uuid.New(), "Acme", "editor", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateTokenWrongKey(t *testing.T) {
	issuer := NewJWTService("key-one", "annexops-test")
	verifier := NewJWTService("key-two", "annexops-test")

	token, err := issuer.GenerateAccessToken(uuid.New(), uuid.New(), "Acme", "editor", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewJWTService("test-signing-key", "annexops-test")
	_, err := svc.ValidateToken("not.a.token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAdapterParsesClaims(t *testing.T) {
	svc := NewJWTService("test-signing-key", "annexops-test")
	adapter := NewJWTServiceAdapter(svc)
	userID := uuid.New()
	orgID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, orgID, "Acme Corp", "editor", time.Hour)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, orgID, claims.OrgID)
	assert.Equal(t, "Acme Corp", claims.OrgName)
}
