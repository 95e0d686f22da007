package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikari-care/attendance-backend-go/internal/domain/user"
)

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret-key")

	tokenString, expiresAt, err := svc.GenerateAccessToken("worker-1", user.RoleWorker, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	assert.Greater(t, expiresAt, time.Now().Unix())

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)

	claims, err := token.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "worker-1", claims["user_id"])
	assert.Equal(t, "worker", claims["role"])
	assert.Equal(t, "access", claims["type"])
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	minter := NewJWTService("secret-a")
	verifier := NewJWTService("secret-b")

	tokenString, _, err := minter.GenerateAccessToken("worker-1", user.RoleWorker, time.Hour)
	require.NoError(t, err)

	_, err = jwtauth.VerifyToken(verifier.JWTAuth(), tokenString)
	assert.Error(t, err)
}
