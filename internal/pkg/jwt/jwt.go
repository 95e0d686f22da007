package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hikari-care/attendance-backend-go/internal/domain/user"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service verifies the access tokens minted by the identity system. Login
// and session management live outside this service; tokens are only decoded
// here, with Encode kept for tooling and tests.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GenerateAccessToken(userID string, role user.Role, expiration time.Duration) (token string, expiresAt int64, err error)
}

type JWTService struct {
	secretKey string
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		secretKey: secretKey,
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(userID string, role user.Role, expiration time.Duration) (string, int64, error) {
	expiresAt := time.Now().Add(expiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
		"type":    "access",
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}
