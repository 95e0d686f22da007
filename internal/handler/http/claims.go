package http

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hikari-care/attendance-backend-go/internal/domain/user"
)

// identityFromRequest pulls the authenticated user's ID and role out of
// the verified JWT claims.
func identityFromRequest(r *http.Request) (string, user.Role, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", "", false
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", false
	}

	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return "", "", false
	}

	return userID, user.Role(roleStr), true
}
