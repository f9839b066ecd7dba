package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data present when minting a JWT. Tokens are
// normally minted by the external identity service; this type exists for tests
// and local tooling.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Permissions []string
	JTI         string
}

// AccessTokenClaims represents the typed JWT presented by clients. The
// permissions claim is the access-control service's per-operation answer set.
type AccessTokenClaims struct {
	UserID      uuid.UUID `json:"user_id"`
	Permissions []string  `json:"permissions"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the claims grant the named permission.
func (c *AccessTokenClaims) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	for _, candidate := range c.Permissions {
		if candidate == permission {
			return true
		}
	}
	return false
}
