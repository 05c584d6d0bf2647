package utils

import (
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// AccessToken is the claim set issued by the identity service and verified
// on every authenticated route.
type AccessToken struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
}

func (t *AccessToken) IsAdmin() bool {
	return t.Role == RoleAdmin || t.Role == RoleSuperAdmin
}

// NewAccessTokenVerifier returns the verifier middleware for AccessToken
// claims signed with secret.
func NewAccessTokenVerifier(secret string) iris.Handler {
	verifier := jwt.NewVerifier(jwt.HS256, []byte(secret))
	verifier.WithDefaultBlocklist()
	return verifier.Verify(func() interface{} {
		return new(AccessToken)
	})
}

// SignAccessToken issues a token for local tooling and tests. maxAge 0 means
// no expiry.
func SignAccessToken(secret string, id uint, role string, maxAge time.Duration) (string, error) {
	signer := jwt.NewSigner(jwt.HS256, []byte(secret), maxAge)
	token, err := signer.Sign(AccessToken{ID: id, Role: role})
	if err != nil {
		return "", err
	}
	return string(token), nil
}
