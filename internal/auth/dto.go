// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/carterperez-dev/ascend-api/internal/profile"
)

// LoginRequest carries the identity provider's ID token. Older clients
// send it as "token".
type LoginRequest struct {
	IdentityToken string `json:"identity_token" validate:"required_without=Token,max=8192"`
	Token         string `json:"token"          validate:"required_without=IdentityToken,max=8192"`
}

func (r LoginRequest) RawToken() string {
	if r.IdentityToken != "" {
		return r.IdentityToken
	}
	return r.Token
}

type LoginResponse struct {
	SessionToken string           `json:"session_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"`
	ExpiresAt    time.Time        `json:"expires_at"`
	Created      bool             `json:"created"`
	Profile      *profile.Profile `json:"profile"`
}
