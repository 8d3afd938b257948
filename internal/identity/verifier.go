// AngelaMos | 2026
// verifier.go

package identity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/ascend-api/internal/config"
)

var ErrInvalidIdentityToken = errors.New("invalid identity token")

// Identity is the subset of an ID token's claims mirrored onto a profile.
type Identity struct {
	SubjectID   string
	Email       string
	DisplayName string
	AvatarURL   string
}

// KeySource supplies the issuer's current signing keys.
type KeySource interface {
	KeySet(ctx context.Context) (jwk.Set, error)
}

// RemoteKeySource serves a JWKS document from a background-refreshed cache.
type RemoteKeySource struct {
	cache *jwk.Cache
	url   string
}

func NewRemoteKeySource(ctx context.Context, url string) (*RemoteKeySource, error) {
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("create jwks cache: %w", err)
	}

	if err := cache.Register(ctx, url, jwk.WithWaitReady(false)); err != nil {
		return nil, fmt.Errorf("register jwks url: %w", err)
	}

	return &RemoteKeySource{cache: cache, url: url}, nil
}

func (s *RemoteKeySource) KeySet(ctx context.Context) (jwk.Set, error) {
	set, err := s.cache.Lookup(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("lookup jwks: %w", err)
	}
	return set, nil
}

type Verifier struct {
	keys     KeySource
	audience string
	issuers  []string
	skew     time.Duration
	now      func() time.Time
}

func NewVerifier(keys KeySource, cfg config.IdentityConfig) *Verifier {
	return &Verifier{
		keys:     keys,
		audience: cfg.ClientID,
		issuers:  cfg.Issuers,
		skew:     30 * time.Second,
		now:      time.Now,
	}
}

// Verify checks signature, audience, issuer and expiry of raw. Every
// failure is reported as ErrInvalidIdentityToken.
func (v *Verifier) Verify(ctx context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, fmt.Errorf("empty token: %w", ErrInvalidIdentityToken)
	}

	set, err := v.keys.KeySet(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidIdentityToken, err)
	}

	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
		jwt.WithAudience(v.audience),
		jwt.WithAcceptableSkew(v.skew),
		jwt.WithClock(jwt.ClockFunc(v.now)),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidIdentityToken, err)
	}

	issuer, _ := token.Issuer()
	if !slices.Contains(v.issuers, issuer) {
		return Identity{}, fmt.Errorf(
			"unexpected issuer %q: %w",
			issuer,
			ErrInvalidIdentityToken,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return Identity{}, fmt.Errorf("missing subject: %w", ErrInvalidIdentityToken)
	}

	return Identity{
		SubjectID:   subject,
		Email:       stringClaim(token, "email"),
		DisplayName: stringClaim(token, "name"),
		AvatarURL:   stringClaim(token, "picture"),
	}, nil
}

func stringClaim(token jwt.Token, name string) string {
	var value string
	if err := token.Get(name, &value); err != nil {
		return ""
	}
	return value
}
