// AngelaMos | 2026
// session.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/ascend-api/internal/config"
	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/middleware"
)

var (
	ErrMissingSigningSecret    = errors.New("session signing secret is not configured")
	ErrInvalidOrExpiredSession = errors.New("invalid or expired session")
)

const defaultSessionExpiry = 30 * 24 * time.Hour

// legacySubjectClaim carried the subject in sessions minted before tokens
// used the registered sub claim.
const legacySubjectClaim = "google_id"

// SessionCodec issues and verifies the HMAC-signed session tokens handed
// out after login. Lifetime is fixed at issuance; there is no refresh.
type SessionCodec struct {
	secret []byte
	alg    jwa.SignatureAlgorithm
	expiry time.Duration
	issuer string
	now    func() time.Time
}

func NewSessionCodec(cfg config.SessionConfig) (*SessionCodec, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningSecret
	}

	alg, err := hmacAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	expiry := cfg.Expiry()
	if expiry <= 0 {
		expiry = defaultSessionExpiry
	}

	return &SessionCodec{
		secret: []byte(cfg.Secret),
		alg:    alg,
		expiry: expiry,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

func hmacAlgorithm(name string) (jwa.SignatureAlgorithm, error) {
	switch strings.ToUpper(name) {
	case "", "HS256":
		return jwa.HS256(), nil
	case "HS384":
		return jwa.HS384(), nil
	case "HS512":
		return jwa.HS512(), nil
	default:
		return jwa.SignatureAlgorithm{}, fmt.Errorf("unsupported session algorithm %q", name)
	}
}

func (c *SessionCodec) Expiry() time.Duration {
	return c.expiry
}

func (c *SessionCodec) Algorithm() string {
	return c.alg.String()
}

// Issue mints a session for subjectID and reports when it expires.
func (c *SessionCodec) Issue(subjectID, email string) (string, time.Time, error) {
	if len(c.secret) == 0 {
		return "", time.Time{}, ErrMissingSigningSecret
	}

	now := c.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(c.expiry)

	builder := jwt.NewBuilder().
		Subject(subjectID).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim("email", email)
	if c.issuer != "" {
		builder = builder.Issuer(c.issuer)
	}

	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build session token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(c.alg, c.secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	return string(signed), expiresAt, nil
}

// VerifySession validates signature and expiry. Failures wrap both
// ErrInvalidOrExpiredSession and core.ErrTokenExpired or
// core.ErrTokenInvalid.
func (c *SessionCodec) VerifySession(
	_ context.Context,
	tokenString string,
) (*middleware.SessionClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(c.alg, c.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(c.now)),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOrExpiredSession, core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrExpiredSession, core.ErrTokenInvalid)
	}

	if iss, ok := token.Issuer(); ok && c.issuer != "" && iss != c.issuer {
		return nil, fmt.Errorf(
			"%w: unexpected issuer: %w",
			ErrInvalidOrExpiredSession,
			core.ErrTokenInvalid,
		)
	}

	subject, _ := token.Subject()
	if subject == "" {
		//nolint:errcheck // absence is handled below
		_ = token.Get(legacySubjectClaim, &subject)
	}
	if subject == "" {
		return nil, fmt.Errorf(
			"%w: missing subject: %w",
			ErrInvalidOrExpiredSession,
			core.ErrTokenInvalid,
		)
	}

	expiresAt, ok := token.Expiration()
	if !ok {
		return nil, fmt.Errorf(
			"%w: missing expiry: %w",
			ErrInvalidOrExpiredSession,
			core.ErrTokenInvalid,
		)
	}

	issuedAt, _ := token.IssuedAt()

	var email string
	//nolint:errcheck // email is optional
	_ = token.Get("email", &email)

	return &middleware.SessionClaims{
		SubjectID: subject,
		Email:     email,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
