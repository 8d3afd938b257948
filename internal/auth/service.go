// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/ascend-api/internal/identity"
	"github.com/carterperez-dev/ascend-api/internal/profile"
)

type IdentityVerifier interface {
	Verify(ctx context.Context, raw string) (identity.Identity, error)
}

type ProfileProvider interface {
	Login(ctx context.Context, ident identity.Identity) (*profile.Profile, bool, error)
}

type Service struct {
	verifier IdentityVerifier
	profiles ProfileProvider
	sessions *SessionCodec
}

func NewService(
	verifier IdentityVerifier,
	profiles ProfileProvider,
	sessions *SessionCodec,
) *Service {
	return &Service{
		verifier: verifier,
		profiles: profiles,
		sessions: sessions,
	}
}

// Login exchanges an identity token for a session and the caller's profile,
// creating the profile on first login.
func (s *Service) Login(ctx context.Context, rawToken string) (*LoginResponse, error) {
	ident, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	p, created, err := s.profiles.Login(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("login profile: %w", err)
	}

	token, expiresAt, err := s.sessions.Issue(p.SubjectID, p.Email)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}

	slog.Info("user logged in",
		"subject_id", p.SubjectID,
		"new_profile", created,
	)

	return &LoginResponse{
		SessionToken: token,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.sessions.Expiry().Seconds()),
		ExpiresAt:    expiresAt,
		Created:      created,
		Profile:      p,
	}, nil
}
