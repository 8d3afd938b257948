// AngelaMos | 2026
// service.go

package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/identity"
)

var ErrAlreadyRecorded = errors.New("promo code already recorded")

type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Login returns the profile for ident, creating it on first sight. Later
// logins refresh the mirrored identity fields and updated_at only.
func (s *Service) Login(
	ctx context.Context,
	ident identity.Identity,
) (*Profile, bool, error) {
	existing, err := s.repo.FindBySubject(ctx, ident.SubjectID)
	if err == nil {
		if err := s.refreshIdentity(ctx, existing, ident); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, fmt.Errorf("login lookup: %w", err)
	}

	p := New(s.newID(), ident, s.now())

	if err := s.repo.Insert(ctx, p); err != nil {
		if !errors.Is(err, core.ErrDuplicateKey) {
			return nil, false, fmt.Errorf("create profile: %w", err)
		}

		winner, findErr := s.repo.FindBySubject(ctx, ident.SubjectID)
		if findErr != nil {
			return nil, false, fmt.Errorf("reload concurrent profile: %w", findErr)
		}
		return winner, false, nil
	}

	slog.Info("profile created", "subject_id", p.SubjectID, "id", p.ID)
	return p, true, nil
}

func (s *Service) refreshIdentity(
	ctx context.Context,
	p *Profile,
	ident identity.Identity,
) error {
	now := Timestamp{s.now()}

	matched, err := s.repo.UpdateFields(ctx, p.SubjectID, Fields{
		"email":        ident.Email,
		"display_name": ident.DisplayName,
		"avatar_url":   ident.AvatarURL,
		"updated_at":   now,
	})
	if err != nil {
		return fmt.Errorf("refresh profile: %w", err)
	}
	if matched == 0 {
		return fmt.Errorf("refresh profile: %w", core.ErrNotFound)
	}

	p.Email = ident.Email
	p.DisplayName = ident.DisplayName
	p.AvatarURL = ident.AvatarURL
	p.UpdatedAt = now

	return nil
}

// Find loads a profile without an ownership check.
func (s *Service) Find(ctx context.Context, subjectID string) (*Profile, error) {
	return s.repo.FindBySubject(ctx, subjectID)
}

// GetForSubject returns subjectID's profile to requester. Requests for a
// profile the requester does not own fail before any store access.
func (s *Service) GetForSubject(
	ctx context.Context,
	requester, subjectID string,
) (*Profile, error) {
	if requester == "" || requester != subjectID {
		return nil, fmt.Errorf("get profile: %w", core.ErrForbidden)
	}

	return s.repo.FindBySubject(ctx, subjectID)
}

func (s *Service) Update(
	ctx context.Context,
	subjectID string,
	req UpdateRequest,
) error {
	if req.IsEmpty() {
		return ErrNoFieldsProvided
	}

	current, err := s.repo.FindBySubject(ctx, subjectID)
	if err != nil {
		return err
	}

	fields, err := ApplyUpdate(current, req, s.now())
	if err != nil {
		return err
	}

	matched, err := s.repo.UpdateFields(ctx, subjectID, fields)
	if err != nil {
		return err
	}
	if matched == 0 {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}

	slog.Info("profile updated", "subject_id", subjectID, "fields", fields.Keys())
	return nil
}

// RecordRedemption writes fields together with the redemption of code.
// ErrAlreadyRecorded means a concurrent request recorded code first.
func (s *Service) RecordRedemption(
	ctx context.Context,
	subjectID, code string,
	fields Fields,
) error {
	matched, err := s.repo.RecordRedemption(ctx, subjectID, code, fields)
	if err != nil {
		return err
	}
	if matched == 0 {
		return ErrAlreadyRecorded
	}
	return nil
}
