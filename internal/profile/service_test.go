// AngelaMos | 2026
// service_test.go

package profile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/ascend-api/internal/core"
	"github.com/carterperez-dev/ascend-api/internal/identity"
)

type memoryRepository struct {
	mu       sync.Mutex
	profiles map[string]*Profile
	calls    int
	failWith error
	// dupOnInsert simulates a concurrent first login winning the race.
	dupOnInsert *Profile
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{profiles: map[string]*Profile{}}
}

func (m *memoryRepository) FindBySubject(_ context.Context, subjectID string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.failWith != nil {
		return nil, m.failWith
	}
	p, ok := m.profiles[subjectID]
	if !ok {
		return nil, fmt.Errorf("find profile: %w", core.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *memoryRepository) Insert(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.dupOnInsert != nil {
		m.profiles[m.dupOnInsert.SubjectID] = m.dupOnInsert
		return fmt.Errorf("insert profile: %w", core.ErrDuplicateKey)
	}
	if _, ok := m.profiles[p.SubjectID]; ok {
		return fmt.Errorf("insert profile: %w", core.ErrDuplicateKey)
	}
	cp := *p
	m.profiles[p.SubjectID] = &cp
	return nil
}

func (m *memoryRepository) UpdateFields(_ context.Context, subjectID string, fields Fields) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	p, ok := m.profiles[subjectID]
	if !ok {
		return 0, nil
	}
	applyFields(p, fields)
	return 1, nil
}

func (m *memoryRepository) RecordRedemption(
	_ context.Context,
	subjectID, code string,
	fields Fields,
) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	p, ok := m.profiles[subjectID]
	if !ok || slices.Contains(p.UsedPromoCodes, code) {
		return 0, nil
	}
	applyFields(p, fields)
	p.UsedPromoCodes = append(p.UsedPromoCodes, code)
	return 1, nil
}

func (m *memoryRepository) EnsureIndexes(context.Context) error { return nil }

func applyFields(p *Profile, fields Fields) {
	for k, v := range fields {
		switch k {
		case "email":
			p.Email = v.(string)
		case "display_name":
			p.DisplayName = v.(string)
		case "avatar_url":
			p.AvatarURL = v.(string)
		case "experience":
			p.Experience = v.(int)
		case "currency":
			p.Currency = v.(int)
		case "level":
			p.Level = v.(int)
		case "inventory":
			p.Inventory = v.(Inventory)
		case "used_promo_codes":
			p.UsedPromoCodes = addToSet(p.UsedPromoCodes, v.(Appended))
		case "updated_at":
			p.UpdatedAt = v.(Timestamp)
		}
	}
}

func addToSet(set []string, added Appended) []string {
	for _, v := range added {
		if !slices.Contains(set, v) {
			set = append(set, v)
		}
	}
	return set
}

func testIdentity(subjectID string) identity.Identity {
	return identity.Identity{
		SubjectID:   subjectID,
		Email:       subjectID + "@example.com",
		DisplayName: "Player " + subjectID,
		AvatarURL:   "https://example.com/" + subjectID + ".png",
	}
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestLoginCreatesThenReuses(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	first, created, err := svc.Login(ctx, testIdentity("sub-1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "sub-1", first.SubjectID)
	assert.Equal(t, 1, first.Level)
	assert.NotEmpty(t, first.ID)

	repo.profiles["sub-1"].Experience = 300

	renamed := testIdentity("sub-1")
	renamed.DisplayName = "New Name"

	second, created, err := svc.Login(ctx, renamed)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "sub-1", second.SubjectID)
	assert.Equal(t, 300, second.Experience)
	assert.Equal(t, "New Name", second.DisplayName)
	assert.Equal(t, "New Name", repo.profiles["sub-1"].DisplayName)
	assert.Len(t, repo.profiles, 1)
}

func TestLoginRaceReadsWinner(t *testing.T) {
	repo := newMemoryRepository()
	winner := New("winner-id", testIdentity("sub-1"), fixedNow)
	repo.dupOnInsert = winner

	p, created, err := newTestService(repo).Login(context.Background(), testIdentity("sub-1"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "winner-id", p.ID)
}

func TestLoginSurfacesStoreErrors(t *testing.T) {
	repo := newMemoryRepository()
	repo.failWith = errors.New("connection refused")

	_, _, err := newTestService(repo).Login(context.Background(), testIdentity("sub-1"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNotFound)
}

func TestGetForSubjectDeniesOthersWithoutStoreAccess(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo)

	_, err := svc.GetForSubject(context.Background(), "sub-1", "sub-2")
	assert.ErrorIs(t, err, core.ErrForbidden)
	assert.Zero(t, repo.calls)
}

func TestGetForSubjectNotFound(t *testing.T) {
	_, err := newTestService(newMemoryRepository()).
		GetForSubject(context.Background(), "sub-1", "sub-1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	t.Run("empty request never reaches the store", func(t *testing.T) {
		repo := newMemoryRepository()

		err := newTestService(repo).Update(context.Background(), "sub-1", UpdateRequest{})
		assert.ErrorIs(t, err, ErrNoFieldsProvided)
		assert.Zero(t, repo.calls)
	})

	t.Run("unknown subject", func(t *testing.T) {
		err := newTestService(newMemoryRepository()).
			Update(context.Background(), "ghost", UpdateRequest{Currency: Some(10)})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("writes only provided fields", func(t *testing.T) {
		repo := newMemoryRepository()
		p := New("id-1", testIdentity("sub-1"), fixedNow.Add(-time.Hour))
		p.Experience = 75
		repo.profiles["sub-1"] = p

		err := newTestService(repo).
			Update(context.Background(), "sub-1", UpdateRequest{Currency: Some(10)})
		require.NoError(t, err)

		stored := repo.profiles["sub-1"]
		assert.Equal(t, 10, stored.Currency)
		assert.Equal(t, 75, stored.Experience)
		assert.Equal(t, fixedNow, stored.UpdatedAt.Time)
	})
}

func TestRecordRedemption(t *testing.T) {
	repo := newMemoryRepository()
	repo.profiles["sub-1"] = New("id-1", testIdentity("sub-1"), fixedNow)
	svc := newTestService(repo)

	fields := Fields{"experience": 100}

	require.NoError(t, svc.RecordRedemption(context.Background(), "sub-1", "WELCOME100", fields))
	assert.Equal(t, []string{"WELCOME100"}, repo.profiles["sub-1"].UsedPromoCodes)

	err := svc.RecordRedemption(context.Background(), "sub-1", "WELCOME100", fields)
	assert.ErrorIs(t, err, ErrAlreadyRecorded)
}

func TestUpdateCannotDropRedeemedCodes(t *testing.T) {
	repo := newMemoryRepository()
	repo.profiles["sub-1"] = New("id-1", testIdentity("sub-1"), fixedNow)
	svc := newTestService(repo)
	ctx := context.Background()

	stale, err := svc.Find(ctx, "sub-1")
	require.NoError(t, err)

	require.NoError(t, svc.RecordRedemption(ctx, "sub-1", "WELCOME100", Fields{}))
	require.NoError(t, svc.RecordRedemption(ctx, "sub-1", "COINS50", Fields{}))

	fields, err := ApplyUpdate(stale, UpdateRequest{UsedPromoCodes: Some([]string{"BOOST2024"})}, fixedNow)
	require.NoError(t, err)
	_, err = repo.UpdateFields(ctx, "sub-1", fields)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"WELCOME100", "COINS50", "BOOST2024"},
		repo.profiles["sub-1"].UsedPromoCodes,
	)
}
