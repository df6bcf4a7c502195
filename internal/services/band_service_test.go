package services_test

import (
	"context"
	"testing"
	"time"

	"setlist-sync/internal/domain"
	"setlist-sync/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBandFixture() (*services.BandService, *fakeBandRepo, *fakeUserRepo) {
	bands := newFakeBandRepo()
	users := newFakeUserRepo()
	svc := services.NewBandService(bands, users, nopLogger{})
	return svc, bands, users
}

func TestCreateBandMakesOwnerAdmin(t *testing.T) {
	svc, _, _ := newBandFixture()

	band, err := svc.Create(context.Background(), "u1", services.CreateBandInput{Name: "The Strays"})
	require.NoError(t, err)

	require.Len(t, band.Members, 1)
	assert.Equal(t, "u1", band.Members[0].UserID)
	assert.Equal(t, domain.PermissionAdmin, band.Members[0].Permissions)
	assert.True(t, band.IsAdmin("u1"))
}

func TestAddMemberRequiresAdmin(t *testing.T) {
	svc, _, users := newBandFixture()
	ctx := context.Background()

	users.Create(ctx, &domain.User{ID: "u2"})
	band, err := svc.Create(ctx, "u1", services.CreateBandInput{Name: "The Strays"})
	require.NoError(t, err)

	err = svc.AddMember(ctx, "u2", band.ID, services.AddMemberInput{UserID: "u2"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = svc.AddMember(ctx, "u1", band.ID, services.AddMemberInput{
		UserID: "u2", Instrument: "bass", Permissions: domain.PermissionEditor,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "u2", band.ID)
	require.NoError(t, err)
	assert.True(t, got.CanEdit("u2"))
}

func TestInviteCodeFlow(t *testing.T) {
	svc, _, users := newBandFixture()
	ctx := context.Background()

	users.Create(ctx, &domain.User{ID: "u2"})
	band, err := svc.Create(ctx, "u1", services.CreateBandInput{Name: "The Strays"})
	require.NoError(t, err)

	code, expires, err := svc.GenerateInviteCode(ctx, "u1", band.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.True(t, expires.After(time.Now()))

	joined, err := svc.JoinByInviteCode(ctx, "u2", code)
	require.NoError(t, err)
	assert.True(t, joined.IsMember("u2"))

	// Joining twice is a no-op.
	_, err = svc.JoinByInviteCode(ctx, "u2", code)
	require.NoError(t, err)
}

func TestJoinByExpiredInviteCode(t *testing.T) {
	svc, bands, _ := newBandFixture()
	ctx := context.Background()

	band, err := svc.Create(ctx, "u1", services.CreateBandInput{Name: "The Strays"})
	require.NoError(t, err)
	require.NoError(t, bands.SetInviteCode(ctx, band.ID, "STALE123", time.Now().Add(-time.Hour)))

	_, err = svc.JoinByInviteCode(ctx, "u2", "STALE123")
	assert.ErrorIs(t, err, domain.ErrInviteCodeExpired)
}

func TestRemoveMember(t *testing.T) {
	svc, _, users := newBandFixture()
	ctx := context.Background()

	users.Create(ctx, &domain.User{ID: "u2"})
	band, err := svc.Create(ctx, "u1", services.CreateBandInput{Name: "The Strays"})
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, "u1", band.ID, services.AddMemberInput{UserID: "u2"}))

	// A member may leave on their own; the owner cannot be removed.
	require.NoError(t, svc.RemoveMember(ctx, "u2", band.ID, "u2"))
	assert.ErrorIs(t, svc.RemoveMember(ctx, "u1", band.ID, "u1"), domain.ErrForbidden)
}
