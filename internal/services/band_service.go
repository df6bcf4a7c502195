package services

import (
	"context"
	"strings"
	"time"

	"setlist-sync/internal/domain"
	"setlist-sync/pkg/logger"

	"github.com/google/uuid"
)

const inviteCodeTTL = 7 * 24 * time.Hour

// BandService owns band CRUD and membership.
type BandService struct {
	bands domain.BandRepository
	users domain.UserRepository
	log   logger.Logger
}

func NewBandService(bands domain.BandRepository, users domain.UserRepository,
	log logger.Logger) *BandService {
	return &BandService{
		bands: bands,
		users: users,
		log:   log,
	}
}

type CreateBandInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	IsPublic    bool     `json:"is_public"`
}

func (s *BandService) Create(ctx context.Context, ownerID string, in CreateBandInput) (*domain.Band, error) {
	now := time.Now()
	band := &domain.Band{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     ownerID,
		Genres:      in.Genres,
		IsPublic:    in.IsPublic,
		Members: []domain.BandMember{{
			UserID:      ownerID,
			Permissions: domain.PermissionAdmin,
			JoinedAt:    now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.bands.Create(ctx, band); err != nil {
		return nil, err
	}
	s.log.Info("Band created", "band_id", band.ID, "owner_id", ownerID)
	return band, nil
}

func (s *BandService) Get(ctx context.Context, userID, bandID string) (*domain.Band, error) {
	band, err := s.bands.GetByID(ctx, bandID)
	if err != nil {
		return nil, err
	}
	if !band.IsPublic && !band.IsMember(userID) {
		return nil, domain.ErrForbidden
	}
	return band, nil
}

func (s *BandService) ListForUser(ctx context.Context, userID string) ([]*domain.Band, error) {
	return s.bands.ListForUser(ctx, userID)
}

type UpdateBandInput struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Genres      *[]string `json:"genres"`
	IsPublic    *bool     `json:"is_public"`
}

func (s *BandService) Update(ctx context.Context, userID, bandID string, in UpdateBandInput) (*domain.Band, error) {
	band, err := s.bands.GetByID(ctx, bandID)
	if err != nil {
		return nil, err
	}
	if !band.IsAdmin(userID) {
		return nil, domain.ErrForbidden
	}

	if in.Name != nil {
		band.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		band.Description = *in.Description
	}
	if in.Genres != nil {
		band.Genres = *in.Genres
	}
	if in.IsPublic != nil {
		band.IsPublic = *in.IsPublic
	}
	band.UpdatedAt = time.Now()

	if err := s.bands.Update(ctx, band); err != nil {
		return nil, err
	}
	return band, nil
}

func (s *BandService) Delete(ctx context.Context, userID, bandID string) error {
	band, err := s.bands.GetByID(ctx, bandID)
	if err != nil {
		return err
	}
	if band.OwnerID != userID {
		return domain.ErrForbidden
	}
	return s.bands.Delete(ctx, bandID)
}

type AddMemberInput struct {
	UserID      string            `json:"user_id"`
	Role        string            `json:"role"`
	Instrument  string            `json:"instrument"`
	Permissions domain.Permission `json:"permissions"`
}

func (s *BandService) AddMember(ctx context.Context, actorID, bandID string, in AddMemberInput) error {
	band, err := s.bands.GetByID(ctx, bandID)
	if err != nil {
		return err
	}
	if !band.IsAdmin(actorID) {
		return domain.ErrForbidden
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return err
	}
	if band.IsMember(in.UserID) {
		return nil
	}

	perms := in.Permissions
	if perms == "" {
		perms = domain.PermissionViewer
	}
	member := &domain.BandMember{
		UserID:      in.UserID,
		Role:        in.Role,
		Instrument:  in.Instrument,
		Permissions: perms,
		JoinedAt:    time.Now(),
	}
	if err := s.bands.AddMember(ctx, bandID, member); err != nil {
		return err
	}

	s.log.Info("Member added to band", "band_id", bandID, "user_id", in.UserID)
	return nil
}

func (s *BandService) RemoveMember(ctx context.Context, actorID, bandID, userID string) error {
	band, err := s.bands.GetByID(ctx, bandID)
	if err != nil {
		return err
	}
	// Members may remove themselves; anyone else needs admin.
	if actorID != userID && !band.IsAdmin(actorID) {
		return domain.ErrForbidden
	}
	if userID == band.OwnerID {
		return domain.ErrForbidden
	}
	return s.bands.RemoveMember(ctx, bandID, userID)
}

// GenerateInviteCode issues a short-lived code band admins can hand out.
func (s *BandService) GenerateInviteCode(ctx context.Context, actorID, bandID string) (string, time.Time, error) {
	band, err := s.bands.GetByID(ctx, bandID)
	if err != nil {
		return "", time.Time{}, err
	}
	if !band.IsAdmin(actorID) {
		return "", time.Time{}, domain.ErrForbidden
	}

	code := strings.ToUpper(uuid.NewString()[:8])
	expires := time.Now().Add(inviteCodeTTL)
	if err := s.bands.SetInviteCode(ctx, bandID, code, expires); err != nil {
		return "", time.Time{}, err
	}
	return code, expires, nil
}

// JoinByInviteCode adds the caller to the band the code belongs to, as a
// viewer.
func (s *BandService) JoinByInviteCode(ctx context.Context, userID, code string) (*domain.Band, error) {
	band, err := s.bands.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if band.InviteExpires.Before(time.Now()) {
		return nil, domain.ErrInviteCodeExpired
	}
	if band.IsMember(userID) {
		return band, nil
	}

	member := &domain.BandMember{
		UserID:      userID,
		Permissions: domain.PermissionViewer,
		JoinedAt:    time.Now(),
	}
	if err := s.bands.AddMember(ctx, band.ID, member); err != nil {
		return nil, err
	}

	s.log.Info("User joined band via invite", "band_id", band.ID, "user_id", userID)
	return band, nil
}
