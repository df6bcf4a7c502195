package services

import (
	"context"
	"sort"
	"time"

	"setlist-sync/internal/domain"
	"setlist-sync/pkg/logger"

	"github.com/google/uuid"
)

// SetlistService owns the ordered setlists. Every mutation bumps the version
// (last write wins), records who touched it, recomputes the total duration,
// and pushes a best-effort setlist-updated event to the viewers and, for
// band-owned setlists, to the band.
type SetlistService struct {
	setlists domain.SetlistRepository
	songs    domain.SongRepository
	bands    domain.BandRepository
	notifier domain.Notifier
	log      logger.Logger
}

func NewSetlistService(setlists domain.SetlistRepository, songs domain.SongRepository,
	bands domain.BandRepository, notifier domain.Notifier, log logger.Logger) *SetlistService {
	return &SetlistService{
		setlists: setlists,
		songs:    songs,
		bands:    bands,
		notifier: notifier,
		log:      log,
	}
}

type CreateSetlistInput struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	BandID      string                `json:"band_id"`
	IsPublic    bool                  `json:"is_public"`
	Venue       string                `json:"venue"`
	Date        *time.Time            `json:"date"`
	Songs       []domain.SetlistEntry `json:"songs"`
	Tags        []string              `json:"tags"`
}

func (s *SetlistService) Create(ctx context.Context, ownerID string, in CreateSetlistInput) (*domain.Setlist, error) {
	if in.BandID != "" {
		band, err := s.bands.GetByID(ctx, in.BandID)
		if err != nil {
			return nil, err
		}
		if !band.CanEdit(ownerID) {
			return nil, domain.ErrForbidden
		}
	}

	now := time.Now()
	setlist := &domain.Setlist{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Description:    in.Description,
		OwnerID:        ownerID,
		BandID:         in.BandID,
		IsPublic:       in.IsPublic,
		Venue:          in.Venue,
		Date:           in.Date,
		Songs:          in.Songs,
		Tags:           in.Tags,
		Version:        1,
		LastModifiedBy: ownerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	setlist.RecomputeTotalDuration()

	if err := s.setlists.Create(ctx, setlist); err != nil {
		return nil, err
	}
	s.log.Info("Setlist created", "setlist_id", setlist.ID, "owner_id", ownerID)
	return setlist, nil
}

func (s *SetlistService) Get(ctx context.Context, userID, setlistID string) (*domain.Setlist, error) {
	setlist, err := s.setlists.GetByID(ctx, setlistID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, userID, setlist); err != nil {
		return nil, err
	}
	return setlist, nil
}

func (s *SetlistService) ListForUser(ctx context.Context, userID string) ([]*domain.Setlist, error) {
	bandIDs, err := s.bands.BandIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.setlists.ListForUser(ctx, userID, bandIDs)
}

type UpdateSetlistInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	IsPublic    *bool      `json:"is_public"`
	Venue       *string    `json:"venue"`
	Date        *time.Time `json:"date"`
	Tags        *[]string  `json:"tags"`
	Notes       *string    `json:"notes"`
}

func (s *SetlistService) Update(ctx context.Context, userID, setlistID string, in UpdateSetlistInput) (*domain.Setlist, error) {
	setlist, err := s.writable(ctx, userID, setlistID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if in.Name != nil {
		setlist.Name = *in.Name
		changes["name"] = *in.Name
	}
	if in.Description != nil {
		setlist.Description = *in.Description
		changes["description"] = *in.Description
	}
	if in.IsPublic != nil {
		setlist.IsPublic = *in.IsPublic
		changes["is_public"] = *in.IsPublic
	}
	if in.Venue != nil {
		setlist.Venue = *in.Venue
		changes["venue"] = *in.Venue
	}
	if in.Date != nil {
		setlist.Date = in.Date
		changes["date"] = *in.Date
	}
	if in.Tags != nil {
		setlist.Tags = *in.Tags
		changes["tags"] = *in.Tags
	}
	if in.Notes != nil {
		setlist.Notes = *in.Notes
		changes["notes"] = *in.Notes
	}

	if err := s.save(ctx, userID, setlist); err != nil {
		return nil, err
	}
	s.notifyUpdated(setlist, userID, changes)
	return setlist, nil
}

func (s *SetlistService) Delete(ctx context.Context, userID, setlistID string) error {
	setlist, err := s.setlists.GetByID(ctx, setlistID)
	if err != nil {
		return err
	}
	if setlist.OwnerID != userID {
		return domain.ErrForbidden
	}
	if err := s.setlists.Delete(ctx, setlistID); err != nil {
		return err
	}
	s.notifyUpdated(setlist, userID, map[string]interface{}{"deleted": true})
	return nil
}

// AddSong appends a song at the end of the list. The entry inherits the
// song's duration and key unless the caller overrides them.
func (s *SetlistService) AddSong(ctx context.Context, userID, setlistID string, entry domain.SetlistEntry) (*domain.Setlist, error) {
	setlist, err := s.writable(ctx, userID, setlistID)
	if err != nil {
		return nil, err
	}

	song, err := s.songs.GetByID(ctx, entry.SongID)
	if err != nil {
		return nil, err
	}
	if entry.Duration == 0 {
		entry.Duration = song.Duration
	}
	if entry.Key == "" {
		entry.Key = song.Key
	}
	entry.Order = len(setlist.Songs) + 1
	setlist.Songs = append(setlist.Songs, entry)

	if err := s.save(ctx, userID, setlist); err != nil {
		return nil, err
	}
	s.notifyUpdated(setlist, userID, map[string]interface{}{"added_song": entry.SongID})
	return setlist, nil
}

func (s *SetlistService) UpdateEntry(ctx context.Context, userID, setlistID, songID string, entry domain.SetlistEntry) (*domain.Setlist, error) {
	setlist, err := s.writable(ctx, userID, setlistID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range setlist.Songs {
		if setlist.Songs[i].SongID == songID {
			entry.SongID = songID
			entry.Order = setlist.Songs[i].Order
			setlist.Songs[i] = entry
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrNotFound
	}

	if err := s.save(ctx, userID, setlist); err != nil {
		return nil, err
	}
	s.notifyUpdated(setlist, userID, map[string]interface{}{"updated_song": songID})
	return setlist, nil
}

func (s *SetlistService) RemoveSong(ctx context.Context, userID, setlistID, songID string) (*domain.Setlist, error) {
	setlist, err := s.writable(ctx, userID, setlistID)
	if err != nil {
		return nil, err
	}

	entries := setlist.Songs[:0]
	found := false
	for _, e := range setlist.Songs {
		if e.SongID == songID {
			found = true
			continue
		}
		entries = append(entries, e)
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	setlist.Songs = entries
	renumber(setlist.Songs)

	if err := s.save(ctx, userID, setlist); err != nil {
		return nil, err
	}
	s.notifyUpdated(setlist, userID, map[string]interface{}{"removed_song": songID})
	return setlist, nil
}

// Reorder applies a full new ordering, given as song ids in their new
// positions. Every current entry must appear exactly once.
func (s *SetlistService) Reorder(ctx context.Context, userID, setlistID string, songIDs []string) (*domain.Setlist, error) {
	setlist, err := s.writable(ctx, userID, setlistID)
	if err != nil {
		return nil, err
	}

	if len(songIDs) != len(setlist.Songs) {
		return nil, domain.ErrNotFound
	}
	byID := make(map[string]domain.SetlistEntry, len(setlist.Songs))
	for _, e := range setlist.Songs {
		byID[e.SongID] = e
	}

	reordered := make([]domain.SetlistEntry, 0, len(songIDs))
	for _, id := range songIDs {
		entry, ok := byID[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		delete(byID, id)
		reordered = append(reordered, entry)
	}
	setlist.Songs = reordered
	renumber(setlist.Songs)

	if err := s.save(ctx, userID, setlist); err != nil {
		return nil, err
	}
	s.notifyUpdated(setlist, userID, map[string]interface{}{"reordered": songIDs})
	return setlist, nil
}

func (s *SetlistService) writable(ctx context.Context, userID, setlistID string) (*domain.Setlist, error) {
	setlist, err := s.setlists.GetByID(ctx, setlistID)
	if err != nil {
		return nil, err
	}
	if setlist.OwnerID == userID {
		return setlist, nil
	}
	if setlist.BandID == "" {
		return nil, domain.ErrForbidden
	}
	band, err := s.bands.GetByID(ctx, setlist.BandID)
	if err != nil {
		return nil, err
	}
	if !band.CanEdit(userID) {
		return nil, domain.ErrForbidden
	}
	return setlist, nil
}

func (s *SetlistService) requireAccess(ctx context.Context, userID string, setlist *domain.Setlist) error {
	if setlist.IsPublic || setlist.OwnerID == userID {
		return nil
	}
	if setlist.BandID == "" {
		return domain.ErrForbidden
	}
	band, err := s.bands.GetByID(ctx, setlist.BandID)
	if err != nil {
		return err
	}
	if !band.IsMember(userID) {
		return domain.ErrForbidden
	}
	return nil
}

func (s *SetlistService) save(ctx context.Context, userID string, setlist *domain.Setlist) error {
	sort.SliceStable(setlist.Songs, func(i, j int) bool {
		return setlist.Songs[i].Order < setlist.Songs[j].Order
	})
	setlist.RecomputeTotalDuration()
	setlist.Version++
	setlist.LastModifiedBy = userID
	setlist.UpdatedAt = time.Now()
	return s.setlists.Update(ctx, setlist)
}

func (s *SetlistService) notifyUpdated(setlist *domain.Setlist, userID string, changes map[string]interface{}) {
	payload := map[string]interface{}{
		"setlistId": setlist.ID,
		"updatedBy": userID,
		"changes":   changes,
	}
	s.notifier.NotifySetlist(setlist.ID, domain.EventSetlistUpdated, payload)
	if setlist.BandID != "" {
		s.notifier.NotifyBand(setlist.BandID, domain.EventSetlistUpdated, payload)
	}
}

func renumber(entries []domain.SetlistEntry) {
	for i := range entries {
		entries[i].Order = i + 1
	}
}
