package services

import (
	"context"
	"time"

	"setlist-sync/internal/domain"
	"setlist-sync/pkg/logger"

	"github.com/google/uuid"
)

// SongService owns song CRUD. Band-owned song mutations are pushed to the
// band group so every connected member sees the change.
type SongService struct {
	songs    domain.SongRepository
	bands    domain.BandRepository
	notifier domain.Notifier
	log      logger.Logger
}

func NewSongService(songs domain.SongRepository, bands domain.BandRepository,
	notifier domain.Notifier, log logger.Logger) *SongService {
	return &SongService{
		songs:    songs,
		bands:    bands,
		notifier: notifier,
		log:      log,
	}
}

type SongInput struct {
	Title         string   `json:"title"`
	Artist        string   `json:"artist"`
	BandID        string   `json:"band_id"`
	IsPublic      bool     `json:"is_public"`
	Duration      int      `json:"duration"`
	Key           string   `json:"key"`
	BPM           int      `json:"bpm"`
	TimeSignature string   `json:"time_signature"`
	Tags          []string `json:"tags"`
	Lyrics        string   `json:"lyrics"`
	Chords        string   `json:"chords"`
	Notes         string   `json:"notes"`
}

func (s *SongService) Create(ctx context.Context, ownerID string, in SongInput) (*domain.Song, error) {
	if in.BandID != "" {
		if err := s.requireEditor(ctx, ownerID, in.BandID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	song := &domain.Song{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Artist:        in.Artist,
		OwnerID:       ownerID,
		BandID:        in.BandID,
		IsPublic:      in.IsPublic,
		Duration:      in.Duration,
		Key:           in.Key,
		BPM:           in.BPM,
		TimeSignature: in.TimeSignature,
		Tags:          in.Tags,
		Lyrics:        in.Lyrics,
		Chords:        in.Chords,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if song.TimeSignature == "" {
		song.TimeSignature = "4/4"
	}
	if err := s.songs.Create(ctx, song); err != nil {
		return nil, err
	}
	s.log.Info("Song created", "songId", song.ID, "owner", ownerID)

	if song.BandID != "" {
		s.notifier.NotifyBand(song.BandID, domain.EventSongUpdated, map[string]interface{}{
			"songId":    song.ID,
			"updatedBy": ownerID,
			"changes":   map[string]interface{}{"title": song.Title, "created": true},
		})
	}
	return song, nil
}

func (s *SongService) Get(ctx context.Context, userID, songID string) (*domain.Song, error) {
	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, userID, song); err != nil {
		return nil, err
	}
	return song, nil
}

func (s *SongService) List(ctx context.Context, userID, bandID string) ([]*domain.Song, error) {
	if bandID != "" {
		band, err := s.bands.GetByID(ctx, bandID)
		if err != nil {
			return nil, err
		}
		if !band.IsPublic && !band.IsMember(userID) {
			return nil, domain.ErrForbidden
		}
		return s.songs.List(ctx, domain.SongFilter{BandID: bandID})
	}
	return s.songs.List(ctx, domain.SongFilter{OwnerID: userID})
}

func (s *SongService) Update(ctx context.Context, userID, songID string, in SongInput) (*domain.Song, error) {
	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEdit(ctx, userID, song); err != nil {
		return nil, err
	}

	song.Title = in.Title
	song.Artist = in.Artist
	song.IsPublic = in.IsPublic
	song.Duration = in.Duration
	song.Key = in.Key
	song.BPM = in.BPM
	if in.TimeSignature != "" {
		song.TimeSignature = in.TimeSignature
	}
	song.Tags = in.Tags
	song.Lyrics = in.Lyrics
	song.Chords = in.Chords
	song.Notes = in.Notes
	song.UpdatedAt = time.Now()

	if err := s.songs.Update(ctx, song); err != nil {
		return nil, err
	}

	if song.BandID != "" {
		s.notifier.NotifyBand(song.BandID, domain.EventSongUpdated, map[string]interface{}{
			"songId":    song.ID,
			"updatedBy": userID,
			"changes":   map[string]interface{}{"title": song.Title},
		})
	}
	return song, nil
}

func (s *SongService) Delete(ctx context.Context, userID, songID string) error {
	song, err := s.songs.GetByID(ctx, songID)
	if err != nil {
		return err
	}
	if err := s.requireEdit(ctx, userID, song); err != nil {
		return err
	}
	if err := s.songs.Delete(ctx, songID); err != nil {
		return err
	}

	if song.BandID != "" {
		s.notifier.NotifyBand(song.BandID, domain.EventSongUpdated, map[string]interface{}{
			"songId":    song.ID,
			"updatedBy": userID,
			"changes":   map[string]interface{}{"deleted": true},
		})
	}
	return nil
}

func (s *SongService) requireAccess(ctx context.Context, userID string, song *domain.Song) error {
	if song.IsPublic || song.OwnerID == userID {
		return nil
	}
	if song.BandID == "" {
		return domain.ErrForbidden
	}
	band, err := s.bands.GetByID(ctx, song.BandID)
	if err != nil {
		return err
	}
	if !band.IsMember(userID) {
		return domain.ErrForbidden
	}
	return nil
}

func (s *SongService) requireEdit(ctx context.Context, userID string, song *domain.Song) error {
	if song.OwnerID == userID {
		return nil
	}
	if song.BandID == "" {
		return domain.ErrForbidden
	}
	return s.requireEditor(ctx, userID, song.BandID)
}

func (s *SongService) requireEditor(ctx context.Context, userID, bandID string) error {
	band, err := s.bands.GetByID(ctx, bandID)
	if err != nil {
		return err
	}
	if !band.CanEdit(userID) {
		return domain.ErrForbidden
	}
	return nil
}
