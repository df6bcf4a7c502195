package services_test

import (
	"context"
	"sync"
	"time"

	"setlist-sync/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	return r.Create(context.Background(), user)
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]string)}
}

func (s *fakeTokenStore) SaveRefreshToken(_ context.Context, token, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

func (s *fakeTokenStore) UserForRefreshToken(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return "", domain.ErrAuthenticationFailed
	}
	return userID, nil
}

func (s *fakeTokenStore) RevokeRefreshToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

type fakeBandRepo struct {
	mu    sync.Mutex
	bands map[string]*domain.Band
}

func newFakeBandRepo() *fakeBandRepo {
	return &fakeBandRepo{bands: make(map[string]*domain.Band)}
}

func (r *fakeBandRepo) Create(_ context.Context, band *domain.Band) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bands[band.ID] = band
	return nil
}

func (r *fakeBandRepo) GetByID(_ context.Context, bandID string) (*domain.Band, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	band, ok := r.bands[bandID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return band, nil
}

func (r *fakeBandRepo) ListForUser(_ context.Context, userID string) ([]*domain.Band, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Band
	for _, band := range r.bands {
		if band.IsMember(userID) {
			out = append(out, band)
		}
	}
	return out, nil
}

func (r *fakeBandRepo) Update(ctx context.Context, band *domain.Band) error {
	return r.Create(ctx, band)
}

func (r *fakeBandRepo) Delete(_ context.Context, bandID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bands, bandID)
	return nil
}

func (r *fakeBandRepo) AddMember(_ context.Context, bandID string, member *domain.BandMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	band, ok := r.bands[bandID]
	if !ok {
		return domain.ErrNotFound
	}
	band.Members = append(band.Members, *member)
	return nil
}

func (r *fakeBandRepo) RemoveMember(_ context.Context, bandID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	band, ok := r.bands[bandID]
	if !ok {
		return domain.ErrNotFound
	}
	members := band.Members[:0]
	for _, m := range band.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	band.Members = members
	return nil
}

func (r *fakeBandRepo) BandIDsForUser(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, band := range r.bands {
		if band.IsMember(userID) {
			ids = append(ids, band.ID)
		}
	}
	return ids, nil
}

func (r *fakeBandRepo) SetInviteCode(_ context.Context, bandID, code string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	band, ok := r.bands[bandID]
	if !ok {
		return domain.ErrNotFound
	}
	band.InviteCode = code
	band.InviteExpires = expires
	return nil
}

func (r *fakeBandRepo) GetByInviteCode(_ context.Context, code string) (*domain.Band, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, band := range r.bands {
		if band.InviteCode == code {
			return band, nil
		}
	}
	return nil, domain.ErrInviteCodeExpired
}

func (r *fakeBandRepo) PurgeExpiredInviteCodes(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for _, band := range r.bands {
		if band.InviteCode != "" && band.InviteExpires.Before(before) {
			band.InviteCode = ""
			band.InviteExpires = time.Time{}
			purged++
		}
	}
	return purged, nil
}

type fakeSongRepo struct {
	mu    sync.Mutex
	songs map[string]*domain.Song
}

func newFakeSongRepo() *fakeSongRepo {
	return &fakeSongRepo{songs: make(map[string]*domain.Song)}
}

func (r *fakeSongRepo) Create(_ context.Context, song *domain.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.songs[song.ID] = song
	return nil
}

func (r *fakeSongRepo) GetByID(_ context.Context, songID string) (*domain.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	song, ok := r.songs[songID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return song, nil
}

func (r *fakeSongRepo) List(_ context.Context, filter domain.SongFilter) ([]*domain.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Song
	for _, song := range r.songs {
		if filter.OwnerID != "" && song.OwnerID != filter.OwnerID {
			continue
		}
		if filter.BandID != "" && song.BandID != filter.BandID {
			continue
		}
		out = append(out, song)
	}
	return out, nil
}

func (r *fakeSongRepo) Update(ctx context.Context, song *domain.Song) error {
	return r.Create(ctx, song)
}

func (r *fakeSongRepo) Delete(_ context.Context, songID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.songs, songID)
	return nil
}

type fakeSetlistRepo struct {
	mu       sync.Mutex
	setlists map[string]*domain.Setlist
}

func newFakeSetlistRepo() *fakeSetlistRepo {
	return &fakeSetlistRepo{setlists: make(map[string]*domain.Setlist)}
}

func (r *fakeSetlistRepo) Create(_ context.Context, setlist *domain.Setlist) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setlists[setlist.ID] = setlist
	return nil
}

func (r *fakeSetlistRepo) GetByID(_ context.Context, setlistID string) (*domain.Setlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	setlist, ok := r.setlists[setlistID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return setlist, nil
}

func (r *fakeSetlistRepo) ListForUser(_ context.Context, userID string, bandIDs []string) ([]*domain.Setlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inBands := make(map[string]bool, len(bandIDs))
	for _, id := range bandIDs {
		inBands[id] = true
	}
	var out []*domain.Setlist
	for _, setlist := range r.setlists {
		if setlist.OwnerID == userID || inBands[setlist.BandID] {
			out = append(out, setlist)
		}
	}
	return out, nil
}

func (r *fakeSetlistRepo) Update(ctx context.Context, setlist *domain.Setlist) error {
	return r.Create(ctx, setlist)
}

func (r *fakeSetlistRepo) Delete(_ context.Context, setlistID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.setlists, setlistID)
	return nil
}

// recordingNotifier captures every gateway call for assertions.
type recordedPush struct {
	Target  string
	Kind    domain.EventKind
	Payload map[string]interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	pushes []recordedPush
}

func (n *recordingNotifier) NotifyUser(userID string, kind domain.EventKind, payload map[string]interface{}) bool {
	n.record("user:"+userID, kind, payload)
	return true
}

func (n *recordingNotifier) NotifyBand(bandID string, kind domain.EventKind, payload map[string]interface{}) {
	n.record("band:"+bandID, kind, payload)
}

func (n *recordingNotifier) NotifySetlist(setlistID string, kind domain.EventKind, payload map[string]interface{}) {
	n.record("setlist:"+setlistID, kind, payload)
}

func (n *recordingNotifier) record(target string, kind domain.EventKind, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, recordedPush{Target: target, Kind: kind, Payload: payload})
}

func (n *recordingNotifier) all() []recordedPush {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]recordedPush, len(n.pushes))
	copy(out, n.pushes)
	return out
}
