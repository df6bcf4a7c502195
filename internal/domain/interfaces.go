package domain

import (
	"context"
	"time"
)

// Repository interfaces
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}

type BandRepository interface {
	Create(ctx context.Context, band *Band) error
	GetByID(ctx context.Context, bandID string) (*Band, error)
	ListForUser(ctx context.Context, userID string) ([]*Band, error)
	Update(ctx context.Context, band *Band) error
	Delete(ctx context.Context, bandID string) error
	AddMember(ctx context.Context, bandID string, member *BandMember) error
	RemoveMember(ctx context.Context, bandID, userID string) error
	BandIDsForUser(ctx context.Context, userID string) ([]string, error)
	SetInviteCode(ctx context.Context, bandID, code string, expires time.Time) error
	GetByInviteCode(ctx context.Context, code string) (*Band, error)
	PurgeExpiredInviteCodes(ctx context.Context, before time.Time) (int64, error)
}

type SongFilter struct {
	OwnerID string
	BandID  string
	Search  string
}

type SongRepository interface {
	Create(ctx context.Context, song *Song) error
	GetByID(ctx context.Context, songID string) (*Song, error)
	List(ctx context.Context, filter SongFilter) ([]*Song, error)
	Update(ctx context.Context, song *Song) error
	Delete(ctx context.Context, songID string) error
}

type SetlistRepository interface {
	Create(ctx context.Context, setlist *Setlist) error
	GetByID(ctx context.Context, setlistID string) (*Setlist, error)
	ListForUser(ctx context.Context, userID string, bandIDs []string) ([]*Setlist, error)
	Update(ctx context.Context, setlist *Setlist) error
	Delete(ctx context.Context, setlistID string) error
}

// Token store (refresh tokens, revocable)
type TokenStore interface {
	SaveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error
	UserForRefreshToken(ctx context.Context, token string) (string, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}

// Connection is one live client session. Send is safe for concurrent use and
// must not block the caller; a send to a closed connection returns an error
// the caller is expected to swallow.
type Connection interface {
	ID() string
	UserID() string
	Send(message interface{}) error
	Close() error
}

// Notifier is the server-initiated push surface used by the request handlers
// after a successful mutation. All three calls are best-effort: zero members
// is a silent no-op and no failure ever reaches the caller.
type Notifier interface {
	NotifyUser(userID string, kind EventKind, payload map[string]interface{}) bool
	NotifyBand(bandID string, kind EventKind, payload map[string]interface{})
	NotifySetlist(setlistID string, kind EventKind, payload map[string]interface{})
}
