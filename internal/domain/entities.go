package domain

import (
	"time"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Permission string

const (
	PermissionAdmin  Permission = "admin"
	PermissionEditor Permission = "editor"
	PermissionViewer Permission = "viewer"
)

type BandMember struct {
	UserID      string     `json:"user_id"`
	Role        string     `json:"role,omitempty"`
	Instrument  string     `json:"instrument,omitempty"`
	Permissions Permission `json:"permissions"`
	JoinedAt    time.Time  `json:"joined_at"`
}

type Band struct {
	ID            string
	Name          string
	Description   string
	OwnerID       string
	Genres        []string
	IsPublic      bool
	Members       []BandMember
	InviteCode    string
	InviteExpires time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsMember reports whether the user is the owner or appears in the member list.
func (b *Band) IsMember(userID string) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, m := range b.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// CanEdit reports whether the user may mutate band-owned resources.
func (b *Band) CanEdit(userID string) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, m := range b.Members {
		if m.UserID == userID {
			return m.Permissions == PermissionAdmin || m.Permissions == PermissionEditor
		}
	}
	return false
}

func (b *Band) IsAdmin(userID string) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, m := range b.Members {
		if m.UserID == userID {
			return m.Permissions == PermissionAdmin
		}
	}
	return false
}

type Song struct {
	ID            string
	Title         string
	Artist        string
	OwnerID       string
	BandID        string
	IsPublic      bool
	Duration      int // seconds
	Key           string
	BPM           int
	TimeSignature string
	Tags          []string
	Lyrics        string
	Chords        string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SetlistEntry is one song slot in an ordered setlist.
type SetlistEntry struct {
	SongID   string `json:"song_id"`
	Order    int    `json:"order"`
	Notes    string `json:"notes,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Key      string `json:"key,omitempty"`
	Capo     int    `json:"capo,omitempty"`
	Segue    bool   `json:"segue,omitempty"`
}

type Setlist struct {
	ID             string
	Name           string
	Description    string
	OwnerID        string
	BandID         string
	IsPublic       bool
	Venue          string
	Date           *time.Time
	Songs          []SetlistEntry
	Tags           []string
	Notes          string
	TotalDuration  int
	Version        int
	LastModifiedBy string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RecomputeTotalDuration sums the per-entry durations.
func (s *Setlist) RecomputeTotalDuration() {
	total := 0
	for _, e := range s.Songs {
		total += e.Duration
	}
	s.TotalDuration = total
}
