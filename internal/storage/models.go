package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ProfileRow is a profile record as stored: list-valued fields are kept as
// JSON arrays encoded to text. Decoding back into slices happens in the
// profile package, never here.
type ProfileRow struct {
	ID          string
	Name        string
	Role        string
	Company     string
	Bio         string
	Skills      string // JSON array stored as text
	LookingFor  string // JSON array stored as text
	CanHelpWith string // JSON array stored as text
	Domains     string // JSON array stored as text
	LinkedInURL string
	CreatedAt   time.Time
}
