package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanhann10/mingle/internal/storage"
)

// Store defines the row-level operations the Manager needs.
// Implemented by storage.Store.
type Store interface {
	InsertProfile(storage.ProfileRow) error
	GetProfile(id string) (storage.ProfileRow, error)
	ListProfiles() ([]storage.ProfileRow, error)
	UpdateProfile(storage.ProfileRow) error
}

// Manager owns the serialization boundary between semantic profiles and
// stored rows: callers see slices, the store sees JSON text.
type Manager struct {
	store Store
}

// NewManager creates a Manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Create validates the draft, assigns an id, persists the row and returns
// the stored record decoded back into semantic form.
func (m *Manager) Create(d Draft) (Profile, error) {
	if strings.TrimSpace(d.Name) == "" {
		return Profile{}, &ValidationError{Field: "name", Reason: "required"}
	}

	row := storage.ProfileRow{
		ID:          uuid.New().String(),
		Name:        d.Name,
		Role:        d.Role,
		Company:     d.Company,
		Bio:         d.Bio,
		Skills:      encodeList(d.Skills),
		LookingFor:  encodeList(d.LookingFor),
		CanHelpWith: encodeList(d.CanHelpWith),
		Domains:     encodeList(d.Domains),
		LinkedInURL: d.LinkedInURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := m.store.InsertProfile(row); err != nil {
		return Profile{}, fmt.Errorf("inserting profile: %w", err)
	}

	// Read back the stored row, matching what later Gets will return.
	stored, err := m.store.GetProfile(row.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("reading back profile: %w", err)
	}
	return fromRow(stored), nil
}

// Get returns the profile with the given id, or storage.ErrNotFound.
func (m *Manager) Get(id string) (Profile, error) {
	row, err := m.store.GetProfile(id)
	if err != nil {
		return Profile{}, err
	}
	return fromRow(row), nil
}

// List returns all profiles, newest first.
func (m *Manager) List() ([]Profile, error) {
	rows, err := m.store.ListProfiles()
	if err != nil {
		return nil, err
	}
	profiles := make([]Profile, len(rows))
	for i, r := range rows {
		profiles[i] = fromRow(r)
	}
	return profiles, nil
}

// Update applies a partial update: each non-nil patch field replaces the
// stored value, nil fields keep it. Returns the updated profile, or
// storage.ErrNotFound when no such profile exists.
func (m *Manager) Update(id string, p Patch) (Profile, error) {
	row, err := m.store.GetProfile(id)
	if err != nil {
		return Profile{}, err
	}

	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return Profile{}, &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		row.Name = *p.Name
	}
	if p.Role != nil {
		row.Role = *p.Role
	}
	if p.Company != nil {
		row.Company = *p.Company
	}
	if p.Bio != nil {
		row.Bio = *p.Bio
	}
	if p.Skills != nil {
		row.Skills = encodeList(*p.Skills)
	}
	if p.LookingFor != nil {
		row.LookingFor = encodeList(*p.LookingFor)
	}
	if p.CanHelpWith != nil {
		row.CanHelpWith = encodeList(*p.CanHelpWith)
	}
	if p.Domains != nil {
		row.Domains = encodeList(*p.Domains)
	}
	if p.LinkedInURL != nil {
		row.LinkedInURL = *p.LinkedInURL
	}

	if err := m.store.UpdateProfile(row); err != nil {
		return Profile{}, fmt.Errorf("updating profile: %w", err)
	}

	stored, err := m.store.GetProfile(id)
	if err != nil {
		return Profile{}, fmt.Errorf("reading back profile: %w", err)
	}
	return fromRow(stored), nil
}

func fromRow(r storage.ProfileRow) Profile {
	return Profile{
		ID:          r.ID,
		Name:        r.Name,
		Role:        r.Role,
		Company:     r.Company,
		Bio:         r.Bio,
		Skills:      decodeList(r.Skills),
		LookingFor:  decodeList(r.LookingFor),
		CanHelpWith: decodeList(r.CanHelpWith),
		Domains:     decodeList(r.Domains),
		LinkedInURL: r.LinkedInURL,
		CreatedAt:   r.CreatedAt,
	}
}
