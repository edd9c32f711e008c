package profile

import "strings"

// Lister provides the profile snapshots the resolver matches against.
// Implemented by Manager.
type Lister interface {
	List() ([]Profile, error)
}

// Resolver maps a candidate contact name, as extracted from a voice note,
// to a stored profile.
type Resolver struct {
	profiles Lister
}

// NewResolver creates a Resolver over the given profile source.
func NewResolver(profiles Lister) *Resolver {
	return &Resolver{profiles: profiles}
}

// Resolve finds the profile best matching the candidate name.
//
// Policy, in order: case-insensitive exact name match, then case-insensitive
// substring containment ("Maya" matches "Maya Patel"). Within a tier, ties go
// to the most recently created profile. Returns nil when nothing matches;
// a miss is not an error.
func (r *Resolver) Resolve(candidate string) (*Profile, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, nil
	}

	profiles, err := r.profiles.List()
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(candidate)

	// List is newest-first, so the first hit in a tier wins ties.
	for i := range profiles {
		if strings.ToLower(profiles[i].Name) == lower {
			return &profiles[i], nil
		}
	}
	for i := range profiles {
		if strings.Contains(strings.ToLower(profiles[i].Name), lower) {
			return &profiles[i], nil
		}
	}
	return nil, nil
}
