package profile

import (
	"fmt"
	"strings"
	"time"
)

// Profile is a user's networking card in semantic form: list-valued fields
// are always non-nil slices, regardless of how the store encoded them.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Company     string    `json:"company"`
	Bio         string    `json:"bio"`
	Skills      []string  `json:"skills"`
	LookingFor  []string  `json:"looking_for"`
	CanHelpWith []string  `json:"can_help_with"`
	Domains     []string  `json:"domains"`
	LinkedInURL string    `json:"linkedin_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Email derives a contact address from the profile's name and company.
// Profiles carry no stored address, so "Maya Patel" at "Figma Co" becomes
// maya.patel@figmaco.com.
func (p Profile) Email() string {
	local := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(p.Name)), " ", ".")
	domain := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(p.Company)), " ", "")
	if local == "" || domain == "" {
		return ""
	}
	return local + "@" + domain + ".com"
}

// Draft holds the caller-supplied fields for a new profile.
type Draft struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Company     string   `json:"company"`
	Bio         string   `json:"bio"`
	Skills      []string `json:"skills"`
	LookingFor  []string `json:"looking_for"`
	CanHelpWith []string `json:"can_help_with"`
	Domains     []string `json:"domains"`
	LinkedInURL string   `json:"linkedin_url"`
}

// Patch is a partial update: nil fields keep their stored value, non-nil
// fields replace it wholesale. List fields are never merged element-wise.
type Patch struct {
	Name        *string   `json:"name"`
	Role        *string   `json:"role"`
	Company     *string   `json:"company"`
	Bio         *string   `json:"bio"`
	Skills      *[]string `json:"skills"`
	LookingFor  *[]string `json:"looking_for"`
	CanHelpWith *[]string `json:"can_help_with"`
	Domains     *[]string `json:"domains"`
	LinkedInURL *string   `json:"linkedin_url"`
}

// ValidationError reports a bad or missing caller-supplied field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
