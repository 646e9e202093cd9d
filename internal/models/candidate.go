package models

import (
	"time"
)

// PersonalDetails holds a candidate's contact data, keyed by the user id
type PersonalDetails struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNo      string    `json:"phone_no"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Country      string    `json:"country"`
	PostalCode   string    `json:"postal_code"`
	LinkedInURL  string    `json:"linkedin_url"`
	ResumePath   *string   `json:"resume_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Qualifications holds a candidate's job preferences
type Qualifications struct {
	RecentJob                string `json:"recent_job"`
	PreferredRoles           string `json:"preferred_roles"`
	Availability             string `json:"availability"`
	WorkPermitStatus         string `json:"work_permit_status"`
	PreferredRoleType        string `json:"preferred_role_type"`
	PreferredWorkArrangement string `json:"preferred_work_arrangement"`
	Compensation             string `json:"compensation"`
}

// CandidateSummary is a row of the admin candidate listing
type CandidateSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// CandidateProfile aggregates everything shown on a candidate detail page
type CandidateProfile struct {
	PersonalDetails *PersonalDetails  `json:"personalDetails"`
	Qualifications  []*Qualifications `json:"qualifications"`
	Skills          []string          `json:"skills"`
	Certifications  []string          `json:"certifications"`
}

// NewCandidate is the onboarding submission that creates a user and profile
type NewCandidate struct {
	Username       string
	Email          string
	PasswordHash   string
	Details        PersonalDetails
	Qualifications Qualifications
	Skills         []string
	Certifications []string
}

// PersonalDetailsUpdate is a partial update: nil fields are left untouched
type PersonalDetailsUpdate struct {
	FirstName    *string
	LastName     *string
	PhoneNo      *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	Country      *string
	PostalCode   *string
	LinkedInURL  *string
	ResumePath   *string
}

// Column is a single column assignment produced by a partial update
type Column struct {
	Name  string
	Value string
}

// Changes returns the columns to update in a stable order.
// Empty strings count as "not provided".
func (u PersonalDetailsUpdate) Changes() []Column {
	fields := []struct {
		name  string
		value *string
	}{
		{"first_name", u.FirstName},
		{"last_name", u.LastName},
		{"phone_no", u.PhoneNo},
		{"address_line1", u.AddressLine1},
		{"address_line2", u.AddressLine2},
		{"city", u.City},
		{"state", u.State},
		{"country", u.Country},
		{"postal_code", u.PostalCode},
		{"linkedin_url", u.LinkedInURL},
		{"resume_path", u.ResumePath},
	}

	changes := make([]Column, 0, len(fields))
	for _, f := range fields {
		if f.value != nil && *f.value != "" {
			changes = append(changes, Column{Name: f.name, Value: *f.value})
		}
	}
	return changes
}

// IsEmpty reports whether the update carries no changes
func (u PersonalDetailsUpdate) IsEmpty() bool {
	return len(u.Changes()) == 0
}
