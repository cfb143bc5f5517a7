package model

// Subject is the person a mode record protects: the primary user, or a
// vulnerable third party being watched over on the user's behalf.
type Subject struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Caregiver   *CaregiverContact `json:"caregiver,omitempty"`
}

// CaregiverContact identifies who gets alerted when an escalation fires.
type CaregiverContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// AnonymousDisplayName is the fallback for subjects registered without one.
const AnonymousDisplayName = "alguien importante"

// Name returns the display name, falling back to a generic label so a
// missing profile never blocks a directive or an alert.
func (s Subject) Name() string {
	if s.DisplayName == "" {
		return AnonymousDisplayName
	}
	return s.DisplayName
}
