package models

// Group is a set of people sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Ski trip").
	Name string `json:"name"`

	Description string `json:"description,omitempty"`

	// CreatedBy is the user ID of the creator, empty when auth is disabled.
	CreatedBy string `json:"created_by,omitempty"`

	// Members is the list of people in this group, in join order.
	Members []Member `json:"members"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}

// Member is a person inside a group. UserID is unique within the group;
// it may reference a registered User but does not have to.
type Member struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	JoinedAt int64  `json:"joined_at"`
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberName returns the display name for userID, or "" when unknown.
func (g *Group) MemberName(userID string) string {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m.Name
		}
	}
	return ""
}
