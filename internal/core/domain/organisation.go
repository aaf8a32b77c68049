package domain

import (
	"fmt"
	"time"
)

// DefaultOrganisationDescription is attached to the organisation created at registration.
const DefaultOrganisationDescription = "Default organisation"

// Organisation is a tenant. CreatorID is the only user allowed to add members.
type Organisation struct {
	ID          string    `json:"orgId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   string    `json:"-"`
	CreatedAt   time.Time `json:"-"`
}

// Membership links a user to an organisation.
type Membership struct {
	ID        string
	UserID    string
	OrgID     string
	CreatedAt time.Time
}

// DefaultOrganisationName returns the name of the organisation every new user receives.
func DefaultOrganisationName(firstName string) string {
	return fmt.Sprintf("%s's Organisation", firstName)
}

// IsCreator reports whether userID created the organisation.
func (o *Organisation) IsCreator(userID string) bool {
	return userID != "" && o.CreatorID == userID
}
