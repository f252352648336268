package user

import "time"

// RoleAdmin is the administrator role id; every other role id is a regular
// member.
const RoleAdmin = 1

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // never expose hash in JSON
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	OrganizationID string    `json:"organizationID"`
	RoleID         int       `json:"roleID"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}
