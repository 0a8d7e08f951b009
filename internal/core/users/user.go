package users

import (
	"slices"
	"unicode"

	"Welog/internal/blogapi"
)

// Role names as issued by the backend.
const (
	RoleUser       = "ROLE_USER"
	RoleAdmin      = "ROLE_ADMIN"
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"
)

// User is a Welog account as returned by GET /users/{id}.
type User struct {
	CreatedAt blogapi.Time `json:"createdAt"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Photo     string       `json:"photo,omitempty"`
	Roles     []string     `json:"roles,omitempty"`
	ID        int64        `json:"id"`
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// IsAdmin reports whether the user holds an admin-tier role.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin) || u.HasRole(RoleSuperAdmin)
}

// Initial returns the upper-cased first letter of the name, "U" when unnamed.
func (u *User) Initial() string {
	if u == nil {
		return "U"
	}
	for _, r := range u.Name {
		return string(unicode.ToUpper(r))
	}
	return "U"
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Photo *string `json:"photo,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Photo == nil
}

// Apply merges the non-nil fields of p into a copy of u.
func (p Patch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Photo != nil {
		u.Photo = *p.Photo
	}
	return u
}

// UpdateMeRequest is the multipart profile update of the signed-in user.
// Photo is optional.
type UpdateMeRequest struct {
	Photo *blogapi.File
	Name  string
	Email string
}
