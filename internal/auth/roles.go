package auth

import "reviewhub/internal/models"

// Identity is what a request knows about its caller. The zero value is an
// anonymous caller.
type Identity struct {
	Authenticated bool
	UserID        string
	Username      string
	Role          string
	IsStaff       bool
	IsSuperuser   bool
}

// IsAdmin reports whether the role plus staff/superuser flags amount to
// admin powers.
func IsAdmin(role string, staff, superuser bool) bool {
	return role == models.RoleAdmin || (staff && superuser)
}

// IsModerator reports whether the caller may moderate other users' content.
// Admins moderate too.
func IsModerator(role string, staff, superuser bool) bool {
	return role == models.RoleModerator || staff || IsAdmin(role, staff, superuser)
}

func (id Identity) Admin() bool {
	return IsAdmin(id.Role, id.IsStaff, id.IsSuperuser)
}

func (id Identity) Moderator() bool {
	return IsModerator(id.Role, id.IsStaff, id.IsSuperuser)
}

// IdentityOf derives the request identity from a stored user.
func IdentityOf(user *models.User) Identity {
	return Identity{
		Authenticated: true,
		UserID:        user.ID,
		Username:      user.Username,
		Role:          user.Role,
		IsStaff:       user.IsStaff,
		IsSuperuser:   user.IsSuperuser,
	}
}
