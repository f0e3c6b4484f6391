package model

import (
	"sort"

	"github.com/google/uuid"
)

// Role is a named bundle of permissions.
type Role struct {
	BaseModel
	Name        string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Version     int          `gorm:"not null;default:1" json:"version"` // bumped on every update
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
}

// Role names seeded on first boot
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// DefaultRolePermissions maps seeded roles to their permission names.
// A nil slice means every permission in the catalog.
var DefaultRolePermissions = map[string][]string{
	RoleAdmin: nil,
	RoleUser: {
		PermRegionView,
		PermRegistrationView,
		PermRegistrationExport,
		PermDashboardView,
	},
}

// PermissionIDs returns the flat id list that drives pre-checked state on edit forms.
func (r *Role) PermissionIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.Permissions))
	for i, p := range r.Permissions {
		ids[i] = p.ID
	}
	return ids
}

// PermissionNames returns the sorted capability tokens of the role.
func (r *Role) PermissionNames() []string {
	names := make([]string, len(r.Permissions))
	for i, p := range r.Permissions {
		names[i] = p.Name
	}
	sort.Strings(names)
	return names
}

// RoleView is a role with its permission set expanded both as objects and ids.
type RoleView struct {
	Role
	PermissionIDs []uuid.UUID `json:"permission_ids"`
}

func (r *Role) ToView() RoleView {
	if r.Permissions == nil {
		r.Permissions = []Permission{}
	}
	return RoleView{Role: *r, PermissionIDs: r.PermissionIDs()}
}
