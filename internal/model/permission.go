package model

import "github.com/google/uuid"

// Permission is a named capability checked at authorization time.
type Permission struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"` // e.g. "user:edit"
	Label       string `gorm:"type:varchar(50);index;not null" json:"label"`      // grouping key, e.g. "user"
	Description string `gorm:"type:text" json:"description,omitempty"`
}

// Permission names used by routes and services.
const (
	PermUserView           = "user:view"
	PermUserCreate         = "user:create"
	PermUserEdit           = "user:edit"
	PermUserDelete         = "user:delete"
	PermUserChangePassword = "user:change_password"

	PermRoleView   = "role:view"
	PermRoleCreate = "role:create"
	PermRoleEdit   = "role:edit"
	PermRoleDelete = "role:delete"

	PermRegionView   = "region:view"
	PermRegionCreate = "region:create"

	PermRegistrationView   = "registration:view"
	PermRegistrationExport = "registration:export"

	PermDashboardView = "dashboard:view"
)

// DefaultPermissions is the seeded catalog.
var DefaultPermissions = []Permission{
	{Name: PermUserView, Label: "user", Description: "View users"},
	{Name: PermUserCreate, Label: "user", Description: "Create users"},
	{Name: PermUserEdit, Label: "user", Description: "Edit user identity, role and regions"},
	{Name: PermUserDelete, Label: "user", Description: "Delete users"},
	{Name: PermUserChangePassword, Label: "user", Description: "Reset a user's password"},

	{Name: PermRoleView, Label: "role", Description: "View roles and the permission catalog"},
	{Name: PermRoleCreate, Label: "role", Description: "Create roles"},
	{Name: PermRoleEdit, Label: "role", Description: "Edit roles and their permissions"},
	{Name: PermRoleDelete, Label: "role", Description: "Delete roles"},

	{Name: PermRegionView, Label: "region", Description: "View operational regions"},
	{Name: PermRegionCreate, Label: "region", Description: "Create operational regions"},

	{Name: PermRegistrationView, Label: "registration", Description: "View participant registrations"},
	{Name: PermRegistrationExport, Label: "registration", Description: "Export participant registrations"},

	{Name: PermDashboardView, Label: "dashboard", Description: "View dashboard statistics"},
}

// RolePermission links a role to a permission; a permission appears at most once per role.
type RolePermission struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"role_id"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"permission_id"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
