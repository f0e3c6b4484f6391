package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents a dashboard operator
type User struct {
	BaseModel
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	Username     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	TokenVersion string     `gorm:"type:varchar(64);default:''" json:"-"` // Rotated on password change
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	Roles        []Role     `gorm:"many2many:user_roles;" json:"roles,omitempty"`
	Regions      []Region   `gorm:"many2many:user_regions;" json:"regions,omitempty"`
}

// UserRole links a user to a role. Exactly one row per user is maintained.
type UserRole struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	RoleID uuid.UUID `gorm:"type:uuid;primaryKey" json:"role_id"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// UserRegion links a user to an operational region. No rows means all regions.
type UserRegion struct {
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	RegionID uuid.UUID `gorm:"type:uuid;primaryKey" json:"region_id"`
}

func (UserRegion) TableName() string {
	return "user_regions"
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string, cost int) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// RotateTokenVersion invalidates every session issued before the call.
func (u *User) RotateTokenVersion() {
	u.TokenVersion = uuid.NewString()
}

// PermissionNames returns the union of permission names across all roles.
func (u *User) PermissionNames() []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = r.Name
	}
	return names
}

func (u *User) RegionIDs() []string {
	ids := make([]string, len(u.Regions))
	for i, r := range u.Regions {
		ids[i] = r.ID.String()
	}
	return ids
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Username    string      `json:"username"`
	CreatedAt   time.Time   `json:"created_at"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	Role        *RoleRef    `json:"role,omitempty"`
	Regions     []RegionRef `json:"regions"`
}

type RoleRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type RegionRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Username:    u.Username,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
		Regions:     make([]RegionRef, len(u.Regions)),
	}
	if len(u.Roles) > 0 {
		resp.Role = &RoleRef{ID: u.Roles[0].ID, Name: u.Roles[0].Name}
	}
	for i, r := range u.Regions {
		resp.Regions[i] = RegionRef{ID: r.ID, Name: r.Name}
	}
	return resp
}
