package model

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate registers the explicit join tables and creates or updates every table.
func Migrate(db *gorm.DB) error {
	joins := []struct {
		model interface{}
		field string
		join  interface{}
	}{
		{&Role{}, "Permissions", &RolePermission{}},
		{&User{}, "Roles", &UserRole{}},
		{&User{}, "Regions", &UserRegion{}},
	}
	for _, j := range joins {
		if err := db.SetupJoinTable(j.model, j.field, j.join); err != nil {
			return fmt.Errorf("setup join table %s: %w", j.field, err)
		}
	}

	return db.AutoMigrate(
		&Permission{},
		&Role{},
		&RolePermission{},
		&Region{},
		&User{},
		&UserRole{},
		&UserRegion{},
		&Province{},
		&Regency{},
		&District{},
		&Village{},
		&Registration{},
	)
}
