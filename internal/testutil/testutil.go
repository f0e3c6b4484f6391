// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"testing"

	"mqk-dashboard/internal/authz"
	"mqk-dashboard/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain-text password of every fixture user.
const Password = "secret123"

// NewDB opens a migrated in-memory SQLite database. The pool is pinned to a
// single connection so every query sees the same in-memory database; callers
// must not issue non-transactional queries from inside a transaction.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, model.Migrate(db))
	return db
}

// SeedPermissions inserts the default catalog and returns it keyed by name.
func SeedPermissions(t *testing.T, db *gorm.DB) map[string]model.Permission {
	t.Helper()
	out := make(map[string]model.Permission, len(model.DefaultPermissions))
	for _, p := range model.DefaultPermissions {
		require.NoError(t, db.Create(&p).Error)
		out[p.Name] = p
	}
	return out
}

// CreateRole inserts a role holding perms.
func CreateRole(t *testing.T, db *gorm.DB, name string, perms ...model.Permission) *model.Role {
	t.Helper()
	role := &model.Role{Name: name, Version: 1}
	require.NoError(t, db.Omit("Permissions").Create(role).Error)
	for _, p := range perms {
		require.NoError(t, db.Create(&model.RolePermission{RoleID: role.ID, PermissionID: p.ID}).Error)
	}
	role.Permissions = perms
	return role
}

// CreateRegion inserts an operational region.
func CreateRegion(t *testing.T, db *gorm.DB, name string, coverage ...string) *model.Region {
	t.Helper()
	region := &model.Region{Name: name, Coverage: coverage}
	require.NoError(t, db.Create(region).Error)
	return region
}

// CreateUser inserts a user with Password, one role and the given regions.
func CreateUser(t *testing.T, db *gorm.DB, username string, role *model.Role, regions ...*model.Region) *model.User {
	t.Helper()
	user := &model.User{Name: "User " + username, Username: username}
	user.RotateTokenVersion()
	require.NoError(t, user.SetPassword(Password, bcrypt.MinCost))
	require.NoError(t, db.Omit("Roles", "Regions").Create(user).Error)

	if role != nil {
		require.NoError(t, db.Create(&model.UserRole{UserID: user.ID, RoleID: role.ID}).Error)
	}
	for _, r := range regions {
		require.NoError(t, db.Create(&model.UserRegion{UserID: user.ID, RegionID: r.ID}).Error)
	}
	return user
}

// RefuseInserts installs a trigger that aborts every insert into table, so a
// write that touches it fails part way through its transaction.
func RefuseInserts(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	require.NoError(t, db.Exec(
		"CREATE TRIGGER refuse_insert_" + table + " BEFORE INSERT ON " + table +
			" BEGIN SELECT RAISE(ABORT, 'insert refused'); END",
	).Error)
}

// AdminSession grants every permission in the default catalog with no region restriction.
func AdminSession() *authz.Session {
	names := make([]string, len(model.DefaultPermissions))
	for i, p := range model.DefaultPermissions {
		names[i] = p.Name
	}
	return authz.NewSession(uuid.New(), "admin", "Administrator", []string{model.RoleAdmin}, names, nil)
}

// SessionWith grants only perms, restricted to regionIDs when any are given.
func SessionWith(perms []string, regionIDs ...string) *authz.Session {
	return authz.NewSession(uuid.New(), "operator", "Operator", []string{model.RoleUser}, perms, regionIDs)
}

// Hierarchy holds the ids of the fixture address tree.
type Hierarchy struct {
	JawaBarat, JawaTengah      uint
	KotaCimahi, KotaBandung    uint
	Semarang                   uint
	CimahiUtara, CimahiSelatan uint
	Coblong, EmptyDistrict     uint
	Citeureup, Cibabat, Dago   uint
}

// SeedAddress builds a small two-province tree. EmptyDistrict has no villages.
func SeedAddress(t *testing.T, db *gorm.DB) Hierarchy {
	t.Helper()
	var h Hierarchy

	province := func(code, name string) uint {
		p := &model.Province{Code: code, Name: name}
		require.NoError(t, db.Create(p).Error)
		return p.ID
	}
	regency := func(parent uint, code, fullCode, name string) uint {
		r := &model.Regency{ProvinceID: parent, Code: code, FullCode: fullCode, Name: name}
		require.NoError(t, db.Create(r).Error)
		return r.ID
	}
	district := func(parent uint, code, fullCode, name string) uint {
		d := &model.District{RegencyID: parent, Code: code, FullCode: fullCode, Name: name}
		require.NoError(t, db.Create(d).Error)
		return d.ID
	}
	village := func(parent uint, code, fullCode, postal, name string) uint {
		v := &model.Village{DistrictID: parent, Code: code, FullCode: fullCode, PostalCode: postal, Name: name}
		require.NoError(t, db.Create(v).Error)
		return v.ID
	}

	h.JawaBarat = province("32", "Jawa Barat")
	h.JawaTengah = province("33", "Jawa Tengah")

	h.KotaCimahi = regency(h.JawaBarat, "77", "32.77", "Kota Cimahi")
	h.KotaBandung = regency(h.JawaBarat, "73", "32.73", "Kota Bandung")
	h.Semarang = regency(h.JawaTengah, "74", "33.74", "Kota Semarang")

	h.CimahiUtara = district(h.KotaCimahi, "03", "32.77.03", "Cimahi Utara")
	h.CimahiSelatan = district(h.KotaCimahi, "01", "32.77.01", "Cimahi Selatan")
	h.Coblong = district(h.KotaBandung, "12", "32.73.12", "Coblong")
	h.EmptyDistrict = district(h.Semarang, "01", "33.74.01", "Semarang Tengah")

	h.Citeureup = village(h.CimahiUtara, "1004", "32.77.03.1004", "40512", "Citeureup")
	h.Cibabat = village(h.CimahiUtara, "1001", "32.77.03.1001", "40513", "Cibabat")
	h.Dago = village(h.Coblong, "1001", "32.73.12.1001", "40135", "Dago")

	return h
}
