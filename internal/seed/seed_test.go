package seed

import (
	"context"
	"testing"

	"mqk-dashboard/internal/config"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"
	"mqk-dashboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestDefaults(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	cfg := &config.Config{
		Seed:     config.SeedConfig{AdminUsername: "root", AdminPassword: "rahasia1"},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}

	require.NoError(t, Defaults(ctx, db, cfg, zap.NewNop()))
	require.NoError(t, Defaults(ctx, db, cfg, zap.NewNop()), "seeding twice is a no-op")

	var perms, regions, users int64
	require.NoError(t, db.Model(&model.Permission{}).Count(&perms).Error)
	require.NoError(t, db.Model(&model.Region{}).Count(&regions).Error)
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	assert.EqualValues(t, len(model.DefaultPermissions), perms)
	assert.EqualValues(t, len(model.DefaultRegions), regions)
	assert.EqualValues(t, 1, users)

	admin, err := repository.NewUserRepo(db).FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.True(t, admin.CheckPassword("rahasia1"))
	assert.NotEmpty(t, admin.TokenVersion)
	assert.Equal(t, []string{model.RoleAdmin}, admin.RoleNames())
	assert.Len(t, admin.PermissionNames(), len(model.DefaultPermissions))
	assert.Empty(t, admin.Regions, "the seeded admin covers every region")
}
