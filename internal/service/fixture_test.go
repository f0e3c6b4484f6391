package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"mqk-dashboard/internal/cache"
	"mqk-dashboard/internal/metrics"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"
	"mqk-dashboard/internal/testutil"
	"mqk-dashboard/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// revalLog records every revalidation before forwarding it to the bus.
type revalLog struct {
	mu   sync.Mutex
	tags []string
	next cache.Revalidator
}

func (r *revalLog) Revalidate(ctx context.Context, tags ...string) {
	r.mu.Lock()
	r.tags = append(r.tags, tags...)
	r.mu.Unlock()
	r.next.Revalidate(ctx, tags...)
}

func (r *revalLog) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tags...)
}

type fixture struct {
	db      *gorm.DB
	metrics *metrics.Metrics
	cache   *cache.TagCache
	reval   *revalLog
	perms   map[string]model.Permission
	tokens  *jwt.Manager

	roles         RoleService
	users         UserService
	auth          AuthService
	regions       RegionService
	address       AddressService
	registrations RegistrationService
	dashboard     DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	m := metrics.New()
	tc := cache.NewTagCache(64, time.Minute)
	reval := &revalLog{next: cache.NewBus(tc, nil, "test", zap.NewNop(), m)}
	obs := NewObserver(zap.NewNop(), m)
	tokens := jwt.NewManager("test-secret", time.Hour, "mqk-test")

	permRepo := repository.NewPermissionRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)
	regionRepo := repository.NewRegionRepo(db)

	address := NewAddressService(db, repository.NewAddressRepo(db), tc, reval, obs)
	return &fixture{
		db:            db,
		metrics:       m,
		cache:         tc,
		reval:         reval,
		perms:         testutil.SeedPermissions(t, db),
		tokens:        tokens,
		roles:         NewRoleService(db, roleRepo, permRepo, tc, reval, obs),
		users:         NewUserService(db, userRepo, roleRepo, regionRepo, bcrypt.MinCost, reval, obs),
		auth:          NewAuthService(userRepo, tokens, zap.NewNop()),
		regions:       NewRegionService(regionRepo, tc, reval, obs),
		address:       address,
		registrations: NewRegistrationService(repository.NewRegistrationRepo(db), regionRepo, address, reval, obs),
		dashboard:     NewDashboardService(repository.NewStatsRepo(db), obs),
	}
}

func (f *fixture) permIDs(names ...string) []uuid.UUID {
	ids := make([]uuid.UUID, len(names))
	for i, n := range names {
		ids[i] = f.perms[n].ID
	}
	return ids
}

func requireKind(t *testing.T, want Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, KindOf(err), "error: %v", err)
}
