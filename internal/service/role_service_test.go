package service

import (
	"context"
	"testing"

	"mqk-dashboard/internal/metrics"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/testutil"

	"github.com/google/uuid"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()

	req := &CreateRoleRequest{
		Name:          "  operator ",
		PermissionIDs: f.permIDs(model.PermUserView, model.PermUserView, model.PermRoleView),
	}
	view, err := f.roles.CreateRole(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, "operator", view.Name)
	assert.Equal(t, 1, view.Version)
	assert.ElementsMatch(t, f.permIDs(model.PermRoleView, model.PermUserView), view.PermissionIDs)
	assert.Contains(t, f.reval.seen(), TagRoles)
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.OperationsTotal.WithLabelValues("createRole", metrics.OutcomeSuccess)))
}

func TestCreateRole_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	_, err := f.roles.CreateRole(ctx, admin, &CreateRoleRequest{Name: "operator"})
	require.NoError(t, err)

	_, err = f.roles.CreateRole(ctx, admin, &CreateRoleRequest{Name: "operator"})
	requireKind(t, KindDuplicate, err)

	_, err = f.roles.CreateRole(ctx, admin, &CreateRoleRequest{Name: "   "})
	requireKind(t, KindValidation, err)

	_, err = f.roles.CreateRole(ctx, admin, &CreateRoleRequest{Name: "ghost", PermissionIDs: []uuid.UUID{uuid.New()}})
	requireKind(t, KindValidation, err)

	viewer := testutil.SessionWith([]string{model.PermRoleView})
	_, err = f.roles.CreateRole(ctx, viewer, &CreateRoleRequest{Name: "sneaky"})
	requireKind(t, KindForbidden, err)
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.OperationsTotal.WithLabelValues("createRole", string(KindForbidden))))

	_, err = f.roles.CreateRole(ctx, nil, &CreateRoleRequest{Name: "anonymous"})
	requireKind(t, KindForbidden, err)
}

func TestUpdateRole_ReplacesPermissionSetExactly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	created, err := f.roles.CreateRole(ctx, admin, &CreateRoleRequest{
		Name:          "operator",
		PermissionIDs: f.permIDs(model.PermUserView, model.PermUserEdit),
	})
	require.NoError(t, err)

	updated, err := f.roles.UpdateRole(ctx, admin, created.ID, &UpdateRoleRequest{
		Name:          "supervisor",
		PermissionIDs: f.permIDs(model.PermUserEdit, model.PermRoleView),
	})
	require.NoError(t, err)
	assert.Equal(t, "supervisor", updated.Name)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, []string{model.PermRoleView, model.PermUserEdit}, updated.PermissionNames())

	got, err := f.roles.GetRoleByID(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, f.permIDs(model.PermUserEdit, model.PermRoleView), got.PermissionIDs)

	assert.Subset(t, f.reval.seen(), []string{TagRoles, TagUsers})
}

func TestUpdateRole_RollsBackWhenRelinkFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	created, err := f.roles.CreateRole(ctx, admin, &CreateRoleRequest{
		Name:          "ops",
		PermissionIDs: f.permIDs(model.PermUserView, model.PermUserEdit),
	})
	require.NoError(t, err)

	testutil.RefuseInserts(t, f.db, "role_permissions")
	_, err = f.roles.UpdateRole(ctx, admin, created.ID, &UpdateRoleRequest{
		Name:          "supervisor",
		PermissionIDs: f.permIDs(model.PermRoleView),
	})
	requireKind(t, KindDatabase, err)

	got, err := f.roles.GetRoleByID(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ops", got.Name)
	assert.Equal(t, 1, got.Version)
	assert.ElementsMatch(t, f.permIDs(model.PermUserView, model.PermUserEdit), got.PermissionIDs,
		"the old links survive a failed replacement")
}

func TestUpdateRole_Conflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	created, err := f.roles.CreateRole(ctx, admin, &CreateRoleRequest{Name: "operator"})
	require.NoError(t, err)
	_, err = f.roles.CreateRole(ctx, admin, &CreateRoleRequest{Name: "auditor"})
	require.NoError(t, err)

	v1 := 1
	_, err = f.roles.UpdateRole(ctx, admin, created.ID, &UpdateRoleRequest{Name: "operator", Version: &v1})
	require.NoError(t, err)

	_, err = f.roles.UpdateRole(ctx, admin, created.ID, &UpdateRoleRequest{Name: "operator", Version: &v1})
	requireKind(t, KindConflict, err)

	_, err = f.roles.UpdateRole(ctx, admin, created.ID, &UpdateRoleRequest{Name: "auditor"})
	requireKind(t, KindDuplicate, err)

	_, err = f.roles.UpdateRole(ctx, admin, uuid.New(), &UpdateRoleRequest{Name: "nobody"})
	requireKind(t, KindNotFound, err)
}

func TestDeleteRole_RejectsRoleInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	inUse := testutil.CreateRole(t, f.db, "operator")
	other := testutil.CreateRole(t, f.db, "auditor")
	user := testutil.CreateUser(t, f.db, "siti", inUse)

	err := f.roles.DeleteRole(ctx, admin, inUse.ID)
	requireKind(t, KindConflict, err)

	roleID := other.ID
	_, err = f.users.UpdateUser(ctx, admin, &UpdateUserRequest{ID: user.ID, RoleID: &roleID})
	require.NoError(t, err)

	require.NoError(t, f.roles.DeleteRole(ctx, admin, inUse.ID))
	_, err = f.roles.GetRoleByID(ctx, admin, inUse.ID)
	requireKind(t, KindNotFound, err)

	err = f.roles.DeleteRole(ctx, admin, inUse.ID)
	requireKind(t, KindNotFound, err)
}

func TestListRoles_CachedUntilRevalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	testutil.CreateRole(t, f.db, "operator")

	first, err := f.roles.ListRoles(ctx, admin)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Written behind the service's back: the cached list is still served.
	testutil.CreateRole(t, f.db, "hidden")
	cached, err := f.roles.ListRoles(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, cached, 1)
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.CacheHitsTotal.WithLabelValues(TagRoles)))

	_, err = f.roles.CreateRole(ctx, admin, &CreateRoleRequest{Name: "auditor"})
	require.NoError(t, err)
	fresh, err := f.roles.ListRoles(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestListPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	perms, err := f.roles.ListPermissions(ctx, testutil.SessionWith([]string{model.PermRoleView}))
	require.NoError(t, err)
	assert.Len(t, perms, len(model.DefaultPermissions))

	perms, err = f.roles.ListPermissions(ctx, testutil.SessionWith([]string{model.PermRoleCreate}))
	require.NoError(t, err)
	assert.Len(t, perms, len(model.DefaultPermissions))

	_, err = f.roles.ListPermissions(ctx, testutil.SessionWith([]string{model.PermUserView}))
	requireKind(t, KindForbidden, err)

	_, err = f.roles.ListPermissions(ctx, testutil.SessionWith(nil))
	requireKind(t, KindForbidden, err)
}
