package service

import (
	"context"
	"fmt"
	"testing"

	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	role := testutil.CreateRole(t, f.db, model.RoleUser)
	korwil := testutil.CreateRegion(t, f.db, "Korwil Jabar")

	resp, err := f.users.CreateUser(ctx, admin, &CreateUserRequest{
		Name:      "Siti Aminah",
		Username:  "siti",
		Password:  "rahasia1",
		RoleID:    role.ID,
		RegionIDs: []uuid.UUID{korwil.ID, korwil.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "siti", resp.Username)
	require.NotNil(t, resp.Role)
	assert.Equal(t, model.RoleUser, resp.Role.Name)
	require.Len(t, resp.Regions, 1)
	assert.Equal(t, korwil.ID, resp.Regions[0].ID)
	assert.Contains(t, f.reval.seen(), TagUsers)
}

func TestCreateUser_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	role := testutil.CreateRole(t, f.db, model.RoleUser)
	testutil.CreateUser(t, f.db, "siti", role)

	base := func() *CreateUserRequest {
		return &CreateUserRequest{Name: "Budi", Username: "budi", Password: "rahasia1", RoleID: role.ID}
	}

	dup := base()
	dup.Username = "siti"
	_, err := f.users.CreateUser(ctx, admin, dup)
	requireKind(t, KindDuplicate, err)

	short := base()
	short.Password = "123"
	_, err = f.users.CreateUser(ctx, admin, short)
	requireKind(t, KindValidation, err)

	noRole := base()
	noRole.RoleID = uuid.Nil
	_, err = f.users.CreateUser(ctx, admin, noRole)
	requireKind(t, KindValidation, err)

	ghostRole := base()
	ghostRole.RoleID = uuid.New()
	_, err = f.users.CreateUser(ctx, admin, ghostRole)
	requireKind(t, KindNotFound, err)

	ghostRegion := base()
	ghostRegion.RegionIDs = []uuid.UUID{uuid.New()}
	_, err = f.users.CreateUser(ctx, admin, ghostRegion)
	requireKind(t, KindValidation, err)

	_, err = f.users.CreateUser(ctx, testutil.SessionWith([]string{model.PermUserView}), base())
	requireKind(t, KindForbidden, err)
}

func TestUpdateUser_Partial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	role := testutil.CreateRole(t, f.db, model.RoleUser)
	korwil := testutil.CreateRegion(t, f.db, "Korwil Jabar")
	user := testutil.CreateUser(t, f.db, "siti", role, korwil)
	testutil.CreateUser(t, f.db, "budi", role)

	name := "Siti Rahma"
	resp, err := f.users.UpdateUser(ctx, admin, &UpdateUserRequest{ID: user.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Siti Rahma", resp.Name)
	assert.Equal(t, "siti", resp.Username)
	require.NotNil(t, resp.Role)
	assert.Len(t, resp.Regions, 1, "omitted regions are left unchanged")

	none := []uuid.UUID{}
	resp, err = f.users.UpdateUser(ctx, admin, &UpdateUserRequest{ID: user.ID, RegionIDs: &none})
	require.NoError(t, err)
	assert.Empty(t, resp.Regions, "an empty list clears every region")

	taken := "budi"
	_, err = f.users.UpdateUser(ctx, admin, &UpdateUserRequest{ID: user.ID, Username: &taken})
	requireKind(t, KindDuplicate, err)

	same := "siti"
	_, err = f.users.UpdateUser(ctx, admin, &UpdateUserRequest{ID: user.ID, Username: &same})
	require.NoError(t, err)

	_, err = f.users.UpdateUser(ctx, admin, &UpdateUserRequest{ID: uuid.New(), Name: &name})
	requireKind(t, KindNotFound, err)
}

func TestUpdateUser_RollsBackWhenRelinkFails(t *testing.T) {
	tests := []struct {
		name  string
		table string
		req   func(operator *model.Role, korwilB *model.Region) UpdateUserRequest
	}{
		{
			name:  "role replacement",
			table: "user_roles",
			req: func(operator *model.Role, _ *model.Region) UpdateUserRequest {
				return UpdateUserRequest{RoleID: &operator.ID}
			},
		},
		{
			name:  "region replacement",
			table: "user_regions",
			req: func(_ *model.Role, korwilB *model.Region) UpdateUserRequest {
				return UpdateUserRequest{RegionIDs: &[]uuid.UUID{korwilB.ID}}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			admin := testutil.AdminSession()
			role := testutil.CreateRole(t, f.db, model.RoleUser)
			operator := testutil.CreateRole(t, f.db, "operator")
			korwilA := testutil.CreateRegion(t, f.db, "Korwil A")
			korwilB := testutil.CreateRegion(t, f.db, "Korwil B")
			user := testutil.CreateUser(t, f.db, "siti", role, korwilA)

			testutil.RefuseInserts(t, f.db, tt.table)
			req := tt.req(operator, korwilB)
			req.ID = user.ID
			name := "Siti Rahma"
			req.Name = &name
			_, err := f.users.UpdateUser(ctx, admin, &req)
			requireKind(t, KindDatabase, err)

			got, err := f.users.GetUserByID(ctx, admin, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "User siti", got.Name)
			require.NotNil(t, got.Role)
			assert.Equal(t, role.ID, got.Role.ID)
			require.Len(t, got.Regions, 1)
			assert.Equal(t, korwilA.ID, got.Regions[0].ID)
		})
	}
}

func TestListUsers_SearchIsLiteralSubstring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	role := testutil.CreateRole(t, f.db, model.RoleUser)
	testutil.CreateUser(t, f.db, "alice", role)
	testutil.CreateUser(t, f.db, "bob", role)

	for _, search := range []string{"_", "%", "%%", "a_i"} {
		page, err := f.users.ListUsers(ctx, admin, ListUsersQuery{Search: search})
		require.NoError(t, err)
		assert.Zero(t, page.TotalUsers, "search %q", search)
		assert.Empty(t, page.Users, "search %q", search)
	}

	page, err := f.users.ListUsers(ctx, admin, ListUsersQuery{Search: "ALI"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalUsers)
}

func TestListUsers_TotalMatchesFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	userRole := testutil.CreateRole(t, f.db, model.RoleUser)
	adminRole := testutil.CreateRole(t, f.db, model.RoleAdmin)
	for i := 0; i < 15; i++ {
		testutil.CreateUser(t, f.db, fmt.Sprintf("operator%02d", i), userRole)
	}
	for i := 0; i < 3; i++ {
		testutil.CreateUser(t, f.db, fmt.Sprintf("admin%02d", i), adminRole)
	}

	page, err := f.users.ListUsers(ctx, admin, ListUsersQuery{RoleIDs: []uuid.UUID{userRole.ID}, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Users, 10)
	assert.EqualValues(t, 15, page.TotalUsers)
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.users.ListUsers(ctx, admin, ListUsersQuery{RoleIDs: []uuid.UUID{userRole.ID}, Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Users, 5)
	assert.EqualValues(t, 15, page.TotalUsers)

	page, err = f.users.ListUsers(ctx, admin, ListUsersQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.EqualValues(t, 18, page.TotalUsers)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := testutil.AdminSession()
	user := testutil.CreateUser(t, f.db, "siti", testutil.CreateRole(t, f.db, model.RoleUser))

	require.NoError(t, f.users.DeleteUser(ctx, admin, user.ID))
	_, err := f.users.GetUserByID(ctx, admin, user.ID)
	requireKind(t, KindNotFound, err)

	err = f.users.DeleteUser(ctx, admin, user.ID)
	requireKind(t, KindNotFound, err)
}
