package service

import (
	"context"
	"errors"
	"strings"

	"mqk-dashboard/internal/authz"
	"mqk-dashboard/internal/cache"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Revalidation tags
const (
	TagRoles   = "roles"
	TagUsers   = "/dashboard/users"
	TagRegions = "/region"
	TagAddress = "address"
)

type RoleService interface {
	CreateRole(ctx context.Context, actor *authz.Session, req *CreateRoleRequest) (*model.RoleView, error)
	UpdateRole(ctx context.Context, actor *authz.Session, id uuid.UUID, req *UpdateRoleRequest) (*model.RoleView, error)
	DeleteRole(ctx context.Context, actor *authz.Session, id uuid.UUID) error
	GetRoleByID(ctx context.Context, actor *authz.Session, id uuid.UUID) (*model.RoleView, error)
	ListRoles(ctx context.Context, actor *authz.Session) ([]model.RoleView, error)
	ListPermissions(ctx context.Context, actor *authz.Session) ([]model.Permission, error)
}

type CreateRoleRequest struct {
	Name          string      `json:"name" validate:"required,notblank,max=100"`
	PermissionIDs []uuid.UUID `json:"permission_ids" validate:"dive,uuid_required"`
}

type UpdateRoleRequest struct {
	Name          string      `json:"name" validate:"required,notblank,max=100"`
	PermissionIDs []uuid.UUID `json:"permission_ids" validate:"dive,uuid_required"`
	Version       *int        `json:"version,omitempty" validate:"omitempty,min=1"`
}

type roleService struct {
	db       *gorm.DB
	roleRepo repository.RoleRepository
	permRepo repository.PermissionRepository
	cache    *cache.TagCache
	reval    cache.Revalidator
	obs      *Observer
}

func NewRoleService(db *gorm.DB, roleRepo repository.RoleRepository, permRepo repository.PermissionRepository, c *cache.TagCache, reval cache.Revalidator, obs *Observer) RoleService {
	return &roleService{
		db:       db,
		roleRepo: roleRepo,
		permRepo: permRepo,
		cache:    c,
		reval:    reval,
		obs:      obs,
	}
}

func (s *roleService) CreateRole(ctx context.Context, actor *authz.Session, req *CreateRoleRequest) (*model.RoleView, error) {
	const op = "createRole"
	view, err := s.createRole(ctx, actor, req)
	if err != nil {
		return nil, s.obs.fail(op, err, "role name already exists")
	}
	s.obs.ok(op)
	s.reval.Revalidate(ctx, TagRoles)
	return view, nil
}

func (s *roleService) createRole(ctx context.Context, actor *authz.Session, req *CreateRoleRequest) (*model.RoleView, error) {
	// 1. Authorize
	if err := authz.Require(actor, model.PermRoleCreate); err != nil {
		return nil, err
	}

	// 2. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)

	// 3. Check if name already exists
	if _, err := s.roleRepo.FindByName(ctx, name); err == nil {
		return nil, DuplicateError("role name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 4. Resolve permissions
	permIDs, err := s.resolvePermissions(ctx, req.PermissionIDs)
	if err != nil {
		return nil, err
	}

	// 5. Role and links in one transaction
	role := &model.Role{Name: name, Version: 1}
	role.CreatedBy = actor.Username
	role.UpdatedBy = actor.Username
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.roleRepo.WithTx(tx)
		if err := txRepo.Create(ctx, role); err != nil {
			return err
		}
		return txRepo.ReplacePermissions(ctx, role.ID, permIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.view(ctx, role.ID)
}

func (s *roleService) UpdateRole(ctx context.Context, actor *authz.Session, id uuid.UUID, req *UpdateRoleRequest) (*model.RoleView, error) {
	const op = "updateRole"
	view, err := s.updateRole(ctx, actor, id, req)
	if err != nil {
		return nil, s.obs.fail(op, err, "role name already exists")
	}
	s.obs.ok(op)
	s.reval.Revalidate(ctx, TagRoles, TagUsers)
	return view, nil
}

func (s *roleService) updateRole(ctx context.Context, actor *authz.Session, id uuid.UUID, req *UpdateRoleRequest) (*model.RoleView, error) {
	// 1. Authorize
	if err := authz.Require(actor, model.PermRoleEdit); err != nil {
		return nil, err
	}

	// 2. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)

	// 3. Find existing role
	role, err := s.roleRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("role not found")
	} else if err != nil {
		return nil, err
	}

	// 4. Optimistic concurrency
	if req.Version != nil && *req.Version != role.Version {
		return nil, ConflictError("role was modified by someone else, reload and try again")
	}

	// 5. Check if name is being changed and already exists
	if name != role.Name {
		if _, err := s.roleRepo.FindByName(ctx, name); err == nil {
			return nil, DuplicateError("role name already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// 6. Resolve permissions
	permIDs, err := s.resolvePermissions(ctx, req.PermissionIDs)
	if err != nil {
		return nil, err
	}

	// 7. Update row and replace links in one transaction
	expected := role.Version
	role.Name = name
	role.Version = expected + 1
	role.UpdatedBy = actor.Username
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.roleRepo.WithTx(tx)
		if err := txRepo.Update(ctx, role, expected); errors.Is(err, repository.ErrStaleVersion) {
			return ConflictError("role was modified by someone else, reload and try again")
		} else if err != nil {
			return err
		}
		return txRepo.ReplacePermissions(ctx, role.ID, permIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.view(ctx, role.ID)
}

func (s *roleService) DeleteRole(ctx context.Context, actor *authz.Session, id uuid.UUID) error {
	const op = "deleteRole"
	if err := s.deleteRole(ctx, actor, id); err != nil {
		return s.obs.fail(op, err, "")
	}
	s.obs.ok(op)
	s.reval.Revalidate(ctx, TagRoles)
	return nil
}

// deleteRole refuses while any user still holds the role.
func (s *roleService) deleteRole(ctx context.Context, actor *authz.Session, id uuid.UUID) error {
	if err := authz.Require(actor, model.PermRoleDelete); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.roleRepo.WithTx(tx)
		if _, err := txRepo.FindByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("role not found")
		} else if err != nil {
			return err
		}

		inUse, err := txRepo.CountUsers(ctx, id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return ConflictError("role is still assigned to users, reassign them first")
		}
		return txRepo.Delete(ctx, id)
	})
}

func (s *roleService) GetRoleByID(ctx context.Context, actor *authz.Session, id uuid.UUID) (*model.RoleView, error) {
	const op = "getRoleById"
	if err := authz.Require(actor, model.PermRoleView); err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	view, err := s.view(ctx, id)
	if err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	return view, nil
}

func (s *roleService) ListRoles(ctx context.Context, actor *authz.Session) ([]model.RoleView, error) {
	const op = "listRoles"
	if err := authz.Require(actor, model.PermRoleView); err != nil {
		return nil, s.obs.fail(op, err, "")
	}

	views, err := cache.Fetch(s.cache, s.obs.metrics, "roles:list", []string{TagRoles}, func() ([]model.RoleView, error) {
		roles, err := s.roleRepo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		views := make([]model.RoleView, len(roles))
		for i := range roles {
			views[i] = roles[i].ToView()
		}
		return views, nil
	})
	if err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	return views, nil
}

func (s *roleService) ListPermissions(ctx context.Context, actor *authz.Session) ([]model.Permission, error) {
	const op = "listPermissions"
	// The role forms need the catalog too.
	if err := authz.RequireAny(actor, model.PermRoleView, model.PermRoleCreate, model.PermRoleEdit); err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	perms, err := s.permRepo.FindAll(ctx)
	if err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	return perms, nil
}

func (s *roleService) view(ctx context.Context, id uuid.UUID) (*model.RoleView, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError("role not found")
	} else if err != nil {
		return nil, err
	}
	view := role.ToView()
	return &view, nil
}

// resolvePermissions deduplicates ids and rejects any that are not in the catalog.
func (s *roleService) resolvePermissions(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	unique := dedupe(ids)
	found, err := s.permRepo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(found) != len(unique) {
		return nil, ValidationError("one or more permissions do not exist")
	}
	return unique, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
