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

var ErrUserNotFound = errors.New("user not found")

type UserService interface {
	CreateUser(ctx context.Context, actor *authz.Session, req *CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, actor *authz.Session, req *UpdateUserRequest) (*model.UserResponse, error)
	ChangePassword(ctx context.Context, actor *authz.Session, id uuid.UUID, req *ChangePasswordRequest) error
	DeleteUser(ctx context.Context, actor *authz.Session, id uuid.UUID) error
	GetUserByID(ctx context.Context, actor *authz.Session, id uuid.UUID) (*model.UserResponse, error)
	ListUsers(ctx context.Context, actor *authz.Session, q ListUsersQuery) (*UserPage, error)
}

type CreateUserRequest struct {
	Name      string      `json:"name" validate:"required,notblank,max=255"`
	Username  string      `json:"username" validate:"required,notblank,min=3,max=100"`
	Password  string      `json:"password" validate:"required,min=6,max=72"`
	RoleID    uuid.UUID   `json:"role_id" validate:"uuid_required"`
	RegionIDs []uuid.UUID `json:"region_ids" validate:"dive,uuid_required"`
}

// UpdateUserRequest is partial: nil fields are left unchanged. A non-nil
// empty RegionIDs removes every region link (all regions).
type UpdateUserRequest struct {
	ID        uuid.UUID    `json:"-" validate:"uuid_required"`
	Name      *string      `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Username  *string      `json:"username,omitempty" validate:"omitempty,notblank,min=3,max=100"`
	RoleID    *uuid.UUID   `json:"role_id,omitempty" validate:"omitempty,uuid_required"`
	RegionIDs *[]uuid.UUID `json:"region_ids,omitempty" validate:"omitempty,dive,uuid_required"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type ListUsersQuery struct {
	RoleIDs []uuid.UUID
	Search  string
	Page    int
	Limit   int
}

type UserPage struct {
	Users      []model.UserResponse `json:"users"`
	TotalUsers int64                `json:"total_users"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

type userService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	regionRepo repository.RegionRepository
	bcryptCost int
	reval      cache.Revalidator
	obs        *Observer
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository, roleRepo repository.RoleRepository, regionRepo repository.RegionRepository, bcryptCost int, reval cache.Revalidator, obs *Observer) UserService {
	return &userService{
		db:         db,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		regionRepo: regionRepo,
		bcryptCost: bcryptCost,
		reval:      reval,
		obs:        obs,
	}
}

func (s *userService) CreateUser(ctx context.Context, actor *authz.Session, req *CreateUserRequest) (*model.UserResponse, error) {
	const op = "createUser"
	user, err := s.createUser(ctx, actor, req)
	if err != nil {
		return nil, s.obs.fail(op, err, "username already exists")
	}
	s.obs.ok(op)
	s.reval.Revalidate(ctx, TagUsers)
	return user, nil
}

func (s *userService) createUser(ctx context.Context, actor *authz.Session, req *CreateUserRequest) (*model.UserResponse, error) {
	// 1. Authorize
	if err := authz.Require(actor, model.PermUserCreate); err != nil {
		return nil, err
	}

	// 2. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)

	// 3. Check if username already exists
	exists, err := s.userRepo.ExistsByUsername(ctx, username, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, DuplicateError("username already exists")
	}

	// 4. Validate role and regions exist
	if err := s.checkRole(ctx, req.RoleID); err != nil {
		return nil, err
	}
	regionIDs, err := s.checkRegions(ctx, req.RegionIDs)
	if err != nil {
		return nil, err
	}

	// 5. Hash password
	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Username: username,
	}
	user.CreatedBy = actor.Username
	user.UpdatedBy = actor.Username
	user.RotateTokenVersion()
	if err := user.SetPassword(req.Password, s.bcryptCost); err != nil {
		return nil, err
	}

	// 6. User, role link and region links in one transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.userRepo.WithTx(tx)
		if err := txRepo.Create(ctx, user); err != nil {
			return err
		}
		if err := txRepo.ReplaceRole(ctx, user.ID, req.RoleID); err != nil {
			return err
		}
		return txRepo.ReplaceRegions(ctx, user.ID, regionIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.response(ctx, user.ID)
}

func (s *userService) UpdateUser(ctx context.Context, actor *authz.Session, req *UpdateUserRequest) (*model.UserResponse, error) {
	const op = "updateUser"
	user, err := s.updateUser(ctx, actor, req)
	if err != nil {
		return nil, s.obs.fail(op, err, "username already exists")
	}
	s.obs.ok(op)
	s.reval.Revalidate(ctx, TagUsers)
	return user, nil
}

func (s *userService) updateUser(ctx context.Context, actor *authz.Session, req *UpdateUserRequest) (*model.UserResponse, error) {
	// 1. Authorize
	if err := authz.Require(actor, model.PermUserEdit); err != nil {
		return nil, err
	}

	// 2. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}

	// 3. Find existing user
	user, err := s.userRepo.FindByID(ctx, req.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError(ErrUserNotFound.Error())
	} else if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}

	// 4. Check if username is being changed and already exists
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != user.Username {
			exists, err := s.userRepo.ExistsByUsername(ctx, username, user.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, DuplicateError("username already exists")
			}
			fields["username"] = username
		}
	}

	// 5. Validate role and regions exist
	if req.RoleID != nil {
		if err := s.checkRole(ctx, *req.RoleID); err != nil {
			return nil, err
		}
	}
	var regionIDs []uuid.UUID
	if req.RegionIDs != nil {
		if regionIDs, err = s.checkRegions(ctx, *req.RegionIDs); err != nil {
			return nil, err
		}
	}
	if len(fields) > 0 || req.RoleID != nil || req.RegionIDs != nil {
		fields["updated_by"] = actor.Username
	}

	// 6. Apply every change in one transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.userRepo.WithTx(tx)
		if err := txRepo.UpdateFields(ctx, user.ID, fields); err != nil {
			return err
		}
		if req.RoleID != nil {
			if err := txRepo.ReplaceRole(ctx, user.ID, *req.RoleID); err != nil {
				return err
			}
		}
		if req.RegionIDs != nil {
			return txRepo.ReplaceRegions(ctx, user.ID, regionIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.response(ctx, user.ID)
}

func (s *userService) ChangePassword(ctx context.Context, actor *authz.Session, id uuid.UUID, req *ChangePasswordRequest) error {
	const op = "changePassword"
	err := s.changePassword(ctx, actor, id, req)
	if err != nil {
		return s.obs.fail(op, err, "")
	}
	s.obs.ok(op)
	return nil
}

// changePassword rehashes and rotates the token version, so every session
// issued before the change is rejected by the auth middleware.
func (s *userService) changePassword(ctx context.Context, actor *authz.Session, id uuid.UUID, req *ChangePasswordRequest) error {
	if err := authz.Require(actor, model.PermUserChangePassword); err != nil {
		return err
	}
	if err := validate(req); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError(ErrUserNotFound.Error())
	} else if err != nil {
		return err
	}

	if err := user.SetPassword(req.Password, s.bcryptCost); err != nil {
		return err
	}
	user.RotateTokenVersion()
	return s.userRepo.UpdatePassword(ctx, user.ID, user.Password, user.TokenVersion)
}

func (s *userService) DeleteUser(ctx context.Context, actor *authz.Session, id uuid.UUID) error {
	const op = "deleteUser"
	err := s.deleteUser(ctx, actor, id)
	if err != nil {
		return s.obs.fail(op, err, "")
	}
	s.obs.ok(op)
	s.reval.Revalidate(ctx, TagUsers)
	return nil
}

func (s *userService) deleteUser(ctx context.Context, actor *authz.Session, id uuid.UUID) error {
	if err := authz.Require(actor, model.PermUserDelete); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.userRepo.WithTx(tx)
		if _, err := txRepo.GetTokenVersion(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError(ErrUserNotFound.Error())
		} else if err != nil {
			return err
		}
		return txRepo.Delete(ctx, id)
	})
}

func (s *userService) GetUserByID(ctx context.Context, actor *authz.Session, id uuid.UUID) (*model.UserResponse, error) {
	const op = "getUserById"
	if err := authz.Require(actor, model.PermUserView); err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	resp, err := s.response(ctx, id)
	if err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	return resp, nil
}

func (s *userService) ListUsers(ctx context.Context, actor *authz.Session, q ListUsersQuery) (*UserPage, error) {
	const op = "listUsers"
	if err := authz.Require(actor, model.PermUserView); err != nil {
		return nil, s.obs.fail(op, err, "")
	}

	page, limit := repository.NormalizePage(q.Page, q.Limit)
	users, total, err := s.userRepo.List(ctx, repository.UserFilter{
		RoleIDs: q.RoleIDs,
		Search:  q.Search,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, s.obs.fail(op, err, "")
	}

	result := &UserPage{
		Users:      make([]model.UserResponse, len(users)),
		TotalUsers: total,
		Page:       page,
		Limit:      limit,
		TotalPages: repository.TotalPages(total, limit),
	}
	for i := range users {
		result.Users[i] = users[i].ToResponse()
	}
	return result, nil
}

func (s *userService) response(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError(ErrUserNotFound.Error())
	} else if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) checkRole(ctx context.Context, id uuid.UUID) error {
	_, err := s.roleRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError("role not found")
	}
	return err
}

// checkRegions deduplicates ids and rejects any that do not exist.
func (s *userService) checkRegions(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	unique := dedupe(ids)
	found, err := s.regionRepo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(found) != len(unique) {
		return nil, ValidationError("one or more regions do not exist")
	}
	return unique, nil
}
