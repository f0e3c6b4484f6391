package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"mqk-dashboard/internal/authz"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"
	"mqk-dashboard/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionRevoked     = errors.New("session is no longer valid, please log in again")
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*authz.Session, error)
	Me(ctx context.Context, session *authz.Session) (*SessionView, error)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      model.UserResponse `json:"user"`
	Session   *SessionView       `json:"session"`
}

// SessionView is what the UI uses to decide which actions to render.
type SessionView struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	RegionIDs   []string  `json:"region_ids"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log.Named("auth"),
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	// 1. Find user by username
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		s.log.Error("login lookup failed", zap.Error(err))
		return nil, DatabaseError(err)
	}

	// 2. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 3. Resolve effective permissions and region scope once, at issuance
	claims := jwt.Claims{
		UserID:       user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Roles:        user.RoleNames(),
		Permissions:  user.PermissionNames(),
		RegionIDs:    user.RegionIDs(),
		TokenVersion: user.TokenVersion,
	}

	// 4. Generate JWT token
	token, expiresAt, err := s.tokens.Generate(claims)
	if err != nil {
		s.log.Error("sign token failed", zap.Error(err))
		return nil, DatabaseError(err)
	}

	// 5. Record login time; a failure here does not block the session
	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("update last login failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	user.LastLoginAt = &now

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToResponse(),
		Session:   viewOf(sessionFromClaims(&claims)),
	}, nil
}

// ValidateToken verifies the signature and expiry, then compares the token
// version with the stored one so a password change revokes older sessions.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*authz.Session, error) {
	// 1. Validate JWT token
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	// 2. Check against DB for revoked sessions (TokenVersion)
	version, err := s.userRepo.GetTokenVersion(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionRevoked
	} else if err != nil {
		return nil, DatabaseError(err)
	}
	if version != claims.TokenVersion {
		return nil, ErrSessionRevoked
	}

	return sessionFromClaims(claims), nil
}

func (s *authService) Me(ctx context.Context, session *authz.Session) (*SessionView, error) {
	if session == nil {
		return nil, jwt.ErrMissingToken
	}
	return viewOf(session), nil
}

func sessionFromClaims(c *jwt.Claims) *authz.Session {
	return authz.NewSession(c.UserID, c.Username, c.Name, c.Roles, c.Permissions, c.RegionIDs)
}

func viewOf(s *authz.Session) *SessionView {
	return &SessionView{
		UserID:      s.UserID,
		Username:    s.Username,
		Name:        s.Name,
		Roles:       s.Roles,
		Permissions: s.Permissions,
		RegionIDs:   s.RegionIDs,
	}
}
