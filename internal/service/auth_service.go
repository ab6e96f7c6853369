package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const minPasswordLength = 6

// AuthSubject identifies the caller when changing password.
type AuthSubject struct {
	Type domain.SubjectType
	ID   int64
}

// LoginResult carries the authenticated account and its access token.
type LoginResult struct {
	SubjectType domain.SubjectType
	User        *domain.User
	Staff       *domain.StaffMember
	Token       string
	ExpiresAt   time.Time
}

// AuthService coordinates login and password flows.
type AuthService struct {
	users      repository.UserRepository
	staff      repository.StaffRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo  repository.UserRepository
	StaffRepo repository.StaffRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		staff:      deps.StaffRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates a staff number against staff accounts first, then users.
func (s *AuthService) Login(ctx context.Context, staffNo, password string) (*LoginResult, error) {
	staffNo = domain.NormalizeStaffNo(staffNo)
	if staffNo == "" || password == "" {
		return nil, apperrors.NewValidationError("staff number and password are required", nil)
	}

	staff, err := s.staff.GetByStaffNo(ctx, staffNo)
	switch {
	case err == nil:
		if !staff.Active {
			return nil, apperrors.NewUnauthorized("account inactive")
		}
		if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		token, exp, err := s.tokenMgr.GenerateToken(staff.ID, domain.SubjectTypeStaff, &staff.Role)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		return &LoginResult{SubjectType: domain.SubjectTypeStaff, Staff: staff, Token: token, ExpiresAt: exp}, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, apperrors.Storage(err)
	}

	user, err := s.users.GetByStaffNo(ctx, staffNo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, domain.SubjectTypeUser, nil)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{SubjectType: domain.SubjectTypeUser, User: user, Token: token, ExpiresAt: exp}, nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, subject AuthSubject, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	switch subject.Type {
	case domain.SubjectTypeUser:
		user, err := s.users.GetByID(ctx, subject.ID)
		if err != nil {
			return notFoundOr(err, "user", map[string]any{"user_id": subject.ID})
		}
		if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.Storage(s.users.UpdatePassword(ctx, user.ID, hash))
	case domain.SubjectTypeStaff:
		staff, err := s.staff.GetByID(ctx, subject.ID)
		if err != nil {
			return notFoundOr(err, "staff", map[string]any{"staff_id": subject.ID})
		}
		if err := auth.ComparePassword(staff.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		return apperrors.Storage(s.staff.UpdatePassword(ctx, staff.ID, hash))
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
