package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// StaffService manages user and staff accounts on behalf of administrators.
type StaffService struct {
	users      repository.UserRepository
	staff      repository.StaffRepository
	bcryptCost int
}

// AccountDependencies encapsulates repositories required for account management.
type AccountDependencies struct {
	UserRepo  repository.UserRepository
	StaffRepo repository.StaffRepository
}

// CreateUserInput describes a new complaint-raising employee. An empty password
// defaults to the staff number.
type CreateUserInput struct {
	StaffNo    string
	Name       string
	Department string
	Password   string
}

// CreateStaffInput describes a new subadmin or admin account.
type CreateStaffInput struct {
	StaffNo    string
	Name       string
	Department string
	Password   string
	Role       domain.StaffRole
}

// StaffListFilters define listing parameters.
type StaffListFilters struct {
	Role   *domain.StaffRole
	Active *bool
	Limit  int
	Offset int
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.Config, deps AccountDependencies) *StaffService {
	return &StaffService{
		users:      deps.UserRepo,
		staff:      deps.StaffRepo,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

func requireAdmin(actor *domain.StaffMember) error {
	if actor == nil || actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// CreateUser adds an employee account.
func (s *StaffService) CreateUser(ctx context.Context, actor *domain.StaffMember, input CreateUserInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	staffNo := domain.NormalizeStaffNo(input.StaffNo)
	if staffNo == "" {
		return nil, apperrors.NewValidationError("staff number is required", nil)
	}
	password := input.Password
	if password == "" {
		password = staffNo
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		StaffNo:      staffNo,
		Name:         strings.TrimSpace(input.Name),
		Department:   strings.TrimSpace(input.Department),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("staff number already registered", map[string]any{"staff_no": staffNo})
		}
		return nil, apperrors.Storage(err)
	}
	return user, nil
}

// CreateStaffMember adds a subadmin or admin account.
func (s *StaffService) CreateStaffMember(ctx context.Context, actor *domain.StaffMember, input CreateStaffInput) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	staffNo := domain.NormalizeStaffNo(input.StaffNo)
	if staffNo == "" {
		return nil, apperrors.NewValidationError("staff number is required", nil)
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	staff := &domain.StaffMember{
		StaffNo:      staffNo,
		Name:         strings.TrimSpace(input.Name),
		Department:   strings.TrimSpace(input.Department),
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("staff number already registered", map[string]any{"staff_no": staffNo})
		}
		return nil, apperrors.Storage(err)
	}
	return staff, nil
}

// ResetStaffPassword sets a new password for the staff member with the given staff number.
func (s *StaffService) ResetStaffPassword(ctx context.Context, actor *domain.StaffMember, staffNo, newPassword string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}
	staffNo = domain.NormalizeStaffNo(staffNo)
	staff, err := s.staff.GetByStaffNo(ctx, staffNo)
	if err != nil {
		return notFoundOr(err, "staff", map[string]any{"staff_no": staffNo})
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return apperrors.Storage(s.staff.UpdatePassword(ctx, staff.ID, hash))
}

// ListStaffMembers lists staff with filters.
func (s *StaffService) ListStaffMembers(ctx context.Context, actor *domain.StaffMember, filters StaffListFilters) ([]domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	staff, err := s.staff.List(ctx, repository.StaffFilter{
		Role:   filters.Role,
		Active: filters.Active,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return staff, nil
}
