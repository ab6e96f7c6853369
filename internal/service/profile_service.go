package service

import (
	"context"
	"time"

	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Profile is the self-service view of an account.
type Profile struct {
	SubjectType domain.SubjectType
	ID          int64
	StaffNo     string
	Name        string
	Department  string
	// Role is empty for users.
	Role      domain.StaffRole
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileInput carries the editable profile fields. Name is required.
type ProfileInput struct {
	Name       string
	Department string
}

// ProfileService lets any authenticated account read and edit its own profile.
type ProfileService struct {
	users     repository.UserRepository
	staff     repository.StaffRepository
	sanitizer *classifier.Sanitizer
}

// ProfileDependencies encapsulates the profile service collaborators.
type ProfileDependencies struct {
	UserRepo  repository.UserRepository
	StaffRepo repository.StaffRepository
	Sanitizer *classifier.Sanitizer
}

// NewProfileService constructs the service.
func NewProfileService(deps ProfileDependencies) *ProfileService {
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = classifier.NewSanitizer()
	}
	return &ProfileService{users: deps.UserRepo, staff: deps.StaffRepo, sanitizer: sanitizer}
}

// Get loads the profile of subject.
func (s *ProfileService) Get(ctx context.Context, subject AuthSubject) (*Profile, error) {
	switch subject.Type {
	case domain.SubjectTypeUser:
		user, err := s.users.GetByID(ctx, subject.ID)
		if err != nil {
			return nil, notFoundOr(err, "profile", map[string]any{"id": subject.ID})
		}
		return userProfile(user), nil
	case domain.SubjectTypeStaff:
		staff, err := s.staff.GetByID(ctx, subject.ID)
		if err != nil {
			return nil, notFoundOr(err, "profile", map[string]any{"id": subject.ID})
		}
		return staffProfile(staff), nil
	}
	return nil, apperrors.NewUnauthorized("unknown subject type")
}

// Update replaces the name and department of subject and returns the stored profile.
func (s *ProfileService) Update(ctx context.Context, subject AuthSubject, input ProfileInput) (*Profile, error) {
	name := s.sanitizer.Clean(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	department := s.sanitizer.Clean(input.Department)

	var err error
	switch subject.Type {
	case domain.SubjectTypeUser:
		err = s.users.UpdateProfile(ctx, subject.ID, name, department)
	case domain.SubjectTypeStaff:
		err = s.staff.UpdateProfile(ctx, subject.ID, name, department)
	default:
		return nil, apperrors.NewUnauthorized("unknown subject type")
	}
	if err != nil {
		return nil, notFoundOr(err, "profile", map[string]any{"id": subject.ID})
	}
	return s.Get(ctx, subject)
}

func userProfile(u *domain.User) *Profile {
	return &Profile{
		SubjectType: domain.SubjectTypeUser,
		ID:          u.ID,
		StaffNo:     u.StaffNo,
		Name:        u.Name,
		Department:  u.Department,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func staffProfile(s *domain.StaffMember) *Profile {
	return &Profile{
		SubjectType: domain.SubjectTypeStaff,
		ID:          s.ID,
		StaffNo:     s.StaffNo,
		Name:        s.Name,
		Department:  s.Department,
		Role:        s.Role,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
