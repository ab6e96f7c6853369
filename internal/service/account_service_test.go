package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/repository/memstore"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func accountConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            bcrypt.MinCost,
	}}
}

type accounts struct {
	auth     *AuthService
	staff    *StaffService
	profiles *ProfileService
	repos    repository.Repositories
	admin    *domain.StaffMember
}

func newAccounts(t *testing.T) *accounts {
	t.Helper()
	store := memstore.New()
	repos := store.Repos()
	cfg := accountConfig()
	a := &accounts{
		auth:     NewAuthService(cfg, AuthDependencies{UserRepo: repos.Users, StaffRepo: repos.Staff}),
		staff:    NewStaffService(cfg, AccountDependencies{UserRepo: repos.Users, StaffRepo: repos.Staff}),
		profiles: NewProfileService(ProfileDependencies{UserRepo: repos.Users, StaffRepo: repos.Staff}),
		repos:    repos,
		admin:    &domain.StaffMember{ID: 99, Name: "Root", Role: domain.StaffRoleAdmin, Active: true},
	}
	return a
}

func TestLoginStaffAndUser(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()

	_, err := a.staff.CreateStaffMember(ctx, a.admin, CreateStaffInput{
		StaffNo: "SA-01", Name: "Alice", Password: "secret1", Role: domain.StaffRoleSubadmin,
	})
	require.NoError(t, err)
	_, err = a.staff.CreateUser(ctx, a.admin, CreateUserInput{StaffNo: "EMP 100", Name: "Dana"})
	require.NoError(t, err)

	staffLogin, err := a.auth.Login(ctx, "sa01", "secret1")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized), "staff numbers are case sensitive")
	assert.Nil(t, staffLogin)

	staffLogin, err = a.auth.Login(ctx, "SA 01", "secret1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeStaff, staffLogin.SubjectType)
	require.NotNil(t, staffLogin.Staff)
	claims, err := a.auth.TokenManager().ParseToken(staffLogin.Token)
	require.NoError(t, err)
	assert.Equal(t, staffLogin.Staff.ID, claims.SubjectID)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.StaffRoleSubadmin, *claims.Role)

	userLogin, err := a.auth.Login(ctx, "EMP100", "EMP100")
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeUser, userLogin.SubjectType)
	require.NotNil(t, userLogin.User)
	assert.Equal(t, "Dana", userLogin.User.Name)

	_, err = a.auth.Login(ctx, "EMP100", "wrong")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
	_, err = a.auth.Login(ctx, "nobody", "whatever")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
	_, err = a.auth.Login(ctx, "", "whatever")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestChangePassword(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()
	user, err := a.staff.CreateUser(ctx, a.admin, CreateUserInput{StaffNo: "EMP1", Password: "initial"})
	require.NoError(t, err)
	subject := AuthSubject{Type: domain.SubjectTypeUser, ID: user.ID}

	err = a.auth.ChangePassword(ctx, subject, "initial", "123")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	err = a.auth.ChangePassword(ctx, subject, "nope", "replacement")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))

	require.NoError(t, a.auth.ChangePassword(ctx, subject, "initial", "replacement"))
	_, err = a.auth.Login(ctx, "EMP1", "replacement")
	assert.NoError(t, err)
	_, err = a.auth.Login(ctx, "EMP1", "initial")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
}

func TestStaffAdministration(t *testing.T) {
	a := newAccounts(t)
	ctx := context.Background()
	subadmin := &domain.StaffMember{ID: 5, Role: domain.StaffRoleSubadmin}

	_, err := a.staff.CreateUser(ctx, subadmin, CreateUserInput{StaffNo: "EMP2"})
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	_, err = a.staff.CreateStaffMember(ctx, a.admin, CreateStaffInput{StaffNo: "S1", Password: "secret1", Role: "OWNER"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	_, err = a.staff.CreateStaffMember(ctx, a.admin, CreateStaffInput{StaffNo: "S1", Name: "Bob", Password: "secret1", Role: domain.StaffRoleSubadmin})
	require.NoError(t, err)
	_, err = a.staff.CreateStaffMember(ctx, a.admin, CreateStaffInput{StaffNo: "S-1", Password: "secret1", Role: domain.StaffRoleAdmin})
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))

	require.NoError(t, a.staff.ResetStaffPassword(ctx, a.admin, "S1", "fresh-pass"))
	_, err = a.auth.Login(ctx, "S1", "fresh-pass")
	assert.NoError(t, err)
	err = a.staff.ResetStaffPassword(ctx, a.admin, "S9", "fresh-pass")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	role := domain.StaffRoleSubadmin
	listed, err := a.staff.ListStaffMembers(ctx, a.admin, StaffListFilters{Role: &role})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Bob", listed[0].Name)
}
