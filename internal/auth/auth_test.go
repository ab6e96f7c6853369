package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository/memstore"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	role := domain.StaffRoleSubadmin

	token, exp, err := tm.GenerateToken(42, domain.SubjectTypeStaff, &role)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.SubjectID)
	assert.Equal(t, domain.SubjectTypeStaff, claims.Subject)
	require.NotNil(t, claims.Role)
	assert.Equal(t, role, *claims.Role)
}

func TestParseTokenRejectsForeignSecretAndExpiry(t *testing.T) {
	issued, _, err := NewTokenManager("other", time.Minute).GenerateToken(1, domain.SubjectTypeUser, nil)
	require.NoError(t, err)
	_, err = NewTokenManager("secret", time.Minute).ParseToken(issued)
	assert.Error(t, err)

	tm := NewTokenManager("secret", time.Minute)
	token, _, err := tm.GenerateToken(1, domain.SubjectTypeUser, nil)
	require.NoError(t, err)
	tm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrInvalidCredentials)
}

func newAuthApp(t *testing.T) (*fiber.App, *TokenManager, *domain.User, *domain.StaffMember) {
	t.Helper()
	store := memstore.New()
	repos := store.Repos()
	ctx := context.Background()

	user := &domain.User{StaffNo: "U100", Name: "Dana"}
	require.NoError(t, repos.Users.Create(ctx, user))
	staff := &domain.StaffMember{StaffNo: "S200", Name: "Riley", Role: domain.StaffRoleSubadmin, Active: true}
	require.NoError(t, repos.Staff.Create(ctx, staff))

	tm := NewTokenManager("secret", time.Minute)
	mw := NewAuthMiddleware(tm, repos.Users, repos.Staff)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/user", mw.Handle, RequireUser(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/admin", mw.Handle, RequireStaffRole(domain.StaffRoleAdmin), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/staff", mw.Handle, RequireStaffRole(), func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		if p.ID() != staff.ID {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, tm, user, staff
}

func TestMiddlewareEnforcesRoles(t *testing.T) {
	app, tm, user, staff := newAuthApp(t)
	userToken, _, err := tm.GenerateToken(user.ID, domain.SubjectTypeUser, nil)
	require.NoError(t, err)
	role := staff.Role
	staffToken, _, err := tm.GenerateToken(staff.ID, domain.SubjectTypeStaff, &role)
	require.NoError(t, err)
	ghostToken, _, err := tm.GenerateToken(999, domain.SubjectTypeUser, nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "missing header", path: "/user", want: fiber.StatusUnauthorized},
		{name: "wrong scheme", path: "/user", header: "Basic abc", want: fiber.StatusUnauthorized},
		{name: "user on user route", path: "/user", header: "Bearer " + userToken, want: fiber.StatusNoContent},
		{name: "staff on user route", path: "/user", header: "Bearer " + staffToken, want: fiber.StatusForbidden},
		{name: "subadmin on admin route", path: "/admin", header: "Bearer " + staffToken, want: fiber.StatusForbidden},
		{name: "any staff route", path: "/staff", header: "Bearer " + staffToken, want: fiber.StatusNoContent},
		{name: "unknown user", path: "/user", header: "Bearer " + ghostToken, want: fiber.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
