package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// ProfileHandler serves the caller's own account details.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get GET /profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	subject, err := profileSubject(c)
	if err != nil {
		return err
	}
	profile, err := h.profiles.Get(c.UserContext(), subject)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// Update PUT /profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	subject, err := profileSubject(c)
	if err != nil {
		return err
	}
	var req dto.ProfileUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	profile, err := h.profiles.Update(c.UserContext(), subject, service.ProfileInput{Name: req.Name, Department: req.Department})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

func profileSubject(c *fiber.Ctx) (service.AuthSubject, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.AuthSubject{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.AuthSubject{Type: principal.SubjectType, ID: principal.ID()}, nil
}

func profileResponse(p *service.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		SubjectType: p.SubjectType,
		ID:          p.ID,
		StaffNo:     p.StaffNo,
		Name:        p.Name,
		Department:  p.Department,
		Role:        p.Role,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
