package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// DepartmentsHandler manages department endpoints. Mutations are
// admin-only; routing is enforced in RegisterRoutes.
type DepartmentsHandler struct {
	departments repository.DepartmentRepository
	users       repository.UserRepository
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departments repository.DepartmentRepository, users repository.UserRepository) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departments, users: users}
}

// ListDepartments GET /departments.
func (h *DepartmentsHandler) ListDepartments(c *fiber.Ctx) error {
	depts, err := h.departments.List(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.DepartmentSummary, 0, len(depts))
	for i := range depts {
		items = append(items, dto.FromDepartment(&depts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetDepartment GET /departments/:id.
func (h *DepartmentsHandler) GetDepartment(c *fiber.Ctx) error {
	dept, err := h.departments.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromDepartment(dept)})
}

// ListMembers GET /departments/:id/members.
func (h *DepartmentsHandler) ListMembers(c *fiber.Ctx) error {
	deptID := c.Params("id")
	if _, err := h.departments.GetByID(c.UserContext(), deptID); err != nil {
		return apperrors.MapError(err)
	}
	users, err := h.users.ListByDepartment(c.UserContext(), deptID)
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.UserSummary, 0, len(users))
	for i := range users {
		items = append(items, dto.FromUser(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateDepartment POST /departments.
func (h *DepartmentsHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}
	dept := &domain.Department{
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
	}
	if err := h.departments.Create(c.UserContext(), dept); err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromDepartment(dept)})
}

// UpdateDepartment PUT /departments/:id.
func (h *DepartmentsHandler) UpdateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.departments.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	if strings.TrimSpace(req.Name) != "" {
		dept.Name = req.Name
	}
	dept.Description = req.Description
	dept.ManagerID = req.ManagerID
	if err := h.departments.Update(c.UserContext(), dept); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromDepartment(dept)})
}
