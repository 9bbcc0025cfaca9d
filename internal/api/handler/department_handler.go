package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/opendms/dms-platform/internal/core/authz"
	"github.com/opendms/dms-platform/internal/core/domain"
	"github.com/opendms/dms-platform/internal/core/ports"
)

type DepartmentHandler struct {
	deptService ports.DepartmentService
}

func NewDepartmentHandler(deptService ports.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptService: deptService}
}

type createDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

type assignmentRequest struct {
	UserID       string `json:"user_id" validate:"required"`
	DepartmentID int64  `json:"department_id" validate:"required"`
}

// Create adds a department (SUPERADMIN only).
//
// @Summary      Create a department
// @Tags         departments
// @Security     BearerAuth
// @Param        body  body  createDepartmentRequest  true  "Department name"
// @Success      201  {object}  domain.Department
// @Router       /departments [post]
func (h *DepartmentHandler) Create(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req createDepartmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	dept, err := h.deptService.Create(c.Request().Context(), principal, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dept)
}

// Delete removes a department and every membership edge pointing at
// it (SUPERADMIN only).
//
// @Summary      Delete a department
// @Tags         departments
// @Security     BearerAuth
// @Param        id  path  int  true  "Department ID"
// @Success      204
// @Router       /departments/{id} [delete]
func (h *DepartmentHandler) Delete(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	deptID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid department id")
	}

	if err := h.deptService.Delete(c.Request().Context(), principal, deptID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns all departments.
//
// @Summary      List departments
// @Tags         departments
// @Security     BearerAuth
// @Success      200  {array}  domain.Department
// @Router       /departments [get]
func (h *DepartmentHandler) List(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	depts, err := h.deptService.List(c.Request().Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, depts)
}

// Assign adds a user to a department.
//
// @Summary      Assign a department to a user
// @Tags         departments
// @Security     BearerAuth
// @Param        body  body  assignmentRequest  true  "Assignment"
// @Success      200  {object}  domain.User
// @Router       /departments/assign [post]
func (h *DepartmentHandler) Assign(c echo.Context) error {
	return h.assignment(c, h.deptService.Assign)
}

// Unassign removes a user from a department.
//
// @Summary      Unassign a department from a user
// @Tags         departments
// @Security     BearerAuth
// @Param        body  body  assignmentRequest  true  "Assignment"
// @Success      200  {object}  domain.User
// @Router       /departments/unassign [post]
func (h *DepartmentHandler) Unassign(c echo.Context) error {
	return h.assignment(c, h.deptService.Unassign)
}

func (h *DepartmentHandler) assignment(c echo.Context, op func(ctx context.Context, actor authz.Principal, userID string, deptID int64) (*domain.User, error)) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var req assignmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := op(c.Request().Context(), principal, req.UserID, req.DepartmentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
