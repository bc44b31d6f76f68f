package admins

import (
	"OCLAdmin/internal/auth"
	"OCLAdmin/pkg/binding"
	"OCLAdmin/pkg/pagination"
	"OCLAdmin/pkg/response"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	service *AdminService
}

func NewAdminHandler(service *AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) List(c echo.Context) error {
	page := pagination.Parse(c.QueryParam("page"), c.QueryParam("limit"))
	views, total, err := h.service.List(c.Request().Context(), c.QueryParam("search"), page)
	if err != nil {
		return err
	}
	return response.Paged(c, views, page.Meta(total), nil)
}

func (h *AdminHandler) Create(c echo.Context) error {
	by, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	var cmd PromoteCommand
	if err := binding.JSON(c, &cmd); err != nil {
		return err
	}
	view, err := h.service.Promote(c.Request().Context(), by, cmd)
	if err != nil {
		return err
	}
	return response.Created(c, "Admin role assigned successfully.", view)
}

func (h *AdminHandler) UpdatePermissions(c echo.Context) error {
	by, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	var cmd UpdatePermissionsCommand
	if err := binding.JSON(c, &cmd); err != nil {
		return err
	}
	view, err := h.service.UpdatePermissions(c.Request().Context(), by, c.Param("id"), cmd)
	if err != nil {
		return err
	}
	return response.Message(c, "Admin permissions updated successfully.", view)
}

func (h *AdminHandler) Delete(c echo.Context) error {
	by, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	removed, err := h.service.Remove(c.Request().Context(), by, c.Param("id"))
	if err != nil {
		return err
	}
	return response.Message(c, "Admin role removed successfully.", removed)
}
