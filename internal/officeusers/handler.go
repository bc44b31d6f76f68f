package officeusers

import (
	"OCLAdmin/internal/auth"
	"OCLAdmin/pkg/binding"
	"OCLAdmin/pkg/pagination"
	"OCLAdmin/pkg/response"

	"github.com/labstack/echo/v4"
)

type OfficeUserHandler struct {
	service *OfficeUserService
}

func NewOfficeUserHandler(service *OfficeUserService) *OfficeUserHandler {
	return &OfficeUserHandler{service: service}
}

func (h *OfficeUserHandler) List(c echo.Context) error {
	page := pagination.Parse(c.QueryParam("page"), c.QueryParam("limit"))
	users, total, err := h.service.List(c.Request().Context(), c.QueryParam("search"), page)
	if err != nil {
		return err
	}
	return response.Paged(c, users, page.Meta(total), nil)
}

func (h *OfficeUserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, user)
}

func (h *OfficeUserHandler) Update(c echo.Context) error {
	by, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	var cmd UpdateProfileCommand
	if err := binding.JSON(c, &cmd); err != nil {
		return err
	}
	user, err := h.service.UpdateProfile(c.Request().Context(), by, c.Param("id"), cmd)
	if err != nil {
		return err
	}
	return response.Message(c, "User updated successfully.", user)
}

func (h *OfficeUserHandler) UpdatePermissions(c echo.Context) error {
	by, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	var cmd UpdatePermissionsCommand
	if err := binding.JSON(c, &cmd); err != nil {
		return err
	}
	user, err := h.service.UpdatePermissions(c.Request().Context(), by, c.Param("id"), cmd)
	if err != nil {
		return err
	}
	return response.Message(c, "User permissions updated successfully.", user)
}

func (h *OfficeUserHandler) UpdateStatus(c echo.Context) error {
	by, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	var cmd UpdateStatusCommand
	if err := binding.JSON(c, &cmd); err != nil {
		return err
	}
	user, err := h.service.SetStatus(c.Request().Context(), by, c.Param("id"), cmd)
	if err != nil {
		return err
	}
	message := "User deactivated successfully."
	if user.IsActive {
		message = "User activated successfully."
	}
	return response.Message(c, message, user)
}

func (h *OfficeUserHandler) Delete(c echo.Context) error {
	by, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	deleted, err := h.service.Delete(c.Request().Context(), by, c.Param("id"))
	if err != nil {
		return err
	}
	return response.Message(c, "User deleted successfully.", deleted)
}
