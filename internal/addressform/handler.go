package addressform

import (
	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/pkg/binding"
	"OCLAdmin/pkg/pagination"
	"OCLAdmin/pkg/response"

	"github.com/labstack/echo/v4"
)

type FormHandler struct {
	service *FormService
}

func NewFormHandler(service *FormService) *FormHandler {
	return &FormHandler{service: service}
}

func filterFrom(c echo.Context) (Filter, error) {
	f := Filter{Search: c.QueryParam("search"), State: c.QueryParam("state")}
	switch c.QueryParam("completed") {
	case "":
	case "true":
		yes := true
		f.Completed = &yes
	case "false":
		no := false
		f.Completed = &no
	default:
		return f, apperr.Validation("Invalid completed filter.", "completed must be true or false")
	}
	return f, nil
}

func (h *FormHandler) List(c echo.Context) error {
	f, err := filterFrom(c)
	if err != nil {
		return err
	}
	page := pagination.Parse(c.QueryParam("page"), c.QueryParam("limit"))
	forms, total, err := h.service.List(c.Request().Context(), f, page)
	if err != nil {
		return err
	}
	return response.Paged(c, forms, page.Meta(total), &f.Search)
}

func (h *FormHandler) Get(c echo.Context) error {
	form, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, form)
}

func (h *FormHandler) Update(c echo.Context) error {
	actor, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	var cmd UpdateCommand
	if err := binding.JSON(c, &cmd); err != nil {
		return err
	}
	form, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), cmd)
	if err != nil {
		return err
	}
	return response.Message(c, "Address form updated successfully.", form)
}

func (h *FormHandler) Delete(c echo.Context) error {
	actor, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	deleted, err := h.service.Delete(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return response.Message(c, "Address form deleted successfully.", deleted)
}
