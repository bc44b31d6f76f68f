package notification

import (
	"OCLAdmin/internal/apperr"
	"OCLAdmin/pkg/pagination"
	"OCLAdmin/pkg/response"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	service *NotificationService
}

func NewNotificationHandler(service *NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List pages through queued and delivered notifications, optionally by status.
func (h *NotificationHandler) List(c echo.Context) error {
	status := Status(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return apperr.Validation("Invalid status filter.", "status must be one of pending, sent, failed")
	}
	page := pagination.Parse(c.QueryParam("page"), c.QueryParam("limit"))
	items, total, err := h.service.List(c.Request().Context(), status, page)
	if err != nil {
		return apperr.Unexpected(err, "Failed to get notifications.")
	}
	return response.Paged(c, items, page.Meta(total), nil)
}
