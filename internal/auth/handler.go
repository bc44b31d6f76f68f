package auth

import (
	"OCLAdmin/pkg/binding"
	"OCLAdmin/pkg/response"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	service *AuthService
}

func NewAuthHandler(service *AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var cred Credential
	if err := binding.JSON(c, &cred); err != nil {
		return err
	}
	result, err := h.service.LoginAdmin(c.Request().Context(), cred)
	if err != nil {
		return err
	}
	return response.Message(c, "Login successful", result)
}

func (h *AuthHandler) OfficeLogin(c echo.Context) error {
	var cred Credential
	if err := binding.JSON(c, &cred); err != nil {
		return err
	}
	result, err := h.service.LoginOffice(c.Request().Context(), cred)
	if err != nil {
		return err
	}
	return response.Message(c, "Login successful", result)
}

// Profile returns the admin governing the session, without the password.
func (h *AuthHandler) Profile(c echo.Context) error {
	admin, err := ActorFrom(c)
	if err != nil {
		return err
	}
	return response.OK(c, admin)
}
