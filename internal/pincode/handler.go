package pincode

import (
	"bytes"
	"fmt"
	"net/http"

	"OCLAdmin/internal/apperr"
	"OCLAdmin/internal/auth"
	"OCLAdmin/pkg/binding"
	"OCLAdmin/pkg/pagination"
	"OCLAdmin/pkg/response"

	"github.com/labstack/echo/v4"
)

// maxImportSize caps an uploaded spreadsheet.
const maxImportSize = 10 << 20

type PincodeHandler struct {
	service *PincodeService
}

func NewPincodeHandler(service *PincodeService) *PincodeHandler {
	return &PincodeHandler{service: service}
}

func filterFrom(c echo.Context) Filter {
	return Filter{
		Search: c.QueryParam("search"),
		State:  c.QueryParam("state"),
		City:   c.QueryParam("city"),
	}
}

func (h *PincodeHandler) List(c echo.Context) error {
	f := filterFrom(c)
	page := pagination.Parse(c.QueryParam("page"), c.QueryParam("limit"))
	items, total, err := h.service.List(c.Request().Context(), f, page)
	if err != nil {
		return err
	}
	return response.Paged(c, items, page.Meta(total), &f.Search)
}

func (h *PincodeHandler) Create(c echo.Context) error {
	actor, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	var cmd CreateCommand
	if err := binding.JSON(c, &cmd); err != nil {
		return err
	}
	p, err := h.service.Create(c.Request().Context(), actor, cmd)
	if err != nil {
		return err
	}
	return response.Created(c, "Pincode added successfully.", p)
}

func (h *PincodeHandler) Update(c echo.Context) error {
	actor, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	var cmd UpdateCommand
	if err := binding.JSON(c, &cmd); err != nil {
		return err
	}
	p, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), cmd)
	if err != nil {
		return err
	}
	return response.Message(c, "Pincode updated successfully.", p)
}

func (h *PincodeHandler) Delete(c echo.Context) error {
	actor, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	deleted, err := h.service.Delete(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return response.Message(c, "Pincode deleted successfully.", deleted)
}

// Export streams matching pincodes as a file download.
func (h *PincodeHandler) Export(c echo.Context) error {
	format := Format(c.QueryParam("format"))
	if format == "" {
		format = FormatCSV
	}
	var buf bytes.Buffer
	if err := h.service.Export(c.Request().Context(), filterFrom(c), format, &buf); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="pincodes_export.%s"`, format))
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Import accepts a multipart upload in the "file" field.
func (h *PincodeHandler) Import(c echo.Context) error {
	actor, err := auth.ActorFrom(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("An Excel file is required.", "file is required")
	}
	if fh.Size > maxImportSize {
		return apperr.Validation("Excel file is too large.", "file must be at most 10MB")
	}
	file, err := fh.Open()
	if err != nil {
		return apperr.Unexpected(err, "Failed to read upload.")
	}
	defer file.Close()

	result, err := h.service.Import(c.Request().Context(), actor, file)
	if err != nil {
		return err
	}
	return response.Message(c, "Pincodes imported successfully.", result)
}
