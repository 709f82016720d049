package importer

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/auth"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
)

type Handler struct {
	imp *Importer
}

func NewHandler(imp *Importer) *Handler {
	return &Handler{imp: imp}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/import", h.Import)
	admin.GET("/import/template", h.Template)
}

// Import accepts the CSV either as a multipart "file" field or as the raw
// request body.
func (h *Handler) Import(c echo.Context) error {
	body := c.Request().Body
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot open uploaded file")
		}
		defer f.Close()
		body = f
	}

	report, err := h.imp.Import(c.Request().Context(), body)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) Template(c echo.Context) error {
	var buf bytes.Buffer
	if err := Template(&buf); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="lab-tests-template.csv"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
