package selection

import (
	"bytes"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/saifulla-23/lab-test-wizard/internal/platform/auth"
	"github.com/saifulla-23/lab-test-wizard/internal/platform/errs"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleFrontDesk))

	staff.GET("/patients/:id/worksheet", h.GetWorkingSet)
	staff.POST("/patients/:id/worksheet/tests", h.AddTest)
	staff.DELETE("/patients/:id/worksheet/tests/:testId", h.RemoveTest)
	staff.DELETE("/patients/:id/worksheet", h.ClearWorkingSet)
	staff.POST("/patients/:id/worksheet/save", h.Save)
	staff.GET("/patients/:id/worksheet/export", h.Export)

	staff.GET("/patients/:id/history", h.ListHistory)
	staff.PATCH("/selections/:id", h.UpdateSelection)
	staff.DELETE("/selections/:id", h.DeleteSelection)
}

func patientID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func (h *Handler) GetWorkingSet(c echo.Context) error {
	pid, err := patientID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return c.JSON(http.StatusOK, h.svc.WorkingSet(pid))
}

type addTestRequest struct {
	TestID string `json:"test_id"`
}

func (h *Handler) AddTest(c echo.Context) error {
	pid, err := patientID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var req addTestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	testID, err := uuid.Parse(req.TestID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid test_id")
	}
	tests, err := h.svc.AddTest(c.Request().Context(), pid, testID)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, tests)
}

func (h *Handler) RemoveTest(c echo.Context) error {
	pid, err := patientID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return c.JSON(http.StatusOK, h.svc.RemoveTest(pid, c.Param("testId")))
}

func (h *Handler) ClearWorkingSet(c echo.Context) error {
	pid, err := patientID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	h.svc.Clear(pid)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Save(c echo.Context) error {
	pid, err := patientID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	sel, err := h.svc.Save(c.Request().Context(), pid)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, sel)
}

func (h *Handler) Export(c echo.Context) error {
	pid, err := patientID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	var buf bytes.Buffer
	if _, err := h.svc.Export(pid, &buf); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+ExportFilename(time.Now())+`"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, buf.Bytes())
}

func (h *Handler) ListHistory(c echo.Context) error {
	pid, err := patientID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	items, err := h.svc.ListHistory(c.Request().Context(), pid)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	if items == nil {
		items = []*Selection{}
	}
	return c.JSON(http.StatusOK, items)
}

type updateSelectionRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *Handler) UpdateSelection(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateSelectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sel, err := h.svc.UpdateSelection(c.Request().Context(), id, req.Status, req.Notes)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, sel)
}

func (h *Handler) DeleteSelection(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteSelection(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
