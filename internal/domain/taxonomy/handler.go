package taxonomy

import (
	"net/http"

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
	staff.GET("/categories", h.ListCategories)
	staff.GET("/categories/:id", h.GetCategory)
	staff.GET("/categories/:id/tests", h.ListTestsByCategory)
	staff.GET("/tests", h.ListTests)
	staff.GET("/tests/:id", h.GetTest)

	admin := api.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/categories", h.CreateCategory)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)
	admin.POST("/tests", h.CreateTest)
	admin.PUT("/tests/:id", h.UpdateTest)
	admin.DELETE("/tests/:id", h.DeleteTest)
}

type categoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type testRequest struct {
	Name        string  `json:"name"`
	CategoryID  string  `json:"category_id"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cat, err := h.svc.CreateCategory(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cat, err := h.svc.UpdateCategory(c.Request().Context(), id, req.Name, req.Description)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteCategory(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cat, err := h.svc.GetCategory(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), "category not found")
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *Handler) ListCategories(c echo.Context) error {
	items, err := h.svc.ListCategories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	if items == nil {
		items = []*Category{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateTest(c echo.Context) error {
	var req testRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}
	t, err := h.svc.CreateTest(c.Request().Context(), req.Name, categoryID, req.Code, req.Description)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req testRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}
	t := &Test{ID: id, Name: req.Name, CategoryID: categoryID, Code: req.Code, Description: req.Description}
	updated, err := h.svc.UpdateTest(c.Request().Context(), t)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteTest(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.GetTest(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), "test not found")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListTests(c echo.Context) error {
	items, err := h.svc.ListTests(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	if items == nil {
		items = []*Test{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListTestsByCategory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListTestsByCategory(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errs.HTTPStatus(err), err.Error())
	}
	if items == nil {
		items = []*Test{}
	}
	return c.JSON(http.StatusOK, items)
}
