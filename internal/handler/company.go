package handler

import (
	"compliance-registry/internal/dto"
	"compliance-registry/internal/middleware"
	"compliance-registry/internal/service"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
	}
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

func (h *CompanyHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	company, err := h.companyService.Register(ctx, middleware.UserID(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Company registered successfully.",
		"company": company,
	})
}

func (h *CompanyHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	company, logoURL, err := h.companyService.GetOwned(ctx, middleware.UserID(c), companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"company":  company,
		"logo_url": logoURL,
	})
}

func (h *CompanyHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	company, err := h.companyService.UpdateCompany(ctx, middleware.UserID(c), companyID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Company updated successfully.",
		"company": company,
	})
}

func (h *CompanyHandler) UpdateScore(c echo.Context) error {
	ctx := c.Request().Context()

	companyID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	scoreID, err := pathID(c, "score_id")
	if err != nil {
		return err
	}

	var req dto.UpdateScoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	score, company, err := h.companyService.UpdateScore(ctx, middleware.UserID(c), companyID, scoreID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Score updated successfully.",
		"score":   score,
		"company": map[string]any{"id": company.ID, "status": company.Status},
	})
}
