package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-participation/internal/domain/category"
)

type CategoryHandler struct {
	service CategoryServiceInterface
}

func NewCategoryHandler(s CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: s}
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50" example:"テクノロジー"`
}

type CategoryResponse struct {
	ID   string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name string `json:"name" example:"テクノロジー"`
}

func toCategoryResponse(cat *category.Category) CategoryResponse {
	return CategoryResponse{ID: cat.ID, Name: cat.Name}
}

// Create godoc
// @Summary カテゴリを作成
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CategoryRequest true "カテゴリ情報"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "カテゴリ名が重複"
// @Router /admin/categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	cat, err := h.service.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toCategoryResponse(cat))
}

// GetByID godoc
// @Summary カテゴリを取得
// @Tags categories
// @Produce json
// @Param id path string true "カテゴリID"
// @Success 200 {object} CategoryResponse
// @Failure 404 {object} map[string]string
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetByID(c echo.Context) error {
	cat, err := h.service.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toCategoryResponse(cat))
}

// List godoc
// @Summary カテゴリ一覧を取得
// @Tags categories
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} CategoryResponse
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	cats, err := h.service.ListCategories(c.Request().Context(), limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]CategoryResponse, len(cats))
	for i, cat := range cats {
		resp[i] = toCategoryResponse(cat)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary カテゴリを更新
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "カテゴリID"
// @Param request body CategoryRequest true "カテゴリ情報"
// @Success 200 {object} CategoryResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/categories/{id} [patch]
func (h *CategoryHandler) Update(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	cat, err := h.service.UpdateCategory(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toCategoryResponse(cat))
}

// Delete godoc
// @Summary カテゴリを削除
// @Description 使用中のカテゴリは削除できません
// @Tags admin
// @Param id path string true "カテゴリID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "カテゴリが使用中"
// @Router /admin/categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
