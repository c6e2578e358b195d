package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-store/internal/model"
	"github.com/iliyamo/online-store/internal/repository"
)

// CategoryHandler exposes category CRUD.  Categories are shared across the
// catalog; names are unique and duplicates answer 409.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(c *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: c}
}

type categoryReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}
type categoryPatchReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type categoryView struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func toCategoryView(cat model.Category) categoryView {
	return categoryView{ID: cat.ID, Name: cat.Name, Description: cat.Description}
}

// CreateCategory: insert and answer the stored row.
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Categories.Create(ctx, req.Name, req.Description)
	if err != nil {
		return respondErr(c, err)
	}
	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toCategoryView(cat))
}

// ListCategories: all categories ordered by name.
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	views := make([]categoryView, 0, len(cats))
	for _, cat := range cats {
		views = append(views, toCategoryView(cat))
	}
	return c.JSON(http.StatusOK, views)
}

// GetCategory: one category by id.
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toCategoryView(cat))
}

// UpdateCategory: partial update of name/description.
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	var req categoryPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Categories.Update(ctx, id, req.Name, req.Description); err != nil {
		return respondErr(c, err)
	}
	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toCategoryView(cat))
}

// DeleteCategory: remove a category.
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Categories.Delete(ctx, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
