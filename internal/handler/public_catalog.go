package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-store/internal/errs"
	"github.com/iliyamo/online-store/internal/repository"
)

// PublicCatalogHandler exposes unauthenticated, cacheable catalog reads so
// guests can browse before signing up.  Only available products are ever
// returned here; hidden inventory stays owner-only.
type PublicCatalogHandler struct {
	Products   *repository.ProductRepo
	Categories *repository.CategoryRepo
}

func NewPublicCatalogHandler(p *repository.ProductRepo, cat *repository.CategoryRepo) *PublicCatalogHandler {
	return &PublicCatalogHandler{Products: p, Categories: cat}
}

// BrowseProducts lists every available product.
func (h *PublicCatalogHandler) BrowseProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	products, err := h.Products.ListAvailable(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return c.JSON(http.StatusOK, views)
}

// BrowseProduct answers one available product.  Unavailable products look
// exactly like missing ones to guests.
func (h *PublicCatalogHandler) BrowseProduct(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if !p.IsAvailable {
		return respondErr(c, errs.ErrNotFound)
	}
	return c.JSON(http.StatusOK, toProductView(p))
}

// BrowseCategories lists every category.
func (h *PublicCatalogHandler) BrowseCategories(c echo.Context) error {
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
