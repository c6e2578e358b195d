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

// ProductHandler exposes owner-scoped product CRUD.  Every write matches
// on the authenticated user's id, so a user can only touch their own
// catalog entries.
type ProductHandler struct {
	Products   *repository.ProductRepo
	Categories *repository.CategoryRepo
}

func NewProductHandler(p *repository.ProductRepo, cat *repository.CategoryRepo) *ProductHandler {
	return &ProductHandler{Products: p, Categories: cat}
}

type productReq struct {
	CategoryID  *uint64 `json:"category_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"price_cents"`
	IsAvailable *bool   `json:"is_available"`
}
type productView struct {
	ID          uint64  `json:"id"`
	CategoryID  *uint64 `json:"category_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"price_cents"`
	IsAvailable bool    `json:"is_available"`
}

func toProductView(p model.Product) productView {
	return productView{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		IsAvailable: p.IsAvailable,
	}
}

// CreateProduct inserts a product owned by the caller.  When a category id
// is supplied, the referenced category must exist.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" || req.PriceCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and non-negative price_cents required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if req.CategoryID != nil {
		if _, err := h.Categories.GetByID(ctx, *req.CategoryID); err != nil {
			return respondErr(c, err)
		}
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	id, err := h.Products.Create(ctx, userID, model.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		IsAvailable: available,
	})
	if err != nil {
		return respondErr(c, err)
	}
	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toProductView(p))
}

// ListProducts answers the caller's own products, newest first.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	products, err := h.Products.ListByOwner(ctx, userID)
	if err != nil {
		return respondErr(c, err)
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return c.JSON(http.StatusOK, views)
}

// GetProduct answers one product by id.
func (h *ProductHandler) GetProduct(c echo.Context) error {
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
	return c.JSON(http.StatusOK, toProductView(p))
}

// UpdateProduct applies a partial update to a product the caller owns.  A
// null category_id in the body detaches the product from its category.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	// raw map to tell "category_id": null apart from an absent key
	var raw map[string]any
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	patch, badField := patchFromRaw(raw)
	if badField != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field: " + badField})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if patch.CategoryID != nil {
		if _, err := h.Categories.GetByID(ctx, *patch.CategoryID); err != nil {
			return respondErr(c, err)
		}
	}
	if err := h.Products.Update(ctx, userID, id, patch); err != nil {
		return respondErr(c, err)
	}
	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toProductView(p))
}

// patchFromRaw converts a decoded JSON object into a ProductPatch.  It
// returns the offending field name when a value has the wrong type.
func patchFromRaw(raw map[string]any) (repository.ProductPatch, string) {
	var patch repository.ProductPatch
	if v, ok := raw["category_id"]; ok {
		if v == nil {
			patch.ClearCategory = true
		} else if f, ok := v.(float64); ok && f > 0 {
			cid := uint64(f)
			patch.CategoryID = &cid
		} else {
			return patch, "category_id"
		}
	}
	if v, ok := raw["name"]; ok {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return patch, "name"
		}
		patch.Name = &s
	}
	if v, ok := raw["description"]; ok {
		if v == nil {
			empty := ""
			patch.Description = &empty
		} else if s, ok := v.(string); ok {
			patch.Description = &s
		} else {
			return patch, "description"
		}
	}
	if v, ok := raw["price_cents"]; ok {
		f, ok := v.(float64)
		if !ok || f < 0 {
			return patch, "price_cents"
		}
		p := int64(f)
		patch.PriceCents = &p
	}
	if v, ok := raw["is_available"]; ok {
		b, ok := v.(bool)
		if !ok {
			return patch, "is_available"
		}
		patch.IsAvailable = &b
	}
	return patch, ""
}

// DeleteProduct removes a product the caller owns.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Products.Delete(ctx, userID, id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
