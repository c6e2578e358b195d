package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-store/internal/model"
	"github.com/iliyamo/online-store/internal/service"
)

// CartHandler exposes the cart resolution engine over HTTP.  The routes
// serve both authenticated users and anonymous visitors: the identity
// middleware leaves a user id (from the JWT) and/or a session id (from the
// X-Session-ID header, synthesized when absent) in the context, and every
// operation first resolves the active cart for that identity, mirroring a
// storefront where the cart "just exists" as soon as it is looked at.
type CartHandler struct {
	Cart *service.CartService
}

func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{Cart: cart}
}

type addItemReq struct {
	ProductID uint64  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes"`
}
type updateItemReq struct {
	Quantity *int    `json:"quantity"`
	Notes    *string `json:"notes"`
}

// identityFrom assembles the cart identity for this request.  The user id
// wins when both identities are present; the session id only addresses
// carts of anonymous visitors.
func identityFrom(c echo.Context) model.CartIdentity {
	var identity model.CartIdentity
	if uid, err := getUserID(c); err == nil {
		identity.UserID = &uid
	} else if sid := getSessionID(c); sid != "" {
		identity.SessionID = &sid
	}
	return identity
}

// resolve loads (or lazily creates) the active cart for this request.
func (h *CartHandler) resolve(ctx context.Context, c echo.Context) (service.CartView, error) {
	return h.Cart.Resolve(ctx, identityFrom(c))
}

// GetCart answers the current cart for the caller's identity, creating one
// when none is active.
func (h *CartHandler) GetCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	view, err := h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// AddItem adds a product to the caller's cart and answers the refreshed
// cart view.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemReq
	if err := c.Bind(&req); err != nil || req.ProductID == 0 || req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id and quantity >= 1 required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	view, err := h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.Cart.AddItem(ctx, view.ID, req.ProductID, req.Quantity, req.Notes); err != nil {
		return respondErr(c, err)
	}
	view, err = h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, view)
}

// UpdateItem partially updates one item (quantity and/or notes).
func (h *CartHandler) UpdateItem(c echo.Context) error {
	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req updateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	view, err := h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.Cart.UpdateItem(ctx, view.ID, itemID, req.Quantity, req.Notes); err != nil {
		return respondErr(c, err)
	}
	view, err = h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// RemoveItem deletes one item from the caller's cart.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
	if err != nil || itemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	view, err := h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.Cart.RemoveItem(ctx, view.ID, itemID); err != nil {
		return respondErr(c, err)
	}
	view, err = h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// ClearCart removes every item; clearing an already empty cart succeeds.
func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	view, err := h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.Cart.Clear(ctx, view.ID); err != nil {
		return respondErr(c, err)
	}
	view, err = h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// DeactivateCart retires the caller's active cart.  The next read will
// lazily create a fresh one.
func (h *CartHandler) DeactivateCart(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	view, err := h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.Cart.Deactivate(ctx, view.ID); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetTotal answers the computed total of the caller's cart in cents.
func (h *CartHandler) GetTotal(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	view, err := h.resolve(ctx, c)
	if err != nil {
		return respondErr(c, err)
	}
	total, err := h.Cart.Total(ctx, view.ID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total})
}

// MergeCarts folds the anonymous session cart named by the client into the
// authenticated user's cart.  Requires a JWT; the session id comes from
// the X-Session-ID header or the session_id query parameter.
func (h *CartHandler) MergeCarts(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	sid := c.Request().Header.Get("X-Session-ID")
	if sid == "" {
		sid = c.QueryParam("session_id")
	}
	if sid == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	view, err := h.Cart.Merge(ctx, userID, sid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, view)
}
