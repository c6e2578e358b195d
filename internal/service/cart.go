package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/online-store/internal/errs"
	"github.com/iliyamo/online-store/internal/model"
)

// CartStore is the slice of the cart repository the engine needs.
type CartStore interface {
	FindActive(ctx context.Context, identity model.CartIdentity) (model.Cart, error)
	Create(ctx context.Context, identity model.CartIdentity, expiresAt time.Time) (model.Cart, error)
	GetByID(ctx context.Context, id uint64) (model.Cart, error)
	Deactivate(ctx context.Context, id uint64) error
}

// CartItemStore is the slice of the cart item repository the engine needs.
// Upsert must be additive and atomic per (cart, product) pair: an existing
// row gains quantity and keeps its price snapshot, a new row is created
// with the supplied snapshot.
type CartItemStore interface {
	Upsert(ctx context.Context, cartID, productID uint64, quantity int, priceAtAddCents int64, notes *string) error
	ListByCart(ctx context.Context, cartID uint64) ([]model.CartItem, error)
	Get(ctx context.Context, cartID, itemID uint64) (model.CartItem, error)
	Update(ctx context.Context, cartID, itemID uint64, quantity *int, notes *string) error
	Delete(ctx context.Context, cartID, itemID uint64) error
	DeleteAll(ctx context.Context, cartID uint64) error
}

// ProductStore is the catalog collaborator; the cart engine only needs
// price and availability.
type ProductStore interface {
	GetByID(ctx context.Context, id uint64) (model.Product, error)
}

// CartItemView is one line of the cart read response.
type CartItemView struct {
	ID         uint64  `json:"id"`
	ProductID  uint64  `json:"productId"`
	Quantity   int     `json:"quantity"`
	PriceAtAdd int64   `json:"priceAtAdd"`
	Notes      *string `json:"notes"`
}

// CartView is the JSON shape of every cart read.  Total is computed from
// the snapshot prices on each read and is never stored.
type CartView struct {
	ID        uint64         `json:"id"`
	UserID    *uint64        `json:"userId"`
	Items     []CartItemView `json:"items"`
	IsActive  bool           `json:"isActive"`
	Total     int64          `json:"total"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// CartService is the cart resolution engine: it resolves the active cart
// for an identity, manages items, computes totals and merges an anonymous
// session cart into a user cart at login.
type CartService struct {
	carts    CartStore
	items    CartItemStore
	products ProductStore
	ttl      time.Duration
}

// NewCartService constructs a CartService.  ttl is the expiration window
// stamped onto lazily created carts.
func NewCartService(carts CartStore, items CartItemStore, products ProductStore, ttl time.Duration) *CartService {
	return &CartService{carts: carts, items: items, products: products, ttl: ttl}
}

// Resolve returns the identity's active cart, creating one lazily when none
// exists.  Resolving with neither a user nor a session id fails with
// errs.ErrBadRequest; the transport layer synthesizes a temporary session
// identity before calling in.
func (s *CartService) Resolve(ctx context.Context, identity model.CartIdentity) (CartView, error) {
	if identity.UserID == nil && identity.SessionID == nil {
		return CartView{}, errs.ErrBadRequest
	}
	cart, err := s.carts.FindActive(ctx, identity)
	if errors.Is(err, errs.ErrNotFound) {
		cart, err = s.carts.Create(ctx, identity, time.Now().UTC().Add(s.ttl))
	}
	if err != nil {
		return CartView{}, err
	}
	return s.view(ctx, cart)
}

// AddItem adds quantity units of a product to a cart.  The product must
// exist and be available for purchase; an unavailable product is rejected
// with errs.ErrBadRequest and the cart is left unchanged.  Adding a product
// already present increments its quantity (additive, never overwritten) and
// replaces notes only when new notes are supplied.  A new row captures the
// current catalog price as its immutable snapshot.
func (s *CartService) AddItem(ctx context.Context, cartID, productID uint64, quantity int, notes *string) error {
	if quantity < 1 {
		return errs.ErrBadRequest
	}
	if _, err := s.carts.GetByID(ctx, cartID); err != nil {
		return err
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if !p.IsAvailable {
		return errs.ErrBadRequest
	}
	return s.items.Upsert(ctx, cartID, productID, quantity, p.PriceCents, notes)
}

// UpdateItem applies a partial update to one item; only supplied fields
// change.  A quantity below 1 is rejected.
func (s *CartService) UpdateItem(ctx context.Context, cartID, itemID uint64, quantity *int, notes *string) error {
	if quantity != nil && *quantity < 1 {
		return errs.ErrBadRequest
	}
	if _, err := s.carts.GetByID(ctx, cartID); err != nil {
		return err
	}
	return s.items.Update(ctx, cartID, itemID, quantity, notes)
}

// RemoveItem deletes one item; removing an item that is not in the cart
// fails with errs.ErrNotFound.
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID uint64) error {
	if _, err := s.carts.GetByID(ctx, cartID); err != nil {
		return err
	}
	return s.items.Delete(ctx, cartID, itemID)
}

// Clear deletes every item of a cart.  Clearing an empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, cartID uint64) error {
	if _, err := s.carts.GetByID(ctx, cartID); err != nil {
		return err
	}
	return s.items.DeleteAll(ctx, cartID)
}

// Deactivate logically retires a cart (is_active=false).  No physical
// delete path exists for carts.
func (s *CartService) Deactivate(ctx context.Context, cartID uint64) error {
	if _, err := s.carts.GetByID(ctx, cartID); err != nil {
		return err
	}
	return s.carts.Deactivate(ctx, cartID)
}

// Merge folds the anonymous session cart into the user's cart at login.
// When the session has no active cart the merge is a no-op and the user's
// existing (or lazily created) cart is returned untouched.  Otherwise each
// session item is replayed through AddItem against the user cart, reusing
// the additive-quantity rule: a product present in both carts sums
// quantities rather than being overwritten.  Replaying also re-fetches the
// catalog price for rows newly created in the user cart, so a transferred
// item may pick up a price change that happened since it was added to the
// session cart.  The session cart is deactivated once its items are
// transferred.
func (s *CartService) Merge(ctx context.Context, userID uint64, sessionID string) (CartView, error) {
	sessionCart, err := s.carts.FindActive(ctx, model.CartIdentity{SessionID: &sessionID})
	if errors.Is(err, errs.ErrNotFound) {
		return s.Resolve(ctx, model.CartIdentity{UserID: &userID})
	}
	if err != nil {
		return CartView{}, err
	}

	userCart, err := s.Resolve(ctx, model.CartIdentity{UserID: &userID})
	if err != nil {
		return CartView{}, err
	}

	items, err := s.items.ListByCart(ctx, sessionCart.ID)
	if err != nil {
		return CartView{}, err
	}
	for _, it := range items {
		if err := s.AddItem(ctx, userCart.ID, it.ProductID, it.Quantity, it.Notes); err != nil {
			return CartView{}, err
		}
	}

	if err := s.carts.Deactivate(ctx, sessionCart.ID); err != nil {
		return CartView{}, err
	}
	return s.Resolve(ctx, model.CartIdentity{UserID: &userID})
}

// Total returns the cart total in cents: the sum of priceAtAdd × quantity
// over current items.  Snapshot prices only; the live catalog price never
// enters the computation.
func (s *CartService) Total(ctx context.Context, cartID uint64) (int64, error) {
	if _, err := s.carts.GetByID(ctx, cartID); err != nil {
		return 0, err
	}
	items, err := s.items.ListByCart(ctx, cartID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, it := range items {
		total += it.PriceAtAddCents * int64(it.Quantity)
	}
	return total, nil
}

// view loads a cart's items and formats the response shape.
func (s *CartService) view(ctx context.Context, cart model.Cart) (CartView, error) {
	items, err := s.items.ListByCart(ctx, cart.ID)
	if err != nil {
		return CartView{}, err
	}
	v := CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     make([]CartItemView, 0, len(items)),
		IsActive:  cart.IsActive,
		ExpiresAt: cart.ExpiresAt,
	}
	for _, it := range items {
		v.Items = append(v.Items, CartItemView{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			PriceAtAdd: it.PriceAtAddCents,
			Notes:      it.Notes,
		})
		v.Total += it.PriceAtAddCents * int64(it.Quantity)
	}
	return v, nil
}
