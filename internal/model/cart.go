package model

import "time"

// Cart is a shopping cart addressed by exactly one of {UserID, SessionID}.
// Authenticated users get user carts; anonymous visitors get session carts
// keyed by an opaque session identifier.  At most one active cart exists
// per identity at a time; lookups filter on is_active and take the most
// recently created row.  Carts are deactivated logically (is_active=false)
// rather than deleted, both on explicit deactivation and when merged away
// into a user cart at login.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user (nil for anonymous session carts).
//  SessionID – anonymous session identifier (nil for user carts).
//  IsActive  – whether this cart is the identity's live cart.
//  ExpiresAt – expiration timestamp set at creation (now + TTL).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Cart struct {
    ID        uint64     // carts.id
    UserID    *uint64    // carts.user_id (nullable)
    SessionID *string    // carts.session_id (nullable)
    IsActive  bool       // carts.is_active
    ExpiresAt time.Time  // carts.expires_at
    CreatedAt time.Time  // carts.created_at
    UpdatedAt time.Time  // carts.updated_at
}

// CartIdentity addresses a cart by user or by anonymous session.  Exactly
// one field is expected to be meaningful; when both are set the user id
// wins, and when neither is set resolution fails.  Callers must synthesize
// a temporary session identity rather than resolving with neither.
type CartIdentity struct {
    UserID    *uint64
    SessionID *string
}

// CartItem is a line in a cart.  At most one row exists per
// (CartID, ProductID) pair; adding an already-present product increments
// the quantity instead of duplicating the row.  PriceAtAddCents is the
// unit price snapshot captured when the row was created and is never
// recomputed, even if the catalog price changes later.
//
// Fields:
//  ID              – primary key identifier.
//  CartID          – owning cart; rows are deleted with the cart's items.
//  ProductID       – referenced product (reference, not ownership).
//  Quantity        – number of units, always >= 1.
//  PriceAtAddCents – immutable unit price snapshot in cents.
//  Notes           – optional free-text note from the shopper.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type CartItem struct {
    ID              uint64    // cart_items.id
    CartID          uint64    // cart_items.cart_id
    ProductID       uint64    // cart_items.product_id
    Quantity        int       // cart_items.quantity
    PriceAtAddCents int64     // cart_items.price_at_add_cents
    Notes           *string   // cart_items.notes (nullable)
    CreatedAt       time.Time // cart_items.created_at
    UpdatedAt       time.Time // cart_items.updated_at
}
