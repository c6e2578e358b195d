package model

import "time"

// Product is a catalog entry owned by the user who created it.  Prices are
// stored in integer cents to avoid floating point accumulation errors.
// PriceCents is the live catalog price; cart items capture their own
// immutable snapshot at add time (see CartItem.PriceAtAddCents).
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the product.
//  CategoryID  – optional category reference.
//  Name        – display name.
//  Description – optional free-text description.
//  PriceCents  – current unit price in cents.
//  IsAvailable – whether the product may be added to carts.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Product struct {
    ID          uint64    // products.id
    UserID      uint64    // products.user_id
    CategoryID  *uint64   // products.category_id (nullable)
    Name        string    // products.name
    Description *string   // products.description (nullable)
    PriceCents  int64     // products.price_cents
    IsAvailable bool      // products.is_available
    CreatedAt   time.Time // products.created_at
    UpdatedAt   time.Time // products.updated_at
}
