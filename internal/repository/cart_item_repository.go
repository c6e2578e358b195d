package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/online-store/internal/errs"
	"github.com/iliyamo/online-store/internal/model"
)

// CartItemRepo provides data access to the cart_items table.  The table
// carries a unique key on (cart_id, product_id) so that Upsert can make
// "find-or-create plus increment" a single atomic statement; concurrent
// adds of the same product can therefore neither duplicate the row nor
// lose an increment.
type CartItemRepo struct{ DB *sql.DB }

func NewCartItemRepo(db *sql.DB) *CartItemRepo { return &CartItemRepo{DB: db} }

const cartItemColumns = `id, cart_id, product_id, quantity, price_at_add_cents,
	notes, created_at, updated_at`

func scanCartItem(row interface{ Scan(...any) error }) (model.CartItem, error) {
	var (
		it    model.CartItem
		notes sql.NullString
	)
	err := row.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity,
		&it.PriceAtAddCents, &notes, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return model.CartItem{}, err
	}
	it.Notes = nullStr(notes)
	return it, nil
}

// Upsert adds quantity units of a product to a cart.  When no row exists
// for (cart_id, product_id) a new one is created with the given price
// snapshot; otherwise the existing row's quantity is incremented and its
// notes replaced only when new notes are supplied.  The price snapshot is
// never touched on the increment path.
func (r *CartItemRepo) Upsert(ctx context.Context, cartID, productID uint64, quantity int, priceAtAddCents int64, notes *string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity, price_at_add_cents, notes)
		 VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE
		   quantity = quantity + VALUES(quantity),
		   notes = COALESCE(VALUES(notes), notes)`,
		cartID, productID, quantity, priceAtAddCents, notes)
	return translate(err)
}

// ListByCart returns all items of a cart in insertion order.
func (r *CartItemRepo) ListByCart(ctx context.Context, cartID uint64) ([]model.CartItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+cartItemColumns+" FROM cart_items WHERE cart_id=? ORDER BY id", cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CartItem
	for rows.Next() {
		it, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Get fetches a single item scoped to its cart.
func (r *CartItemRepo) Get(ctx context.Context, cartID, itemID uint64) (model.CartItem, error) {
	it, err := scanCartItem(r.DB.QueryRowContext(ctx,
		"SELECT "+cartItemColumns+" FROM cart_items WHERE id=? AND cart_id=? LIMIT 1",
		itemID, cartID))
	return it, translate(err)
}

// Update applies a partial update (quantity and/or notes) to an item in a
// cart.  A missing row surfaces as errs.ErrNotFound.
func (r *CartItemRepo) Update(ctx context.Context, cartID, itemID uint64, quantity *int, notes *string) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if quantity != nil {
		sets = append(sets, "quantity=?")
		args = append(args, *quantity)
	}
	if notes != nil {
		sets = append(sets, "notes=?")
		args = append(args, *notes)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, itemID, cartID)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cart_items SET "+strings.Join(sets, ", ")+" WHERE id=? AND cart_id=?", args...)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := r.Get(ctx, cartID, itemID); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes one item from a cart.  A missing row surfaces as
// errs.ErrNotFound.
func (r *CartItemRepo) Delete(ctx context.Context, cartID, itemID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM cart_items WHERE id=? AND cart_id=?", itemID, cartID)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteAll clears every item of a cart.  Clearing an empty cart is a
// no-op, not an error.
func (r *CartItemRepo) DeleteAll(ctx context.Context, cartID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id=?", cartID)
	return translate(err)
}
