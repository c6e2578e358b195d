package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/online-store/internal/errs"
	"github.com/iliyamo/online-store/internal/model"
)

// CartRepo provides data access to the carts table.  A cart is addressed
// by exactly one of {user_id, session_id}; lookups filter on the active
// flag and take the most recently created row, so at most one active cart
// per identity is ever observed even if stale rows exist.
type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

const cartColumns = `id, user_id, session_id, is_active, expires_at, created_at, updated_at`

func scanCart(row interface{ Scan(...any) error }) (model.Cart, error) {
	var (
		c         model.Cart
		userID    sql.NullInt64
		sessionID sql.NullString
	)
	err := row.Scan(&c.ID, &userID, &sessionID, &c.IsActive,
		&c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Cart{}, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		c.UserID = &uid
	}
	c.SessionID = nullStr(sessionID)
	return c, nil
}

// FindActive returns the newest active cart for the given identity, or
// errs.ErrNotFound when the identity has no active cart.
func (r *CartRepo) FindActive(ctx context.Context, identity model.CartIdentity) (model.Cart, error) {
	var (
		row *sql.Row
	)
	switch {
	case identity.UserID != nil:
		row = r.DB.QueryRowContext(ctx,
			"SELECT "+cartColumns+` FROM carts
			 WHERE user_id=? AND is_active=1
			 ORDER BY created_at DESC, id DESC LIMIT 1`, *identity.UserID)
	case identity.SessionID != nil:
		row = r.DB.QueryRowContext(ctx,
			"SELECT "+cartColumns+` FROM carts
			 WHERE session_id=? AND is_active=1
			 ORDER BY created_at DESC, id DESC LIMIT 1`, *identity.SessionID)
	default:
		return model.Cart{}, errs.ErrBadRequest
	}
	c, err := scanCart(row)
	return c, translate(err)
}

// Create inserts a new active cart for the identity.  Only one of the
// identity fields is written; the other stays NULL.
func (r *CartRepo) Create(ctx context.Context, identity model.CartIdentity, expiresAt time.Time) (model.Cart, error) {
	var (
		res sql.Result
		err error
	)
	switch {
	case identity.UserID != nil:
		res, err = r.DB.ExecContext(ctx,
			"INSERT INTO carts (user_id, is_active, expires_at) VALUES (?,1,?)",
			*identity.UserID, expiresAt.UTC())
	case identity.SessionID != nil:
		res, err = r.DB.ExecContext(ctx,
			"INSERT INTO carts (session_id, is_active, expires_at) VALUES (?,1,?)",
			*identity.SessionID, expiresAt.UTC())
	default:
		return model.Cart{}, errs.ErrBadRequest
	}
	if err != nil {
		return model.Cart{}, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Cart{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a cart by id.
func (r *CartRepo) GetByID(ctx context.Context, id uint64) (model.Cart, error) {
	c, err := scanCart(r.DB.QueryRowContext(ctx,
		"SELECT "+cartColumns+" FROM carts WHERE id=? LIMIT 1", id))
	return c, translate(err)
}

// Deactivate flips is_active off; the cart row is kept for audit.  Already
// inactive carts are left as-is, missing carts surface as errs.ErrNotFound.
func (r *CartRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE carts SET is_active=0 WHERE id=?", id)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return gerr
		}
	}
	return nil
}
