package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/online-store/internal/errs"
	"github.com/iliyamo/online-store/internal/model"
)

// ProductRepo provides CRUD access to the products table.  Write
// operations are owner-scoped: updates and deletes match on both product
// id and user id so one user cannot touch another's catalog entries.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = `id, user_id, category_id, name, description, price_cents,
	is_available, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var (
		p          model.Product
		categoryID sql.NullInt64
		desc       sql.NullString
	)
	err := row.Scan(&p.ID, &p.UserID, &categoryID, &p.Name, &desc,
		&p.PriceCents, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Product{}, err
	}
	if categoryID.Valid {
		cid := uint64(categoryID.Int64)
		p.CategoryID = &cid
	}
	p.Description = nullStr(desc)
	return p, nil
}

// Create inserts a product owned by userID and returns its ID.  When a
// category id is supplied the referenced category must exist.
func (r *ProductRepo) Create(ctx context.Context, userID uint64, p model.Product) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO products (user_id, category_id, name, description, price_cents, is_available)
		 VALUES (?,?,?,?,?,?)`,
		userID, p.CategoryID, strings.TrimSpace(p.Name), p.Description, p.PriceCents, p.IsAvailable)
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches any product by id regardless of owner.  The cart engine
// uses this lookup for price and availability.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (model.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id))
	return p, translate(err)
}

// ListByOwner returns all products created by the given user, newest first.
func (r *ProductRepo) ListByOwner(ctx context.Context, userID uint64) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListAvailable returns every product currently available for purchase.
// Used by the public catalog browse endpoints.
func (r *ProductRepo) ListAvailable(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE is_available=1 ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProductPatch carries the optional fields of a partial product update.
// Nil pointers leave the column untouched.  ClearCategory detaches the
// product from its category, mirroring the "disconnect" behavior of the
// create/update API.
type ProductPatch struct {
	CategoryID    *uint64
	ClearCategory bool
	Name          *string
	Description   *string
	PriceCents    *int64
	IsAvailable   *bool
}

// Update applies a partial update to a product owned by userID.  A missing
// or foreign row surfaces as errs.ErrNotFound.
func (r *ProductRepo) Update(ctx context.Context, userID, id uint64, patch ProductPatch) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 7)
	if patch.ClearCategory {
		sets = append(sets, "category_id=NULL")
	} else if patch.CategoryID != nil {
		sets = append(sets, "category_id=?")
		args = append(args, *patch.CategoryID)
	}
	if patch.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, strings.TrimSpace(*patch.Name))
	}
	if patch.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *patch.Description)
	}
	if patch.PriceCents != nil {
		sets = append(sets, "price_cents=?")
		args = append(args, *patch.PriceCents)
	}
	if patch.IsAvailable != nil {
		sets = append(sets, "is_available=?")
		args = append(args, *patch.IsAvailable)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, userID)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET "+strings.Join(sets, ", ")+" WHERE id=? AND user_id=?", args...)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM products WHERE id=? AND user_id=? LIMIT 1", id, userID).Scan(&exists); err != nil {
			return translate(err)
		}
	}
	return nil
}

// Delete removes a product owned by userID.  A missing or foreign row
// surfaces as errs.ErrNotFound.
func (r *ProductRepo) Delete(ctx context.Context, userID, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM products WHERE id=? AND user_id=?", id, userID)
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
