package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/online-store/internal/errs"
	"github.com/iliyamo/online-store/internal/model"
)

// CategoryRepo provides CRUD access to the categories table.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// Create inserts a category and returns its ID.  Duplicate names surface
// as errs.ErrConflict.
func (r *CategoryRepo) Create(ctx context.Context, name string, description *string) (uint64, error) {
	name = strings.TrimSpace(name)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, description) VALUES (?,?)", name, description)
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a category by id.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (model.Category, error) {
	var (
		c    model.Category
		desc sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM categories WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Name, &desc, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Category{}, translate(err)
	}
	c.Description = nullStr(desc)
	return c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Category
	for rows.Next() {
		var (
			c    model.Category
			desc sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Description = nullStr(desc)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update applies the supplied fields only.  A missing row surfaces as
// errs.ErrNotFound; renaming onto an existing name as errs.ErrConflict.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, name *string, description *string) error {
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if name != nil {
		sets = append(sets, "name=?")
		args = append(args, strings.TrimSpace(*name))
	}
	if description != nil {
		sets = append(sets, "description=?")
		args = append(args, *description)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// distinguish no-op updates from missing rows
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return gerr
		}
	}
	return nil
}

// Delete removes a category.  A missing row surfaces as errs.ErrNotFound.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id)
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
