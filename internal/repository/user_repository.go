package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/online-store/internal/model"
)

// UserRepo provides data access to the users table, including the refresh
// token mirror columns and the password-reset credentials.  All timestamps
// are stored and compared in UTC.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, first_name, last_name, role, is_active,
	refresh_token, refresh_token_exp, reset_token, reset_token_expires,
	reset_code, reset_code_expires, created_at, updated_at`

// scanUser reads a full user row from any row scanner.
func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u                          model.User
		firstName, lastName        sql.NullString
		refreshToken               sql.NullString
		refreshTokenExp            sql.NullTime
		resetToken, resetCode      sql.NullString
		resetTokenExp, resetCodeExp sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &firstName, &lastName,
		&u.Role, &u.IsActive, &refreshToken, &refreshTokenExp,
		&resetToken, &resetTokenExp, &resetCode, &resetCodeExp,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.FirstName = nullStr(firstName)
	u.LastName = nullStr(lastName)
	u.RefreshToken = nullStr(refreshToken)
	u.RefreshTokenExp = nullTime(refreshTokenExp)
	u.ResetToken = nullStr(resetToken)
	u.ResetTokenExpires = nullTime(resetTokenExp)
	u.ResetCode = nullStr(resetCode)
	u.ResetCodeExpires = nullTime(resetCodeExp)
	return u, nil
}

// Create inserts a user with an already-hashed password and returns its ID.
// Duplicate emails surface as errs.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role) VALUES (?,?,'USER')",
		email, passwordHash)
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	return u, translate(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	return u, translate(err)
}

// SetRefreshToken mirrors the latest refresh token and its expiry onto the
// user row.  Overwriting invalidates any previously issued refresh token
// the instant a new pair is issued (rotation-by-overwrite).
func (r *UserRepo) SetRefreshToken(ctx context.Context, id uint64, token string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token=?, refresh_token_exp=? WHERE id=?",
		token, exp.UTC(), id)
	return translate(err)
}

// FindByRefreshToken returns the user only when the presented token matches
// the stored value and the stored expiry is still in the future.  A token
// that fails this check is rejected even if cryptographically valid.
func (r *UserRepo) FindByRefreshToken(ctx context.Context, id uint64, token string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE id=? AND refresh_token=? AND refresh_token_exp > UTC_TIMESTAMP()
		 LIMIT 1`, id, token))
	return u, translate(err)
}

// SetResetToken stores a password-reset token and clears any live reset
// code so that only one credential type is valid at a time.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, token string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET reset_token=?, reset_token_expires=?,
		 reset_code=NULL, reset_code_expires=NULL WHERE id=?`,
		token, exp.UTC(), id)
	return translate(err)
}

// SetResetCode stores a password-reset code and clears any live reset token.
func (r *UserRepo) SetResetCode(ctx context.Context, id uint64, code string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET reset_code=?, reset_code_expires=?,
		 reset_token=NULL, reset_token_expires=NULL WHERE id=?`,
		code, exp.UTC(), id)
	return translate(err)
}

// GetByResetToken fetches the user holding a non-expired reset token.
func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE reset_token=? AND reset_token_expires > UTC_TIMESTAMP() LIMIT 1`, token))
	return u, translate(err)
}

// GetByResetCode fetches the user holding a non-expired reset code.
func (r *UserRepo) GetByResetCode(ctx context.Context, code string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+` FROM users
		 WHERE reset_code=? AND reset_code_expires > UTC_TIMESTAMP() LIMIT 1`, code))
	return u, translate(err)
}

// ReplacePassword swaps in a new password hash and clears both reset
// credentials in the same statement so the clear is atomic with the swap.
func (r *UserRepo) ReplacePassword(ctx context.Context, id uint64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash=?, reset_token=NULL, reset_token_expires=NULL,
		 reset_code=NULL, reset_code_expires=NULL WHERE id=?`,
		passwordHash, id)
	return translate(err)
}
