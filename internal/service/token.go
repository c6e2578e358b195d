// Package service contains the application services behind the HTTP
// handlers: the token lifecycle and the cart resolution engine.  Services
// depend on narrow store interfaces so the core algorithms (rotate, resolve,
// merge) are testable against in-memory fakes.
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/online-store/internal/errs"
	"github.com/iliyamo/online-store/internal/model"
	"github.com/iliyamo/online-store/internal/utils"
)

// Password-reset credential lifetimes.  The emailed token lives long enough
// to survive inbox delays; the 6-digit code is typed by hand and kept short.
const (
	ResetTokenTTL = 2 * time.Hour
	ResetCodeTTL  = 15 * time.Minute
)

// UserStore is the slice of the user repository the token service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	SetRefreshToken(ctx context.Context, id uint64, token string, exp time.Time) error
	FindByRefreshToken(ctx context.Context, id uint64, token string) (model.User, error)
	SetResetToken(ctx context.Context, id uint64, token string, exp time.Time) error
	SetResetCode(ctx context.Context, id uint64, code string, exp time.Time) error
}

// TokenPair is an access/refresh token pair issued together.  The refresh
// token's value is mirrored on the user row, so issuing a new pair
// invalidates any previously issued refresh token for that user.
type TokenPair struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// TokenService issues, verifies and rotates the signed token pair and
// generates password-reset credentials.
type TokenService struct {
	users         UserStore
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService constructs a TokenService.  The two secrets must differ;
// access and refresh tokens are never interchangeable.
func NewTokenService(users UserStore, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		users:         users,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssuePair signs a fresh access/refresh pair and persists the refresh
// token value and expiry on the user row.  Rotation-by-overwrite: the
// previous refresh token becomes invalid the instant the new pair lands,
// even if it has not yet expired.
func (s *TokenService) IssuePair(ctx context.Context, userID uint64, email, role string) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.accessSecret, userID, email, role, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(s.refreshSecret, userID, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.SetRefreshToken(ctx, userID, refresh.Token, refresh.Exp); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access.Token,
		AccessExp:    access.Exp,
		RefreshToken: refresh.Token,
		RefreshExp:   refresh.Exp,
	}, nil
}

// VerifyRefresh checks signature and expiry of a refresh token and returns
// the subject user id.  Invalid tokens surface as errs.ErrForbidden.
func (s *TokenService) VerifyRefresh(token string) (uint64, error) {
	id, err := utils.ParseSubject(s.refreshSecret, token)
	if err != nil {
		return 0, errs.ErrForbidden
	}
	return id, nil
}

// Rotate exchanges a presented refresh token for a fresh pair.  The token
// must verify cryptographically and also match the value stored on the
// user row with a stored expiry still in the future; a token that was
// already rotated away fails here even though its signature is fine.  Two
// concurrent rotations of the same token race on the stored-value check
// and only one wins.
func (s *TokenService) Rotate(ctx context.Context, presented string) (TokenPair, model.User, error) {
	userID, err := s.VerifyRefresh(presented)
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	u, err := s.users.FindByRefreshToken(ctx, userID, presented)
	if err != nil {
		return TokenPair{}, model.User{}, errs.ErrForbidden
	}
	pair, err := s.IssuePair(ctx, u.ID, u.Email, u.Role)
	if err != nil {
		return TokenPair{}, model.User{}, err
	}
	return pair, u, nil
}

// GenerateResetToken creates an opaque reset token for the account behind
// email, valid for ResetTokenTTL.  Storing the token clears any live reset
// code so only one credential type is valid at a time.  Unknown emails
// surface as errs.ErrNotFound; the HTTP layer hides that from clients.
func (s *TokenService) GenerateResetToken(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	exp := time.Now().UTC().Add(ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, u.ID, token, exp); err != nil {
		return "", err
	}
	return token, nil
}

// GenerateResetCode creates a 6-digit reset code for the account behind
// email, valid for ResetCodeTTL.  Storing the code clears any live reset
// token.
func (s *TokenService) GenerateResetCode(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)
	exp := time.Now().UTC().Add(ResetCodeTTL)
	if err := s.users.SetResetCode(ctx, u.ID, code, exp); err != nil {
		return "", err
	}
	return code, nil
}
