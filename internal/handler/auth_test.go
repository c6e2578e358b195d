package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/online-store/internal/config"
	"github.com/iliyamo/online-store/internal/errs"
	"github.com/iliyamo/online-store/internal/model"
	"github.com/iliyamo/online-store/internal/queue"
	"github.com/iliyamo/online-store/internal/service"
	"github.com/iliyamo/online-store/internal/utils"
)

// fakeUserStore backs both the auth endpoints and the token service.
type fakeUserStore struct {
	nextID uint64
	rows   map[uint64]model.User
}

func newFakeUserStore() *fakeUserStore { return &fakeUserStore{rows: map[uint64]model.User{}} }

func (f *fakeUserStore) Create(_ context.Context, email, passwordHash string) (uint64, error) {
	for _, u := range f.rows {
		if u.Email == email {
			return 0, errs.ErrConflict
		}
	}
	f.nextID++
	f.rows[f.nextID] = model.User{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         "USER",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	return f.nextID, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) SetRefreshToken(_ context.Context, id uint64, token string, exp time.Time) error {
	u, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.RefreshToken = &token
	u.RefreshTokenExp = &exp
	f.rows[id] = u
	return nil
}

func (f *fakeUserStore) FindByRefreshToken(_ context.Context, id uint64, token string) (model.User, error) {
	u, ok := f.rows[id]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != token {
		return model.User{}, errs.ErrNotFound
	}
	if u.RefreshTokenExp == nil || !u.RefreshTokenExp.After(time.Now().UTC()) {
		return model.User{}, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) SetResetToken(_ context.Context, id uint64, token string, exp time.Time) error {
	u, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.ResetToken = &token
	u.ResetTokenExpires = &exp
	u.ResetCode = nil
	u.ResetCodeExpires = nil
	f.rows[id] = u
	return nil
}

func (f *fakeUserStore) SetResetCode(_ context.Context, id uint64, code string, exp time.Time) error {
	u, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.ResetCode = &code
	u.ResetCodeExpires = &exp
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	f.rows[id] = u
	return nil
}

func (f *fakeUserStore) GetByResetToken(_ context.Context, token string) (model.User, error) {
	now := time.Now().UTC()
	for _, u := range f.rows {
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now) {
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeUserStore) GetByResetCode(_ context.Context, code string) (model.User, error) {
	now := time.Now().UTC()
	for _, u := range f.rows {
		if u.ResetCode != nil && *u.ResetCode == code &&
			u.ResetCodeExpires != nil && u.ResetCodeExpires.After(now) {
			return u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeUserStore) ReplacePassword(_ context.Context, id uint64, passwordHash string) error {
	u, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpires = nil
	u.ResetCode = nil
	u.ResetCodeExpires = nil
	f.rows[id] = u
	return nil
}

// fakeMailer records published reset events instead of touching RabbitMQ.
type fakeMailer struct {
	events []queue.PasswordResetRequestedEvent
}

func (f *fakeMailer) PublishPasswordResetRequested(_ context.Context, ev queue.PasswordResetRequestedEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func newAuthEnv() (*echo.Echo, *AuthHandler, *fakeUserStore, *fakeMailer) {
	users := newFakeUserStore()
	mailer := &fakeMailer{}
	cfg := config.Config{
		Env:         "test",
		BcryptCost:  bcrypt.MinCost,
		FrontendURL: "http://localhost:3000",
	}
	tokens := service.NewTokenService(users, "test-access", "test-refresh", 15*time.Minute, 24*time.Hour)
	h := NewAuthHandler(cfg, users, tokens, mailer)
	return echo.New(), h, users, mailer
}

func doJSON(e *echo.Echo, handler echo.HandlerFunc, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	return rec
}

func mustSignup(t *testing.T, e *echo.Echo, h *AuthHandler, email, password string) {
	t.Helper()
	rec := doJSON(e, h.Signup, http.MethodPost, "/v1/auth/signup",
		`{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSignup(t *testing.T) {
	e, h, users, _ := newAuthEnv()

	mustSignup(t, e, h, "shopper@example.com", "hunter22")
	require.Len(t, users.rows, 1)
	require.True(t, utils.VerifyPassword(users.rows[1].PasswordHash, "hunter22"),
		"stored hash must verify against the plain password")

	// the same email again answers 409
	rec := doJSON(e, h.Signup, http.MethodPost, "/v1/auth/signup",
		`{"email":"shopper@example.com","password":"other"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(e, h.Signup, http.MethodPost, "/v1/auth/signup", `{"email":"","password":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSigninSetsScopedCookies(t *testing.T) {
	e, h, _, _ := newAuthEnv()
	mustSignup(t, e, h, "shopper@example.com", "hunter22")

	rec := doJSON(e, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"shopper@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "access_token")

	access := cookieByName(t, rec, accessCookieName)
	require.Equal(t, "/", access.Path)
	require.True(t, access.HttpOnly)
	require.False(t, access.Secure, "non-prod must not set Secure")

	refresh := cookieByName(t, rec, refreshCookieName)
	require.Equal(t, refreshCookiePath, refresh.Path,
		"the refresh cookie must only travel to the refresh endpoint")
	require.True(t, refresh.HttpOnly)
}

func TestSigninFailureClasses(t *testing.T) {
	e, h, users, _ := newAuthEnv()
	mustSignup(t, e, h, "shopper@example.com", "hunter22")

	// unknown account
	rec := doJSON(e, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"nobody@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong password for a known account
	rec = doJSON(e, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"shopper@example.com","password":"wrong"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// deactivated account, correct password
	u := users.rows[1]
	u.IsActive = false
	users.rows[1] = u
	rec = doJSON(e, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"shopper@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignoutClearsCookies(t *testing.T) {
	e, h, _, _ := newAuthEnv()

	rec := doJSON(e, h.Signout, http.MethodPost, "/v1/auth/signout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(t, rec, accessCookieName)
	require.Empty(t, access.Value)
	require.Equal(t, -1, access.MaxAge)
	refresh := cookieByName(t, rec, refreshCookieName)
	require.Empty(t, refresh.Value)
	require.Equal(t, -1, refresh.MaxAge)
}

func TestRefreshRotatesPair(t *testing.T) {
	e, h, users, _ := newAuthEnv()
	mustSignup(t, e, h, "shopper@example.com", "hunter22")

	signin := doJSON(e, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"shopper@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, signin.Code)
	refresh := cookieByName(t, signin, refreshCookieName)

	rec := doJSON(e, h.Refresh, http.MethodPost, "/v1/auth/refresh", "",
		&http.Cookie{Name: refreshCookieName, Value: refresh.Value})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, users.rows[1].RefreshToken)

	// the stored token follows the rotation
	rotated := cookieByName(t, rec, refreshCookieName)
	require.Equal(t, rotated.Value, *users.rows[1].RefreshToken)
}

func TestRefreshRejectsGarbageAndMissingToken(t *testing.T) {
	e, h, _, _ := newAuthEnv()

	rec := doJSON(e, h.Refresh, http.MethodPost, "/v1/auth/refresh", "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, h.Refresh, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"not.a.jwt"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestForgotPasswordDoesNotLeakAccountExistence(t *testing.T) {
	e, h, users, mailer := newAuthEnv()
	mustSignup(t, e, h, "shopper@example.com", "hunter22")

	known := doJSON(e, h.ForgotPassword, http.MethodPost, "/v1/auth/forgot-password",
		`{"email":"shopper@example.com"}`)
	unknown := doJSON(e, h.ForgotPassword, http.MethodPost, "/v1/auth/forgot-password",
		`{"email":"nobody@example.com"}`)

	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	require.Equal(t, known.Body.String(), unknown.Body.String(),
		"responses must be indistinguishable")

	require.Len(t, mailer.events, 1, "only the existing account gets mail")
	require.NotNil(t, users.rows[1].ResetToken)
	require.Contains(t, mailer.events[0].ResetLink, *users.rows[1].ResetToken)
}

func TestResetPasswordWithToken(t *testing.T) {
	e, h, users, _ := newAuthEnv()
	mustSignup(t, e, h, "shopper@example.com", "hunter22")

	rec := doJSON(e, h.ForgotPassword, http.MethodPost, "/v1/auth/forgot-password",
		`{"email":"shopper@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := *users.rows[1].ResetToken

	rec = doJSON(e, h.ResetPassword, http.MethodPost, "/v1/auth/reset-password",
		`{"token":"`+token+`","new_password":"new-secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	u := users.rows[1]
	require.True(t, utils.VerifyPassword(u.PasswordHash, "new-secret"))
	require.Nil(t, u.ResetToken, "a consumed credential must be cleared")
	require.Nil(t, u.ResetCode)

	// the token cannot be redeemed twice
	rec = doJSON(e, h.ResetPassword, http.MethodPost, "/v1/auth/reset-password",
		`{"token":"`+token+`","new_password":"again"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	e, h, users, _ := newAuthEnv()
	mustSignup(t, e, h, "shopper@example.com", "hunter22")

	past := time.Now().UTC().Add(-time.Minute)
	tok := "expired-token"
	u := users.rows[1]
	u.ResetToken = &tok
	u.ResetTokenExpires = &past
	users.rows[1] = u

	rec := doJSON(e, h.ResetPassword, http.MethodPost, "/v1/auth/reset-password",
		`{"token":"expired-token","new_password":"new-secret"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResetPasswordRequiresCredential(t *testing.T) {
	e, h, _, _ := newAuthEnv()

	rec := doJSON(e, h.ResetPassword, http.MethodPost, "/v1/auth/reset-password",
		`{"new_password":"new-secret"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, h.ResetPassword, http.MethodPost, "/v1/auth/reset-password",
		`{"token":"anything","new_password":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
