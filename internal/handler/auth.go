package handler

import (
    "context"              // context with cancellation for DB calls
    "log"                  // fire-and-forget failure reporting
    "net/http"             // HTTP status codes and cookie primitives
    "strings"              // string manipulation utilities
    "time"                 // cookie lifetimes and DB timeouts

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/online-store/internal/config"  // app configuration
    "github.com/iliyamo/online-store/internal/model"   // domain entities
    "github.com/iliyamo/online-store/internal/queue"   // mail event payloads
    "github.com/iliyamo/online-store/internal/service" // token lifecycle
    "github.com/iliyamo/online-store/internal/utils"   // hashing helpers
)

// Cookie names and the path restriction for the refresh cookie.  The
// refresh token cookie is scoped to the refresh endpoint only, so it is
// never transmitted on any other request (defense in depth: a leaked
// request log of ordinary traffic cannot contain it).
const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/v1/auth/refresh"
)

// AuthUserStore is the slice of the user repository the auth endpoints need.
type AuthUserStore interface {
	Create(ctx context.Context, email, passwordHash string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByResetToken(ctx context.Context, token string) (model.User, error)
	GetByResetCode(ctx context.Context, code string) (model.User, error)
	ReplacePassword(ctx context.Context, id uint64, passwordHash string) error
}

// ResetMailer dispatches password-reset notifications.  Failures are
// reported, not retried; they never block the reset response.
type ResetMailer interface {
	PublishPasswordResetRequested(ctx context.Context, ev queue.PasswordResetRequestedEvent) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  AuthUserStore
	Tokens *service.TokenService
	Mailer ResetMailer
}

func NewAuthHandler(cfg config.Config, u AuthUserStore, t *service.TokenService, m ResetMailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Mailer: m}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token       string `json:"token"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type userPart struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// setAuthCookies writes the token pair as HTTP-only cookies.  The access
// cookie covers the whole API; the refresh cookie is restricted to the
// refresh route.  Secure is tied to the environment so local development
// over plain HTTP still works.
func (h *AuthHandler) setAuthCookies(c echo.Context, pair service.TokenPair) {
	secure := h.Cfg.Env == "prod"
	c.SetCookie(&http.Cookie{
		Name:     accessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		Expires:  pair.AccessExp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		Expires:  pair.RefreshExp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookies expires both cookies on their respective paths.
func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	secure := h.Cfg.Env == "prod"
	for _, ck := range []struct{ name, path string }{
		{accessCookieName, "/"},
		{refreshCookieName, refreshCookiePath},
	} {
		c.SetCookie(&http.Cookie{
			Name:     ck.name,
			Value:    "",
			Path:     ck.path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// Signup: create the user and return its public projection.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, hash)
	if err != nil {
		return respondErr(c, err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         u.ID,
		"email":      u.Email,
		"created_at": u.CreatedAt,
	})
}

// Signin: verify credentials, issue a fresh pair, set cookies.  An unknown
// or inactive account answers 401; a wrong password answers 403, so the
// two failure classes stay distinguishable to the client.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid credentials"})
	}

	pair, err := h.Tokens.IssuePair(ctx, u.ID, u.Email, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	h.setAuthCookies(c, pair)

	// raw tokens are returned alongside the cookies for non-cookie clients
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          toUserPart(u),
	})
}

// Signout clears both cookies.  It is idempotent and changes no backend
// state; the refresh token on the user row stays valid until rotated away.
func (h *AuthHandler) Signout(c echo.Context) error {
	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "signed out"})
}

// ForgotPassword answers the same generic message whether or not the email
// exists, so the endpoint cannot be used to enumerate accounts.  When the
// account exists a reset token is generated and a mail event is published;
// a publish failure is logged and deliberately not surfaced.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	generic := echo.Map{"message": "if the email exists, a reset link has been sent"}

	var req forgotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	token, err := h.Tokens.GenerateResetToken(ctx, email)
	if err != nil {
		// unknown email answers exactly like a known one
		return c.JSON(http.StatusOK, generic)
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		return c.JSON(http.StatusOK, generic)
	}
	name := "there"
	if u.FirstName != nil && *u.FirstName != "" {
		name = *u.FirstName
	}
	ev := queue.PasswordResetRequestedEvent{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: name,
		ResetLink:   h.Cfg.FrontendURL + "/reset-password?token=" + token,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Mailer.PublishPasswordResetRequested(ctx, ev); err != nil {
		log.Printf("forgot-password: mail publish failed for user %d: %v", u.ID, err)
	}
	return c.JSON(http.StatusOK, generic)
}

// ResetPassword consumes a reset token or code.  Whichever credential type
// is present is looked up; expired or unknown credentials answer 404.  On
// success the password hash is replaced and both reset credentials are
// cleared in the same statement.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.NewPassword) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/code and new_password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var (
		u   model.User
		err error
	)
	switch {
	case strings.TrimSpace(req.Token) != "":
		u, err = h.Users.GetByResetToken(ctx, strings.TrimSpace(req.Token))
	case strings.TrimSpace(req.Code) != "":
		u, err = h.Users.GetByResetCode(ctx, strings.TrimSpace(req.Code))
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token or code required"})
	}
	if err != nil {
		return respondErr(c, err)
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	if err := h.Users.ReplacePassword(ctx, u.ID, hash); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Refresh rotates the token pair.  The refresh token is read from its
// cookie first, falling back to the body for non-cookie clients.  A
// missing or rejected token answers 403.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var presented string
	if ck, err := c.Cookie(refreshCookieName); err == nil && ck.Value != "" {
		presented = ck.Value
	} else {
		var req refreshReq
		_ = c.Bind(&req)
		presented = strings.TrimSpace(req.RefreshToken)
	}
	if presented == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "refresh token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pair, u, err := h.Tokens.Rotate(ctx, presented)
	if err != nil {
		return respondErr(c, err)
	}
	h.setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"user":          toUserPart(u),
	})
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"email":   c.Get("email"),
		"role":    c.Get("role"),
	})
}
