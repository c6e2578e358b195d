package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"               // HTTP status codes for responses
    "strings"                // string utilities for prefix checking and trimming

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and email claims into the request
// context.  The provided secret must match the one used when issuing
// tokens.  This middleware should wrap protected routes so that handlers
// can access authenticated user information via `c.Get("user_id")` and
// `c.Get("email")`.  The access token is accepted from the Authorization
// header or, as a fallback for cookie clients, from the access_token
// cookie.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := bearerOrCookie(c)
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing access token"})
            }
            claims, ok := parseAccess(secret, raw)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            // Store the subject (user ID), email and role claims in the
            // context.  Handlers and downstream middleware access these
            // values via c.Get(); type assertions are left to consumers.
            c.Set("user_id", claims["sub"])
            c.Set("email", claims["email"])
            c.Set("role", claims["role"])
            return next(c)
        }
    }
}

// OptionalJWT behaves like JWTAuth but lets unauthenticated requests pass
// through without claims set.  Cart endpoints use it so guests with only a
// session id reach the handler while signed-in users are still identified.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := bearerOrCookie(c)
            if raw != "" {
                if claims, ok := parseAccess(secret, raw); ok {
                    c.Set("user_id", claims["sub"])
                    c.Set("email", claims["email"])
                    c.Set("role", claims["role"])
                }
            }
            return next(c)
        }
    }
}

// bearerOrCookie extracts the raw access token from the Authorization
// header, falling back to the access_token cookie.
func bearerOrCookie(c echo.Context) string {
    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimPrefix(auth, "Bearer ")
    }
    if ck, err := c.Cookie("access_token"); err == nil && ck.Value != "" {
        return ck.Value
    }
    return ""
}

// parseAccess validates an HS256 access token and returns its claims.
// Tokens signed with a different algorithm family are rejected.
func parseAccess(secret, raw string) (jwt.MapClaims, bool) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return nil, false
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    return claims, ok
}
