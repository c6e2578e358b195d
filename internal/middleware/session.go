package middleware

// session.go resolves the anonymous cart identity.  A guest addresses their
// cart with an opaque session id carried in the X-Session-ID header (or a
// session_id query parameter).  When a guest arrives with neither a user
// nor a session id, a fresh session id is synthesized and echoed back in
// the response header so the client can persist it; the cart engine is
// never called with an empty identity.

import (
    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
)

// HeaderSessionID is the header carrying the anonymous cart session id.
const HeaderSessionID = "X-Session-ID"

// CartSession extracts or synthesizes the cart session identity and stores
// it in the context under "session_id".  It must run after OptionalJWT so
// an authenticated user suppresses session synthesis.
func CartSession() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            sid := c.Request().Header.Get(HeaderSessionID)
            if sid == "" {
                sid = c.QueryParam("session_id")
            }
            if sid == "" && c.Get("user_id") == nil {
                // synthesize a temporary session identity for the guest
                sid = uuid.NewString()
            }
            if sid != "" {
                c.Set("session_id", sid)
                c.Response().Header().Set(HeaderSessionID, sid)
            }
            return next(c)
        }
    }
}
