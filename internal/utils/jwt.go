package utils // package utils provides helper functions for token creation and hashing

import (
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SignedToken pairs a serialized JWT with its expiration time.  Access and
// refresh tokens share this shape; they differ only in secret, lifetime and
// claims.  Access tokens are short‑lived and carry the subject plus the
// user's email; refresh tokens are long‑lived and carry the subject only.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 access token for a user.  The
// JWT includes standard claims: subject (sub), email, role, expiration
// (exp) and issued at (iat).  Handlers and middleware read sub/email/role
// back out to identify the caller on protected endpoints.
func NewAccessToken(secret string, userID uint64, email, role string, ttl time.Duration) (SignedToken, error) {
    exp := time.Now().UTC().Add(ttl)
    claims := jwt.MapClaims{
        "sub":   userID,
        "email": email,
        "role":  role,
        "exp":   exp.Unix(),
        "iat":   time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 refresh token.  It is signed
// with a secret distinct from the access secret and carries only the
// subject claim.  The serialized value is additionally mirrored onto the
// user row so the server can revoke it by overwrite; see the token service.
func NewRefreshToken(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
    exp := time.Now().UTC().Add(ttl)
    claims := jwt.MapClaims{
        "sub": userID,
        "exp": exp.Unix(),
        "iat": time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseSubject validates a token's signature and expiry against the given
// secret and returns the numeric subject claim.  It rejects tokens signed
// with a different algorithm family.  Both access and refresh tokens can
// be parsed with this function by supplying the matching secret.
func ParseSubject(secret, raw string) (uint64, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, jwt.ErrSignatureInvalid
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, jwt.ErrTokenSignatureInvalid
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, jwt.ErrTokenInvalidClaims
    }
    sub, ok := claims["sub"].(float64)
    if !ok {
        return 0, jwt.ErrTokenInvalidClaims
    }
    return uint64(sub), nil
}
