package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags so that sensitive columns (password hash, refresh
// token, reset credentials) are never serialized by accident.
//
// Two invariants are enforced by the repository layer rather than the
// schema: at most one of {ResetToken, ResetCode} is live at a time
// (setting one clears the other), and an inactive user cannot sign in
// even with correct credentials.
//
// Fields:
//  ID                – primary key identifier of the user.
//  Email             – unique email address, stored lowercased.
//  PasswordHash      – bcrypt hashed password.
//  FirstName         – optional given name.
//  LastName          – optional family name.
//  Role              – role name (USER or ADMIN).
//  IsActive          – whether the account may sign in.
//  RefreshToken      – current refresh token value (nil when signed out).
//  RefreshTokenExp   – expiry of the stored refresh token.
//  ResetToken        – live password-reset token (nil when none).
//  ResetTokenExpires – expiry of the reset token.
//  ResetCode         – live 6-digit password-reset code (nil when none).
//  ResetCodeExpires  – expiry of the reset code.
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type User struct {
    ID                uint64     // users.id
    Email             string     // users.email
    PasswordHash      string     // users.password_hash
    FirstName         *string    // users.first_name (nullable)
    LastName          *string    // users.last_name (nullable)
    Role              string     // users.role
    IsActive          bool       // users.is_active
    RefreshToken      *string    // users.refresh_token (nullable)
    RefreshTokenExp   *time.Time // users.refresh_token_exp (nullable)
    ResetToken        *string    // users.reset_token (nullable)
    ResetTokenExpires *time.Time // users.reset_token_expires (nullable)
    ResetCode         *string    // users.reset_code (nullable)
    ResetCodeExpires  *time.Time // users.reset_code_expires (nullable)
    CreatedAt         time.Time  // users.created_at
    UpdatedAt         time.Time  // users.updated_at
}
