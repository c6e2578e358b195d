// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers password-reset mail.
package queue

// PasswordResetRequestedEvent is published when a user asks for a password
// reset and the email is known.  It carries everything the mail worker
// needs to render and send the reset message without querying the primary
// database.
type PasswordResetRequestedEvent struct {
    UserID      uint64 `json:"user_id"`
    Email       string `json:"email"`
    DisplayName string `json:"display_name"`
    ResetLink   string `json:"reset_link"`
    RequestedAt string `json:"requested_at"`
}
