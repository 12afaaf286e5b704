// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Field Identifiers

// JSON field names used in validation details.
const (
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldRole            = "role"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
	FieldToken           = "token"
)

// # Client Messages

const (
	// MessageLoggedOut acknowledges a logout.
	MessageLoggedOut = "Logged out successfully"

	// MessagePasswordChanged acknowledges a password change.
	MessagePasswordChanged = "Password changed successfully"

	// MessageResetRequested is returned whether or not the account exists.
	MessageResetRequested = "If an account exists for this email, a reset link has been sent"

	// MessagePasswordReset acknowledges a completed reset.
	MessagePasswordReset = "Password has been reset"

	// MessageInvalidRefreshToken is the single refresh failure message.
	MessageInvalidRefreshToken = "Invalid or expired refresh token"
)
