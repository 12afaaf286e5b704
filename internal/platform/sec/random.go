// Copyright (c) 2026 MotoFleet. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// GenerateSecureToken returns size random bytes encoded as unpadded base64url,
// suitable for single-use links.
func GenerateSecureToken(size int) (string, error) {
	if size <= 0 {
		return "", errors.New("sec: token size must be positive")
	}
	buffer := make([]byte, size)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
