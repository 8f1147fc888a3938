package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SessionIDLength is the number of random bytes behind a browser session ID.
const SessionIDLength = 32

// GenerateSessionID returns a base64 URL-encoded string of SessionIDLength
// random bytes, safe for cookies without further encoding.
func GenerateSessionID() (string, error) {
	buf := make([]byte, SessionIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// IsValidSessionID reports whether id has the shape produced by
// GenerateSessionID. Cookies that fail this check are replaced rather than
// looked up.
func IsValidSessionID(id string) bool {
	if len(id) != base64.RawURLEncoding.EncodedLen(SessionIDLength) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(id)
	return err == nil
}
