package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

const (
	// AccessCodePrefix is prepended to every generated mentee access code
	AccessCodePrefix = "idp-"

	accessCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	accessCodeLength  = 5

	sessionTokenBytes = 32
)

// GenerateSessionToken returns an opaque URL-safe session token built from
// 32 bytes of cryptographically secure randomness.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateAccessCode returns a mentee access code of the form idp-XXXXX
// where X is drawn from uppercase letters and digits. Codes are short and
// not globally unique by construction; the storage layer's unique
// constraint is the final arbiter.
func GenerateAccessCode() (string, error) {
	// Bytes at or above this limit are rejected so every charset index is
	// equally likely
	const limit = 256 - 256%len(accessCodeCharset)

	code := make([]byte, 0, accessCodeLength)
	buf := make([]byte, accessCodeLength)
	for len(code) < accessCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate access code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, accessCodeCharset[int(b)%len(accessCodeCharset)])
			if len(code) == accessCodeLength {
				break
			}
		}
	}
	return AccessCodePrefix + string(code), nil
}

// TimingSafeCompare performs a timing-safe comparison of two strings
// This prevents timing attacks when comparing tokens
func TimingSafeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
