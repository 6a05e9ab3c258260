// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPingbackKeyNotConfigured = errors.New("pingback key not configured")
	ErrInvalidPingbackKey       = errors.New("invalid pingback key")
	ErrInvalidCredentials       = errors.New("invalid username or password")
)

// ValidatePingbackKey checks the key a vote site sent against the configured
// one. An unconfigured key rejects everything.
func ValidatePingbackKey(declared, expected string) error {
	if expected == "" {
		return ErrPingbackKeyNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(declared), []byte(expected)) != 1 {
		return ErrInvalidPingbackKey
	}
	return nil
}

// CheckPassword compares a plaintext password with the bcrypt hash stored
// by the game server.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	if err != nil {
		// malformed hash, treat as a failed login rather than a server error
		return errors.Join(ErrInvalidCredentials, err)
	}
	return nil
}
