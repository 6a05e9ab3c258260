// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential checks for inbound requests.

# Pingback Keys

Vote sites authenticate pingbacks with a shared key:

	err := auth.ValidatePingbackKey(declared, cfg.PingbackKey)

The comparison is constant-time. If no key is configured every pingback is
rejected with ErrPingbackKeyNotConfigured, which callers report as a server
error rather than an authentication failure.

# Account Passwords

The game server stores bcrypt hashes in the users table:

	err := auth.CheckPassword(hash, password)

Any failure, including a hash that is not bcrypt, returns an error wrapping
ErrInvalidCredentials.
*/
package auth
