// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package gameapi is a small JSON client for the game server's REST API.

Account actions (register, login, logout, username and password recovery)
and skill lookups are owned by the game server; the site forwards them
with Client.Do and translates the reply. Transport failures are returned
as errors, while every HTTP status comes back as a Response so callers
can pass upstream status codes through.

	client := gameapi.New("http://localhost:3000/api", 5*time.Second)
	resp, err := client.Do(ctx, http.MethodPost, "/login", body, nil)

Status probes /status with a shorter timeout.
*/
package gameapi
