// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest: username, password, email
  - LoginRequest: username, password
  - ForgotUsernameRequest: email
  - ResetPasswordRequestRequest: email
  - ResetPasswordRequest: key ("username:token"), password
  - ResetPICRequest: username, password

The vote pingback does not use these: it arrives as a form or as a GTop100
batch document and is decoded by package vote.

# Upstream Types

Bodies sent to the game server:

  - UpstreamResetRequest: username
  - UpstreamResetPassword: username, requestToken, newObj

# Response Types

  - SuccessResponse: success, message
  - ErrorResponse: error
  - PingbackStatusResponse: status, message, rewards{nx, votePoints}
  - HealthResponse: status
  - ServerStatus: online, players, version, startTime, isShutdown,
    shutdownMin, remainingMin

# Domain Types

  - GameStatus: the game server's status payload (IsShutdown, Playercount,
    Version, StartTime, ShutdownMin, RemainingMin)
*/
package models
