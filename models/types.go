package models

// Request types

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ForgotUsernameRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequestRequest struct {
	Email string `json:"email"`
}

// Key is "username:token" as issued in the game server's reset email
type ResetPasswordRequest struct {
	Key      string `json:"key"`
	Password string `json:"password"`
}

type ResetPICRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Upstream request bodies

type UpstreamResetRequest struct {
	Username string `json:"username"`
}

type UpstreamResetPassword struct {
	Username     string `json:"username"`
	RequestToken string `json:"requestToken"`
	NewObj       string `json:"newObj"`
}

// Response types

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PingbackRewards struct {
	NX         int `json:"nx"`
	VotePoints int `json:"votePoints"`
}

type PingbackStatusResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Rewards PingbackRewards `json:"rewards"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ServerStatus is the public view of the game server's /status document.
// Only Online and Players are set when the game server is unreachable.
type ServerStatus struct {
	Online       bool    `json:"online"`
	Players      int     `json:"players"`
	Version      *string `json:"version,omitempty"`
	StartTime    *string `json:"startTime,omitempty"`
	IsShutdown   *bool   `json:"isShutdown,omitempty"`
	ShutdownMin  *int    `json:"shutdownMin,omitempty"`
	RemainingMin *int    `json:"remainingMin,omitempty"`
}

// Domain types

// GameStatus is the game server's own status payload
type GameStatus struct {
	IsShutdown   bool   `json:"IsShutdown"`
	Playercount  int    `json:"Playercount"`
	Version      string `json:"Version"`
	StartTime    string `json:"StartTime"`
	ShutdownMin  int    `json:"ShutdownMin"`
	RemainingMin int    `json:"RemainingMin"`
}

// Public converts the upstream payload to the response served to the site
func (s GameStatus) Public() ServerStatus {
	return ServerStatus{
		Online:       !s.IsShutdown,
		Players:      s.Playercount,
		Version:      &s.Version,
		StartTime:    &s.StartTime,
		IsShutdown:   &s.IsShutdown,
		ShutdownMin:  &s.ShutdownMin,
		RemainingMin: &s.RemainingMin,
	}
}

// OfflineStatus is served whenever the game server cannot be reached
func OfflineStatus() ServerStatus {
	return ServerStatus{Online: false, Players: 0}
}
