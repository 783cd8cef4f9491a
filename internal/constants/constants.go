package constants

// Centralized constants for env keys, routes, errors and log fields.
const (
	// Environment variable keys
	EnvConfigPath          = "TITAN_CONFIG"
	EnvDatabasePath        = "TITAN_DB"
	EnvSessionSecret       = "SESSION_SECRET"
	EnvGoogleClientID      = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret  = "GOOGLE_CLIENT_SECRET"
	EnvSessionSecureCookie = "SESSION_SECURE_COOKIE"

	DefaultConfigPath   = "./titan_config.yaml"
	DefaultDatabasePath = "./data/titans.db"

	// Session / Cookie names
	CookieSessionName = "t_session"

	// Google OAuth constants
	GoogleOAuthRedirect = "postmessage"
	GoogleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
)

var (
	// Scopes for Google userinfo
	GoogleUserInfoScopes = []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"}
)

// Routes used by the backend router
const (
	RouteAPIPrefix       = "/api"
	RouteAbilities       = "/abilities"
	RouteLeaderboard     = "/leaderboard"
	RouteVersion         = "/version"
	RouteAuthLogin       = "/auth/login"
	RouteAuthLogout      = "/auth/logout"
	RouteAuthGoogle      = "/auth/google"
	RoutePlayerStats     = "/player-stats"
	RouteTitans          = "/titans"
	RouteCurrentGame     = "/games/current"
	RouteGameByID        = "/games/:gameID"
	RouteGameAction      = "/games/:gameID/action"
	RouteGameLeave       = "/games/:gameID/leave"
	RouteWebSocket       = "/ws"
	RouteHealth          = "/healthz"
	ContextKeyPlayerID   = "playerID"
	ContextKeyPlayerName = "playerName"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyDetails = "details"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest         = "Invalid request"
	ErrMissingGoogleEnv       = "Missing GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET in environment"
	ErrUsernameRequired       = "username is required"
	ErrUsernameTooLong        = "username exceeds 32 characters"
	ErrGameNotFound           = "Game not found"
	ErrNoActiveGame           = "No active game"
	ErrPlayerNotInThisGame    = "Player not in this game"
	ErrGameFinished           = "Game is finished"
	ErrInvalidAction          = "Invalid action"
	ErrFailedFetchLeaderboard = "Failed to fetch leaderboard"
	ErrFailedFetchStats       = "Failed to fetch stats"
	ErrFailedFetchTitans      = "Failed to fetch titans"

	ErrFailedExchangeToken    = "Failed to exchange token"
	ErrFailedGetUserInfo      = "Failed to get user info"
	ErrFailedReadUserData     = "Failed to read user data: %s"
	ErrNoEmailInGoogleProfile = "No email in Google profile"
	ErrFailedCreateSession    = "Failed to create session"

	ErrAuthRequired   = "Authentication required"
	ErrInvalidSession = "Invalid session"
)

// Logging field names
const (
	LogFieldGameID    = "game_id"
	LogFieldPlayerID  = "player_id"
	LogFieldTitanID   = "titan_id"
	LogFieldAbilityID = "ability_id"
	LogFieldRound     = "round"
	LogFieldAction    = "action"
	LogFieldRoomID    = "room_id"
	LogFieldEvent     = "event"
	LogFieldName      = "name"
	LogFieldAddr      = "addr"
	LogFieldReason    = "reason"
)
