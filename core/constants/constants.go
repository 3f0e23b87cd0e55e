package constants

// Context keys
const (
	ContextTokenData = "token_data"
)

// Database pool tuning
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Token scopes
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Cache key prefixes
const (
	TokenBlacklistPrefix = "token:blacklist:"
)
