package common

// AuthorizationHeaderName carries the bearer token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme prefix of AuthorizationHeaderName values.
const BearerPrefix = "Bearer "

// TokenTypeBearer is the token_type reported alongside issued token pairs.
const TokenTypeBearer = "bearer"
