// Package common contains shared constants and sentinel errors used across
// Ducky components.
package common

// TokenCookieName is the cookie that carries the auth token for web clients.
const TokenCookieName = "token"

// AuthorizationHeaderName carries "Bearer <token>" for non-cookie clients.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "
