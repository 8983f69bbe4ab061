// Package common contains shared constants and sentinel errors used across
// the dashboard client and the development API server.
package common

const (
	// AuthorizationHeaderName carries the bearer access token on outbound
	// HTTP requests.
	AuthorizationHeaderName = "Authorization"

	// AuthorizationMetadataKey is the gRPC metadata key for the bearer token.
	AuthorizationMetadataKey = "authorization"

	// BearerPrefix precedes the access token in the authorization value.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName tags every gateway request for log correlation.
	RequestIDHeaderName = "X-Request-ID"

	// AccessTokenCookieName is the cookie the perimeter guard inspects.
	AccessTokenCookieName = "accessToken"

	// SessionRecordKey names the persisted session record.
	SessionRecordKey = "auth-storage"
)
