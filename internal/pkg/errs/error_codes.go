/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Avatar and Profile Errors
const (
	// ErrUserNotFound indicates that no user record exists for the requested identifier.
	ErrUserNotFound = 2101

	// ErrAvatarNotFound indicates that the user has no stored avatar.
	ErrAvatarNotFound = 2201

	// ErrAvatarTooLarge indicates that the uploaded avatar exceeds the configured size limit.
	ErrAvatarTooLarge = 2202

	// ErrAvatarEmpty indicates that the upload body was empty.
	ErrAvatarEmpty = 2203
)

// 3xxx: Authentication, Session, and Security Errors
const (
	// ErrUnauthorized indicates a missing, unknown or expired token.
	ErrUnauthorized = 3001

	// ErrBanned indicates that the authenticated user is banned.
	ErrBanned = 3002

	// ErrHandshakeInvalid indicates that the server id is unknown, expired or was rejected by the session server.
	ErrHandshakeInvalid = 3003

	// ErrSessionKicked indicates that the live connection was replaced by a newer one.
	ErrSessionKicked = 3004

	// ErrForbidden indicates that the admin key is missing or wrong.
	ErrForbidden = 3005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates a durable storage read/write/hash failure.
	ErrFileStorageFailed = 5001

	// ErrUpstreamFailed indicates that the session server could not be reached.
	ErrUpstreamFailed = 5002
)
