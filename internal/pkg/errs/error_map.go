/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Avatar and Profile Errors
	// Unknown profiles answer 400: clients render a badge for 404.
	ErrUserNotFound:   {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusBadRequest},
	ErrAvatarNotFound: {Code: ErrAvatarNotFound, Message: "Avatar not found.", Status: http.StatusNotFound},
	ErrAvatarTooLarge: {Code: ErrAvatarTooLarge, Message: "Avatar exceeds the %d byte limit.", Status: http.StatusRequestEntityTooLarge},
	ErrAvatarEmpty:    {Code: ErrAvatarEmpty, Message: "Avatar is empty.", Status: http.StatusBadRequest},

	// 3xxx: Authentication, Session, and Security Errors
	ErrUnauthorized:     {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrBanned:           {Code: ErrBanned, Message: "You are banned from this server.", Status: http.StatusForbidden},
	ErrHandshakeInvalid: {Code: ErrHandshakeInvalid, Message: "Verification failed. Please try again.", Status: http.StatusUnauthorized},
	ErrSessionKicked:    {Code: ErrSessionKicked, Message: "You were signed in on another device."},
	ErrForbidden:        {Code: ErrForbidden, Message: "Access denied.", Status: http.StatusForbidden},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "Avatar storage failed. Please try again.", Status: http.StatusInternalServerError},
	ErrUpstreamFailed:    {Code: ErrUpstreamFailed, Message: "Session server unavailable. Please try again later.", Status: http.StatusBadGateway},
}
