/*
Package handler provides the HTTP handlers and routing setup.

This file maps domain errors to CustomError codes.
*/
package handler

import (
	"errors"

	"moonhub/internal/app/auth"
	"moonhub/internal/app/avatar"
	"moonhub/internal/app/storage"
	"moonhub/internal/app/user"
	"moonhub/internal/pkg/errs"
)

// mutationError maps avatar mutation failures; an unresolved token is unauthorized.
func mutationError(err error, maxSize int64) *errs.CustomError {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return errs.NewError(errs.ErrUnauthorized)
	case errors.Is(err, avatar.ErrBanned):
		return errs.NewError(errs.ErrBanned)
	case errors.Is(err, avatar.ErrTooLarge):
		return errs.NewError(errs.ErrAvatarTooLarge, maxSize)
	case errors.Is(err, avatar.ErrEmpty):
		return errs.NewError(errs.ErrAvatarEmpty)
	case errors.Is(err, storage.ErrNotFound):
		return errs.NewError(errs.ErrAvatarNotFound)
	default:
		return errs.NewError(errs.ErrFileStorageFailed, err)
	}
}

// queryError maps profile and download failures; an unknown subject is user-not-found.
func queryError(err error) *errs.CustomError {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return errs.NewError(errs.ErrUserNotFound)
	case errors.Is(err, storage.ErrNotFound):
		return errs.NewError(errs.ErrAvatarNotFound)
	default:
		return errs.NewError(errs.ErrFileStorageFailed, err)
	}
}

// handshakeError maps auth.Service failures.
func handshakeError(err error) *errs.CustomError {
	switch {
	case errors.Is(err, auth.ErrInvalidUsername):
		return errs.NewError(errs.ErrInvalidParams)
	case errors.Is(err, auth.ErrUnknownServerID), errors.Is(err, auth.ErrNotJoined):
		return errs.NewError(errs.ErrHandshakeInvalid)
	default:
		return errs.NewError(errs.ErrUpstreamFailed)
	}
}
