/*
Package req provides helper functions for HTTP request parsing and data binding.

It wraps JSON binding and size-limited body reads with the application's error codes.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"moonhub/internal/pkg/errs"
)

// MaxJSONBodySize bounds JSON request bodies (admin calls are tiny).
const MaxJSONBodySize int64 = 64 << 10

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBodySize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// ReadBody reads the whole request body, refusing bodies larger than limit bytes.
func ReadBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, *errs.CustomError) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errs.NewError(errs.ErrAvatarTooLarge, limit)
		}
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	return body, nil
}
