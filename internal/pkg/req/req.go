/*
Package req provides helper functions for HTTP request parsing and data binding.

It decodes JSON request bodies with a size cap and maps every decoding failure
to an application error, so handlers only deal with *errs.CustomError.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"mocrs/internal/pkg/errs"
)

// MaxJSONBodySize caps every JSON request body (1 MiB).
const MaxJSONBodySize int64 = 1 << 20

// BindJSON binds the JSON request body to dst.
// Unknown fields and trailing content are rejected, as is an empty body.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	return bind(w, r, dst, true, false)
}

// BindJSONLoose binds the JSON request body to dst, ignoring unknown fields.
// An empty or missing body leaves dst untouched and is not an error.
func BindJSONLoose(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	return bind(w, r, dst, false, true)
}

func bind(w http.ResponseWriter, r *http.Request, dst any, strict, allowEmpty bool) *errs.CustomError {
	if r.Body == nil || r.Body == http.NoBody {
		if allowEmpty {
			return nil
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		if allowEmpty && r.ContentLength == 0 {
			return nil
		}
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	if strict {
		decoder.DisallowUnknownFields()
	}

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		case errors.Is(err, io.EOF) && allowEmpty:
			return nil
		default:
			return errs.NewError(errs.ErrInvalidJSONFormat)
		}
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
