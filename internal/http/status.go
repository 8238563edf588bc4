package http

import (
	"errors"
	"net/http"

	inErrors "github.com/edgestore/storefront/internal/errors"
)

// StatusCodeFromError maps domain errors onto http status codes so
// controllers answer consistently.
func StatusCodeFromError(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrNotFound),
		errors.Is(err, inErrors.ErrUnknownProduct):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrInsufficientStock),
		errors.Is(err, inErrors.ErrProductUnavailable),
		errors.Is(err, inErrors.ErrAlreadyCancelled):
		return http.StatusConflict
	case errors.Is(err, inErrors.ErrInvalidQuantity),
		errors.Is(err, inErrors.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, inErrors.ErrEmptyAuth),
		errors.Is(err, inErrors.ErrTokenInvalid):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
