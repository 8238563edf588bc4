package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	inErrors "github.com/edgestore/storefront/internal/errors"
)

func TestStatusCodeFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "not found", err: inErrors.ErrNotFound, expected: http.StatusNotFound},
		{
			name:     "unknown product, wrapped",
			err:      fmt.Errorf("failed adding item with error=%w", inErrors.ErrUnknownProduct),
			expected: http.StatusNotFound,
		},
		{name: "insufficient stock", err: inErrors.ErrInsufficientStock, expected: http.StatusConflict},
		{name: "product unavailable", err: inErrors.ErrProductUnavailable, expected: http.StatusConflict},
		{name: "already cancelled", err: inErrors.ErrAlreadyCancelled, expected: http.StatusConflict},
		{name: "invalid quantity", err: inErrors.ErrInvalidQuantity, expected: http.StatusBadRequest},
		{name: "empty cart", err: inErrors.ErrEmptyCart, expected: http.StatusBadRequest},
		{name: "missing auth", err: inErrors.ErrEmptyAuth, expected: http.StatusUnauthorized},
		{name: "invalid token", err: inErrors.ErrTokenInvalid, expected: http.StatusUnauthorized},
		// A duplicate order id is an internal invariant breach, never the
		// caller's fault.
		{name: "duplicate order", err: inErrors.ErrDuplicateOrder, expected: http.StatusInternalServerError},
		{name: "unclassified", err: errors.New("connection reset"), expected: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StatusCodeFromError(tc.err))
		})
	}
}
