package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrProviderNotConfigured = errors.New("verification provider API key is not configured")
	ErrNoSessionURL          = errors.New("provider returned no verification URL")
	ErrProviderUnavailable   = errors.New("verification provider unavailable")
)

// ProviderError is a non-success answer from the verification provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider responded with status %d", e.StatusCode)
}
