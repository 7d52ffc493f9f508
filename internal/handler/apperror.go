package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidSignature = &AppError{http.StatusUnauthorized, "INVALID_SIGNATURE", "Webhook signature is invalid"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrRateLimited      = &AppError{http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrStreamingUnsupported = &AppError{http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "Streaming is not supported by this connection"}

	ErrProviderNotConfigured = &AppError{http.StatusInternalServerError, "PROVIDER_NOT_CONFIGURED", "VERIFF_API_KEY is not configured"}
	ErrNoSessionURL          = &AppError{http.StatusInternalServerError, "NO_SESSION_URL", "No verification URL returned from Veriff"}
	ErrProviderUnavailable   = &AppError{http.StatusBadGateway, "PROVIDER_UNAVAILABLE", "Verification provider is unavailable"}
)

// providerError mirrors the provider's own status back to the caller.
func providerError(status int) *AppError {
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return &AppError{status, "PROVIDER_ERROR", "Failed to create verification session"}
}
