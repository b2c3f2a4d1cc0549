// Copyright 2025 The Folio Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// GeocodingError describes a failed lookup against a geocoding provider.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit too many requests.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exhausted or key rejected.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout the provider did not answer in time.
	ErrorTypeTimeout
	// ErrorTypeNotFound no result for the query.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest the provider refused the request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError transport failure or provider unavailable.
	ErrorTypeNetworkError
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeQuotaExceeded:
		return "quota_exceeded"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeInvalidRequest:
		return "invalid_request"
	case ErrorTypeNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func isType(err error, t ErrorType) bool {
	var geoErr *GeocodingError

	return errors.As(err, &geoErr) && geoErr.Type == t
}

// IsRateLimitError reports whether err was caused by rate limiting.
func IsRateLimitError(err error) bool {
	if isType(err, ErrorTypeRateLimit) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError reports whether err was caused by an exhausted quota.
func IsQuotaExceededError(err error) bool {
	if isType(err, ErrorTypeQuotaExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError reports whether err was a timeout.
func IsTimeoutError(err error) bool {
	if isType(err, ErrorTypeTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// IsNotFoundError reports whether the provider had nothing for the query.
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// ClassifyHTTPError maps a non-200 HTTP status to a GeocodingError.
func ClassifyHTTPError(statusCode int, body string) *GeocodingError {
	var cause error
	if body = strings.TrimSpace(body); body != "" {
		cause = errors.New(body)
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return &GeocodingError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
			Err:     cause,
		}
	case http.StatusForbidden:
		return &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
			Err:     cause,
		}
	case http.StatusBadRequest:
		return &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
			Err:     cause,
		}
	case http.StatusNotFound:
		return &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: "location not found",
			Err:     cause,
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
			Err:     cause,
		}
	default:
		return &GeocodingError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
			Err:     cause,
		}
	}
}

// ClassifyStatus maps a Google Maps Platform response status to an error. It
// returns nil for OK.
func ClassifyStatus(status, message string) *GeocodingError {
	var cause error
	if message != "" {
		cause = errors.New(message)
	}

	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return &GeocodingError{Type: ErrorTypeNotFound, Message: "google maps status: " + status, Err: cause}
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "google maps status: " + status, Err: cause}
	case "REQUEST_DENIED", "INVALID_REQUEST":
		return &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "google maps status: " + status, Err: cause}
	default:
		return &GeocodingError{Type: ErrorTypeUnknown, Message: "google maps status: " + status, Err: cause}
	}
}
