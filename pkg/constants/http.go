// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package constants holds shared header names and context keys.
package constants

// Constants for the HTTP request headers
const (
	// SignatureHeader carries the provider's HMAC signature over the raw webhook body.
	SignatureHeader string = "X-Signature"

	// APIKeyHeader carries the provider API key on webhook deliveries.
	APIKeyHeader string = "X-Api-Key"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"
