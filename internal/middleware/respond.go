// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides the HTTP middleware of the evops API: JSON
// errors, per-client rate limiting, request timeouts and request logging.
package middleware

import (
	"encoding/json"
	"net"
	"net/http"
)

// ErrorBody is the error detail every middleware rejection carries. Its shape
// matches the envelope written by the API handlers.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// APIError is the JSON document written for a rejected request.
type APIError struct {
	Error ErrorBody `json:"error"`
}

// WriteAPIError writes status and a JSON error document.
func WriteAPIError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIError{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

// clientIP returns the host part of RemoteAddr. chi's RealIP middleware
// rewrites RemoteAddr from proxy headers before this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
