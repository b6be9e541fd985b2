// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with user-friendly error messages. It integrates
// with the API's error format for consistent error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Error translation to human-readable messages
//   - APIError conversion matching the API's error envelope
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type RecommendRequest struct {
//	    UserID      string `validate:"required,max=128"`
//	    Size        int    `validate:"min=0,max=100"`
//	    ContentType string `validate:"omitempty,oneof=article video live mixed"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req RecommendRequest
//	    if err := json.Decode(r.Body, &req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - oneof=a b c: Value must be one of the listed choices
//
// Numeric validations:
//   - min=n, max=n: Inclusive bounds
//   - gte=n, lte=n: Inclusive bounds (alternative spelling)
//
// The full tag reference is documented by go-playground/validator.
package validation
