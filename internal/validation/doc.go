// Decidio - Preference Duel Game and Taste Inference Service
// Copyright 2026 The Decidio Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/decidio/duel

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library in a thread-safe
// singleton with user-friendly error messages. It converts field failures
// into the API's VALIDATION_ERROR format so clients see the same error shape
// whether a request failed structural validation here or semantic validation
// in the game orchestrator.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Error translation to human-readable messages
//   - APIError conversion matching the response envelope
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type GameStartRequest struct {
//	    PlayerName  string `json:"player_name" validate:"required,min=1,max=64"`
//	    Category    string `json:"category" validate:"omitempty,max=64"`
//	    TotalRounds int    `json:"total_rounds" validate:"omitempty,min=1,max=50"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req GameStartRequest
//	    if err := decodeBody(w, r, &req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	        return
//	    }
//
//	    // proceed with valid request
//	}
//
// # Tags Used by the API Surface
//
// String and id validations:
//   - required: field must not be empty
//   - min=n / max=n: length bounds in characters
//   - len=24: exact length, used for hex ObjectIDs
//   - hexadecimal: hex digits only, the other half of the ObjectID check
//
// Numeric validations:
//   - min=n / max=n: value bounds, e.g. ratings are min=1,max=5
//   - gte=n / lte=n: explicit comparisons
//
// Collection validations:
//   - dive: apply the following tags to each element, used for pick id lists
//   - oneof=a b c: enum membership
//
// # API Error Integration
//
// ToAPIError produces errors matching the response envelope:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Rating must be at most 5",
//	    "details": {"field": "Rating", "tag": "max", "value": 9}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "PlayerName: PlayerName is required; Rating: Rating must be at least 1",
//	    "details": {
//	        "fields": [
//	            {"field": "PlayerName", "tag": "required", "message": "..."},
//	            {"field": "Rating", "tag": "min", "message": "..."}
//	        ]
//	    }
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # See Also
//
//   - internal/api: request handlers using validation
//   - github.com/go-playground/validator/v10: underlying library
package validation
