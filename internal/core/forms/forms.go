// Package forms implements form validation for the submission handlers.
// A submission is a flat field→value map; validation produces a
// field→message map that the page templates render inline next to each
// input. Validation failures are data, never errors; a non-nil error
// from Validate means a collaborator (such as the email-uniqueness
// lookup) failed and the request cannot proceed.
package forms

import (
	"strings"

	"github.com/polarbid/polarbid/internal/i18n"
)

// =============================================================================
// Types
// =============================================================================

// Values holds the submitted field values, keyed by field name.
type Values map[string]string

// Errors holds validation messages, keyed by field name. An empty map
// means the submission is valid. A field carries at most one message.
type Errors map[string]string

// Valid reports whether the submission passed validation.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Validator checks a single field value. A non-empty msg rejects the
// value; a non-nil err is a collaborator failure and aborts the whole
// validation.
type Validator func(value string) (msg string, err error)

// Chain combines validators into one, running them in order and
// stopping at the first message or failure. Used when a field has both
// a format check and a lookup (email format, then uniqueness).
func Chain(validators ...Validator) Validator {
	return func(value string) (string, error) {
		for _, v := range validators {
			msg, err := v(value)
			if err != nil || msg != "" {
				return msg, err
			}
		}
		return "", nil
	}
}

// =============================================================================
// Engine
// =============================================================================

// Validate applies required-field checks and per-field validators to a
// submission.
//
// For every field present in values: a required field that is empty
// after trimming gets the required-field message and its validator is
// skipped; otherwise the validator registered under the field's name
// runs and a non-empty returned message is recorded.
//
// Only keys present in values are examined. Handlers build Values from
// their full field list (an input missing from the request body submits
// as ""), so a required field always reaches the engine, possibly
// empty.
func Validate(values Values, validators map[string]Validator, required []string) (Errors, error) {
	req := make(map[string]bool, len(required))
	for _, name := range required {
		req[name] = true
	}

	errs := Errors{}
	for name, value := range values {
		if req[name] && strings.TrimSpace(value) == "" {
			errs[name] = i18n.T("form.required")
			continue
		}
		validator, ok := validators[name]
		if !ok {
			continue
		}
		msg, err := validator(value)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			errs[name] = msg
		}
	}
	return errs, nil
}
