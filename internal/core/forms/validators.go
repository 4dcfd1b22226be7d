package forms

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/badoux/checkmail"

	"github.com/polarbid/polarbid/internal/core/format"
	"github.com/polarbid/polarbid/internal/i18n"
)

// =============================================================================
// Validator Registry
// =============================================================================
//
// Each constructor returns a stateless Validator. Validators that need
// an external collaborator take it as an explicit parameter; nothing is
// captured from ambient state.

// Email checks the value against standard email grammar.
func Email() Validator {
	return func(value string) (string, error) {
		if checkmail.ValidateFormat(value) != nil {
			return i18n.T("form.email"), nil
		}
		return "", nil
	}
}

// EmailNotTaken rejects emails that already own an account. The
// row-existence check is injected; its failure aborts validation.
func EmailNotTaken(exists func(email string) (bool, error)) Validator {
	return func(value string) (string, error) {
		taken, err := exists(value)
		if err != nil {
			return "", err
		}
		if taken {
			return i18n.T("form.emailTaken"), nil
		}
		return "", nil
	}
}

// Price requires a floating value greater than zero.
func Price() Validator {
	return func(value string) (string, error) {
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n <= 0 {
			return i18n.T("form.price"), nil
		}
		return "", nil
	}
}

// EndDate requires a strict YYYY-MM-DD calendar date at least 24 hours
// in the future. The clock is injected so handlers and tests share one
// notion of now.
func EndDate(now func() time.Time) Validator {
	return func(value string) (string, error) {
		if !format.IsDateValid(value) {
			return i18n.T("form.endDate"), nil
		}
		t, _ := time.Parse(format.DateLayout, value)
		if t.Before(now().Add(24 * time.Hour)) {
			return i18n.T("form.endDate"), nil
		}
		return "", nil
	}
}

// BidStep requires an integer greater than zero.
func BidStep() Validator {
	return func(value string) (string, error) {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return i18n.T("form.bidStep"), nil
		}
		return "", nil
	}
}

// Category requires membership in the allowed category-id set.
func Category(allowed map[int64]bool) Validator {
	return func(value string) (string, error) {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || !allowed[id] {
			return i18n.T("form.category"), nil
		}
		return "", nil
	}
}

// imageExtensions are the accepted upload extensions, lower case.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ImageExtension checks an uploaded filename's extension,
// case-insensitively.
func ImageExtension() Validator {
	return func(value string) (string, error) {
		ext := strings.ToLower(filepath.Ext(value))
		if !imageExtensions[ext] {
			return i18n.T("form.imageExt"), nil
		}
		return "", nil
	}
}
