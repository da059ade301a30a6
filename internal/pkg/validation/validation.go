package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// GSTIN: 2-digit state code, 10-char PAN, entity digit, 'Z', checksum character.
var gstRe = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// IEC is a 10-character alphanumeric code issued by DGFT.
var iecRe = regexp.MustCompile(`^[0-9A-Z]{10}$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return IsValidPassword(fl.Field().String())
		})
	})
	return validate
}

// Error is a user-facing validation failure (HTTP 400).
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsError reports whether err is (or wraps) a validation Error.
func IsError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// Struct validates a request struct using `validate` tags and returns the first failure as a
// user-facing *Error.
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &Error{Message: message(verrs[0])}
	}
	return err
}

func message(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Missing required field: %s", field)
	case "email":
		return "Invalid email format"
	case "password":
		return "Invalid password format"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("Invalid value for %s", field)
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword: at least 8 characters with a letter, a digit and a special character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

// IsValidGST checks the GSTIN shape (not the checksum).
func IsValidGST(gst string) bool {
	return gstRe.MatchString(strings.ToUpper(strings.TrimSpace(gst)))
}

func IsValidIEC(iec string) bool {
	return iecRe.MatchString(strings.ToUpper(strings.TrimSpace(iec)))
}
