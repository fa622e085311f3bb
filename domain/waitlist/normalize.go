package waitlist

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gazon-app/waitlist/pkg/constants"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	MessageEmailRequired = "Please enter your email"
	MessageEmailInvalid  = "Please enter a valid email address"
)

var (
	ErrEmailRequired = errors.New("email is required")
	ErrEmailInvalid  = errors.New("email is malformed")
)

// ValidationError is reported to the user verbatim and never reaches the store.
type ValidationError struct {
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	return "invalid waitlist email: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UserMessage is the notification text for this validation failure.
func (e *ValidationError) UserMessage() string {
	if errors.Is(e.Err, ErrEmailRequired) {
		return MessageEmailRequired
	}
	return MessageEmailInvalid
}

var emailValidator = validator.New()

var emailRule = "email,max=" + strconv.Itoa(constants.MaxEmailLength)

// NormalizeEmail is applied before every comparison and every insert:
// surrounding whitespace is trimmed, the value is NFC-composed and lower-cased.
func NormalizeEmail(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return cases.Lower(language.Und).String(norm.NFC.String(trimmed))
}

// ValidateEmail returns the normalized address or a *ValidationError.
func ValidateEmail(raw string) (string, error) {
	email := NormalizeEmail(raw)
	if email == "" {
		return "", &ValidationError{Input: raw, Err: ErrEmailRequired}
	}

	if err := emailValidator.Var(email, emailRule); err != nil {
		return "", &ValidationError{Input: raw, Err: ErrEmailInvalid}
	}

	return email, nil
}
