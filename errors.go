package accounts

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeTokenExpired identifies expired session or reset tokens
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed identifies tokens that failed to parse
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeEmailTaken identifies duplicate email registrations
	TextCodeEmailTaken = "EMAIL_TAKEN"
	// TextCodeCPFTaken identifies duplicate CPF registrations
	TextCodeCPFTaken = "CPF_TAKEN"
)

// ErrUserNotFound is returned when a referenced account does not exist.
// The authentication path masks it as ErrInvalidCredentials; the reset and
// profile paths surface it as is.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials is the single outward-facing authentication failure.
// Callers cannot tell a missing account from a password mismatch.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for session or reset tokens past their window.
var ErrTokenExpired = goerrors.New("token has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token cannot be decoded or parsed.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeBadRequest)

// ErrEmailTaken is returned when registering an email already on file.
var ErrEmailTaken = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrCPFTaken is returned when registering a CPF already on file.
var ErrCPFTaken = goerrors.New("cpf already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeCPFTaken).
	WithCode(goerrors.CodeConflict)

// ErrNoEmptyString is the error for empty required values
var ErrNoEmptyString = errors.New("value should not be an empty string")

// ErrMismatchedHashAndPassword is the error for a password mismatch
var ErrMismatchedHashAndPassword = errors.New("hash and password mismatch")

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired") ||
		strings.Contains(err.Error(), "token has expired")
}

// IsMalformedTokenError will check for tokens that failed to decode or parse
func IsMalformedTokenError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed")
}
