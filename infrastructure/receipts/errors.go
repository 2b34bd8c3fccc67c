package receipts

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNoItems           = errors.New("no items on receipt")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrBalanceOnly       = errors.New("status BALANCED is only reachable by balancing the receipt")
	ErrTerminalStatus    = errors.New("receipt is in a terminal status")
	ErrScanInProgress    = errors.New("another scan for this user is in progress")
)

// NotFound wraps ErrNotFound with the missing entity.
func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// RequireAffected converts a write that touched no rows into a not-found
// error so the enclosing transaction aborts.
func RequireAffected(res sql.Result, err error, what string) error {
	if err != nil {
		return err
	}
	if res == nil {
		return NotFound(what)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFound(what)
	}
	return nil
}

// ScanNotFound maps sql.ErrNoRows from a single-row select to ErrNotFound.
func ScanNotFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return NotFound(what)
	}
	return err
}

// ValidationError reports rejected input fields.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	var verrs validator.ValidationErrors
	if errors.As(e.Err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		return "validation: " + strings.Join(parts, "; ")
	}
	return "validation: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags on v.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
