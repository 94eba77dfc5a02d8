// Package exception provides the error taxonomy shared by every upload component.
// All domain failures surface as *UploadError, classified by Kind, so the batch
// loop can log and count them uniformly while errors.Is keeps working on the
// wrapped cause.
package exception

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Kind classifies an UploadError.
type Kind string

const (
	// KindPathNotFound is returned when a dot path cannot be resolved in a record or group.
	KindPathNotFound Kind = "PathNotFound"
	// KindInvalidDate is returned when a configured date field does not parse.
	KindInvalidDate Kind = "InvalidDate"
	// KindNotFound is returned when a catalog item or customer does not exist.
	KindNotFound Kind = "NotFound"
	// KindPersistence is returned when a collaborator fails to save, delete or reindex.
	KindPersistence Kind = "PersistenceError"
	// KindConfiguration is returned for missing or malformed settings.
	KindConfiguration Kind = "ConfigurationError"
	// KindInvalidValue is returned when a value is present but unusable (e.g. a non-numeric price).
	KindInvalidValue Kind = "InvalidValue"
)

// Sentinels usable with errors.Is; every UploadError matches the sentinel of its kind.
var (
	ErrPathNotFound  = errors.New(string(KindPathNotFound))
	ErrInvalidDate   = errors.New(string(KindInvalidDate))
	ErrNotFound      = errors.New(string(KindNotFound))
	ErrPersistence   = errors.New(string(KindPersistence))
	ErrConfiguration = errors.New(string(KindConfiguration))
	ErrInvalidValue  = errors.New(string(KindInvalidValue))
)

var sentinels = map[Kind]error{
	KindPathNotFound:  ErrPathNotFound,
	KindInvalidDate:   ErrInvalidDate,
	KindNotFound:      ErrNotFound,
	KindPersistence:   ErrPersistence,
	KindConfiguration: ErrConfiguration,
	KindInvalidValue:  ErrInvalidValue,
}

// UploadError is the single error type raised by upload components.
type UploadError struct {
	// Module is the component that raised the error (e.g. "mutation", "urlkey", "uploader").
	Module string
	// Kind is the taxonomy entry.
	Kind Kind
	// Message is a concise, human-readable description.
	Message string
	// OriginalErr is the wrapped cause, if any.
	OriginalErr error
}

// NewUploadError creates a new UploadError.
func NewUploadError(module string, kind Kind, message string, originalErr error) *UploadError {
	return &UploadError{
		Module:      module,
		Kind:        kind,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewUploadErrorf creates an UploadError with a formatted message.
// If the last argument is an error it becomes the wrapped cause and is not
// consumed by the format string.
//
// Example:
//
//	NewUploadErrorf("mutation", KindPersistence, "failed to save product %s", sku, err)
func NewUploadErrorf(module string, kind Kind, format string, a ...interface{}) *UploadError {
	var originalErr error
	args := a
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	return NewUploadError(module, kind, fmt.Sprintf(format, args...), originalErr)
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Module, e.Kind, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Module, e.Kind, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *UploadError) Unwrap() error {
	return e.OriginalErr
}

// Is reports whether target is the sentinel for this error's kind.
func (e *UploadError) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the Kind of the first UploadError in err's chain.
// The second return value is false when err carries no UploadError.
func KindOf(err error) (Kind, bool) {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries an UploadError of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// ExtractErrorMessage returns the cleaner Message for UploadErrors and Error() otherwise.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ue *UploadError
	if errors.As(err, &ue) {
		if ue.OriginalErr != nil {
			return fmt.Sprintf("%s: %v", ue.Message, ue.OriginalErr)
		}
		return ue.Message
	}
	return err.Error()
}

// Append aggregates errors the way the run summary reports them.
// Nil errors are ignored; the result is nil when nothing was appended.
func Append(agg error, errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	if len(nonNil) == 0 {
		return agg
	}
	return multierror.Append(agg, nonNil...)
}

// Count returns the number of errors aggregated in err.
func Count(err error) int {
	if err == nil {
		return 0
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.Len()
	}
	return 1
}
