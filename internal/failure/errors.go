// Package failure classifies version-control failures into coarse categories
// that callers can act on.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Category is a coarse failure class.
type Category string

const (
	CategoryUnknown         Category = "unknown"
	CategoryEnvironment     Category = "environment"
	CategoryNotFound        Category = "not_found"
	CategoryNotARepository  Category = "not_a_repository"
	CategoryNotAWorkingCopy Category = "not_a_working_copy"
	CategoryAuthentication  Category = "authentication"
	CategoryNoChanges       Category = "no_changes"
	CategoryDivergence      Category = "divergence"
	CategoryValidation      Category = "validation"
	CategoryProcessLaunch   Category = "process_launch"
)

var (
	ErrUnknown         = errors.New("operation failed")
	ErrEnvironment     = errors.New("required tool is not available")
	ErrNotFound        = errors.New("path not found")
	ErrNotARepository  = errors.New("not a git repository")
	ErrNotAWorkingCopy = errors.New("no working copy found")
	ErrAuthentication  = errors.New("authentication failed")
	ErrNoChanges       = errors.New("nothing to commit")
	ErrDivergence      = errors.New("histories have diverged")
	ErrValidation      = errors.New("invalid input")
	ErrProcessLaunch   = errors.New("failed to launch process")
)

var sentinels = map[Category]error{
	CategoryUnknown:         ErrUnknown,
	CategoryEnvironment:     ErrEnvironment,
	CategoryNotFound:        ErrNotFound,
	CategoryNotARepository:  ErrNotARepository,
	CategoryNotAWorkingCopy: ErrNotAWorkingCopy,
	CategoryAuthentication:  ErrAuthentication,
	CategoryNoChanges:       ErrNoChanges,
	CategoryDivergence:      ErrDivergence,
	CategoryValidation:      ErrValidation,
	CategoryProcessLaunch:   ErrProcessLaunch,
}

// Sentinel returns the sentinel error matching a category.
func (c Category) Sentinel() error {
	if err, ok := sentinels[c]; ok {
		return err
	}
	return ErrUnknown
}

// Error is a classified failure of a single operation.
type Error struct {
	Category Category
	Op       string // operation name, e.g. "git pull"
	Message  string // human-readable summary
	Detail   string // raw diagnostic text (stderr, library error, guidance)
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(e.Category.Sentinel().Error())
	}
	if e.Detail != "" {
		b.WriteString("\n\n")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error's category.
func (e *Error) Is(target error) bool {
	return target == e.Category.Sentinel()
}

// New creates a classified error.
func New(category Category, op, message string) *Error {
	return &Error{Category: category, Op: op, Message: message}
}

// Wrap creates a classified error around an underlying cause.
func Wrap(category Category, op string, err error) *Error {
	return &Error{Category: category, Op: op, Err: err}
}

// Validation reports a rejected input before any process or library call.
func Validation(op, format string, args ...any) *Error {
	return New(CategoryValidation, op, fmt.Sprintf(format, args...))
}

// CategoryOf returns the category of err, or CategoryUnknown.
func CategoryOf(err error) Category {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Category
	}
	return CategoryUnknown
}

// WithDetail returns a copy of the error with extra diagnostic text appended.
func (e *Error) WithDetail(detail string) *Error {
	cp := *e
	if detail == "" {
		return &cp
	}
	if cp.Detail != "" {
		cp.Detail += "\n\n" + detail
	} else {
		cp.Detail = detail
	}
	return &cp
}
