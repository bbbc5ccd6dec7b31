package domain

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

const (
	MissingHomeMessage = "Missing ES home directory Argument"
	MissingPortMessage = "Missing ES port Argument"
)

var (
	ErrMissingHome     = errors.New(MissingHomeMessage)
	ErrMissingPort     = errors.New(MissingPortMessage)
	ErrLaunchFailed    = errors.New("node launch failed")
	ErrAlreadyStarted  = errors.New("supervisor already started")
	ErrNodeClosed      = errors.New("node is closed")
	ErrNotStarted      = errors.New("node not started")
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTimeout         = errors.New("operation timeout")
	ErrUnknownScript   = errors.New("unknown native script")
	ErrDataDisabled    = errors.New("node does not hold data")
	ErrMulticastDenied = errors.New("multicast discovery is not supported")
)

type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryLaunch        ErrorCategory = "launch"
	CategoryNetwork       ErrorCategory = "network"
	CategoryStorage       ErrorCategory = "storage"
	CategoryRaft          ErrorCategory = "raft"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryScript        ErrorCategory = "script"
)

type ErrorSeverity string

const (
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

type ErrorContext struct {
	Component string
	Operation string
	NodeName  string
	File      string
	Line      int
	Function  string
	Details   map[string]interface{}
}

// DomainError carries the classification used to decide whether a failure is
// fatal for the host process.
type DomainError struct {
	Category   ErrorCategory
	Severity   ErrorSeverity
	Code       string
	Message    string
	Cause      error
	Retryable  bool
	UserFacing bool
	Timestamp  time.Time
	Context    ErrorContext
}

func (e *DomainError) Error() string {
	scope := string(e.Category)
	if e.Context.Component != "" {
		scope = scope + ":" + e.Context.Component
	}

	msg := fmt.Sprintf("[%s] %s: %s", scope, e.Code, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError of the same category.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if errors.As(target, &other) {
		return other.Category == e.Category
	}
	return false
}

type ErrorOption func(*DomainError)

func WithComponent(component string) ErrorOption {
	return func(e *DomainError) {
		e.Context.Component = component
	}
}

func WithOperation(operation string) ErrorOption {
	return func(e *DomainError) {
		e.Context.Operation = operation
	}
}

func WithNodeName(name string) ErrorOption {
	return func(e *DomainError) {
		e.Context.NodeName = name
	}
}

func WithContextDetail(key string, value interface{}) ErrorOption {
	return func(e *DomainError) {
		if e.Context.Details == nil {
			e.Context.Details = make(map[string]interface{})
		}
		e.Context.Details[key] = value
	}
}

func WithSeverity(severity ErrorSeverity) ErrorOption {
	return func(e *DomainError) {
		e.Severity = severity
	}
}

func newDomainError(category ErrorCategory, message string, cause error, opts ...ErrorOption) *DomainError {
	err := &DomainError{
		Category:  category,
		Severity:  SeverityError,
		Code:      inferCode(category, message),
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}

	switch category {
	case CategoryValidation, CategoryConfiguration:
		err.UserFacing = true
	case CategoryNetwork, CategoryRaft, CategoryTimeout:
		err.Retryable = true
	case CategoryLaunch:
		err.Severity = SeverityCritical
	}

	if pc, file, line, ok := runtime.Caller(2); ok {
		err.Context.File = file
		err.Context.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			err.Context.Function = fn.Name()
		}
	}

	for _, opt := range opts {
		opt(err)
	}
	return err
}

func NewDomainErrorWithCategory(category ErrorCategory, message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(category, message, cause, opts...)
}

func NewValidationError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryValidation, message, cause, opts...)
}

func NewConfigurationError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryConfiguration, message, cause, opts...)
}

func NewLaunchError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryLaunch, message, cause, opts...)
}

func NewNetworkError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryNetwork, message, cause, opts...)
}

func NewStorageError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryStorage, message, cause, opts...)
}

func NewRaftError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryRaft, message, cause, opts...)
}

func NewTimeoutError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryTimeout, message, cause, opts...)
}

func NewScriptError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryScript, message, cause, opts...)
}

func inferCode(category ErrorCategory, message string) string {
	prefix := strings.ToUpper(string(category))
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "missing") || strings.Contains(lower, "required"):
		return prefix + "_REQUIRED"
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		return prefix + "_TIMEOUT"
	case strings.Contains(lower, "not found"):
		return prefix + "_NOT_FOUND"
	case strings.Contains(lower, "closed"):
		return prefix + "_CLOSED"
	case strings.Contains(lower, "leader"):
		return prefix + "_LEADER"
	case strings.Contains(lower, "connection") || strings.Contains(lower, "listen"):
		return prefix + "_CONNECTION"
	default:
		return prefix + "_INVALID"
	}
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

func GetErrorCategory(err error) ErrorCategory {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Category
	}
	return ""
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Retryable
	}
	return errors.Is(err, ErrTimeout) || strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// IsFatal reports whether err must halt the host process.
func IsFatal(err error) bool {
	switch GetErrorCategory(err) {
	case CategoryConfiguration, CategoryLaunch:
		return true
	}
	return errors.Is(err, ErrMissingHome) || errors.Is(err, ErrMissingPort) || errors.Is(err, ErrLaunchFailed)
}

func IsConfigurationError(err error) bool {
	return GetErrorCategory(err) == CategoryConfiguration
}

func IsLaunchError(err error) bool {
	return GetErrorCategory(err) == CategoryLaunch
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
