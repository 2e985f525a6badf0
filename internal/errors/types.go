package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeBuild      ErrorType = "build"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeUnsupportedOperation       = "UNSUPPORTED_OPERATION"
	ErrCodeImageLoadFailure           = "IMAGE_LOAD_FAILURE"
	ErrCodeRemoteListFetchFailure     = "REMOTE_LIST_FETCH_FAILURE"
	ErrCodeTemplatePlaceholderMissing = "TEMPLATE_PLACEHOLDER_MISSING"
	ErrCodeConfigInvalid              = "INVALID_CONFIG"
	ErrCodePathOutsideRoot            = "PATH_OUTSIDE_ROOT"
	ErrCodeTemplateRead               = "TEMPLATE_READ_FAILED"
	ErrCodeWriteFailed                = "WRITE_FAILED"
)

// Sentinels for errors.Is. Comparison uses type and code only.
var (
	ErrUnsupportedOperation       = &KuviaError{Type: ErrorTypeInternal, Code: ErrCodeUnsupportedOperation}
	ErrImageLoadFailure           = &KuviaError{Type: ErrorTypeIO, Code: ErrCodeImageLoadFailure}
	ErrRemoteListFetchFailure     = &KuviaError{Type: ErrorTypeNetwork, Code: ErrCodeRemoteListFetchFailure}
	ErrTemplatePlaceholderMissing = &KuviaError{Type: ErrorTypeBuild, Code: ErrCodeTemplatePlaceholderMissing}
	ErrPathOutsideRoot            = &KuviaError{Type: ErrorTypeSecurity, Code: ErrCodePathOutsideRoot}
)

// KuviaError is a structured error type with context.
type KuviaError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	Recoverable bool
}

// Error implements the error interface.
func (e *KuviaError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *KuviaError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *KuviaError) Is(target error) bool {
	var t *KuviaError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *KuviaError) WithContext(key string, value interface{}) *KuviaError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithComponent adds component context.
func (e *KuviaError) WithComponent(component string) *KuviaError {
	e.Component = component

	return e
}

// Error creation functions

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *KuviaError {
	return &KuviaError{
		Type:        ErrorTypeSecurity,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewBuildError creates a build error.
func NewBuildError(code, message string, cause error) *KuviaError {
	return &KuviaError{
		Type:        ErrorTypeBuild,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *KuviaError {
	return &KuviaError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *KuviaError {
	return &KuviaError{
		Type:    ErrorTypeNetwork,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *KuviaError {
	return &KuviaError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *KuviaError {
	return &KuviaError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// Helper functions for common errors

// UnsupportedOperation reports a key based call on a list that has no key function.
func UnsupportedOperation(op string) *KuviaError {
	return NewInternalError(ErrCodeUnsupportedOperation,
		op+": no key function set for list", nil).
		WithContext("operation", op)
}

// ImageLoadFailure reports that one gallery image could not be loaded.
func ImageLoadFailure(url string, cause error) *KuviaError {
	err := NewIOError(ErrCodeImageLoadFailure, "invalid or missing image: "+url, cause).
		WithContext("url", url)
	err.Recoverable = true

	return err
}

// RemoteListFetchFailure reports that the remote image list could not be retrieved.
func RemoteListFetchFailure(url string, cause error) *KuviaError {
	return NewNetworkError(ErrCodeRemoteListFetchFailure,
		"failed to load images list from "+url, cause).
		WithContext("url", url)
}

// TemplatePlaceholderMissing reports a template placeholder with no value.
func TemplatePlaceholderMissing(placeholder string) *KuviaError {
	return NewBuildError(ErrCodeTemplatePlaceholderMissing,
		fmt.Sprintf("template placeholder '%s' is not defined", placeholder), nil).
		WithContext("placeholder", placeholder)
}

// PathOutsideRoot creates a security error for a path escaping the served root.
func PathOutsideRoot(path string) *KuviaError {
	return NewSecurityError(ErrCodePathOutsideRoot, "path outside served root: "+path).
		WithContext("path", path)
}

// Error recovery and handling utilities

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ke *KuviaError
	if errors.As(err, &ke) {
		return ke.Recoverable
	}

	return false
}

// IsSecurityError checks if an error is security-related.
func IsSecurityError(err error) bool {
	var ke *KuviaError
	if errors.As(err, &ke) {
		return ke.Type == ErrorTypeSecurity
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err at a level that matches its category. Recoverable errors
// are warnings, everything else is an error.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var ke *KuviaError
	if !errors.As(err, &ke) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	fields := []interface{}{"type", ke.Type, "code", ke.Code}
	if ke.Component != "" {
		fields = append(fields, "component", ke.Component)
	}
	for k, v := range ke.Context {
		fields = append(fields, k, v)
	}

	switch {
	case IsRecoverable(err):
		h.logger.Warn(ctx, err, "Recovered from error", fields...)
	case IsSecurityError(err):
		h.logger.Error(ctx, err, "Security error occurred", fields...)
	default:
		h.logger.Error(ctx, err, "Error occurred", fields...)
	}
}

// ValidationError interface for field-specific validation errors.
type ValidationError interface {
	error
	Field() string
	Value() interface{}
	Suggestions() []string
}

// FieldValidationError implements ValidationError for specific field errors.
type FieldValidationError struct {
	FieldName    string
	FieldValue   interface{}
	ErrorMessage string
	HelpText     []string
}

// Error implements the error interface.
func (fve *FieldValidationError) Error() string {
	return fmt.Sprintf("validation error in field '%s': %s", fve.FieldName, fve.ErrorMessage)
}

// Field returns the field name that failed validation.
func (fve *FieldValidationError) Field() string {
	return fve.FieldName
}

// Value returns the invalid value.
func (fve *FieldValidationError) Value() interface{} {
	return fve.FieldValue
}

// Suggestions returns helpful suggestions for fixing the error.
func (fve *FieldValidationError) Suggestions() []string {
	return fve.HelpText
}

// NewFieldValidationError creates a new field validation error.
func NewFieldValidationError(
	field string,
	value interface{},
	message string,
	suggestions ...string,
) *FieldValidationError {
	return &FieldValidationError{
		FieldName:    field,
		FieldValue:   value,
		ErrorMessage: message,
		HelpText:     suggestions,
	}
}

// ValidationErrorCollection represents a collection of validation errors.
type ValidationErrorCollection struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (vec *ValidationErrorCollection) Error() string {
	if len(vec.Errors) == 0 {
		return "no validation errors"
	}
	if len(vec.Errors) == 1 {
		return vec.Errors[0].Error()
	}

	messages := make([]string, 0, len(vec.Errors))
	for _, err := range vec.Errors {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("validation failed with %d errors: %s", len(vec.Errors), strings.Join(messages, "; "))
}

// AddField adds a field validation error to the collection.
func (vec *ValidationErrorCollection) AddField(
	field string,
	value interface{},
	message string,
	suggestions ...string,
) {
	vec.Errors = append(vec.Errors, NewFieldValidationError(field, value, message, suggestions...))
}

// HasErrors returns true if there are any validation errors.
func (vec *ValidationErrorCollection) HasErrors() bool {
	return len(vec.Errors) > 0
}

// ToKuviaError converts the validation collection to a KuviaError.
func (vec *ValidationErrorCollection) ToKuviaError() *KuviaError {
	if !vec.HasErrors() {
		return nil
	}

	context := make(map[string]interface{})
	for _, err := range vec.Errors {
		context[err.Field()] = map[string]interface{}{
			"value":       err.Value(),
			"suggestions": err.Suggestions(),
		}
	}

	err := NewConfigError(ErrCodeConfigInvalid, vec.Error())
	err.Context = context
	return err
}
