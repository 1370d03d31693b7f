// Package errors provides custom error types for the spoton system.
// These errors enable programmatic error checking across the catalog,
// overlay, favorites, ticket, and review packages.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// It's an alias for the standard library errors.As for convenience.
var As = errors.As

// Join wraps a list of errors into one, discarding nils.
// It's an alias for the standard library errors.Join for convenience.
var Join = errors.Join

// Common sentinel errors for the spoton system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermissionDenied indicates that the principal may not perform the operation
	ErrPermissionDenied = errors.New("permission denied")

	// ErrReadOnly indicates an attempt to modify a read-only resource
	ErrReadOnly = errors.New("read only")

	// ErrSoldOut indicates that an event has no remaining inventory
	ErrSoldOut = errors.New("sold out")

	// ErrStoreUnavailable indicates that a backing store is temporarily unavailable
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// PermissionError represents a denied mutation on an event document
type PermissionError struct {
	Principal string
	Resource  string
	ID        string
	Message   string
}

// Error implements the error interface
func (e *PermissionError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("principal %s may not modify %s %s: %s", e.Principal, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("principal %s: %s", e.Principal, e.Message)
}

// Is implements errors.Is support
func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// NewPermissionError creates a new PermissionError
func NewPermissionError(principal, resource, id, message string) *PermissionError {
	return &PermissionError{Principal: principal, Resource: resource, ID: id, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// StorageError represents an error from the device-local key-value store
type StorageError struct {
	Operation string // "get", "set", "delete"
	Key       string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage error during %s of %s: %s", e.Operation, e.Key, e.Message)
	}
	return fmt.Sprintf("storage error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError
func NewStorageError(operation, key string, err error) *StorageError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &StorageError{
		Operation: operation,
		Key:       key,
		Message:   message,
		Err:       err,
	}
}

// StoreError represents an error from the remote document store
type StoreError struct {
	Operation  string // "list", "get", "create", "update", "delete", "subscribe"
	Collection string
	ID         string
	Message    string
	Err        error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s/%s: %s", e.Operation, e.Collection, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Collection, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError
func NewStoreError(operation, collection, id string, err error) *StoreError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &StoreError{
		Operation:  operation,
		Collection: collection,
		ID:         id,
		Message:    message,
		Err:        err,
	}
}

// APIError represents an error from an external HTTP API
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode >= 500 {
		return target == ErrStoreUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsPermissionDenied checks if an error is a permission error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsReadOnly checks if an error indicates a read-only resource
func IsReadOnly(err error) bool {
	return errors.Is(err, ErrReadOnly)
}

// IsSoldOut checks if an error indicates exhausted inventory
func IsSoldOut(err error) bool {
	return errors.Is(err, ErrSoldOut)
}

// IsStoreUnavailable checks if an error indicates store unavailability
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapStorage wraps an error as a StorageError
func WrapStorage(operation, key string, err error) error {
	if err == nil {
		return nil
	}
	return NewStorageError(operation, key, err)
}

// WrapStore wraps an error as a StoreError
func WrapStore(operation, collection, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewStoreError(operation, collection, id, err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(service string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}
