// Package errors defines error types for the engine analysis service.
//
// This package provides structured error types that wrap the different failure
// scenarios of driving a UCI engine subprocess. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and errors.AsType.
package errors
