// Package errors defines error types for the chromedevtools SDK.
//
// This package provides structured error types for the failure scenarios of a
// remote debugging session: transport disconnects, protocol error responses,
// payload decode failures and unsupported features. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and errors.AsType.
package errors
