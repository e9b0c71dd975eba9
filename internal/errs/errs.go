// Package errs defines the error classes shared across the generator.
//
// Every failure surfaced by this module belongs to exactly one class:
// configuration, schema, resource, or I/O. Call sites wrap through
// pingcap/errors so stack traces survive classification.
package errs

import (
	stderrors "errors"

	"github.com/pingcap/errors"
)

var (
	// ErrConfig marks invalid user input: scale factor, format names, flags.
	ErrConfig = errors.New("config error")
	// ErrSchema marks schema mismatches and unsupported type mappings.
	ErrSchema = errors.New("schema error")
	// ErrResource marks allocation and registration failures.
	ErrResource = errors.New("resource error")
	// ErrIO marks failed file operations, including negative async results.
	ErrIO = errors.New("io error")
)

// Config returns a configuration error with a formatted message.
func Config(format string, args ...any) error {
	return errors.Annotatef(ErrConfig, format, args...)
}

// Schema returns a schema error with a formatted message.
func Schema(format string, args ...any) error {
	return errors.Annotatef(ErrSchema, format, args...)
}

// Resource returns a resource error with a formatted message.
func Resource(format string, args ...any) error {
	return errors.Annotatef(ErrResource, format, args...)
}

// IO returns an I/O error with a formatted message.
func IO(format string, args ...any) error {
	return errors.Annotatef(ErrIO, format, args...)
}

// WrapIO classifies err as an I/O error. The original message is kept in
// the annotation so the cause remains visible in logs.
func WrapIO(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Annotatef(ErrIO, "%s: %v", msg, err)
}

// Is reports whether err belongs to the given class. Annotated errors
// implement Unwrap, so the standard library walks the chain.
func Is(err, class error) bool {
	return stderrors.Is(err, class)
}
