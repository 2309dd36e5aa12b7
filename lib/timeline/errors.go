// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package timeline

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a composition failure.
type ErrorCode int

const (
	// CodeInvalidArgument marks malformed input: out-of-range
	// indexes, nil children, negative search bounds, ranges with
	// negative durations.
	CodeInvalidArgument ErrorCode = iota + 1

	// CodeDuplicateChild marks an insertion that would violate the
	// membership invariant: the node is already a child of the
	// target composition, or still belongs to another one.
	CodeDuplicateChild

	// CodeNotFound marks a lookup for a node that is not a child of
	// the composition.
	CodeNotFound

	// CodeCannotComputeRange marks a time query on a node whose
	// duration is undefined, such as a clip whose media reference
	// carries no available range.
	CodeCannotComputeRange
)

// String returns the hyphenated name of the code.
func (c ErrorCode) String() string {
	switch c {
	case CodeInvalidArgument:
		return "invalid-argument"
	case CodeDuplicateChild:
		return "duplicate-child"
	case CodeNotFound:
		return "not-found"
	case CodeCannotComputeRange:
		return "cannot-compute-range"
	default:
		return fmt.Sprintf("code-%d", int(c))
	}
}

// Error is the typed failure for composition operations. It survives
// fmt.Errorf wrapping, so callers test categories with the Is*
// predicates rather than matching strings.
type Error struct {
	// Code is the failure category.
	Code ErrorCode

	// Op names the operation that failed, e.g. "insert-child".
	Op string

	// Detail describes the specific failure.
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("timeline: %s: %s (%s)", e.Op, e.Detail, e.Code)
}

func newError(code ErrorCode, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Detail: fmt.Sprintf(format, args...)}
}

func invalidArgument(op, format string, args ...any) *Error {
	return newError(CodeInvalidArgument, op, format, args...)
}

func duplicateChild(op, format string, args ...any) *Error {
	return newError(CodeDuplicateChild, op, format, args...)
}

func notFound(op, format string, args ...any) *Error {
	return newError(CodeNotFound, op, format, args...)
}

func cannotComputeRange(op, format string, args ...any) *Error {
	return newError(CodeCannotComputeRange, op, format, args...)
}

func hasCode(err error, code ErrorCode) bool {
	var compositionError *Error
	return errors.As(err, &compositionError) && compositionError.Code == code
}

// IsInvalidArgument reports whether err is a malformed-input failure.
func IsInvalidArgument(err error) bool { return hasCode(err, CodeInvalidArgument) }

// IsDuplicateChild reports whether err is a membership violation:
// inserting a node that is already a child here or elsewhere.
func IsDuplicateChild(err error) bool { return hasCode(err, CodeDuplicateChild) }

// IsNotFound reports whether err is a lookup for a non-child.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsCannotComputeRange reports whether err means a node's duration or
// range is undefined.
func IsCannotComputeRange(err error) bool { return hasCode(err, CodeCannotComputeRange) }
