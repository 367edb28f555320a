// Copyright (C) 2026 The RSOV Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fault declares the fixed set of error kinds the compile/link
// pipeline can fail with. Every fallible operation in this module returns
// an error built from one of these kinds so callers can distinguish a
// malformed module from a bad signature from an I/O failure without
// parsing diagnostic text.
package fault

import "github.com/pkg/errors"

// Kind is a constant error value, following the same pattern as gapid's
// core/fault.Const: a Kind is an error in its own right, and also the
// value that errors.Cause unwraps a wrapped diagnostic to.
type Kind string

// Error implements error.
func (k Kind) Error() string { return string(k) }

const (
	// ParseError: textual SPIR-V could not be partitioned into canonical
	// blocks.
	ParseError = Kind("parse error")
	// MetadataError: bitcode metadata missing or malformed.
	MetadataError = Kind("metadata error")
	// SignatureError: kernel signature unrecognized (wrong arity,
	// unsupported element type, non-x,y,z coordinate names).
	SignatureError = Kind("signature error")
	// RecursionError: a kernel function is directly recursive.
	RecursionError = Kind("recursion error")
	// InlineError: inlining failed (missing callee, arity mismatch,
	// void/non-void mismatch).
	InlineError = Kind("inline error")
	// IOError: a file could not be opened, read, or written.
	IOError = Kind("I/O error")
	// InvariantError: an unreachable condition was reached.
	InvariantError = Kind("invariant error")
)

// Wrap annotates cause with kind and a formatted message, preserving kind
// as the errors.Cause of the result. cause may be nil, in which case Wrap
// behaves like Errorf.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	wrapped := errors.WithMessagef(kind, format, args...)
	if cause != nil {
		return errors.WithMessage(wrapped, cause.Error())
	}
	return wrapped
}

// Is reports whether err (or any error it wraps) was built from kind.
func Is(err error, kind Kind) bool {
	return errors.Cause(err) == error(kind)
}
