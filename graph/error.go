/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/botobag/socialgraph/store"
)

// Op describes an operation, usually as the package and method, such as "graph.Mutator.Subscribe".
type Op string

// ErrKind defines the kind of error this is.
type ErrKind uint8

// Enumeration of Kind
const (
	ErrKindOther         ErrKind = iota // Unclassified error. This value is not printed in the error message.
	ErrKindNotFound                     // An id has no matching record.
	ErrKindAlreadyExists                // Duplicate subscription or profile.
	ErrKindSelfReference                // A user subscribes to itself.
	ErrKindBadRequest                   // A state precondition failed (e.g., asymmetric unsubscribe).
	ErrKindValidation                   // The document fails validation or exceeds the depth limit.
	ErrKindStorage                      // The repository failed.
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindOther:
		return "other error"
	case ErrKindNotFound:
		return "not found"
	case ErrKindAlreadyExists:
		return "already exists"
	case ErrKindSelfReference:
		return "self reference"
	case ErrKindBadRequest:
		return "bad request"
	case ErrKindValidation:
		return "validation error"
	case ErrKindStorage:
		return "storage error"
	}
	return "unknown error kind"
}

// Code returns the value reported in "extensions.code" of a GraphQL error. It is empty for
// ErrKindOther.
func (k ErrKind) Code() string {
	switch k {
	case ErrKindNotFound:
		return "NOT_FOUND"
	case ErrKindAlreadyExists:
		return "ALREADY_EXISTS"
	case ErrKindSelfReference:
		return "SELF_REFERENCE"
	case ErrKindBadRequest:
		return "BAD_REQUEST"
	case ErrKindValidation:
		return "VALIDATION_FAILED"
	case ErrKindStorage:
		return "STORAGE_ERROR"
	}
	return ""
}

// An Error describes a failure of a resolver or of the Mutator. It is returned to graphql-go which
// reports Error() as the message of the field error and Extensions() as its "extensions".
type Error struct {
	// Message describes the error. It is what the client sees.
	Message string

	// The underlying error that triggered this one
	Err error

	// Op is the operation being performed, usually the name of the method being invoked.
	Op Op

	// Kind is the class of error
	Kind ErrKind
}

var _ error = (*Error)(nil)

// NewError builds an error value from arguments. Inspired by the design of upspin.io/errors [0].
//
// [0]: https://commandcenter.blogspot.com/2017/12/error-handling-in-upspin.html.
func NewError(message string, args ...interface{}) error {
	e := &Error{
		Message: message,
	}

	for _, arg := range args {
		switch arg := arg.(type) {
		case error:
			e.Err = arg

		case Op:
			e.Op = arg

		case ErrKind:
			e.Kind = arg

		default:
			_, file, line, _ := runtime.Caller(1)
			slog.Error("NewError: bad call",
				slog.String("file", file),
				slog.Int("line", line),
				slog.Any("args", args))
			return fmt.Errorf("unknown type %T, value %v in error call", arg, arg)
		}
	}

	// Pull kind from underlying error.
	if e.Kind == ErrKindOther && e.Err != nil {
		e.Kind = KindOf(e.Err)
	}

	return e
}

// Error implements Go's error interface. The message of an underlying error is appended only when
// it is not one of ours.
func (e *Error) Error() string {
	var prev *Error
	if e.Err == nil || errors.As(e.Err, &prev) {
		if len(e.Message) == 0 && prev != nil {
			return prev.Error()
		}
		return e.Message
	}
	if len(e.Message) == 0 {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap returns e.Err.
func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions is queried by graphql-go to fill "extensions" of the reported error.
func (e *Error) Extensions() map[string]interface{} {
	code := e.Kind.Code()
	if len(code) == 0 {
		return nil
	}
	return map[string]interface{}{
		"code": code,
	}
}

// Detail prints the error chain with ops and kinds. It is meant for logs.
func (e *Error) Detail() string {
	var b strings.Builder
	e.printError(&b, nil)
	return b.String()
}

func (e *Error) printError(b *strings.Builder, nextErr *Error) {
	initialLen := b.Len()

	// pad appends str to the buffer if the buffer already has some data.
	pad := func(str string) {
		if b.Len() == initialLen {
			return
		}
		b.WriteString(str)
	}

	if len(e.Op) > 0 {
		b.WriteString(string(e.Op))
	}

	if len(e.Message) > 0 {
		pad(": ")
		b.WriteString(e.Message)
	}

	if e.Kind != ErrKindOther {
		// Don't print kind if the next error has the same kind as ours.
		if nextErr == nil || nextErr.Kind != e.Kind {
			pad(": ")
			b.WriteString(e.Kind.String())
		}
	}

	if e.Err != nil {
		if prev, ok := e.Err.(*Error); ok {
			// Indent on new line if we are cascading non-empty Error.
			pad(":\n  ")
			prev.printError(b, e)
		} else {
			pad(": ")
			b.WriteString(e.Err.Error())
		}
	}
}

// KindOf returns the kind of err. Conditions reported by the store are mapped onto kinds; any other
// error that isn't an Error is ErrKindOther.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) && e.Kind != ErrKindOther {
		return e.Kind
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrKindNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrKindAlreadyExists
	}
	var recordErr *store.RecordError
	if errors.As(err, &recordErr) {
		return ErrKindStorage
	}
	return ErrKindOther
}

// IsKind returns true if err is of the given kind.
func IsKind(err error, kind ErrKind) bool {
	return err != nil && KindOf(err) == kind
}

// notFound reports a missing record of the given entity kind.
func notFound(op Op, entity string, id string) error {
	return NewError(fmt.Sprintf("%s %q not found", entity, id), op, ErrKindNotFound)
}

// storageError wraps a repository failure. Not-found and already-exists conditions from the store
// keep their kinds.
func storageError(op Op, err error) error {
	switch KindOf(err) {
	case ErrKindNotFound, ErrKindAlreadyExists:
		return NewError("", op, err)
	}
	return NewError("storage failure", op, ErrKindStorage, err)
}
