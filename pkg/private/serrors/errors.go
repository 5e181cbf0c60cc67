// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package serrors provides errors that carry key/value context. The context
// is rendered in the error string and, when the error is logged with zap, as
// separate structured fields. All errors returned by this package support
// errors.Is and errors.As against their cause.
package serrors

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxPair struct {
	Key   string
	Value any
}

// info is the part shared by all error implementations in this package.
type info struct {
	ctx   []ctxPair
	cause error
	stack *stack
}

func newInfo(cause error, withStack bool, errCtx []any) info {
	n := len(errCtx) / 2
	pairs := make([]ctxPair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, ctxPair{Key: fmt.Sprint(errCtx[2*i]), Value: errCtx[2*i+1]})
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].Key < pairs[b].Key })
	i := info{ctx: pairs, cause: cause}
	// Only the innermost error of this package carries a stack.
	if withStack && !hasStack(cause) {
		i.stack = callers()
	}
	return i
}

func hasStack(err error) bool {
	var (
		b  *basicError
		bv basicError
		j  joinedError
	)
	return errors.As(err, &b) || errors.As(err, &bv) || errors.As(err, &j)
}

func (i info) suffix() string {
	var buf bytes.Buffer
	if len(i.ctx) != 0 {
		buf.WriteString(" ")
		encodeContext(&buf, i.ctx)
	}
	if i.cause != nil {
		fmt.Fprintf(&buf, ": %s", i.cause)
	}
	return buf.String()
}

func (i info) marshal(enc zapcore.ObjectEncoder) error {
	if i.cause != nil {
		if m, ok := i.cause.(zapcore.ObjectMarshaler); ok {
			if err := enc.AddObject("cause", m); err != nil {
				return err
			}
		} else {
			enc.AddString("cause", i.cause.Error())
		}
	}
	if i.stack != nil {
		if err := enc.AddArray("stacktrace", i.stack); err != nil {
			return err
		}
	}
	for _, p := range i.ctx {
		zap.Any(p.Key, p.Value).AddTo(enc)
	}
	return nil
}

// StackTrace returns the recorded stack trace, if any.
func (i info) StackTrace() StackTrace {
	if i.stack == nil {
		return nil
	}
	return i.stack.StackTrace()
}

type basicError struct {
	info
	msg string
}

func (e basicError) Error() string {
	return e.msg + e.info.suffix()
}

func (e basicError) Unwrap() error {
	return e.cause
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e basicError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	return e.info.marshal(enc)
}

// New creates an error with the given message and context. Every call returns
// a distinct error, so results of New must not be used as sentinels; use
// errors.New for those.
func New(msg string, errCtx ...any) error {
	return &basicError{
		info: newInfo(nil, true, errCtx),
		msg:  msg,
	}
}

// Wrap returns an error with the given message that wraps cause and carries
// the given context. A stack trace is recorded unless cause already has one.
func Wrap(msg string, cause error, errCtx ...any) error {
	return basicError{
		info: newInfo(cause, true, errCtx),
		msg:  msg,
	}
}

// WrapNoStack is like Wrap but never records a stack trace.
func WrapNoStack(msg string, cause error, errCtx ...any) error {
	return basicError{
		info: newInfo(cause, false, errCtx),
		msg:  msg,
	}
}

type joinedError struct {
	info
	err error
}

func (e joinedError) Error() string {
	return e.err.Error() + e.info.suffix()
}

func (e joinedError) Unwrap() []error {
	return []error{e.err, e.cause}
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e joinedError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.err.Error())
	return e.info.marshal(enc)
}

// Join returns an error for which errors.Is matches both err (typically a
// sentinel) and cause. It returns nil if both are nil.
func Join(err, cause error, errCtx ...any) error {
	if err == nil && cause == nil {
		return nil
	}
	return joinedError{
		info: newInfo(cause, true, errCtx),
		err:  err,
	}
}

// IsTimeout returns whether err is or is caused by a timeout error.
func IsTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// List is a slice of errors.
type List []error

// Error implements the error interface.
func (e List) Error() string {
	s := make([]string, 0, len(e))
	for _, err := range e {
		s = append(s, err.Error())
	}
	return fmt.Sprintf("[ %s ]", strings.Join(s, "; "))
}

// ToError returns nil for an empty list and the list itself otherwise.
func (e List) ToError() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (e List) MarshalLogArray(ae zapcore.ArrayEncoder) error {
	for _, err := range e {
		if m, ok := err.(zapcore.ObjectMarshaler); ok {
			if err := ae.AppendObject(m); err != nil {
				return err
			}
			continue
		}
		ae.AppendString(err.Error())
	}
	return nil
}

func encodeContext(w io.Writer, pairs []ctxPair) {
	fmt.Fprint(w, "{")
	for i, p := range pairs {
		fmt.Fprintf(w, "%s=%v", p.Key, p.Value)
		if i != len(pairs)-1 {
			fmt.Fprint(w, "; ")
		}
	}
	fmt.Fprint(w, "}")
}
