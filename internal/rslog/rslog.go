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

// Package rslog provides a small context-carried logger in the shape of
// gapid's core/log: a Context wraps context.Context and hands out a
// Logger at a given Severity, so call sites read as
// ctx.Info().Log("compiled %d kernels", n).
package rslog

import (
	"context"
	"fmt"
	"io"
	"os"
	"testing"
)

// Severity mirrors core/log's Severity levels, trimmed to what this CLI
// pipeline emits.
type Severity int32

const (
	Debug Severity = iota
	Info
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Debug:
		return "D"
	case Info:
		return "I"
	case Warning:
		return "W"
	case Error:
		return "E"
	default:
		return "?"
	}
}

// Logger writes one severity-tagged line at a time.
type Logger struct {
	w    io.Writer
	sev  Severity
	min  Severity
	name string
}

// Log writes a formatted line if the logger's severity is at or above the
// context's minimum severity.
func (l Logger) Log(format string, args ...interface{}) {
	if l.sev < l.min {
		return
	}
	prefix := "[" + l.sev.String() + "]"
	if l.name != "" {
		prefix += " " + l.name + ":"
	}
	fmt.Fprintf(l.w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

type ctxKey struct{}

type state struct {
	w    io.Writer
	min  Severity
	name string
}

// Context is a context.Context that can hand out Loggers.
type Context struct {
	context.Context
}

// In returns a Context wrapping parent, writing to os.Stderr at Info and
// above, the default used by cmd/rsov-translate.
func In(parent context.Context) Context {
	return Context{context.WithValue(parent, ctxKey{}, &state{w: os.Stderr, min: Info})}
}

// Background is a convenience for In(context.Background()).
func Background() Context { return In(context.Background()) }

// Testing returns a Context that writes through t.Log, for use in tests,
// grounded on gapid's log.Testing(t) used throughout gapil/gapis tests.
func Testing(t *testing.T) Context {
	return Context{context.WithValue(context.Background(), ctxKey{}, &state{w: testWriter{t}, min: Debug})}
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Logf("%s", p)
	return len(p), nil
}

// Named returns a derived Context whose Loggers prefix their output with
// name, used to tag which pipeline stage produced a message.
func (c Context) Named(name string) Context {
	s := c.state()
	ns := &state{w: s.w, min: s.min, name: name}
	return Context{context.WithValue(c.Context, ctxKey{}, ns)}
}

func (c Context) state() *state {
	if s, ok := c.Value(ctxKey{}).(*state); ok {
		return s
	}
	return &state{w: os.Stderr, min: Info}
}

func (c Context) at(sev Severity) Logger {
	s := c.state()
	return Logger{w: s.w, sev: sev, min: s.min, name: s.name}
}

// Debug returns a Logger at Debug severity.
func (c Context) Debug() Logger { return c.at(Debug) }

// Info returns a Logger at Info severity.
func (c Context) Info() Logger { return c.at(Info) }

// Warning returns a Logger at Warning severity.
func (c Context) Warning() Logger { return c.at(Warning) }

// Error returns a Logger at Error severity, mirroring core/log's
// ctx.Error() shorthand; the error text itself is passed to Log.
func (c Context) Error() Logger { return c.at(Error) }
