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

package spirv_test

import (
	"strings"
	"testing"

	"github.com/google/rsov/pkg/spirv"
)

func TestLineRoundTrip(t *testing.T) {
	// Testable property 1: LHSIdentifier() + " = " + RHS() reproduces the
	// line up to interior whitespace, for any line with exactly one '='.
	for _, l := range []spirv.Line{
		`%1 = OpTypeVoid`,
		`%uint_zero = OpConstant %uint 0`,
		`%call = OpFunctionCall %uchar4 %kern %in %x %y`,
	} {
		lhs, ok := l.LHSIdentifier()
		if !ok {
			t.Fatalf("%q: expected LHS identifier", l)
		}
		rhs, ok := l.RHS()
		if !ok {
			t.Fatalf("%q: expected RHS", l)
		}
		got := lhs + " = " + rhs
		if got != string(l) {
			t.Errorf("round trip mismatch: got %q, want %q", got, l)
		}
	}
}

func TestLineNoEquals(t *testing.T) {
	l := spirv.Line("OpFunctionEnd")
	if _, ok := l.LHSIdentifier(); ok {
		t.Errorf("expected no LHS identifier for a line without '='")
	}
	if _, ok := l.RHS(); ok {
		t.Errorf("expected no RHS for a line without '='")
	}
}

func TestReplaceIDSafety(t *testing.T) {
	// Testable property 2: replacing %foo must not touch %foobar.
	l := spirv.Line(`%r = OpFunctionCall %uint %foobar %foo`)
	got, ok := l.ReplaceID("%foo", "%bar")
	if !ok {
		t.Fatalf("expected a replacement to be found")
	}
	if strings.Contains(string(got), "%foobarbar") {
		t.Errorf("replaceID corrupted %%foobar: %q", got)
	}
	if !strings.Contains(string(got), "%foobar") {
		t.Errorf("expected %%foobar to survive untouched: %q", got)
	}
	if !strings.Contains(string(got), "%bar ") && !strings.HasSuffix(string(got), "%bar") {
		t.Errorf("expected the standalone %%foo to become %%bar: %q", got)
	}
}

func TestHasCode(t *testing.T) {
	cases := []struct {
		line spirv.Line
		want bool
	}{
		{"", false},
		{"   ", false},
		{"; a comment", false},
		{spirv.EmptyMarker, false},
		{"OpFunctionEnd", true},
		{"%1 = OpTypeVoid", true},
	}
	for _, c := range cases {
		if got := c.line.HasCode(); got != c.want {
			t.Errorf("HasCode(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestIdentifiers(t *testing.T) {
	l := spirv.Line(`%r = OpFunctionCall %uchar4 %kern %in %x %y`)
	got := l.Identifiers()
	want := []string{"%r", "%uchar4", "%kern", "%in", "%x", "%y"}
	if len(got) != len(want) {
		t.Fatalf("Identifiers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Identifiers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
