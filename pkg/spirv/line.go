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

// Package spirv models textual SPIR-V assembly as an ordered sequence of
// typed blocks, and provides the line-level identifier operations the
// linker builds its rewrites on top of.
package spirv

import "strings"

// EmptyMarker is the literal comment a line is replaced with when it is
// marked dead rather than physically removed.
const EmptyMarker = "; <<empty>>"

// Line is a single textual SPIR-V line.
type Line string

// Trim returns l with leading/trailing whitespace removed.
func (l Line) Trim() Line { return Line(strings.TrimSpace(string(l))) }

// HasCode reports whether l is neither blank nor a comment.
func (l Line) HasCode() bool {
	s := strings.TrimSpace(string(l))
	if s == "" {
		return false
	}
	return s[0] != ';'
}

// MarkEmpty returns the line rewritten to the canonical empty marker.
func (l Line) MarkEmpty() Line { return Line(EmptyMarker) }

// firstIdentifier finds the first run starting with '%' at or after
// start, returning it and the index one past its last character.
func firstIdentifier(s string, start int) (id string, end int, ok bool) {
	pos := strings.IndexByte(s[start:], '%')
	if pos < 0 {
		return "", 0, false
	}
	pos += start
	i := pos + 1
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	return s[pos:i], i, true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// Identifiers returns every maximal '%'-prefixed token in the line, left
// to right.
func (l Line) Identifiers() []string {
	s := string(l)
	var out []string
	pos := 0
	for {
		id, end, ok := firstIdentifier(s, pos)
		if !ok {
			break
		}
		out = append(out, id)
		pos = end
	}
	return out
}

// LHSIdentifier returns the first identifier on the line, but only when
// the line contains an '=' (i.e. it is a definition, not a bare
// instruction like OpFunctionEnd).
func (l Line) LHSIdentifier() (string, bool) {
	s := string(l)
	id, _, ok := firstIdentifier(s, 0)
	if !ok {
		return "", false
	}
	if !strings.Contains(s, "=") {
		return "", false
	}
	return id, true
}

// RHS returns the trimmed substring after the first '='.
func (l Line) RHS() (string, bool) {
	s := string(l)
	idx := strings.IndexByte(s, '=')
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(s[idx+1:]), true
}

// RHSIdentifiers returns every identifier appearing after the first '='.
func (l Line) RHSIdentifiers() []string {
	rhs, ok := l.RHS()
	if !ok {
		return nil
	}
	return Line(rhs).Identifiers()
}

// Contains reports whether s appears anywhere in the line.
func (l Line) Contains(s string) bool { return strings.Contains(string(l), s) }

// ReplaceStr replaces the first occurrence of original with replacement,
// textually, with no identifier-boundary awareness.
func (l Line) ReplaceStr(original, replacement string) (Line, bool) {
	s := string(l)
	pos := strings.Index(s, original)
	if pos < 0 {
		return l, false
	}
	return Line(s[:pos] + replacement + s[pos+len(original):]), true
}

// ReplaceID replaces the first occurrence of original whose right
// boundary is whitespace or end-of-line, so that "%foo" does not match
// inside "%foobar": occurrences that are only the prefix of a longer
// token are skipped. It reports false when no such occurrence exists.
// Callers that want every valid occurrence rewritten call ReplaceID
// repeatedly until it returns false, as Block.ReplaceAllIDs does.
func (l Line) ReplaceID(original, replacement string) (Line, bool) {
	s := string(l)
	from := 0
	for from <= len(s) {
		rel := strings.Index(s[from:], original)
		if rel < 0 {
			return l, false
		}
		pos := from + rel
		oneAfter := pos + len(original)
		if oneAfter >= len(s) || isSpace(s[oneAfter]) {
			return Line(s[:pos] + replacement + s[oneAfter:]), true
		}
		from = pos + 1
	}
	return l, false
}
