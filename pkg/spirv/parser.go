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

package spirv

import (
	"bufio"
	"io"
	"strings"

	"github.com/google/rsov/internal/fault"
)

// Parse reads a textual SPIR-V stream and partitions it into blocks
// following the canonical module layout: Header (until the first
// OpDecorate), Decoration (until the first OpType*), TypeAndConst and
// Variable (until the first OpFunction, routed line by line), then one
// Function/FunctionDecl/MainFunction block per OpFunction...OpFunctionEnd
// span. Grounded on the LinkerModule(std::istream&) constructor in
// original_source/rsov/compiler/LinkerModule.cpp.
func Parse(r io.Reader) (*Module, error) {
	var lines []Line
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, Line(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fault.Wrap(fault.IOError, err, "reading SPIR-V module")
	}

	m := New()
	i := 0
	n := len(lines)

	header := m.AddBlock(NewBlock(Header))
	for i < n && !lines[i].Contains("OpDecorate") {
		header.AddLine(lines[i], false)
		i++
	}

	decor := m.AddBlock(NewBlock(Decoration))
	for i < n && !lines[i].Contains("OpType") {
		decor.AddLine(lines[i], false)
		i++
	}
	decor.RemoveNonCodeLines()

	typeConst := m.AddBlock(NewBlock(TypeAndConst))
	variable := m.AddBlock(NewBlock(Variable))
	for i < n && !lines[i].Contains("OpFunction") {
		l := lines[i]
		i++
		if !l.HasCode() {
			continue
		}
		if l.Contains("OpType") || l.Contains("OpConstant") {
			typeConst.AddLine(l, false)
		} else {
			variable.AddLine(l, false)
		}
	}
	typeConst.RemoveNonCodeLines()
	variable.RemoveNonCodeLines()

	for i < n {
		if strings.TrimSpace(string(lines[i])) == "" {
			i++
			continue
		}

		id, ok := lines[i].LHSIdentifier()
		if !ok {
			return nil, fault.Wrap(fault.ParseError, nil,
				"expected OpFunction at line %q", lines[i])
		}

		kind := Function
		if strings.HasPrefix(id, WrapperPrefix) {
			kind = MainFunction
		}
		fn := NewBlock(kind)
		fn.Name = id

		hasReturn := false
		for i < n {
			if strings.TrimSpace(string(lines[i])) == "" {
				i++
				continue
			}
			if lines[i].Contains("OpReturn") {
				hasReturn = true
			}
			fn.AddLine(lines[i], false)
			i++
			if fn.LastLine().Contains("OpFunctionEnd") {
				break
			}
		}
		fn.RemoveNonCodeLines()

		if !hasReturn {
			fn.Kind = FunctionDecl
		}

		m.AddBlock(fn)
	}

	m.RemoveNonCode()
	return m, nil
}
