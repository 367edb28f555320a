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

package linker

import (
	"github.com/google/rsov/internal/fault"
	"github.com/google/rsov/pkg/spirv"
)

type callInfo struct {
	retVal string
	retTy  string
	fname  string
	args   []string
}

func parseCall(l spirv.Line) (callInfo, error) {
	ret, ok := l.LHSIdentifier()
	if !ok {
		return callInfo{}, fault.Wrap(fault.InlineError, nil, "call line has no result identifier: %q", string(l))
	}
	ids := l.RHSIdentifiers()
	if len(ids) < 2 {
		return callInfo{}, fault.Wrap(fault.InlineError, nil, "call line missing return type/function name: %q", string(l))
	}
	return callInfo{
		retVal: ret,
		retTy:  ids[0],
		fname:  ids[1],
		args:   append([]string(nil), ids[2:]...),
	}, nil
}

func findFunction(m *spirv.Module, name string) (*spirv.Block, bool) {
	for _, b := range m.Blocks {
		if b.Kind != spirv.Function {
			continue
		}
		if b.FunctionName() == name {
			return b, true
		}
	}
	return nil, false
}

type idMapping struct{ old, new string }

// InlineFunctionCalls performs one inlining pass over mb: every
// OpFunctionCall line found is replaced with the callee's body, with the
// callee's parameters and result value name-mapped to the caller's
// argument and result identifiers. Grounded on LinkerModule.cpp's
// InlineFunctionCalls.
func InlineFunctionCalls(m *spirv.Module, mb *spirv.Block) error {
	if len(mb.Lines) == 0 {
		return fault.Wrap(fault.InlineError, nil, "empty main function block")
	}

	newLines := []spirv.Line{mb.Lines[0]}
	var mappings []idMapping

	i := 1
	for i < len(mb.Lines) {
		for i < len(mb.Lines) && !mb.Lines[i].Contains("OpFunctionCall") {
			newLines = append(newLines, mb.Lines[i])
			i++
		}
		if i >= len(mb.Lines) {
			break
		}

		call, err := parseCall(mb.Lines[i])
		if err != nil {
			return err
		}
		i++

		callee, ok := findFunction(m, call.fname)
		if !ok {
			return fault.Wrap(fault.InlineError, nil, "callee not found: %s", call.fname)
		}
		if callee.Arity() != len(call.args) {
			return fault.Wrap(fault.InlineError, nil,
				"arity mismatch calling %s: caller has %d arguments, callee declares %d", call.fname, len(call.args), callee.Arity())
		}

		retValName, hasRet := callee.RetValName()
		if !hasRet && !callee.IsReturnTypeVoid() {
			return fault.Wrap(fault.InlineError, nil, "no return value for non-void function %s", call.fname)
		}

		params := callee.ArgNames()
		if len(params) != len(call.args) {
			return fault.Wrap(fault.InlineError, nil, "parameter count mismatch calling %s", call.fname)
		}
		for j, p := range params {
			mappings = append(mappings, idMapping{p, call.args[j]})
		}
		if hasRet {
			mappings = append(mappings, idMapping{retValName, call.retVal})
		}

		newLines = append(newLines, callee.Body()...)
	}

	tmp := &spirv.Block{Lines: newLines}
	for j := len(mappings) - 1; j >= 0; j-- {
		tmp.ReplaceAllIDs(mappings[j].old, mappings[j].new)
	}

	mb.Lines = tmp.Lines
	return nil
}

// InlineKernelIntoWrapper repeatedly inlines mb's function calls until
// none remain: a kernel body may call helper functions the compiler
// emitted alongside it, and those helpers are only reachable after the
// first inlining pass splices the kernel's own body into the wrapper.
func InlineKernelIntoWrapper(m *spirv.Module, mb *spirv.Block) error {
	for mb.HasFunctionCalls() {
		if err := InlineFunctionCalls(m, mb); err != nil {
			return err
		}
	}
	return nil
}
