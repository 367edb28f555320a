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

package spirvbin

import "github.com/google/rsov/internal/fault"

// FixEntryPointInterfaces recomputes every OpEntryPoint's interface id
// list from scratch. Linking inlines a kernel's whole body into its
// wrapper's entry function, so the function ends up touching global
// variables (the Metadata buffer, allocation images) that the wrapper's
// own OpEntryPoint never listed. A stale interface list is a validation
// error under Vulkan's SPIR-V rules, so this pass replaces it with
// every global variable the now-fully-inlined entry function actually
// references, in module declaration order.
func FixEntryPointInterfaces(m *Module) error {
	globals := m.globalVariableIDs()
	globalSet := map[uint32]bool{}
	for _, id := range globals {
		globalSet[id] = true
	}

	for i, in := range m.Instructions {
		if in.Opcode != OpEntryPoint {
			continue
		}
		if len(in.Operands) < 2 {
			return fault.Wrap(fault.InvariantError, nil, "OpEntryPoint missing entry point id")
		}
		entryID := in.Operands[1]
		nameEnd := 2 + nameWordCount(in.Operands[2:])

		used := m.variablesReferencedByFunction(entryID, globalSet)
		var iface []uint32
		for _, g := range globals {
			if used[g] {
				iface = append(iface, g)
			}
		}

		newOperands := append(append([]uint32{}, in.Operands[:nameEnd]...), iface...)
		m.Instructions[i] = Instruction{Opcode: OpEntryPoint, Operands: newOperands}
	}
	return nil
}

// nameWordCount returns how many of words make up an OpEntryPoint's
// packed, NUL-terminated literal name, given the words starting right
// after the entry point id. A literal string always ends in a word
// containing at least one zero byte, which cannot occur inside a
// following non-zero id operand.
func nameWordCount(words []uint32) int {
	for i, w := range words {
		if byte(w) == 0 || byte(w>>8) == 0 || byte(w>>16) == 0 || byte(w>>24) == 0 {
			return i + 1
		}
	}
	return len(words)
}

// globalVariableIDs returns the result ids of every OpVariable declared
// at module scope, i.e. before the first OpFunction, in declaration
// order.
func (m *Module) globalVariableIDs() []uint32 {
	var out []uint32
	for _, in := range m.Instructions {
		if in.Opcode == OpFunction {
			break
		}
		if in.Opcode == OpVariable {
			if id, ok := in.ResultID(); ok {
				out = append(out, id)
			}
		}
	}
	return out
}

// variablesReferencedByFunction scans the single function whose
// OpFunction result id is funcID and reports which ids in globalSet
// appear anywhere in its body.
func (m *Module) variablesReferencedByFunction(funcID uint32, globalSet map[uint32]bool) map[uint32]bool {
	used := map[uint32]bool{}
	inFunc := false
	for _, in := range m.Instructions {
		switch in.Opcode {
		case OpFunction:
			id, _ := in.ResultID()
			inFunc = id == funcID
			continue
		case OpFunctionEnd:
			if inFunc {
				return used
			}
			continue
		}
		if !inFunc {
			continue
		}
		for _, op := range in.Operands {
			if globalSet[op] {
				used[op] = true
			}
		}
	}
	return used
}
