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

// storageClassUniform is the SPIR-V StorageClass enumerant value for
// Uniform, the class the generated Metadata buffer variable lives in.
const storageClassUniform uint32 = 2

// markerFieldIndex maps a lowered global-allocation accessor marker
// function's coordinate suffix to the field index it occupies within a
// Metadata[allocId] struct element. An earlier, out-of-scope compiler
// pass rewrites rsAllocationGetDimX/Y/Z(alloc) calls into calls to these
// markers with the allocation replaced by a small integer id, since by
// the time SPIR-V is emitted the rs_allocation global itself no longer
// exists. Grounded on GlobalAllocSPIRITPass.cpp's GAAccessorTransformer,
// generalized from DimX only to all three dimensions.
var markerFieldIndex = map[string]uint32{
	"__rsov_rsAllocationGetDimX": 0,
	"__rsov_rsAllocationGetDimY": 1,
	"__rsov_rsAllocationGetDimZ": 2,
}

// LowerGlobalAllocAccessors rewrites every OpFunctionCall to a lowered
// global-allocation accessor marker into an OpAccessChain+OpLoad against
// metadataVar, the module's Metadata[] uniform buffer: the call's sole
// argument (a constant allocation id) selects the Metadata element, and
// the marker's coordinate suffix selects which field of that element.
// Calls to any other function pass through unchanged.
func LowerGlobalAllocAccessors(m *Module, metadataVar uint32) error {
	names := m.NamesByID()
	consts := m.constantValues()

	uintTy, ok := m.findUint32Type()
	if !ok {
		return fault.Wrap(fault.InvariantError, nil, "module has no 32-bit unsigned int type to read metadata through")
	}
	ptrTy := m.getOrAddPointerType(storageClassUniform, uintTy)

	// Constants minted by getOrAddUintConstant are appended past n while
	// the loop runs; they are carried over into the rewritten stream.
	n := len(m.Instructions)
	var out []Instruction
	for _, in := range m.Instructions[:n] {
		if in.Opcode != OpFunctionCall {
			out = append(out, in)
			continue
		}

		fieldIdx, allocID, handled := classifyMarkerCall(in, names, consts)
		if !handled {
			out = append(out, in)
			continue
		}

		resultID, ok := in.ResultID()
		if !ok {
			return fault.Wrap(fault.InvariantError, nil, "marker call has no result id")
		}

		allocConst := m.getOrAddUintConstant(uintTy, allocID)
		fieldConst := m.getOrAddUintConstant(uintTy, fieldIdx)
		chainID := m.newID()

		out = append(out,
			Instruction{Opcode: OpAccessChain, Operands: []uint32{ptrTy, chainID, metadataVar, allocConst, fieldConst}},
			Instruction{Opcode: OpLoad, Operands: []uint32{uintTy, resultID, chainID}},
		)
	}
	m.Instructions = append(out, m.Instructions[n:]...)
	return nil
}

// classifyMarkerCall reports whether call is a call to a known lowered
// accessor marker, and if so, which Metadata field index it reads and
// which allocation id its sole constant argument names.
func classifyMarkerCall(call Instruction, names map[uint32]string, consts map[uint32]uint32) (fieldIdx, allocID uint32, handled bool) {
	if len(call.Operands) != 4 {
		// Result type, result id, function, one argument.
		return 0, 0, false
	}
	funcID := call.Operands[2]
	name, ok := names[funcID]
	if !ok {
		return 0, 0, false
	}
	idx, ok := markerFieldIndex[name]
	if !ok {
		return 0, 0, false
	}
	argID := call.Operands[3]
	val, ok := consts[argID]
	if !ok {
		return 0, 0, false
	}
	return idx, val, true
}

// constantValues collects every 32-bit OpConstant's literal value, keyed
// by its result id.
func (m *Module) constantValues() map[uint32]uint32 {
	out := map[uint32]uint32{}
	for _, in := range m.Instructions {
		if in.Opcode != OpConstant || len(in.Operands) < 3 {
			continue
		}
		resultID := in.Operands[1]
		out[resultID] = in.Operands[2]
	}
	return out
}

// findUint32Type returns the result id of an existing "OpTypeInt 32 0"
// instruction, if any.
func (m *Module) findUint32Type() (uint32, bool) {
	for _, in := range m.Instructions {
		if in.Opcode != OpTypeInt || len(in.Operands) < 3 {
			continue
		}
		if in.Operands[1] == 32 && in.Operands[2] == 0 {
			return in.Operands[0], true
		}
	}
	return 0, false
}

// getOrAddPointerType returns the result id of an existing
// "OpTypePointer <class> <pointee>" instruction, minting a new one if
// none exists.
func (m *Module) getOrAddPointerType(class, pointee uint32) uint32 {
	for _, in := range m.Instructions {
		if in.Opcode != OpTypePointer || len(in.Operands) < 3 {
			continue
		}
		if in.Operands[1] == class && in.Operands[2] == pointee {
			return in.Operands[0]
		}
	}
	id := m.newID()
	m.Instructions = append(m.Instructions, Instruction{Opcode: OpTypePointer, Operands: []uint32{id, class, pointee}})
	return id
}

// getOrAddUintConstant returns the result id of an existing
// "OpConstant <ty> <value>" instruction of the given type, minting a new
// one if none exists.
func (m *Module) getOrAddUintConstant(ty, value uint32) uint32 {
	for _, in := range m.Instructions {
		if in.Opcode != OpConstant || len(in.Operands) < 3 {
			continue
		}
		if in.Operands[0] == ty && in.Operands[2] == value {
			return in.Operands[1]
		}
	}
	id := m.newID()
	m.Instructions = append(m.Instructions, Instruction{Opcode: OpConstant, Operands: []uint32{ty, id, value}})
	return id
}

// newID allocates a fresh result id, bumping the module's id bound.
func (m *Module) newID() uint32 {
	id := m.Header.Bound
	m.Header.Bound++
	return id
}
