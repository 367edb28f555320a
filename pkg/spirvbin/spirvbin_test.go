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

import (
	"bytes"
	"reflect"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := &Module{
		Header: Header{Magic: MagicNumber, Version: 0x00010300, GeneratorMagic: 7, Bound: 10, Reserved: 0},
		Instructions: []Instruction{
			{Opcode: OpTypeInt, Operands: []uint32{1, 32, 0}},
			{Opcode: OpConstant, Operands: []uint32{1, 2, 42}},
			{Opcode: OpFunction, Operands: []uint32{1, 3, 0, 4}},
			{Opcode: OpLabel, Operands: []uint32{5}},
			{Opcode: OpReturnValue, Operands: []uint32{2}},
			{Opcode: OpFunctionEnd, Operands: nil},
		},
	}

	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Header.Magic != m.Header.Magic {
		t.Errorf("magic = 0x%08x, want 0x%08x", got.Header.Magic, m.Header.Magic)
	}
	if !reflect.DeepEqual(got.Instructions, m.Instructions) {
		t.Errorf("round-tripped instructions = %+v, want %+v", got.Instructions, m.Instructions)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf := bytes.NewReader([]byte{
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	})
	if _, err := Decode(buf); err == nil {
		t.Fatal("Decode with bad magic: expected error, got nil")
	}
}

func TestDecodeRejectsTruncatedInstruction(t *testing.T) {
	m := &Module{Header: Header{Magic: MagicNumber, Bound: 2}}
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Append a lead word claiming 3 words but supply none.
	lead := Instruction{Opcode: OpLabel, Operands: []uint32{1, 2}}.leadWord()
	b := buf.Bytes()
	b = append(b, byte(lead), byte(lead>>8), byte(lead>>16), byte(lead>>24))
	if _, err := Decode(bytes.NewReader(b)); err == nil {
		t.Fatal("Decode with truncated instruction: expected error, got nil")
	}
}

func TestNamesByID(t *testing.T) {
	m := &Module{Instructions: []Instruction{
		{Opcode: OpName, Operands: append([]uint32{9}, encodeLiteral("__rsov_rsAllocationGetDimX")...)},
	}}
	names := m.NamesByID()
	if got := names[9]; got != "__rsov_rsAllocationGetDimX" {
		t.Errorf("NamesByID()[9] = %q, want %q", got, "__rsov_rsAllocationGetDimX")
	}
}

func TestLowerGlobalAllocAccessorsRewritesMarkerCall(t *testing.T) {
	const (
		markerFuncID = uint32(100)
		allocConstID = uint32(101)
		resultTypeID = uint32(102)
		callResultID = uint32(103)
		metadataVar  = uint32(104)
	)

	m := &Module{
		Header: Header{Magic: MagicNumber, Bound: 200},
		Instructions: []Instruction{
			{Opcode: OpName, Operands: append([]uint32{markerFuncID}, encodeLiteral("__rsov_rsAllocationGetDimX")...)},
			{Opcode: OpTypeInt, Operands: []uint32{resultTypeID, 32, 0}},
			{Opcode: OpConstant, Operands: []uint32{resultTypeID, allocConstID, 3}},
			{Opcode: OpFunctionCall, Operands: []uint32{resultTypeID, callResultID, markerFuncID, allocConstID}},
		},
	}

	if err := LowerGlobalAllocAccessors(m, metadataVar); err != nil {
		t.Fatalf("LowerGlobalAllocAccessors: %v", err)
	}

	for _, in := range m.Instructions {
		if in.Opcode == OpFunctionCall {
			t.Errorf("marker call should have been rewritten, found: %+v", in)
		}
	}

	var sawChain, sawLoad bool
	var chainID uint32
	for _, in := range m.Instructions {
		if in.Opcode == OpAccessChain {
			sawChain = true
			if in.Operands[2] != metadataVar {
				t.Errorf("OpAccessChain base = %d, want metadataVar %d", in.Operands[2], metadataVar)
			}
			chainID = in.Operands[1]
		}
		if in.Opcode == OpLoad {
			sawLoad = true
			if id, _ := in.ResultID(); id != callResultID {
				t.Errorf("OpLoad result id = %d, want original call result id %d", id, callResultID)
			}
			if in.Operands[2] != chainID {
				t.Errorf("OpLoad pointer operand = %d, want OpAccessChain result %d", in.Operands[2], chainID)
			}
		}
	}
	if !sawChain || !sawLoad {
		t.Errorf("expected both OpAccessChain and OpLoad in output, chain=%v load=%v", sawChain, sawLoad)
	}
}

func TestLowerGlobalAllocAccessorsLeavesOtherCallsAlone(t *testing.T) {
	m := &Module{
		Header: Header{Magic: MagicNumber, Bound: 200},
		Instructions: []Instruction{
			{Opcode: OpName, Operands: append([]uint32{1}, encodeLiteral("someOtherFunction")...)},
			{Opcode: OpTypeInt, Operands: []uint32{2, 32, 0}},
			{Opcode: OpFunctionCall, Operands: []uint32{2, 3, 1, 4}},
		},
	}
	if err := LowerGlobalAllocAccessors(m, 99); err != nil {
		t.Fatalf("LowerGlobalAllocAccessors: %v", err)
	}
	found := false
	for _, in := range m.Instructions {
		if in.Opcode == OpFunctionCall {
			found = true
		}
	}
	if !found {
		t.Errorf("unrelated call should not have been rewritten")
	}
}

func TestFixEntryPointInterfacesRecomputesInterface(t *testing.T) {
	const (
		entryFuncID = uint32(1)
		usedVarID   = uint32(2)
		unusedVarID = uint32(3)
		ptrTypeID   = uint32(4)
		valTypeID   = uint32(5)
	)

	name := encodeLiteral("invert")
	entryOperands := append([]uint32{0, entryFuncID}, name...)
	// Stale interface list naming nothing real; should be discarded.
	entryOperands = append(entryOperands, 999)

	m := &Module{
		Header: Header{Magic: MagicNumber, Bound: 50},
		Instructions: []Instruction{
			{Opcode: OpEntryPoint, Operands: entryOperands},
			{Opcode: OpVariable, Operands: []uint32{ptrTypeID, usedVarID, 2}},
			{Opcode: OpVariable, Operands: []uint32{ptrTypeID, unusedVarID, 2}},
			{Opcode: OpFunction, Operands: []uint32{valTypeID, entryFuncID, 0, 6}},
			{Opcode: OpLabel, Operands: []uint32{7}},
			{Opcode: OpLoad, Operands: []uint32{valTypeID, 8, usedVarID}},
			{Opcode: OpReturn, Operands: nil},
			{Opcode: OpFunctionEnd, Operands: nil},
		},
	}

	if err := FixEntryPointInterfaces(m); err != nil {
		t.Fatalf("FixEntryPointInterfaces: %v", err)
	}

	ep := m.Instructions[0]
	nameEnd := 2 + nameWordCount(ep.Operands[2:])
	iface := ep.Operands[nameEnd:]
	if len(iface) != 1 || iface[0] != usedVarID {
		t.Errorf("recomputed interface = %v, want [%d]", iface, usedVarID)
	}
}

func TestRunPassesAppliesInOrderAndReserializes(t *testing.T) {
	const metadataVar = uint32(104)
	m := &Module{
		Header: Header{Magic: MagicNumber, Version: 0x00010300, Bound: 200},
		Instructions: []Instruction{
			{Opcode: OpName, Operands: append([]uint32{100}, encodeLiteral("__rsov_rsAllocationGetDimX")...)},
			{Opcode: OpTypeInt, Operands: []uint32{1, 32, 0}},
			{Opcode: OpConstant, Operands: []uint32{1, 101, 3}},
			{Opcode: OpFunctionCall, Operands: []uint32{1, 103, 100, 101}},
		},
	}
	words := m.EncodeWords()

	lowerDims := func(mm *Module) error { return LowerGlobalAllocAccessors(mm, metadataVar) }
	out, err := RunPasses(words, Pass(lowerDims), FixEntryPointInterfaces)
	if err != nil {
		t.Fatalf("RunPasses: %v", err)
	}

	decoded, err := DecodeWords(out)
	if err != nil {
		t.Fatalf("DecodeWords(RunPasses output): %v", err)
	}
	for _, in := range decoded.Instructions {
		if in.Opcode == OpFunctionCall {
			t.Errorf("RunPasses should have lowered the marker call, found: %+v", in)
		}
	}
}

// encodeLiteral packs s into little-endian, NUL-terminated SPIR-V
// literal string words, the same way a real OpName/OpEntryPoint would
// carry it.
func encodeLiteral(s string) []uint32 {
	b := append([]byte(s), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	}
	return out
}
