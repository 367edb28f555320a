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

// Package kernel models a RenderScript kernel's element-wise signature
// and the fixed RSType→SPIR-V mapping table, grounded on
// original_source/rsov/compiler/KernelSignature.{h,cpp} and the
// TypeMapping table in ReflectionPass.cpp.
package kernel

import "github.com/google/rsov/internal/fault"

// Type is the closed set of element types a kernel may read or write.
type Type int

const (
	Void Type = iota
	UChar
	Int
	Float
	UChar4
	Int4
	Float4
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case UChar:
		return "uchar"
	case Int:
		return "int"
	case Float:
		return "float"
	case UChar4:
		return "uchar4"
	case Int4:
		return "int4"
	case Float4:
		return "float4"
	default:
		return "bad"
	}
}

// ParseType maps an LLVM-derived type name (as produced by the bitcode
// metadata contract) to the closed RSType set. Grounded on
// KernelSignature.cpp's TypeToString.
func ParseType(s string) (Type, error) {
	switch s {
	case "void":
		return Void, nil
	case "uchar":
		return UChar, nil
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	case "uchar4":
		return UChar4, nil
	case "int4":
		return Int4, nil
	case "float4":
		return Float4, nil
	default:
		return Void, fault.Wrap(fault.SignatureError, nil, "unsupported element type %q", s)
	}
}

// Mapping is the fixed per-RSType SPIR-V shape: its scalar identifier,
// whether it is itself a vector, the SPIR-V type used to read it back
// through an image (scalar types widen to their 4-component vector form
// because a storage buffer's ArrayStride is 16 bytes), and the image
// format used for global-allocation images of this element type.
type Mapping struct {
	RS           Type
	IsVector     bool
	ScalarSPIRV  string // e.g. "%uchar"
	SPIRV        string // the type used for a buffer element: "%uchar" or "%v4uchar"
	ImageFormat  string // SPIR-V ImageFormat keyword for a single-channel or 4-channel image
	ImageReadTy  string // the type produced by OpImageRead / consumed by OpImageWrite
}

var mappings = map[Type]Mapping{
	Void: {RS: Void, IsVector: false, ScalarSPIRV: "%void", SPIRV: "%void"},
	UChar: {RS: UChar, IsVector: false, ScalarSPIRV: "%uchar", SPIRV: "%uchar",
		ImageFormat: "R8", ImageReadTy: "%v4uchar"},
	Int: {RS: Int, IsVector: false, ScalarSPIRV: "%int", SPIRV: "%int",
		ImageFormat: "R32i", ImageReadTy: "%v4int"},
	Float: {RS: Float, IsVector: false, ScalarSPIRV: "%float", SPIRV: "%float",
		ImageFormat: "R32f", ImageReadTy: "%v4float"},
	UChar4: {RS: UChar4, IsVector: true, ScalarSPIRV: "%uchar", SPIRV: "%v4uchar",
		ImageFormat: "Rgba8", ImageReadTy: "%v4uchar"},
	Int4: {RS: Int4, IsVector: true, ScalarSPIRV: "%int", SPIRV: "%v4int",
		ImageFormat: "Rgba32i", ImageReadTy: "%v4int"},
	Float4: {RS: Float4, IsVector: true, ScalarSPIRV: "%float", SPIRV: "%v4float",
		ImageFormat: "Rgba32f", ImageReadTy: "%v4float"},
}

// MappingFor returns the fixed SPIR-V mapping for t.
func MappingFor(t Type) Mapping { return mappings[t] }
