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

// Package reflection emits the wrapper SPIR-V module a kernel module is
// linked against: the compute-shader scaffolding (entry points, I/O
// buffers, global-allocation images, and the rsGetElementAt/rsSetElementAt
// runtime library) that spec.md §4.3 calls the Reflection Emitter.
// Grounded on original_source/rsov/compiler/ReflectionPass.cpp, whose
// phase methods (emitHeader, emitDecorations, emitBuffer, emitRTFunctions,
// ...) this package's Emit reproduces as ordered helper functions.
package reflection

import (
	"fmt"

	"github.com/google/rsov/internal/fault"
	"github.com/google/rsov/pkg/kernel"
	"github.com/google/rsov/pkg/spirv"
)

// Emit builds the wrapper module for sigs, one compute entry point per
// kernel signature, declaring input/output buffers sized to each
// kernel's element type and an image binding per allocation the kernels
// reference. Phased exactly as ReflectionPass.cpp's emit* sequence:
// header, decorations, common types, per-kernel types, built-in globals,
// per-kernel buffers, global-allocation images, constants, runtime
// library, per-kernel main.
func Emit(sigs []kernel.Signature, allocs []kernel.Allocation, gpuBlock *kernel.GPUBlockLayout) (*spirv.Module, error) {
	if len(sigs) == 0 {
		return nil, fault.Wrap(fault.SignatureError, nil, "no kernel signatures to reflect")
	}

	e := &emitter{
		m:        spirv.New(),
		typeIDs:  map[string]bool{},
		constIDs: map[string]bool{},
	}

	e.emitHeader(sigs)
	e.emitDecorations(sigs, allocs, gpuBlock)
	e.emitCommonTypes()
	for _, s := range sigs {
		e.emitKernelTypes(s)
	}
	e.emitBuiltinGlobals()
	for _, s := range sigs {
		e.emitKernelBuffers(s)
	}
	e.emitAllocImages(allocs)
	e.emitGPUBlockBuffer(gpuBlock)
	for _, s := range sigs {
		e.emitConstants(s)
	}
	e.emitRuntimeLibrary(allocs)
	for _, s := range sigs {
		e.emitMain(s)
	}

	e.m.FixBlockOrder()
	return e.m, nil
}

type emitter struct {
	m        *spirv.Module
	typeIDs  map[string]bool
	constIDs map[string]bool
}

func (e *emitter) block(kind spirv.Kind, name string) *spirv.Block {
	b := spirv.NewBlock(kind)
	b.Name = name
	e.m.AddBlock(b)
	return b
}

func (e *emitter) addLines(b *spirv.Block, lines ...string) {
	for _, l := range lines {
		b.AddLine(spirv.Line(l), true)
	}
}

// emitHeader declares capabilities, extension imports, the memory model
// (Physical32 addressing, not Logical), one OpEntryPoint and one
// OpExecutionMode per kernel, and a single OpString %RS_KERNELS listing
// every kernel name — the line Block.KernelNames parses back out of a
// Header block.
func (e *emitter) emitHeader(sigs []kernel.Signature) {
	b := e.block(spirv.Header, "")
	e.addLines(b,
		"OpCapability Shader",
		"OpCapability StorageImageWriteWithoutFormat",
		"OpCapability Addresses",
		`%1 = OpExtInstImport "GLSL.std.450"`,
		"OpMemoryModel Physical32 GLSL450",
	)
	names := make([]string, len(sigs))
	for i, s := range sigs {
		e.addLines(b, fmt.Sprintf("OpEntryPoint GLCompute %s %q %%gl_GlobalInvocationID %%gl_NumWorkGroups", s.WrapperName(), s.Name))
		names[i] = s.Name
	}
	for _, s := range sigs {
		e.addLines(b, fmt.Sprintf("OpExecutionMode %s LocalSize 1 1 1", s.WrapperName()))
	}
	e.addLines(b, "OpSource GLSL 450")
	e.addLines(b, fmt.Sprintf("%%RS_KERNELS = OpString %q", joinSpace(names)))
}

func joinSpace(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}

// emitDecorations lays down BufferBlock/Binding/DescriptorSet decorations
// for each kernel's I/O buffers, the __GPUBlock global (if metadata
// supplies one, fixed at Binding 2 per ReflectionPass.cpp) and each
// allocation's image, plus the BuiltIn decorations for the compute
// builtins emitMain reads.
func (e *emitter) emitDecorations(sigs []kernel.Signature, allocs []kernel.Allocation, gpuBlock *kernel.GPUBlockLayout) {
	b := e.block(spirv.Decoration, "")
	e.addLines(b,
		"OpDecorate %gl_GlobalInvocationID BuiltIn GlobalInvocationId",
		"OpDecorate %gl_NumWorkGroups BuiltIn NumWorkgroups",
		"OpDecorate %gl_WorkGroupSize BuiltIn WorkgroupSize",
	)
	binding := 0
	for _, s := range sigs {
		e.addLines(b,
			fmt.Sprintf("OpDecorate %s BufferBlock", inBufStruct(s)),
			fmt.Sprintf("OpDecorate %s DescriptorSet 0", inBufVar(s)),
			fmt.Sprintf("OpDecorate %s Binding %d", inBufVar(s), binding),
		)
		binding++
		if s.ReturnType != kernel.Void {
			e.addLines(b,
				fmt.Sprintf("OpDecorate %s BufferBlock", outBufStruct(s)),
				fmt.Sprintf("OpDecorate %s DescriptorSet 0", outBufVar(s)),
				fmt.Sprintf("OpDecorate %s Binding %d", outBufVar(s), binding),
			)
			binding++
		}
	}
	if gpuBlock != nil {
		for i, m := range gpuBlock.Members {
			e.addLines(b, fmt.Sprintf("OpMemberDecorate %s %d Offset %d", gpuBlockStructName, i, m.Offset))
		}
		e.addLines(b,
			fmt.Sprintf("OpDecorate %s BufferBlock", gpuBlockStructName),
			fmt.Sprintf("OpDecorate %s DescriptorSet 0", gpuBlockVarName),
			fmt.Sprintf("OpDecorate %s Binding 2", gpuBlockVarName),
		)
		binding = 3
	}
	for _, a := range allocs {
		e.addLines(b,
			fmt.Sprintf("OpDecorate %s DescriptorSet 0", allocImageVar(a)),
			fmt.Sprintf("OpDecorate %s Binding %d", allocImageVar(a), binding),
		)
		binding++
	}
}

// emitCommonTypes emits the scalar/vector types every kernel wrapper
// needs regardless of signature: void, bool, the uint/int/float/uchar
// scalars, v3uint, and the 4-wide uchar/int/float vectors. Buffers of a
// scalar element type are declared, loaded and stored as that scalar
// type; they are not widened to the vector form (only image reads use
// the widened kernel.Mapping.ImageReadTy).
func (e *emitter) emitCommonTypes() {
	b := e.block(spirv.TypeAndConst, "")
	e.addLines(b,
		"%void = OpTypeVoid",
		"%bool = OpTypeBool",
		"%uint = OpTypeInt 32 0",
		"%int = OpTypeInt 32 1",
		"%float = OpTypeFloat 32",
		"%uchar = OpTypeInt 8 0",
		"%v3uint = OpTypeVector %uint 3",
		"%v4uchar = OpTypeVector %uchar 4",
		"%v4int = OpTypeVector %int 4",
		"%v4float = OpTypeVector %float 4",
		"%fnvoidvoid = OpTypeFunction %void",
	)
	for _, id := range []string{"%void", "%bool", "%uint", "%int", "%float", "%uchar",
		"%v3uint", "%v4uchar", "%v4int", "%v4float", "%fnvoidvoid"} {
		e.typeIDs[id] = true
	}
}

// emitKernelTypes emits the pointer and struct types specific to one
// kernel's element type, skipping any SPIR-V type already declared by
// an earlier kernel sharing it.
func (e *emitter) emitKernelTypes(s kernel.Signature) {
	b := e.firstOfKind(spirv.TypeAndConst)
	argTy := kernel.MappingFor(s.ArgumentType).SPIRV
	e.declareOnce(b, structTypeName(argTy), fmt.Sprintf("%s = OpTypeStruct %%_rs_arr_%s", structTypeName(argTy), argTy[1:]))
	e.declareOnce(b, "%_rs_arr_"+argTy[1:], fmt.Sprintf("%%_rs_arr_%s = OpTypeRuntimeArray %s", argTy[1:], argTy))
	e.declareOnce(b, ptrStorageName(argTy), fmt.Sprintf("%s = OpTypePointer Uniform %s", ptrStorageName(argTy), structTypeName(argTy)))

	if s.ReturnType != kernel.Void {
		retTy := kernel.MappingFor(s.ReturnType).SPIRV
		e.declareOnce(b, structTypeName(retTy), fmt.Sprintf("%s = OpTypeStruct %%_rs_arr_%s", structTypeName(retTy), retTy[1:]))
		e.declareOnce(b, "%_rs_arr_"+retTy[1:], fmt.Sprintf("%%_rs_arr_%s = OpTypeRuntimeArray %s", retTy[1:], retTy))
		e.declareOnce(b, ptrStorageName(retTy), fmt.Sprintf("%s = OpTypePointer Uniform %s", ptrStorageName(retTy), structTypeName(retTy)))
	}
}

func (e *emitter) declareOnce(b *spirv.Block, id, line string) {
	if e.typeIDs[id] {
		return
	}
	e.typeIDs[id] = true
	e.addLines(b, line)
}

// emitBuiltinGlobals declares the compute-shader builtins: the Input
// variables emitMain computes the invocation's linear buffer index from,
// gl_GlobalInvocationID (per-invocation x/y/z) and gl_NumWorkGroups (the
// dispatch's group count, used to compute row stride), and
// gl_WorkGroupSize as a constant composite of the group_size_*
// constants (1 each, the fixed LocalSize 1 1 1 emitHeader declares).
func (e *emitter) emitBuiltinGlobals() {
	b := e.block(spirv.Variable, "")
	e.addLines(b,
		"%ptr_Input_v3uint = OpTypePointer Input %v3uint",
		"%gl_GlobalInvocationID = OpVariable %ptr_Input_v3uint Input",
		"%gl_NumWorkGroups = OpVariable %ptr_Input_v3uint Input",
		"%group_size_x = OpConstant %uint 1",
		"%group_size_y = OpConstant %uint 1",
		"%group_size_z = OpConstant %uint 1",
		"%gl_WorkGroupSize = OpConstantComposite %v3uint %group_size_x %group_size_y %group_size_z",
	)
}

// emitKernelBuffers declares the uniform buffer variable for a kernel's
// input element array, and its output array if the kernel is not void.
func (e *emitter) emitKernelBuffers(s kernel.Signature) {
	b := e.firstOfKind(spirv.Variable)
	argTy := kernel.MappingFor(s.ArgumentType).SPIRV
	e.addLines(b, fmt.Sprintf("%s = OpVariable %s Uniform", inBufVar(s), ptrStorageName(argTy)))
	if s.ReturnType != kernel.Void {
		retTy := kernel.MappingFor(s.ReturnType).SPIRV
		e.addLines(b, fmt.Sprintf("%s = OpVariable %s Uniform", outBufVar(s), ptrStorageName(retTy)))
	}
}

// emitAllocImages declares one image-typed uniform constant per global
// allocation, using the ImageFormat the allocation's element type maps
// to.
func (e *emitter) emitAllocImages(allocs []kernel.Allocation) {
	if len(allocs) == 0 {
		return
	}
	b := e.firstOfKind(spirv.Variable)
	for _, a := range allocs {
		ty, err := kernel.ParseType(a.ElementType)
		fmt_ := kernel.MappingFor(ty).ImageFormat
		if err != nil || fmt_ == "" {
			fmt_ = "Rgba8"
		}
		imgTy := "%image_" + a.Name
		ptrTy := "%ptr_UniformConstant_image_" + a.Name
		e.addLines(b,
			fmt.Sprintf("%s = OpTypeImage %%float 2D 0 0 0 1 %s", imgTy, fmt_),
			fmt.Sprintf("%s = OpTypePointer UniformConstant %s", ptrTy, imgTy),
			fmt.Sprintf("%s = OpVariable %s UniformConstant", allocImageVar(a), ptrTy),
		)
	}
}

const (
	gpuBlockStructName = "%rs_linker_struct___GPUBuffer"
	gpuBlockVarName    = "%rs_linker___GPUBlock"
)

// emitGPUBlockBuffer declares the __GPUBlock global's wrapper-side
// struct and buffer variable, one scalar member per entry in gpuBlock's
// layout. The member offsets themselves are decorated in
// emitDecorations, computed from the bitcode-supplied layout rather than
// from any struct this package lays out itself.
func (e *emitter) emitGPUBlockBuffer(gpuBlock *kernel.GPUBlockLayout) {
	if gpuBlock == nil {
		return
	}
	b := e.firstOfKind(spirv.Variable)
	members := make([]string, len(gpuBlock.Members))
	for i, m := range gpuBlock.Members {
		ty, err := kernel.ParseType(m.Type)
		scalar := kernel.MappingFor(ty).ScalarSPIRV
		if err != nil || scalar == "" {
			scalar = "%int"
		}
		members[i] = scalar
	}
	ptrTy := "%ptr_Uniform_" + gpuBlockStructName[1:]
	e.addLines(b,
		fmt.Sprintf("%s = OpTypeStruct %s", gpuBlockStructName, joinSpace(members)),
		fmt.Sprintf("%s = OpTypePointer Uniform %s", ptrTy, gpuBlockStructName),
		fmt.Sprintf("%s = OpVariable %s Uniform", gpuBlockVarName, ptrTy),
	)
}

// emitConstants emits the single integer constant a kernel's main
// indexes with (%uint_zero: the field index of every OpAccessChain into
// the single-field element-array struct, and the x-component index into
// gl_NumWorkGroups), the Input-scalar pointer type gl_NumWorkGroups's x component is
// accessed through, and the placeholder function type the runtime
// library's inlining-only functions declare themselves with.
func (e *emitter) emitConstants(s kernel.Signature) {
	b := e.firstOfKind(spirv.TypeAndConst)
	e.declareOnce(b, "%uint_zero", "%uint_zero = OpConstant %uint 0")
	e.declareOnce(b, "%_ptr_Input_uint", "%_ptr_Input_uint = OpTypePointer Input %uint")
	e.declareOnce(b, "%rs_inliner_placeholder_ty", "%rs_inliner_placeholder_ty = OpTypeFunction %void")
}

// emitRuntimeLibrary emits the rsGetElementAt_*/rsSetElementAt_*
// placeholder functions the linker's inliner will splice into kernel
// bodies, one pair per allocation and per coordinate arity, each its own
// Function block (the linker's inliner looks up callees one function per
// block) parameterized by the accessor's actual coordinate arity instead
// of a hard-coded XY pair. Grounded on ReflectionPass.cpp's
// GenerateRSGEA/GenerateRSSEA.
func (e *emitter) emitRuntimeLibrary(allocs []kernel.Allocation) {
	for _, a := range allocs {
		ty, _ := kernel.ParseType(a.ElementType)
		rty := kernel.MappingFor(ty).ImageReadTy
		for _, coords := range []kernel.Coords{kernel.CoordsX, kernel.CoordsXY, kernel.CoordsXYZ} {
			e.emitRSGEA(a, rty, coords)
			e.emitRSSEA(a, coords)
		}
	}
}

func (e *emitter) emitRSGEA(a kernel.Allocation, rty string, coords kernel.Coords) {
	name := fmt.Sprintf("rsGetElementAt_%s_%s", a.Name, coords)
	fname := "%rs_linker_" + name
	b := e.block(spirv.Function, fname)
	e.addLines(b,
		fmt.Sprintf("%s = OpFunction %s None %%rs_inliner_placeholder_ty", fname, rty),
		fmt.Sprintf("%%rs_drop_param_%s = OpFunctionParameter %%rs_inliner_placeholder_ty", name),
	)
	for _, c := range coords.Names() {
		e.addLines(b, fmt.Sprintf("%%param%s_%s = OpFunctionParameter %%uint", name, c))
	}
	e.addLines(b, fmt.Sprintf("%%label%s = OpLabel", name))
	e.addLines(b, fmt.Sprintf("%%arg%s = OpCompositeConstruct %%v%duint %s", name, coords.Count(), paramRefs(name, coords)))
	e.addLines(b,
		fmt.Sprintf("%%read%s = OpImageRead %s %s %%arg%s", name, rty, allocImageVar(a), name),
		fmt.Sprintf("OpReturnValue %%read%s", name),
		"OpFunctionEnd",
	)
}

func (e *emitter) emitRSSEA(a kernel.Allocation, coords kernel.Coords) {
	name := fmt.Sprintf("rsSetElementAt_%s_%s", a.Name, coords)
	fname := "%rs_linker_" + name
	b := e.block(spirv.Function, fname)
	e.addLines(b,
		fmt.Sprintf("%s = OpFunction %%void None %%rs_inliner_placeholder_ty", fname),
		fmt.Sprintf("%%rs_placeholder_param_%s = OpFunctionParameter %%rs_inliner_placeholder_ty", name),
		fmt.Sprintf("%%param%s_new_val = OpFunctionParameter %%rs_inliner_placeholder_ty", name),
	)
	for _, c := range coords.Names() {
		e.addLines(b, fmt.Sprintf("%%param%s_%s = OpFunctionParameter %%uint", name, c))
	}
	e.addLines(b, fmt.Sprintf("%%label%s = OpLabel", name))
	e.addLines(b, fmt.Sprintf("%%arg%s = OpCompositeConstruct %%v%duint %s", name, coords.Count(), paramRefs(name, coords)))
	e.addLines(b,
		fmt.Sprintf("OpImageWrite %s %%arg%s %%param%s_new_val", allocImageVar(a), name, name),
		"OpReturn",
		"OpFunctionEnd",
	)
}

func paramRefs(name string, coords kernel.Coords) string {
	out := ""
	for i, c := range coords.Names() {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%%param%s_%s", name, c)
	}
	return out
}

// emitMain emits the per-kernel wrapper entry point. It loads the
// invocation's x/y/z coordinates and computes the linear buffer index
// row*width + x (width being the current dispatch's group count along
// x, read from gl_NumWorkGroups, since group_size_x is always 1 per the
// fixed LocalSize 1 1 1 every wrapper declares), accesses the input
// buffer element at that index, calls the kernel's own function by its
// post-rename name (pkg/linker prefixes every kernel-module identifier
// with %rs_linker_ before merging, so the wrapper can call the kernel's
// eventual identifier directly without an indirection the linker has to
// patch up) passing the element plus as many trailing coordinate
// arguments as s.CoordsKind declares, and stores the result to the
// output buffer at the same linear index if the kernel is not void.
func (e *emitter) emitMain(s kernel.Signature) {
	b := e.block(spirv.MainFunction, s.WrapperName())
	argTy := kernel.MappingFor(s.ArgumentType).SPIRV
	e.addLines(b,
		fmt.Sprintf("%s = OpFunction %%void None %%fnvoidvoid", s.WrapperName()),
		s.TempName("_label")+" = OpLabel",
		s.TempName("_idx_ptr")+" = OpAccessChain %ptr_Input_v3uint %gl_GlobalInvocationID",
		s.TempName("_idx")+" = OpLoad %v3uint "+s.TempName("_idx_ptr"),
		s.TempName("_x")+" = OpCompositeExtract %uint "+s.TempName("_idx")+" 0",
		s.TempName("_y")+" = OpCompositeExtract %uint "+s.TempName("_idx")+" 1",
	)
	if s.CoordsKind == kernel.CoordsXYZ {
		e.addLines(b, s.TempName("_z")+" = OpCompositeExtract %uint "+s.TempName("_idx")+" 2")
	}
	e.addLines(b,
		s.TempName("_row")+" = OpIMul %uint "+s.TempName("_y")+" %group_size_x",
		s.TempName("_numgroups_x_ptr")+" = OpAccessChain %_ptr_Input_uint %gl_NumWorkGroups %uint_zero",
		s.TempName("_numgroups_x")+" = OpLoad %uint "+s.TempName("_numgroups_x_ptr"),
		s.TempName("_row_width")+" = OpIMul %uint "+s.TempName("_row")+" "+s.TempName("_numgroups_x"),
		s.TempName("_linidx")+" = OpIAdd %uint "+s.TempName("_row_width")+" "+s.TempName("_x"),
		s.TempName("_in_ptr")+fmt.Sprintf(" = OpAccessChain %s %s %%uint_zero %s", ptrStorageName(argTy), inBufVar(s), s.TempName("_linidx")),
		s.TempName("_in")+" = OpLoad "+argTy+" "+s.TempName("_in_ptr"),
		s.TempName("_call")+" = OpFunctionCall "+kernel.MappingFor(s.ReturnType).SPIRV+" %rs_linker_"+s.Name+" "+s.TempName("_in")+coordCallArgs(s),
	)
	if s.ReturnType != kernel.Void {
		retTy := kernel.MappingFor(s.ReturnType).SPIRV
		e.addLines(b,
			s.TempName("_out_ptr")+fmt.Sprintf(" = OpAccessChain %s %s %%uint_zero %s", ptrStorageName(retTy), outBufVar(s), s.TempName("_linidx")),
			fmt.Sprintf("OpStore %s %s", s.TempName("_out_ptr"), s.TempName("_call")),
		)
	}
	e.addLines(b, "OpReturn", "OpFunctionEnd")
}

// coordCallArgs renders the trailing " %__rsov_<name>_x ..." operands a
// kernel call needs for its declared coordinate arguments, reusing the
// x/y/z temporaries emitMain already extracted from the invocation ID.
func coordCallArgs(s kernel.Signature) string {
	out := ""
	for _, c := range s.CoordsKind.Names() {
		out += " " + s.TempName("_"+c)
	}
	return out
}

func (e *emitter) firstOfKind(k spirv.Kind) *spirv.Block {
	if bs := e.m.BlocksOfKind(k); len(bs) > 0 {
		return bs[0]
	}
	return e.block(k, "")
}

func structTypeName(elemTy string) string  { return "%_rs_struct" + elemTy }
func ptrStorageName(elemTy string) string  { return "%_rs_ptr" + elemTy }
func inBufVar(s kernel.Signature) string   { return "%_rs_in_buf_" + s.Name }
func inBufStruct(s kernel.Signature) string {
	return structTypeName(kernel.MappingFor(s.ArgumentType).SPIRV)
}
func outBufVar(s kernel.Signature) string { return "%_rs_out_buf_" + s.Name }
func outBufStruct(s kernel.Signature) string {
	return structTypeName(kernel.MappingFor(s.ReturnType).SPIRV)
}
func allocImageVar(a kernel.Allocation) string { return "%_rs_alloc_" + a.Name }
