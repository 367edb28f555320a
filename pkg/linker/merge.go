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

// Merge combines wrapper and kernelMod block-wise into one module: the
// wrapper's Header and Decoration blocks (the kernel's OpenCL-flavored
// equivalents carry nothing the compute-shader wrapper needs), both
// modules' TypeAndConst and Variable blocks, every wrapper function
// (including its MainFunction wrappers), and every kernel function that
// is not a bare declaration. A directly recursive kernel function makes
// Merge fail with a RecursionError. Grounded on the block-walking loop
// in LinkerModule.cpp's Link.
func Merge(wrapper, kernelMod *spirv.Module) (*spirv.Module, error) {
	out := spirv.New()

	wHeader := wrapper.BlocksOfKind(spirv.Header)
	if len(wHeader) == 0 {
		return nil, fault.Wrap(fault.InvariantError, nil, "wrapper module has no Header block")
	}
	out.AddBlock(wHeader[0])

	wDecor := wrapper.BlocksOfKind(spirv.Decoration)
	if len(wDecor) == 0 {
		return nil, fault.Wrap(fault.InvariantError, nil, "wrapper module has no Decoration block")
	}
	out.AddBlock(wDecor[0])

	for _, b := range wrapper.BlocksOfKind(spirv.TypeAndConst) {
		out.AddBlock(b)
	}
	for _, b := range kernelMod.BlocksOfKind(spirv.TypeAndConst) {
		out.AddBlock(b)
	}

	for _, b := range wrapper.BlocksOfKind(spirv.Variable) {
		out.AddBlock(b)
	}
	for _, b := range kernelMod.BlocksOfKind(spirv.Variable) {
		out.AddBlock(b)
	}

	var mains []*spirv.Block
	for _, b := range wrapper.Blocks {
		switch b.Kind {
		case spirv.Function, spirv.MainFunction:
			out.AddBlock(b)
			if b.Kind == spirv.MainFunction {
				mains = append(mains, b)
			}
		case spirv.FunctionDecl:
			out.AddBlock(b)
		}
	}
	if len(mains) == 0 {
		return nil, fault.Wrap(fault.InvariantError, nil, "wrapper module has no main function")
	}

	for _, b := range kernelMod.Blocks {
		if b.Kind == spirv.FunctionDecl {
			continue
		}
		if b.Kind != spirv.Function && b.Kind != spirv.MainFunction {
			continue
		}
		if b.IsDirectlyRecursive() {
			return nil, fault.Wrap(fault.RecursionError, nil, "function %s is recursive", b.FunctionName())
		}
		out.AddBlock(b)
	}

	out.FixBlockOrder()
	return out, nil
}
