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

// Link produces the final, self-contained SPIR-V module from a
// reflection-emitted wrapper and a compiled kernel module: rename every
// kernel identifier out of the wrapper's namespace, fix the kernel's
// storage classes, merge the two modules block-wise, inline each
// wrapper entry point's kernel call (every MainFunction block in module
// order; kernelNames must hold one name per MainFunction block, and
// only that count is checked, not the names), translate pointer-access
// idioms the Vulkan
// backend rejects, drop now-unreferenced helper functions, and fuse
// duplicate type/constant definitions. Grounded end to end on
// LinkerModule.cpp's Link.
func Link(wrapper, kernelMod *spirv.Module, kernelNames []string) (*spirv.Module, error) {
	RenameIdentifiers(kernelMod, IdentifierPrefix)
	FixStorageClass(kernelMod)

	out, err := Merge(wrapper, kernelMod)
	if err != nil {
		return nil, err
	}

	mains := out.BlocksOfKind(spirv.MainFunction)
	if len(kernelNames) != len(mains) {
		return nil, fault.Wrap(fault.InvariantError, nil,
			"kernel metadata names %d kernels but wrapper declares %d entry points", len(kernelNames), len(mains))
	}

	for _, mb := range mains {
		if err := InlineKernelIntoWrapper(out, mb); err != nil {
			return nil, err
		}
		if err := FixInBoundsPtrAccessChain(mb); err != nil {
			return nil, err
		}
		FixVectorShuffles(mb)
	}

	RemoveUnusedFunctions(out)

	if err := FuseTypesAndConstants(out); err != nil {
		return nil, err
	}

	out.FixBlockOrder()
	return out, nil
}
