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

// Package linker assembles a wrapper module (from pkg/reflection) and a
// compiled kernel module into one linked SPIR-V module, mirroring
// original_source/rsov/compiler/LinkerModule.cpp's Link function: rename
// every kernel identifier, fix its storage classes, merge block-wise,
// inline each kernel body into its wrapper entry point, translate
// pointer-access idioms the Vulkan backend rejects, drop unreferenced
// functions, and fuse duplicate type/constant definitions.
package linker

import "github.com/google/rsov/pkg/spirv"

// IdentifierPrefix is prepended to every "%" in the kernel module before
// merging, so kernel identifiers can never collide with wrapper
// identifiers. Matches LinkerModule.cpp's Link ("%rs_linker_").
const IdentifierPrefix = "%rs_linker_"

// RenameIdentifiers rewrites every "%" in m's lines to prefix, textually
// and without boundary checks — exactly the C++ Link function's
// byte-level std::string::replace loop, since every "%" in valid SPIR-V
// text begins an identifier.
func RenameIdentifiers(m *spirv.Module, prefix string) {
	for _, b := range m.Blocks {
		for i, l := range b.Lines {
			b.Lines[i] = spirv.Line(renamePercent(string(l), prefix))
		}
	}
}

func renamePercent(s, prefix string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			out = append(out, prefix...)
		} else {
			out = append(out, s[i])
		}
	}
	return string(out)
}
