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
	"strings"

	"github.com/google/rsov/pkg/spirv"
)

// FixStorageClass rewrites every use of the Function storage class to
// Uniform across m. The kernel compiler's SPIR-V backend emits Function
// storage class for what are actually uniform-buffer-backed globals;
// left alone the Vulkan backend rejects the module. Grounded on
// LinkerModule.cpp's FixModuleStorageClass.
//
// This blindly rewrites every occurrence, which would also corrupt a
// legitimate Function-storage-class local inside a kernel body — the
// teacher's comment notes the same caveat and defers a real fix.
func FixStorageClass(m *spirv.Module) {
	for _, b := range m.Blocks {
		for i, l := range b.Lines {
			s := string(l)
			s = strings.ReplaceAll(s, " Function", " Uniform")
			s = strings.ReplaceAll(s, "_Function_", "_Uniform_")
			b.Lines[i] = spirv.Line(s)
		}
	}
}
