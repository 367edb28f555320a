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

import "github.com/google/rsov/pkg/spirv"

// RemoveUnusedFunctions drops every non-main function block that is not
// called, directly or through other kept functions, from the module's
// last MainFunction block —
// by the time this runs, every kernel body has already been inlined
// into its own wrapper main, so only genuinely dead helper functions
// remain referenced nowhere. Grounded on LinkerModule::removeUnusedFunctions.
func RemoveUnusedFunctions(m *spirv.Module) {
	main, ok := m.LastMainFunction()
	if !ok {
		return
	}

	used := map[string]bool{}
	work := main.CalledFunctions()
	for len(work) > 0 {
		name := work[len(work)-1]
		work = work[:len(work)-1]
		if used[name] {
			continue
		}
		used[name] = true
		if b, ok := m.FunctionBlockNamed(name); ok {
			work = append(work, b.CalledFunctions()...)
		}
	}

	m.RemoveBlocksIf(func(b *spirv.Block) bool {
		if b.Kind != spirv.Function && b.Kind != spirv.FunctionDecl {
			return false
		}
		return !used[b.FunctionName()]
	})
}
