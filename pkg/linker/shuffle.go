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

// undefLiteral is the SPIR-V literal (0xFFFFFFFF) OpVectorShuffle uses to
// mark a result component as don't-care.
const undefLiteral = " 4294967295 "

// FixVectorShuffles replaces every undefLiteral component index in mb's
// OpVectorShuffle lines with 0. The result for those components is
// unused by definition, but the Vulkan backend's shader compiler crashes
// on the literal undef marker, so 0 (always a valid component index) is
// substituted. Grounded on LinkerModule.cpp's FixVectorShuffles.
func FixVectorShuffles(mb *spirv.Block) {
	for i, l := range mb.Lines {
		if !l.Contains("OpVectorShuffle") {
			continue
		}
		s := string(l) + " "
		for strings.Contains(s, undefLiteral) {
			s = strings.Replace(s, undefLiteral, " 0 ", 1)
		}
		mb.Lines[i] = spirv.Line(s).Trim()
	}
}
