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
	"fmt"
	"strings"

	"github.com/google/rsov/internal/fault"
	"github.com/google/rsov/pkg/spirv"
)

// elementArgPosition is the index, among an OpInBoundsPtrAccessChain
// line's RHS identifiers (result type, base, element, indexes...), of
// the "element" operand TranslateInBoundsPtrAccessToAccess drops.
const elementArgPosition = 2

// TranslateInBoundsPtrAccessToAccess rewrites one OpInBoundsPtrAccessChain
// line into the equivalent OpAccessChain, dropping its "element" operand
// — valid because after inlining, a kernel body's pointer arithmetic
// always indexes a single runtime array already, so the extra element
// offset OpInBoundsPtrAccessChain supports is always zero. Grounded on
// LinkerModule.cpp's TranslateInBoundsPtrAccessToAccess.
func TranslateInBoundsPtrAccessToAccess(l spirv.Line) (spirv.Line, error) {
	lhs, ok := l.LHSIdentifier()
	if !ok {
		return l, fault.Wrap(fault.InvariantError, nil, "could not decompose OpInBoundsPtrAccessChain: %q", string(l))
	}
	ids := l.RHSIdentifiers()
	if len(ids) < 4 {
		return l, fault.Wrap(fault.InvariantError, nil, "OpInBoundsPtrAccessChain has too few operands: %q", string(l))
	}

	var kept []string
	for i, id := range ids {
		if i != elementArgPosition {
			kept = append(kept, id)
		}
	}
	return spirv.Line(fmt.Sprintf("%s = OpAccessChain %s", lhs, strings.Join(kept, " "))), nil
}

// FixInBoundsPtrAccessChain rewrites every OpInBoundsPtrAccessChain line
// in mb to OpAccessChain.
func FixInBoundsPtrAccessChain(mb *spirv.Block) error {
	for i, l := range mb.Lines {
		if !l.Contains("OpInBoundsPtrAccessChain") {
			continue
		}
		next, err := TranslateInBoundsPtrAccessToAccess(l)
		if err != nil {
			return err
		}
		mb.Lines[i] = next
	}
	return nil
}
