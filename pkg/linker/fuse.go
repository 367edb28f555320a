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

	"github.com/google/rsov/internal/fault"
	"github.com/google/rsov/pkg/spirv"
)

// FuseTypesAndConstants value-numbers every OpType/OpConstant definition
// in m by its right-hand side text: the first definition with a given
// RHS is kept, every later line defining the identical RHS is marked
// dead and every subsequent reference to its identifier is rewritten to
// the first definition's identifier. OpTypeStruct and OpTypeRuntimeArray
// definitions are excluded from fusion, since two structurally identical
// structs are not necessarily the same type once named fields matter
// downstream. Grounded on LinkerModule.cpp's FuseTypesAndConstants.
func FuseTypesAndConstants(m *spirv.Module) error {
	defs := map[string]string{}
	reps := map[string]string{}
	var err error

	m.ForEachLine(func(line spirv.Line, set func(spirv.Line)) {
		if err != nil {
			return
		}
		if !line.Contains("=") {
			return
		}

		cur := line
		for _, id := range line.RHSIdentifiers() {
			rep, ok := reps[id]
			if !ok {
				continue
			}
			if next, ok := cur.ReplaceID(id, rep); ok {
				cur = next
			}
		}
		if cur != line {
			set(cur)
			line = cur
		}

		if !line.Contains("OpType") && !line.Contains("OpConstant") {
			return
		}

		lhs, ok := line.LHSIdentifier()
		if !ok {
			err = fault.Wrap(fault.InvariantError, nil, "type/constant line has no result identifier: %q", string(line))
			return
		}
		rhs, ok := line.RHS()
		if !ok {
			err = fault.Wrap(fault.InvariantError, nil, "type/constant line has no right-hand side: %q", string(line))
			return
		}

		if !strings.HasPrefix(rhs, "OpTypeStruct") && !strings.HasPrefix(rhs, "OpTypeRuntimeArray") {
			if canonical, seen := defs[rhs]; seen {
				reps[lhs] = canonical
				set(line.MarkEmpty())
				return
			}
		}
		defs[rhs] = lhs
	})

	if err != nil {
		return err
	}
	m.RemoveNonCode()
	return nil
}
