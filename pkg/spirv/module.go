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

package spirv

import (
	"fmt"
	"io"
	"sort"
)

// Module is an ordered sequence of Blocks.
type Module struct {
	Blocks []*Block
}

// New returns an empty module.
func New() *Module { return &Module{} }

// AddBlock appends b to the module and returns it, for chaining.
func (m *Module) AddBlock(b *Block) *Block {
	m.Blocks = append(m.Blocks, b)
	return b
}

// FixBlockOrder stably sorts the module's blocks into canonical Kind
// order (Header, Decoration, TypeAndConst, Variable, FunctionDecl,
// Function, MainFunction).
func (m *Module) FixBlockOrder() {
	sort.SliceStable(m.Blocks, func(i, j int) bool {
		return m.Blocks[i].Kind < m.Blocks[j].Kind
	})
}

// RemoveBlocksIf removes every block for which pred returns true.
func (m *Module) RemoveBlocksIf(pred func(*Block) bool) {
	out := m.Blocks[:0]
	for _, b := range m.Blocks {
		if !pred(b) {
			out = append(out, b)
		}
	}
	m.Blocks = out
}

// RemoveEmptyBlocks drops every block with no lines at all.
func (m *Module) RemoveEmptyBlocks() {
	m.RemoveBlocksIf(func(b *Block) bool { return b.Empty() })
}

// RemoveNonCode strips non-code lines from every non-Header block, then
// drops any block left with no code.
func (m *Module) RemoveNonCode() {
	for _, b := range m.Blocks {
		if b.Kind != Header {
			b.RemoveNonCodeLines()
		}
	}
	m.RemoveBlocksIf(func(b *Block) bool {
		return b.Kind != Header && !b.HasCode()
	})
}

// BlocksOfKind returns every block with the given Kind, in module order.
func (m *Module) BlocksOfKind(k Kind) []*Block {
	var out []*Block
	for _, b := range m.Blocks {
		if b.Kind == k {
			out = append(out, b)
		}
	}
	return out
}

// FunctionBlockNamed returns the first Function, FunctionDecl, or
// MainFunction block whose name matches, among blocks with function
// bodies (i.e. excludes Header/Decoration/TypeAndConst/Variable).
func (m *Module) FunctionBlockNamed(name string) (*Block, bool) {
	for _, b := range m.Blocks {
		switch b.Kind {
		case Function, FunctionDecl, MainFunction:
		default:
			continue
		}
		if b.FunctionName() == name {
			return b, true
		}
	}
	return nil, false
}

// LastMainFunction returns the last MainFunction block in the module, the
// convention the linker uses to decide which function's transitive
// callees to keep when removing unused functions.
func (m *Module) LastMainFunction() (*Block, bool) {
	mains := m.BlocksOfKind(MainFunction)
	if len(mains) == 0 {
		return nil, false
	}
	return mains[len(mains)-1], true
}

// ForEachLine visits every line in the module, in block order, allowing
// in-place replacement via the returned setter.
func (m *Module) ForEachLine(visit func(line Line, set func(Line))) {
	for _, b := range m.Blocks {
		for i := range b.Lines {
			idx := i
			blk := b
			visit(blk.Lines[idx], func(l Line) { blk.Lines[idx] = l })
		}
	}
}

// WriteTo renders the module as SPIR-V text: blocks in their current
// order (canonical Kind order once FixBlockOrder has run; WriteTo does
// not sort), each (other than Header) prefixed by a "; <Kind>Block"
// banner, code lines indented by a tab.
func (m *Module) WriteTo(w io.Writer) error {
	for _, b := range m.Blocks {
		if b.Kind != Header {
			if _, err := fmt.Fprintf(w, "\n\n; %sBlock\n\n", b.Kind); err != nil {
				return err
			}
		}
		for _, l := range b.Lines {
			if l.HasCode() {
				if _, err := io.WriteString(w, "\t"); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%s\n", string(l)); err != nil {
				return err
			}
		}
	}
	return nil
}
