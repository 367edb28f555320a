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

import "strings"

// Kind discriminates the role a Block plays, in the canonical SPIR-V
// module order a Module's blocks are sorted into.
type Kind int

const (
	Header Kind = iota
	Decoration
	TypeAndConst
	Variable
	FunctionDecl
	Function
	MainFunction
)

func (k Kind) String() string {
	switch k {
	case Header:
		return "Header"
	case Decoration:
		return "Decoration"
	case TypeAndConst:
		return "TypeAndConst"
	case Variable:
		return "Variable"
	case FunctionDecl:
		return "FunctionDecl"
	case Function:
		return "Function"
	case MainFunction:
		return "MainFunction"
	default:
		return "Unknown"
	}
}

// WrapperPrefix names the wrapper entry-point functions the reflection
// emitter produces; a FunctionBlock whose name starts with this prefix is
// classified as MainFunction rather than Function.
const WrapperPrefix = "%__rsov_"

// Block is an ordered sequence of Lines tagged with a Kind. Name carries
// the function name for Function/FunctionDecl/MainFunction blocks; it is
// empty for the other kinds.
type Block struct {
	Kind  Kind
	Name  string
	Lines []Line
}

// NewBlock returns an empty block of the given kind.
func NewBlock(kind Kind) *Block { return &Block{Kind: kind} }

// AddLine appends l to the block, optionally trimming it first.
func (b *Block) AddLine(l Line, trim bool) {
	if trim {
		l = l.Trim()
	}
	b.Lines = append(b.Lines, l)
}

// LastLine returns the block's final line. Panics on an empty block,
// mirroring the teacher's debug-assert-guarded accessor.
func (b *Block) LastLine() Line {
	if len(b.Lines) == 0 {
		panic("spirv: LastLine on empty block")
	}
	return b.Lines[len(b.Lines)-1]
}

// HasCode reports whether any line in the block carries code.
func (b *Block) HasCode() bool {
	for _, l := range b.Lines {
		if l.HasCode() {
			return true
		}
	}
	return false
}

// Empty reports whether the block has no lines at all.
func (b *Block) Empty() bool { return len(b.Lines) == 0 }

// RemoveNonCodeLines drops every line that is blank or a pure comment.
func (b *Block) RemoveNonCodeLines() {
	out := b.Lines[:0]
	for _, l := range b.Lines {
		if l.HasCode() {
			out = append(out, l)
		}
	}
	b.Lines = out
}

// ReplaceAllIDs rewrites every valid occurrence of old to new across every
// line in the block, repeatedly calling Line.ReplaceID per line until it
// reports no further match.
func (b *Block) ReplaceAllIDs(old, new string) {
	for i, l := range b.Lines {
		for {
			next, ok := l.ReplaceID(old, new)
			if !ok {
				break
			}
			l = next
		}
		b.Lines[i] = l
	}
}

// IDCount returns how many times id appears as an identifier (LHS or RHS)
// across the block's lines.
func (b *Block) IDCount(id string) int {
	n := 0
	for _, l := range b.Lines {
		for _, tok := range l.Identifiers() {
			if tok == id {
				n++
			}
		}
	}
	return n
}

// KernelNames reads the %RS_KERNELS OpString line a HeaderBlock carries
// (e.g. `%RS_KERNELS = OpString "foo bar"`), returning the (possibly
// empty) list of kernel names the reflection emitter recorded there.
// Only meaningful on a Header block.
func (b *Block) KernelNames() ([]string, bool) {
	for _, l := range b.Lines {
		if !l.Contains("OpString") {
			continue
		}
		name, ok := l.LHSIdentifier()
		if !ok || name != "%RS_KERNELS" {
			continue
		}
		rhs, ok := l.RHS()
		if !ok {
			return nil, false
		}
		rhs = strings.TrimPrefix(rhs, "OpString")
		rhs = strings.TrimSpace(rhs)
		rhs = strings.Trim(rhs, `"`)
		if rhs == "" {
			return []string{}, true
		}
		return strings.Fields(rhs), true
	}
	return nil, false
}

// FunctionName returns the LHS identifier of the block's OpFunction line.
func (b *Block) FunctionName() string {
	if len(b.Lines) == 0 {
		panic("spirv: FunctionName on empty function block")
	}
	name, ok := b.Lines[0].LHSIdentifier()
	if !ok {
		panic("spirv: function block does not start with OpFunction")
	}
	return name
}

// Arity returns the number of OpFunctionParameter lines in the block.
func (b *Block) Arity() int {
	n := 0
	for _, l := range b.Lines {
		if l.Contains("OpFunctionParameter") {
			n++
		}
	}
	return n
}

// ArgNames returns the LHS identifiers of the block's OpFunctionParameter
// lines, in order.
func (b *Block) ArgNames() []string {
	var out []string
	for _, l := range b.Lines {
		if !l.Contains("OpFunctionParameter") {
			continue
		}
		if name, ok := l.LHSIdentifier(); ok {
			out = append(out, name)
		}
	}
	return out
}

// RetValName returns the identifier named by the block's OpReturnValue
// line, if any.
func (b *Block) RetValName() (string, bool) {
	for _, l := range b.Lines {
		if l.Contains("OpReturnValue") {
			ids := l.Identifiers()
			if len(ids) != 1 {
				return "", false
			}
			return ids[0], true
		}
	}
	return "", false
}

// Body returns the lines strictly between the block's OpLabel and its
// terminating OpReturn/OpReturnValue, i.e. the inlinable function body.
func (b *Block) Body() []Line {
	i := 0
	for i < len(b.Lines) && !b.Lines[i].Contains("OpLabel") {
		i++
	}
	if i >= len(b.Lines) {
		return nil
	}
	i++
	start := i
	for i < len(b.Lines) && !b.Lines[i].Contains("OpReturn") {
		i++
	}
	if i >= len(b.Lines) {
		return nil
	}
	return b.Lines[start:i]
}

// CalledFunctions returns the callee name of every OpFunctionCall line in
// the block, in order (with duplicates, one per call site).
func (b *Block) CalledFunctions() []string {
	var out []string
	for _, l := range b.Lines {
		if !l.Contains("OpFunctionCall") {
			continue
		}
		ids := l.RHSIdentifiers()
		if len(ids) >= 2 {
			out = append(out, ids[1])
		}
	}
	return out
}

// HasFunctionCalls reports whether the block contains any OpFunctionCall.
func (b *Block) HasFunctionCalls() bool { return len(b.CalledFunctions()) > 0 }

// IsDirectlyRecursive reports whether the block calls its own function
// name.
func (b *Block) IsDirectlyRecursive() bool {
	name := b.FunctionName()
	for _, callee := range b.CalledFunctions() {
		if callee == name {
			return true
		}
	}
	return false
}

// IsReturnTypeVoid reports whether the block's OpFunction declares a void
// (or %rs_linker_void, post-rename) return type and ends with a bare
// OpReturn rather than OpReturnValue.
func (b *Block) IsReturnTypeVoid() bool {
	if len(b.Lines) < 4 {
		panic("spirv: IsReturnTypeVoid on implausibly short function block")
	}
	ids := b.Lines[0].RHSIdentifiers()
	if len(ids) != 2 {
		panic("spirv: OpFunction line does not have exactly 2 RHS identifiers")
	}
	if ids[0] != "%void" && ids[0] != "%rs_linker_void" {
		return false
	}
	secondLast := b.Lines[len(b.Lines)-2].Trim()
	return string(secondLast) == "OpReturn"
}
