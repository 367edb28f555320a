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

package linker_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/rsov/pkg/kernel"
	"github.com/google/rsov/pkg/linker"
	"github.com/google/rsov/pkg/reflection"
	"github.com/google/rsov/pkg/spirv"
)

// compiledKernelModule is a minimal stand-in for what the (out of scope)
// RenderScript-to-SPIR-V compiler would hand the linker for a single
// "invert" kernel: one exported function with a uchar4-returning helper
// it calls along the way, exercising transitive inlining (the helper's
// call only appears once the kernel body is spliced into the wrapper).
const compiledKernelModule = `OpCapability Kernel
OpMemoryModel Logical OpenCL
OpEntryPoint Kernel %invert "invert"
OpDecorate %dummy NonWritable
%uchar4 = OpTypeVector %uchar 4
%helper = OpFunction %uchar4 None %fnty
%p0 = OpFunctionParameter %uchar4
%hlbl = OpLabel
%hret = OpCopyObject %uchar4 %p0
OpReturnValue %hret
OpFunctionEnd
%invert = OpFunction %uchar4 None %fnty
%a0 = OpFunctionParameter %uchar4
%lbl = OpLabel
%r = OpFunctionCall %uchar4 %helper %a0
OpReturnValue %r
OpFunctionEnd
`

func TestLinkInlinesKernelAndDropsCalls(t *testing.T) {
	sigs := []kernel.Signature{
		{Name: "invert", ReturnType: kernel.UChar4, ArgumentType: kernel.UChar4, CoordsKind: kernel.CoordsNone},
	}
	wrapper, err := reflection.Emit(sigs, nil, nil)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	kernelMod, err := spirv.Parse(strings.NewReader(compiledKernelModule))
	if err != nil {
		t.Fatalf("Parse kernel module: %v", err)
	}

	out, err := linker.Link(wrapper, kernelMod, []string{"invert"})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	var buf bytes.Buffer
	if err := out.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	text := buf.String()

	if strings.Contains(text, "OpFunctionCall") {
		t.Errorf("linked module should have no remaining OpFunctionCall after full inlining:\n%s", text)
	}

	mains := out.BlocksOfKind(spirv.MainFunction)
	if len(mains) != 1 {
		t.Fatalf("expected one MainFunction block, got %d", len(mains))
	}
	if !mains[0].HasCode() {
		t.Errorf("linked main function has no code")
	}
}

func TestLinkRejectsKernelNameCountMismatch(t *testing.T) {
	sigs := []kernel.Signature{
		{Name: "invert", ReturnType: kernel.UChar4, ArgumentType: kernel.UChar4, CoordsKind: kernel.CoordsNone},
	}
	wrapper, err := reflection.Emit(sigs, nil, nil)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	kernelMod, err := spirv.Parse(strings.NewReader(compiledKernelModule))
	if err != nil {
		t.Fatalf("Parse kernel module: %v", err)
	}

	if _, err := linker.Link(wrapper, kernelMod, nil); err == nil {
		t.Fatal("Link with 0 kernel names against 1 wrapper main: expected error, got nil")
	}
}

func TestLinkRejectsRecursiveKernel(t *testing.T) {
	const recursiveKernel = `OpCapability Kernel
OpMemoryModel Logical OpenCL
OpEntryPoint Kernel %loopy "loopy"
OpDecorate %dummy NonWritable
%uchar4 = OpTypeVector %uchar 4
%loopy = OpFunction %uchar4 None %fnty
%a0 = OpFunctionParameter %uchar4
%lbl = OpLabel
%r = OpFunctionCall %uchar4 %loopy %a0
OpReturnValue %r
OpFunctionEnd
`
	sigs := []kernel.Signature{
		{Name: "loopy", ReturnType: kernel.UChar4, ArgumentType: kernel.UChar4, CoordsKind: kernel.CoordsNone},
	}
	wrapper, err := reflection.Emit(sigs, nil, nil)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	kernelMod, err := spirv.Parse(strings.NewReader(recursiveKernel))
	if err != nil {
		t.Fatalf("Parse kernel module: %v", err)
	}

	if _, err := linker.Link(wrapper, kernelMod, []string{"loopy"}); err == nil {
		t.Fatal("Link with directly-recursive kernel: expected error, got nil")
	}
}

func TestFixVectorShufflesReplacesUndef(t *testing.T) {
	b := &spirv.Block{Lines: []spirv.Line{
		"%r = OpVectorShuffle %v4uchar %a %b 0 1 2 4294967295",
	}}
	linker.FixVectorShuffles(b)
	if strings.Contains(string(b.Lines[0]), "4294967295") {
		t.Errorf("undef literal not replaced: %q", b.Lines[0])
	}
	if !strings.HasSuffix(string(b.Lines[0]), "0") {
		t.Errorf("expected trailing replaced component to be 0, got %q", b.Lines[0])
	}
}

func TestTranslateInBoundsPtrAccessToAccess(t *testing.T) {
	l := spirv.Line("%r = OpInBoundsPtrAccessChain %ty %base %elem %i0 %i1")
	out, err := linker.TranslateInBoundsPtrAccessToAccess(l)
	if err != nil {
		t.Fatalf("TranslateInBoundsPtrAccessToAccess: %v", err)
	}
	if strings.Contains(string(out), "%elem") {
		t.Errorf("element operand should have been dropped: %q", out)
	}
	if !strings.Contains(string(out), "OpAccessChain") {
		t.Errorf("expected OpAccessChain in output: %q", out)
	}
	if !strings.Contains(string(out), "%i0") || !strings.Contains(string(out), "%i1") {
		t.Errorf("expected indices preserved: %q", out)
	}
}
