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

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/rsov/internal/rslog"
	"github.com/google/rsov/pkg/kernel"
)

const fixtureKernelModule = `OpCapability Kernel
OpMemoryModel Logical OpenCL
OpEntryPoint Kernel %invert "invert"
OpDecorate %dummy NonWritable
%uchar4 = OpTypeVector %uchar 4
%invert = OpFunction %uchar4 None %fnty
%a0 = OpFunctionParameter %uchar4
%lbl = OpLabel
OpReturnValue %a0
OpFunctionEnd
`

func TestTranslateOneLinksKernelIntoWrapper(t *testing.T) {
	dir := t.TempDir()
	kernelPath := filepath.Join(dir, "invert.spt")
	if err := os.WriteFile(kernelPath, []byte(fixtureKernelModule), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	outPath := filepath.Join(dir, "linked.spt")

	sigs := []kernel.Signature{
		{Name: "invert", ReturnType: kernel.UChar4, ArgumentType: kernel.UChar4, CoordsKind: kernel.CoordsNone},
	}

	if err := translateOne(rslog.Testing(t), sigs, nil, nil, kernelPath, outPath); err != nil {
		t.Fatalf("translateOne: %v", err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading linked output: %v", err)
	}
	if strings.Contains(string(out), "OpFunctionCall") {
		t.Errorf("linked output should have no remaining calls after inlining:\n%s", out)
	}
	if !strings.Contains(string(out), "OpEntryPoint") {
		t.Errorf("linked output missing OpEntryPoint:\n%s", out)
	}
}

func TestTranslateOneRejectsUnreadableKernelFile(t *testing.T) {
	sigs := []kernel.Signature{
		{Name: "invert", ReturnType: kernel.UChar4, ArgumentType: kernel.UChar4, CoordsKind: kernel.CoordsNone},
	}
	err := translateOne(rslog.Testing(t), sigs, nil, nil, filepath.Join(t.TempDir(), "missing.spt"), filepath.Join(t.TempDir(), "out.spt"))
	if err == nil {
		t.Fatal("translateOne with missing kernel file: expected error, got nil")
	}
}
