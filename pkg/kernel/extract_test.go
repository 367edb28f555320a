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

package kernel_test

import (
	"testing"

	"github.com/google/rsov/pkg/kernel"
)

func TestExtractCoordsKinds(t *testing.T) {
	md := &kernel.Metadata{
		Functions: []kernel.FunctionMeta{
			{Name: "root", ReturnType: "void", ArgTypes: []string{"uchar4"}, ArgNames: []string{"in"}},
			{Name: "invert", ReturnType: "uchar4", ArgTypes: []string{"uchar4"}, ArgNames: []string{"in"}},
			{Name: "blend_x", ReturnType: "float4", ArgTypes: []string{"float4", "int"}, ArgNames: []string{"in", "x"}},
			{Name: "blend_xy", ReturnType: "float4", ArgTypes: []string{"float4", "int", "int"}, ArgNames: []string{"in", "x", "y"}},
			{Name: "blend_xyz", ReturnType: "int4", ArgTypes: []string{"int4", "int", "int", "int"}, ArgNames: []string{"in", "x", "y", "z"}},
		},
	}

	sigs, err := kernel.Extract(md)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(sigs) != 4 {
		t.Fatalf("Extract() returned %d signatures, want 4 (root filtered out): %+v", len(sigs), sigs)
	}

	want := []struct {
		name   string
		coords kernel.Coords
	}{
		{"invert", kernel.CoordsNone},
		{"blend_x", kernel.CoordsX},
		{"blend_xy", kernel.CoordsXY},
		{"blend_xyz", kernel.CoordsXYZ},
	}
	for i, w := range want {
		if sigs[i].Name != w.name {
			t.Errorf("sigs[%d].Name = %q, want %q", i, sigs[i].Name, w.name)
		}
		if sigs[i].CoordsKind != w.coords {
			t.Errorf("sigs[%d] (%s).CoordsKind = %v, want %v", i, w.name, sigs[i].CoordsKind, w.coords)
		}
	}
}

func TestExtractRejectsOutOfOrderCoords(t *testing.T) {
	md := &kernel.Metadata{
		Functions: []kernel.FunctionMeta{
			{Name: "bad", ReturnType: "int", ArgTypes: []string{"int", "int", "int"}, ArgNames: []string{"in", "y", "x"}},
		},
	}
	if _, err := kernel.Extract(md); err == nil {
		t.Fatal("Extract() with y before x: expected error, got nil")
	}
}

func TestExtractRejectsNonIntCoord(t *testing.T) {
	md := &kernel.Metadata{
		Functions: []kernel.FunctionMeta{
			{Name: "bad", ReturnType: "int", ArgTypes: []string{"int", "float"}, ArgNames: []string{"in", "x"}},
		},
	}
	if _, err := kernel.Extract(md); err == nil {
		t.Fatal("Extract() with float-typed x: expected error, got nil")
	}
}

func TestExtractRejectsTooManyTrailingArgs(t *testing.T) {
	md := &kernel.Metadata{
		Functions: []kernel.FunctionMeta{
			{
				Name:       "bad",
				ReturnType: "int",
				ArgTypes:   []string{"int", "int", "int", "int", "int"},
				ArgNames:   []string{"in", "x", "y", "z", "w"},
			},
		},
	}
	if _, err := kernel.Extract(md); err == nil {
		t.Fatal("Extract() with 4 trailing args: expected error, got nil")
	}
}

func TestExtractRejectsUnknownElementType(t *testing.T) {
	md := &kernel.Metadata{
		Functions: []kernel.FunctionMeta{
			{Name: "bad", ReturnType: "int", ArgTypes: []string{"double"}, ArgNames: []string{"in"}},
		},
	}
	if _, err := kernel.Extract(md); err == nil {
		t.Fatal("Extract() with unsupported element type: expected error, got nil")
	}
}

func TestExtractEmptyArgs(t *testing.T) {
	md := &kernel.Metadata{
		Functions: []kernel.FunctionMeta{
			{Name: "bad", ReturnType: "void", ArgTypes: nil, ArgNames: nil},
		},
	}
	if _, err := kernel.Extract(md); err == nil {
		t.Fatal("Extract() with zero arguments: expected error, got nil")
	}
}
