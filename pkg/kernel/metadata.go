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

package kernel

import (
	"encoding/json"
	"io"
	"os"

	"github.com/google/rsov/internal/fault"
)

// FunctionMeta is the bitcode-derived description of one kernel
// function: its declared argument names (used to detect the trailing
// x[,y[,z]] coordinate suffix) and types, preserving declaration order.
// This is the Go-native shape of the "per-function argument names" item
// in spec.md §6's bitcode metadata contract.
type FunctionMeta struct {
	Name       string   `json:"name"`
	ReturnType string   `json:"return_type"`
	ArgTypes   []string `json:"arg_types"`
	ArgNames   []string `json:"arg_names"`
}

// GPUBlockMember is one field of the kernel's optional __GPUBlock global
// struct, at the byte offset the bitcode's data layout assigned it.
type GPUBlockMember struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Offset int    `json:"offset"`
}

// GPUBlockLayout is the optional layout of a kernel's __GPUBlock global.
type GPUBlockLayout struct {
	Members []GPUBlockMember `json:"members"`
}

// Allocation is a global allocation (an image-backed side input) a
// kernel body may reference via rsGetElementAt_*/rsSetElementAt_*.
type Allocation struct {
	Name        string `json:"name"`
	ElementType string `json:"element_type"`
}

// Metadata is the side-band bitcode metadata contract described in
// spec.md §6: the count of kernels, their names in declaration order
// (with "root" filtered out by Extract), the argument metadata needed to
// classify coordinate arguments, and the optional __GPUBlock layout.
type Metadata struct {
	Functions   []FunctionMeta  `json:"functions"`
	GPUBlock    *GPUBlockLayout `json:"gpu_block,omitempty"`
	Allocations []Allocation    `json:"allocations,omitempty"`
}

// LoadMetadata reads and decodes the JSON metadata sidecar produced
// alongside a kernel's bitcode by the (external, out of scope) bitcode
// reader.
func LoadMetadata(r io.Reader) (*Metadata, error) {
	var m Metadata
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fault.Wrap(fault.MetadataError, err, "decoding kernel metadata")
	}
	return &m, nil
}

// LoadMetadataFile opens path and decodes it as kernel metadata.
func LoadMetadataFile(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(fault.IOError, err, "opening metadata file %q", path)
	}
	defer f.Close()
	return LoadMetadata(f)
}
