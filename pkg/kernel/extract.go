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

import "github.com/google/rsov/internal/fault"

// rootFunctionName is the distinguished RenderScript entry point that is
// never itself a foreach kernel and is always filtered out, per spec.md
// §6.
const rootFunctionName = "root"

// Extract produces one Signature per kernel function named in md,
// skipping the distinguished "root" function. A function is recognized
// as a kernel exactly when it has one non-coordinate argument (the
// per-element input) optionally followed by a trailing run of "x", "y",
// "z" arguments typed "int", in that order; anything else is a
// SignatureError, mirroring spec.md §6's coordinate-argument rule.
func Extract(md *Metadata) ([]Signature, error) {
	var out []Signature
	for _, fn := range md.Functions {
		if fn.Name == rootFunctionName {
			continue
		}

		sig, err := extractOne(fn)
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}
	return out, nil
}

func extractOne(fn FunctionMeta) (Signature, error) {
	if len(fn.ArgNames) != len(fn.ArgTypes) {
		return Signature{}, fault.Wrap(fault.MetadataError, nil,
			"kernel %q: %d argument names but %d argument types", fn.Name, len(fn.ArgNames), len(fn.ArgTypes))
	}
	if len(fn.ArgTypes) == 0 {
		return Signature{}, fault.Wrap(fault.SignatureError, nil,
			"kernel %q: expected at least one (element) argument", fn.Name)
	}

	trailing := len(fn.ArgNames) - 1
	if trailing > CoordsXYZ.Count() {
		return Signature{}, fault.Wrap(fault.SignatureError, nil,
			"kernel %q: too many trailing arguments for a coordinate suffix (%d)", fn.Name, trailing)
	}
	for i := 0; i < trailing; i++ {
		want := coordNames[i]
		if fn.ArgNames[1+i] != want || fn.ArgTypes[1+i] != "int" {
			return Signature{}, fault.Wrap(fault.SignatureError, nil,
				"kernel %q: trailing argument %d is %q:%q, want %q:int",
				fn.Name, i, fn.ArgNames[1+i], fn.ArgTypes[1+i], want)
		}
	}

	argTy, err := ParseType(fn.ArgTypes[0])
	if err != nil {
		return Signature{}, fault.Wrap(fault.SignatureError, err, "kernel %q: argument type", fn.Name)
	}
	retTy, err := ParseType(fn.ReturnType)
	if err != nil {
		return Signature{}, fault.Wrap(fault.SignatureError, err, "kernel %q: return type", fn.Name)
	}

	return Signature{
		ReturnType:   retTy,
		ArgumentType: argTy,
		CoordsKind:   Coords(trailing),
		Name:         fn.Name,
	}, nil
}
