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

// Coords is the number and kind of trailing integer coordinate arguments
// a kernel accepts, in addition to its single element argument. The
// numeric value is the coordinate count, matching KernelSignature.h's
// "enum class Coords : size_t".
type Coords int

const (
	CoordsNone Coords = iota
	CoordsX
	CoordsXY
	CoordsXYZ
)

// coordNames is the fixed x, y, z argument-name sequence a kernel's
// trailing arguments must match to be recognized as coordinates.
var coordNames = [3]string{"x", "y", "z"}

// Count returns the number of coordinate arguments.
func (c Coords) Count() int { return int(c) }

// String renders the coordinate names this kind carries concatenated,
// e.g. CoordsXY -> "xy", used to disambiguate generated runtime-library
// function names that vary by coordinate arity.
func (c Coords) String() string {
	out := ""
	for _, n := range c.Names() {
		out += n
	}
	return out
}

// Names returns the coordinate argument names this kind carries, e.g.
// CoordsXY -> ["x", "y"].
func (c Coords) Names() []string {
	return append([]string(nil), coordNames[:c]...)
}

// wrapperPrefix names every wrapper-generated identifier. Kept distinct
// from spirv.WrapperPrefix (which only needs the bare prefix to classify
// a parsed Function block) because this package also mints the prefixed
// temporary names the reflection emitter and linker share.
const wrapperPrefix = "%__rsov_"

// Signature is a kernel's element-wise signature: what it returns, what
// single element type it consumes, and what coordinate arguments (if
// any) trail that element argument.
type Signature struct {
	ReturnType   Type
	ArgumentType Type
	CoordsKind   Coords
	Name         string
}

// WrapperName is the SPIR-V identifier of the wrapper main function the
// reflection emitter generates for this kernel.
func (s Signature) WrapperName() string {
	return wrapperPrefix + "entry_" + s.Name
}

// TempName mints a unique temporary identifier for this kernel, suffixed
// to disambiguate multiple temporaries within the same generated main.
func (s Signature) TempName(suffix string) string {
	return wrapperPrefix + s.Name + suffix
}

// IsWrapperIdentifier reports whether id was minted by the reflection
// emitter (as opposed to coming from the kernel module or runtime
// library), mirroring KernelSignature::isWrapper.
func IsWrapperIdentifier(id string) bool {
	return len(id) >= len(wrapperPrefix) && id[:len(wrapperPrefix)] == wrapperPrefix
}
