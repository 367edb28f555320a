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

package spirvbin

import (
	"encoding/binary"
	"io"

	"github.com/google/rsov/internal/fault"
)

// MagicNumber is the SPIR-V binary magic number every module starts
// with.
const MagicNumber uint32 = 0x07230203

// Header is the five leading words of a SPIR-V binary module, preceding
// its instruction stream.
type Header struct {
	Magic          uint32
	Version        uint32
	GeneratorMagic uint32
	Bound          uint32
	Reserved       uint32
}

// Module is a decoded SPIR-V binary: its header and its flat instruction
// stream.
type Module struct {
	Header       Header
	Instructions []Instruction
}

// Decode reads a little-endian SPIR-V binary module from r.
func Decode(r io.Reader) (*Module, error) {
	var words []uint32
	for {
		var w uint32
		if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fault.Wrap(fault.IOError, err, "reading SPIR-V binary word")
		}
		words = append(words, w)
	}
	return DecodeWords(words)
}

// DecodeWords decodes an already-read slice of SPIR-V binary words, the
// form android::spirit::Pass::run receives its module in before handing
// it to a transformer.
func DecodeWords(words []uint32) (*Module, error) {
	if len(words) < 5 {
		return nil, fault.Wrap(fault.ParseError, nil, "SPIR-V binary too short: %d words", len(words))
	}
	if words[0] != MagicNumber {
		return nil, fault.Wrap(fault.ParseError, nil, "bad SPIR-V magic number: 0x%08x", words[0])
	}

	m := &Module{Header: Header{
		Magic:          words[0],
		Version:        words[1],
		GeneratorMagic: words[2],
		Bound:          words[3],
		Reserved:       words[4],
	}}

	i := 5
	for i < len(words) {
		lead := words[i]
		count := int(lead >> 16)
		op := Opcode(lead & 0xffff)
		if count == 0 || i+count > len(words) {
			return nil, fault.Wrap(fault.ParseError, nil, "truncated instruction at word %d (opcode %d, count %d)", i, op, count)
		}
		m.Instructions = append(m.Instructions, Instruction{
			Opcode:   op,
			Operands: append([]uint32(nil), words[i+1:i+count]...),
		})
		i += count
	}
	return m, nil
}

// EncodeWords flattens m back into a SPIR-V binary word stream,
// recomputing the bound from the highest result id it observes, the
// form android::spirit::Pass::runAndSerialize hands back to its caller.
func (m *Module) EncodeWords() []uint32 {
	bound := m.Header.Bound
	for _, in := range m.Instructions {
		if id, ok := in.ResultID(); ok && id+1 > bound {
			bound = id + 1
		}
	}

	words := []uint32{m.Header.Magic, m.Header.Version, m.Header.GeneratorMagic, bound, m.Header.Reserved}
	for _, in := range m.Instructions {
		words = append(words, in.leadWord())
		words = append(words, in.Operands...)
	}
	return words
}

// Encode writes m back out as a little-endian SPIR-V binary.
func (m *Module) Encode(w io.Writer) error {
	for _, word := range m.EncodeWords() {
		if err := binary.Write(w, binary.LittleEndian, word); err != nil {
			return fault.Wrap(fault.IOError, err, "writing SPIR-V binary word")
		}
	}
	return nil
}

// NamesByID collects every identifier an OpName instruction assigns,
// keyed by the id it names. A module built from compiled C may carry
// several OpName entries for the same id across merged modules; the
// last one wins, mirroring a straightforward map build.
func (m *Module) NamesByID() map[uint32]string {
	out := map[uint32]string{}
	for _, in := range m.Instructions {
		if in.Opcode != OpName || len(in.Operands) < 2 {
			continue
		}
		out[in.Operands[0]] = decodeLiteralString(in.Operands[1:])
	}
	return out
}

// decodeLiteralString decodes a SPIR-V literal string packed into
// little-endian four-byte words, trimming the trailing NUL padding.
func decodeLiteralString(words []uint32) string {
	buf := make([]byte, 0, len(words)*4)
	for _, w := range words {
		buf = append(buf, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	end := len(buf)
	for end > 0 && buf[end-1] == 0 {
		end--
	}
	return string(buf[:end])
}
