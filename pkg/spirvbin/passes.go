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

// Pass is one binary fixup pass, applied to a decoded module in place.
type Pass func(m *Module) error

// RunPasses decodes words, runs each pass over the result in order, and
// re-serializes it, mirroring android::spirit::Pass::run/
// runAndSerialize's decode -> transform -> re-serialize loop: single
// threaded and sequential. The stream is decoded once, every pass walks
// the same decoded instruction list in turn, and the result is
// re-serialized once at the end.
func RunPasses(words []uint32, passes ...Pass) ([]uint32, error) {
	m, err := DecodeWords(words)
	if err != nil {
		return nil, err
	}
	for _, p := range passes {
		if err := p(m); err != nil {
			return nil, err
		}
	}
	return m.EncodeWords(), nil
}
