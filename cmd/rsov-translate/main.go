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

// The rsov-translate command links one or more compiled RenderScript
// kernel modules into their reflection-emitted wrapper, producing a
// textual SPIR-V module per kernel file, ready for assembly and driver
// consumption.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/rsov/internal/fault"
	"github.com/google/rsov/internal/rslog"
	"github.com/google/rsov/pkg/kernel"
	"github.com/google/rsov/pkg/linker"
	"github.com/google/rsov/pkg/reflection"
	"github.com/google/rsov/pkg/spirv"
)

var (
	kernelPath = flag.String("kernel", "", "Path to the compiled kernel module's textual SPIR-V")
	metaPath   = flag.String("meta", "", "Path to the JSON bitcode metadata sidecar, shared by every kernel file")
	outPath    = flag.String("out", "", "Path for the linked textual SPIR-V module; a directory when more than one kernel file is given")
	wrapperOut = flag.String("wo", "", "Optional path to write the intermediate wrapper module before linking")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rsov-translate -kernel <path> -meta <path> -out <path> [-wo <path>] [extra kernel files...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx := rslog.Background()
	if err := run(ctx); err != nil {
		ctx.Error().Log("%v", err)
		os.Exit(1)
	}
}

// run executes the full translate pipeline: load metadata once, extract
// kernel signatures once, then link every named kernel file against its
// own freshly-emitted wrapper. One kernel file (the common case) runs
// inline; additional files named as positional arguments fan out over
// goroutines the way cmd/shadertool/main.go processes its input list,
// each translation still running start-to-finish with no module state
// shared between translations.
func run(ctx rslog.Context) error {
	if *kernelPath == "" || *metaPath == "" || *outPath == "" {
		flag.Usage()
		return fault.Wrap(fault.InvariantError, nil, "-kernel, -meta, and -out are all required")
	}

	md, err := kernel.LoadMetadataFile(*metaPath)
	if err != nil {
		return err
	}
	sigs, err := kernel.Extract(md)
	if err != nil {
		return err
	}
	if len(sigs) == 0 {
		return fault.Wrap(fault.MetadataError, nil, "%s: no kernel functions found", *metaPath)
	}

	if *wrapperOut != "" {
		wrapper, err := reflection.Emit(sigs, md.Allocations, md.GPUBlock)
		if err != nil {
			return err
		}
		if err := writeModule(wrapper, *wrapperOut); err != nil {
			return err
		}
		ctx.Named("reflection").Info().Log("wrote wrapper module to %s", *wrapperOut)
	}

	kernelFiles := append([]string{*kernelPath}, flag.Args()...)
	if len(kernelFiles) == 1 {
		return translateOne(ctx, sigs, md.Allocations, md.GPUBlock, kernelFiles[0], *outPath)
	}

	errs := make([]error, len(kernelFiles))
	var wg sync.WaitGroup
	for i, path := range kernelFiles {
		i, path := i, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := filepath.Join(*outPath, filepath.Base(path))
			errs[i] = translateOne(ctx, sigs, md.Allocations, md.GPUBlock, path, out)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			ctx.Error().Log("%s: %v", kernelFiles[i], err)
		}
	}
	for _, err := range errs {
		if err != nil {
			return fault.Wrap(fault.InvariantError, nil, "%d of %d kernel files failed to link", countErrors(errs), len(errs))
		}
	}
	return nil
}

// translateOne links a single kernel file against a freshly-emitted
// wrapper and writes the result to outPath. Emitting its own wrapper
// per call (rather than sharing one across translateOne invocations)
// keeps every translation free of shared mutable module state, since
// pkg/linker.Link mutates the wrapper and kernel modules it is given.
func translateOne(ctx rslog.Context, sigs []kernel.Signature, allocs []kernel.Allocation, gpuBlock *kernel.GPUBlockLayout, kernelPath, outPath string) error {
	wrapper, err := reflection.Emit(sigs, allocs, gpuBlock)
	if err != nil {
		return err
	}
	kernelMod, err := parseModuleFile(kernelPath)
	if err != nil {
		return err
	}

	kernelNames := make([]string, len(sigs))
	for i, s := range sigs {
		kernelNames[i] = s.Name
	}

	linked, err := linker.Link(wrapper, kernelMod, kernelNames)
	if err != nil {
		return err
	}
	if err := writeModule(linked, outPath); err != nil {
		return err
	}
	ctx.Named("linker").Info().Log("linked %d kernel(s) from %s into %s", len(sigs), kernelPath, outPath)
	return nil
}

func countErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}

// parseModuleFile opens path and parses it as textual SPIR-V, closing
// the file before returning, grounded on cmd/shadertool/main.go's
// read-then-process-per-input shape.
func parseModuleFile(path string) (*spirv.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(fault.IOError, err, "opening %s", path)
	}
	defer f.Close()

	m, err := spirv.Parse(f)
	if err != nil {
		return nil, fault.Wrap(fault.ParseError, err, "parsing %s", path)
	}
	return m, nil
}

func writeModule(m *spirv.Module, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fault.Wrap(fault.IOError, err, "creating %s", path)
	}
	defer f.Close()

	if err := m.WriteTo(f); err != nil {
		return fault.Wrap(fault.IOError, err, "writing %s", path)
	}
	return nil
}
