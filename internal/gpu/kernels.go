// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/gogpu/boxblur"
	"github.com/gogpu/naga"
)

//go:embed shaders/tiled.wgsl.tmpl
var tiledShaderTemplate string

//go:embed shaders/naive.wgsl.tmpl
var naiveShaderTemplate string

var shaderTemplates = map[boxblur.Variant]*template.Template{
	boxblur.Tiled: template.Must(template.New("tiled").Parse(tiledShaderTemplate)),
	boxblur.Naive: template.Must(template.New("naive").Parse(naiveShaderTemplate)),
}

// kernelKey identifies one specialization of a kernel. The workgroup size
// and the workgroup tile are compile-time constants in WGSL, so every
// distinct shape and tile size needs its own pipeline.
type kernelKey struct {
	Variant     boxblur.Variant
	LocalWidth  int
	LocalHeight int
	TileWidth   int
	TileHeight  int
}

// TileCells is the number of f32 cells in the workgroup tile.
func (k kernelKey) TileCells() int { return k.TileWidth * k.TileHeight }

// Label is the debug label for GPU objects built from the key.
func (k kernelKey) Label() string {
	if k.TileWidth == 0 && k.TileHeight == 0 {
		return fmt.Sprintf("boxblur_%s_%dx%d", k.Variant, k.LocalWidth, k.LocalHeight)
	}
	return fmt.Sprintf("boxblur_%s_%dx%d_tile%dx%d", k.Variant, k.LocalWidth, k.LocalHeight, k.TileWidth, k.TileHeight)
}

// keyFor returns the specialization for req. Only the Tiled kernel depends
// on the mask, through its tile size; Naive keys leave it zero.
func keyFor(req *boxblur.LaunchRequest) kernelKey {
	key := kernelKey{
		Variant:     req.Variant,
		LocalWidth:  req.Grid.LocalWidth,
		LocalHeight: req.Grid.LocalHeight,
	}
	if req.Variant == boxblur.Tiled {
		key.TileWidth, key.TileHeight = req.Grid.TileSize(req.Mask)
	}
	return key
}

// generateShader renders the WGSL source of the kernel selected by key.
func generateShader(key kernelKey) (string, error) {
	tmpl, ok := shaderTemplates[key.Variant]
	if !ok {
		return "", &boxblur.ConfigError{Op: "launch", Param: "variant", Value: int(key.Variant), Err: boxblur.ErrUnknownVariant}
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, key); err != nil {
		return "", fmt.Errorf("render %s shader: %w", key.Variant, err)
	}
	return sb.String(), nil
}

// compileShader renders and compiles the kernel to SPIR-V words.
// Compilation failures are reported as *boxblur.BuildError with the WGSL
// source as the build log.
func compileShader(key kernelKey) ([]uint32, error) {
	source, err := generateShader(key)
	if err != nil {
		return nil, &boxblur.BuildError{Kernel: key.Label(), Err: err}
	}
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, &boxblur.BuildError{Kernel: key.Label(), Log: source, Err: err}
	}
	if len(spirvBytes)%4 != 0 {
		return nil, &boxblur.BuildError{
			Kernel: key.Label(),
			Err:    fmt.Errorf("SPIR-V length %d is not a multiple of 4", len(spirvBytes)),
		}
	}
	return spirvWords(spirvBytes), nil
}

// spirvWords converts little-endian SPIR-V bytes to 32-bit words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}
