// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/boxblur"
)

// paramsSize is the size of the WGSL Params uniform: six u32 fields padded
// to 32 bytes.
const paramsSize = 32

// packParams encodes the Params uniform for req.
func packParams(req *boxblur.LaunchRequest) []byte {
	fields := [paramsSize / 4]uint32{
		uint32(req.Width),      //nolint:gosec // validated by the planner
		uint32(req.Height),     //nolint:gosec // validated by the planner
		uint32(req.Mask.Left),  //nolint:gosec // non-negative, validated
		uint32(req.Mask.Up),    //nolint:gosec // non-negative, validated
		uint32(req.Mask.Right), //nolint:gosec // non-negative, validated
		uint32(req.Mask.Down),  //nolint:gosec // non-negative, validated
	}
	buf := make([]byte, paramsSize)
	for i, v := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// packSamples narrows samples to little-endian f32 for the device.
func packSamples(samples []float64) []byte {
	buf := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
	}
	return buf
}

// unpackSamples widens little-endian f32 into dst.
func unpackSamples(buf []byte, dst []float64) {
	for i := range dst {
		dst[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
	}
}
