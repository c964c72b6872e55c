// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package imageio converts between images and boxblur grids.
//
// Decode accepts PNG, JPEG, GIF, BMP, TIFF and WebP and converts to 8-bit
// luminance. Encode writes a grid as a grayscale PNG.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"

	"github.com/gogpu/boxblur"
	_ "golang.org/x/image/bmp" // register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("imageio: empty image")

// Decode reads an image and returns its luminance as a grid, plus the
// format name reported by the decoder.
func Decode(r io.Reader) (*boxblur.Grid, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("imageio: decode: %w", err)
	}
	g, err := GridFromImage(img)
	if err != nil {
		return nil, "", err
	}
	return g, format, nil
}

// Load decodes the image file at path.
func Load(path string) (*boxblur.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: %w", err)
	}
	defer f.Close()
	g, _, err := Decode(f)
	return g, err
}

// GridFromImage converts img to luminance samples in [0, 255].
func GridFromImage(img image.Image) (*boxblur.Grid, error) {
	gray := toGray(img)
	b := gray.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	samples := make([]uint8, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[(y-b.Min.Y)*gray.Stride:]
		samples = append(samples, row[:b.Dx()]...)
	}
	return boxblur.NewGridFromUint8(b.Dx(), b.Dy(), samples)
}

// ImageFromGrid renders g as an 8-bit grayscale image. Samples are rounded
// and clamped to [0, 255].
func ImageFromGrid(g *boxblur.Grid) (*image.Gray, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(img.Pix, g.Uint8s())
	return img, nil
}

// Encode writes g as a grayscale PNG.
func Encode(w io.Writer, g *boxblur.Grid) error {
	img, err := ImageFromGrid(g)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("imageio: encode: %w", err)
	}
	return nil
}

// Save writes g as a grayscale PNG file.
func Save(path string, g *boxblur.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: %w", err)
	}
	if err := Encode(f, g); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// FitTo scales img so that its width is a multiple of multX and its height a
// multiple of multY, rounding each dimension down (but never below one
// multiple). Images that already fit are returned unchanged.
func FitTo(img image.Image, multX, multY int) (image.Image, error) {
	if multX <= 0 || multY <= 0 {
		return nil, fmt.Errorf("imageio: fit multiples must be positive, got %dx%d", multX, multY)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	w := max(b.Dx()/multX, 1) * multX
	h := max(b.Dy()/multY, 1) * multY
	if w == b.Dx() && h == b.Dy() {
		return img, nil
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}
