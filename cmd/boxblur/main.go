// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command boxblur blurs a grayscale image or a random integer matrix with a
// box mask.
//
// Usage:
//
//	boxblur -in photo.jpg -out blurred.png -mask 2 -group 16x16
//	boxblur -random 8x8 -max 10 -mask 1,1,1,1 -group 4x4 -variant naive
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/gogpu/boxblur"
	"github.com/gogpu/boxblur/imageio"
)

// errUsage reports a command line that names no work to do.
var errUsage = errors.New("either -in or -random is required")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "boxblur: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run parses args and performs one blur. Every resource it opens is
// released before it returns.
func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("boxblur", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		in      = fs.String("in", "", "input image (png, jpeg, gif, bmp, tiff, webp)")
		out     = fs.String("out", "blurred.png", "output PNG")
		mask    = fs.String("mask", "1", "mask radii: r or left,up,right,down")
		group   = fs.String("group", "8x8", "work-group shape WxH")
		variant = fs.String("variant", "tiled", "kernel variant: tiled or naive")
		workers = fs.Int("workers", 0, "software worker goroutines (0 = GOMAXPROCS)")
		team    = fs.String("team", "lockstep", "software group threads: lockstep or concurrent")
		useGPU  = fs.Bool("gpu", false, "run on the GPU launcher when available")
		fit     = fs.Bool("fit", false, "scale the input image to a multiple of the group shape")
		random  = fs.String("random", "", "blur a random WxH integer matrix instead of an image")
		maxVal  = fs.Int("max", 10, "exclusive upper bound of random values")
		verbose = fs.Bool("v", false, "debug logging to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	boxblur.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := parseConfig(*mask, *group, *variant, *team)
	if err != nil {
		return err
	}
	if *random == "" && *in == "" {
		fs.Usage()
		return errUsage
	}

	p, release := newPipeline(*useGPU, *workers, cfg.team)
	defer release()

	if *random != "" {
		w, h, err := parseSize(*random)
		if err != nil {
			return fmt.Errorf("-random: %w", err)
		}
		return runRandom(stdout, p, cfg, w, h, *maxVal)
	}

	if err := runImage(p, cfg, *in, *out, *fit); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "Blurred image saved to %s\n", *out)
	return nil
}

// newPipeline opens the GPU launcher only when requested and falls back to
// a software launcher. release closes the pipeline and any GPU device.
func newPipeline(useGPU bool, workers int, mode boxblur.TeamMode) (*boxblur.Pipeline, func()) {
	if useGPU {
		err := registerGPU()
		if err == nil {
			p := boxblur.New(boxblur.WithLauncher(boxblur.RegisteredLauncher()))
			return p, func() {
				p.Close()
				boxblur.UnregisterLauncher()
			}
		}
		boxblur.Logger().Warn("GPU launcher not available, using software", "err", err)
	}
	p := boxblur.New(boxblur.WithWorkers(workers), boxblur.WithTeamMode(mode))
	return p, p.Close
}

func runRandom(w io.Writer, p *boxblur.Pipeline, cfg config, width, height, maxVal int) error {
	if maxVal <= 0 {
		return fmt.Errorf("-max must be positive, got %d", maxVal)
	}
	samples := make([]int32, width*height)
	for i := range samples {
		samples[i] = rand.Int32N(int32(maxVal)) //nolint:gosec // demo data
	}
	g, err := boxblur.NewGridFromInt32(width, height, samples)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Input:")
	printGrid(w, g)

	res, err := p.Run(g, cfg.mask, cfg.shape, cfg.variant)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Output:")
	printGrid(w, res)
	return nil
}

func runImage(p *boxblur.Pipeline, cfg config, in, out string, fit bool) error {
	g, err := imageio.Load(in)
	if err != nil {
		return err
	}
	if fit {
		if g, err = fitGrid(g, cfg.shape); err != nil {
			return err
		}
	}
	res, err := p.Run(g, cfg.mask, cfg.shape, cfg.variant)
	if err != nil {
		return err
	}
	return imageio.Save(out, res)
}

func fitGrid(g *boxblur.Grid, shape boxblur.GroupShape) (*boxblur.Grid, error) {
	img, err := imageio.ImageFromGrid(g)
	if err != nil {
		return nil, err
	}
	fitted, err := imageio.FitTo(img, shape.LocalWidth, shape.LocalHeight)
	if err != nil {
		return nil, err
	}
	return imageio.GridFromImage(fitted)
}

func printGrid(w io.Writer, g *boxblur.Grid) {
	for y := range g.Height {
		for x := range g.Width {
			fmt.Fprintf(w, "%7.2f", g.At(x, y))
		}
		fmt.Fprintln(w)
	}
}
