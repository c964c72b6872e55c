// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

package main

import "errors"

func registerGPU() error {
	return errors.New("built with the nogpu tag")
}
