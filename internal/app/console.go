// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
)

// Console prints every reading as one status line.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Publish(r Reading) error {
	_, err := fmt.Fprintf(c.w,
		"ROLL=%6s  PITCH=%6s  YAW=%6s  axis=(%.3f, %.3f, %.3f) up=(%.3f, %.3f, %.3f)\n",
		r.Text.Roll, r.Text.Pitch, r.Text.Yaw,
		r.Axis.X, r.Axis.Y, r.Axis.Z,
		r.Up.X, r.Up.Y, r.Up.Z,
	)
	return err
}
