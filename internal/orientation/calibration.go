// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import "github.com/relabs-tech/imu_display/internal/imu"

// Offsets is the zero reference subtracted from raw readings, on the
// sensor's raw scale.
type Offsets struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Calibration holds the zero reference of a session. The three offsets are
// always taken together from a single frame.
type Calibration struct {
	offsets Offsets
	set     bool
}

// MaybeInitialize makes f the flat reference if no reference is set yet.
// It reports whether the reference was taken from f.
func (c *Calibration) MaybeInitialize(f imu.Frame) bool {
	if c.set {
		return false
	}
	c.take(f)
	return true
}

// Reset makes f the flat reference unconditionally.
func (c *Calibration) Reset(f imu.Frame) {
	c.take(f)
}

func (c *Calibration) take(f imu.Frame) {
	c.offsets = Offsets{Roll: f.Roll, Pitch: f.Pitch, Yaw: f.Yaw}
	c.set = true
}

// Offsets returns the current zero reference.
func (c *Calibration) Offsets() Offsets { return c.offsets }

// IsSet reports whether a zero reference has been taken.
func (c *Calibration) IsSet() bool { return c.set }
