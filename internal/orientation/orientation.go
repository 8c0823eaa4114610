// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/relabs-tech/imu_display/internal/imu"
)

// Experimental scale from raw sensor units to degrees (data*90/300).
const DefaultUnitAdjust = 0.29999

// DefaultTextWidth is the width the angle texts are cut to.
const DefaultTextWidth = 6

const degToRad = math.Pi / 180.0

// Pose is the canonical representation of orientation for your app, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Sample is the calibrated orientation computed from one frame.
// Angles are in radians; Axis points forward, Up completes the frame.
type Sample struct {
	Roll  float64   `json:"roll"`
	Pitch float64   `json:"pitch"`
	Yaw   float64   `json:"yaw"`
	Axis  r3.Vector `json:"axis"`
	Up    r3.Vector `json:"up"`
}

// Pose returns the sample's angles in degrees.
func (s Sample) Pose() Pose {
	return Pose{
		Roll:  s.Roll / degToRad,
		Pitch: s.Pitch / degToRad,
		Yaw:   s.Yaw / degToRad,
	}
}

// Display is the text shown for each angle.
type Display struct {
	Roll  string `json:"roll"`
	Pitch string `json:"pitch"`
	Yaw   string `json:"yaw"`
}

// EngineConfig controls how raw angles become a Sample.
type EngineConfig struct {
	UnitAdjust float64
	// Yaw readings of the IMU drift badly, so yaw is held at 0 unless enabled.
	YawEnabled bool
	TextWidth  int
}

// DefaultEngineConfig returns the settings the display has always used.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		UnitAdjust: DefaultUnitAdjust,
		YawEnabled: false,
		TextWidth:  DefaultTextWidth,
	}
}

// Engine converts raw frames into orientation samples. It holds no state
// besides its configuration and is safe to call at any rate.
type Engine struct {
	cfg EngineConfig
}

// NewEngine validates cfg and returns an Engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.UnitAdjust == 0 || math.IsNaN(cfg.UnitAdjust) || math.IsInf(cfg.UnitAdjust, 0) {
		return nil, fmt.Errorf("unit adjust must be a finite non-zero number, got %v", cfg.UnitAdjust)
	}
	if cfg.TextWidth < 1 {
		return nil, fmt.Errorf("text width must be at least 1, got %d", cfg.TextWidth)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig { return e.cfg }

// Compute applies the offsets and unit scale to f and derives the axis and
// up vectors.
func (e *Engine) Compute(f imu.Frame, o Offsets) Sample {
	roll := e.calibrate(f.Roll, o.Roll)
	pitch := e.calibrate(f.Pitch, o.Pitch)
	yaw := 0.0
	if e.cfg.YawEnabled {
		yaw = e.calibrate(f.Yaw, o.Yaw)
	}

	axis, up := Axes(roll, pitch, yaw)
	return Sample{
		Roll:  roll,
		Pitch: pitch,
		Yaw:   yaw,
		Axis:  axis,
		Up:    up,
	}
}

func (e *Engine) calibrate(raw, zero float64) float64 {
	return (raw - zero) * e.cfg.UnitAdjust * degToRad
}

// Display renders the sample's angles in degrees as bounded-width text.
func (e *Engine) Display(s Sample) Display {
	p := s.Pose()
	return Display{
		Roll:  FormatAngle(p.Roll, e.cfg.TextWidth),
		Pitch: FormatAngle(p.Pitch, e.cfg.TextWidth),
		Yaw:   FormatAngle(p.Yaw, e.cfg.TextWidth),
	}
}

// Axes returns the forward axis and up vector for the given angles (radians).
// Yaw rotates about Z, pitch tilts the axis towards +Z, roll turns the up
// vector about the axis. At zero the axis is +X and up is -Z.
//
// There is no guard for pitch = ±90°: the axis is then vertical and roll
// and yaw describe the same rotation.
func Axes(roll, pitch, yaw float64) (axis, up r3.Vector) {
	sr, cr := math.Sincos(roll)
	sp, cp := math.Sincos(pitch)
	sy, cy := math.Sincos(yaw)

	axis = r3.Vector{
		X: cp * cy,
		Y: -cp * sy,
		Z: sp,
	}
	up = r3.Vector{
		X: sr*sy + cr*sp*cy,
		Y: sr*cy - cr*sp*sy,
		Z: -cr * cp,
	}
	return axis, up
}
