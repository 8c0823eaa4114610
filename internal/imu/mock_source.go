// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"fmt"
	"math"
	"time"
)

// Raw reading of a level sensor and the raw units per degree the mock uses.
const (
	mockLevel        = 512.0
	mockUnitsPerDeg  = 1 / 0.29999
	mockRollAmpDeg   = 20.0
	mockPitchAmpDeg  = 15.0
	mockYawRateDegPS = 30.0
)

// MockSource generates smooth changing telemetry lines in the IMU's ASCII
// format, for running without hardware.
type MockSource struct {
	start    time.Time
	interval time.Duration
	count    int
	now      func() time.Time
	sleep    func(time.Duration)
}

// NewMockSource creates a mock line source emitting one frame per interval.
func NewMockSource(interval time.Duration) *MockSource {
	return &MockSource{
		start:    time.Now(),
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

func (m *MockSource) ReadLine() (string, error) {
	if m.interval > 0 {
		m.sleep(m.interval)
	}
	elapsed := m.now().Sub(m.start).Seconds()

	roll := mockLevel + mockUnitsPerDeg*mockRollAmpDeg*math.Sin(elapsed)
	pitch := mockLevel + mockUnitsPerDeg*mockPitchAmpDeg*math.Cos(elapsed*0.7)
	yaw := mockLevel + mockUnitsPerDeg*math.Mod(elapsed*mockYawRateDegPS, 360)

	m.count++
	return fmt.Sprintf("A\t%d\t%.2f\t%.2f\t%.2f\tZ\n", m.count, roll, pitch, yaw), nil
}

func (m *MockSource) Close() error { return nil }
