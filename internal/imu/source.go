// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import "errors"

// ErrTimeout is returned by a LineSource when no complete line arrived within
// its read timeout. It is not a failure; callers just try again.
var ErrTimeout = errors.New("read timeout")

// LineSource is anything that can provide raw telemetry lines over time:
// the serial port, a replayed session log, a mock generator.
type LineSource interface {
	// ReadLine returns the next line including its trailing newline, if any.
	// A finite source returns io.EOF once it is exhausted.
	ReadLine() (string, error)
	Close() error
}
