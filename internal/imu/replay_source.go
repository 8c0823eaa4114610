// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// ReplaySource plays back a raw session log, one line per call.
type ReplaySource struct {
	file     io.ReadCloser
	reader   *bufio.Reader
	interval time.Duration
	sleep    func(time.Duration)
}

// OpenReplaySource opens a log written by a previous session. If interval is
// positive, each line is delayed by it to approximate the live rate.
func OpenReplaySource(path string, interval time.Duration) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay %s: %w", path, err)
	}
	return NewReplaySource(f, interval), nil
}

// NewReplaySource replays lines from r.
func NewReplaySource(r io.ReadCloser, interval time.Duration) *ReplaySource {
	return &ReplaySource{
		file:     r,
		reader:   bufio.NewReader(r),
		interval: interval,
		sleep:    time.Sleep,
	}
}

func (s *ReplaySource) ReadLine() (string, error) {
	if s.interval > 0 {
		s.sleep(s.interval)
	}
	line, err := s.reader.ReadString('\n')
	if err != nil {
		// A last line without newline is still a line.
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", err
	}
	return line, nil
}

func (s *ReplaySource) Close() error { return s.file.Close() }
