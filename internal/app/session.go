// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/golang/geo/r3"

	"github.com/relabs-tech/imu_display/internal/imu"
	"github.com/relabs-tech/imu_display/internal/orientation"
)

// State of a session.
type State int

const (
	AwaitingFirstFrame State = iota
	Running
)

func (s State) String() string {
	switch s {
	case AwaitingFirstFrame:
		return "awaiting-first-frame"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Reading is what consumers receive for every valid frame.
type Reading struct {
	Session string              `json:"session"`
	Seq     uint64              `json:"seq"`
	Time    time.Time           `json:"time"`
	Pose    orientation.Pose    `json:"pose"`
	Axis    r3.Vector           `json:"axis"`
	Up      r3.Vector           `json:"up"`
	Text    orientation.Display `json:"text"`
}

// Consumer receives orientation readings.
type Consumer interface {
	Publish(Reading) error
}

// LineWriter receives raw lines before they are parsed.
type LineWriter interface {
	WriteLine(line string) error
}

// SessionOptions wires a Session to its collaborators.
type SessionOptions struct {
	ID        string
	Source    imu.LineSource
	RawLog    LineWriter   // closed by Run if it is an io.Closer; may be nil
	RawTaps   []LineWriter // extra raw line receivers, not closed
	Engine    *orientation.Engine
	Consumers []Consumer
	Logger    *log.Logger
	Echo      io.Writer // raw lines are copied here when set
}

// Session reads frames from its source, keeps the zero reference and
// publishes orientation readings. All of its state is owned by the
// goroutine calling Run; only RequestReset may be called from elsewhere.
type Session struct {
	id        string
	source    imu.LineSource
	rawLog    LineWriter
	rawTaps   []LineWriter
	engine    *orientation.Engine
	consumers []Consumer
	logger    *log.Logger
	echo      io.Writer
	now       func() time.Time

	resets chan struct{}

	state       State
	calibration orientation.Calibration
	lastFrame   imu.Frame
	sample      orientation.Sample
	text        orientation.Display
	haveSample  bool
	seq         uint64
	rawFailed   map[int]bool
}

// NewSession creates a session in the AwaitingFirstFrame state.
func NewSession(opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Session{
		id:        opts.ID,
		source:    opts.Source,
		rawLog:    opts.RawLog,
		rawTaps:   opts.RawTaps,
		engine:    opts.Engine,
		consumers: opts.Consumers,
		logger:    logger,
		echo:      opts.Echo,
		now:       time.Now,
		resets:    make(chan struct{}, 1),
		lastFrame: imu.PlaceholderFrame(),
		text:      orientation.Display{Roll: "-", Pitch: "-", Yaw: "-"},
		rawFailed: make(map[int]bool),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Offsets returns the current zero reference.
func (s *Session) Offsets() orientation.Offsets { return s.calibration.Offsets() }

// Text returns the angle texts currently shown.
func (s *Session) Text() orientation.Display { return s.text }

// Sample returns the most recent orientation sample, if any.
func (s *Session) Sample() (orientation.Sample, bool) { return s.sample, s.haveSample }

// RequestReset asks the loop to take a new zero reference. It never blocks;
// requests arriving before the loop sees the pending one are merged.
func (s *Session) RequestReset() {
	select {
	case s.resets <- struct{}{}:
	default:
	}
}

// Reset takes the most recently parsed frame as the new zero reference. If
// nothing was parsed yet the placeholder frame is used, giving zero offsets.
func (s *Session) Reset() {
	s.calibration.Reset(s.lastFrame)
	o := s.calibration.Offsets()
	s.logger.Printf("session: zero angle reset (roll=%v pitch=%v yaw=%v)", o.Roll, o.Pitch, o.Yaw)
}

func (s *Session) pollReset() {
	select {
	case <-s.resets:
		s.Reset()
	default:
	}
}

// HandleLine runs one raw line through the parser, calibration and engine
// and publishes the result. A parse error is returned after being logged;
// the published sample and texts are left untouched in that case.
func (s *Session) HandleLine(line string) error {
	frame, err := imu.ParseLine(line)
	if err != nil {
		switch {
		case errors.Is(err, imu.ErrWrongFieldCount):
			s.logger.Printf("session: need roll, pitch and yaw: %v", err)
		default:
			s.logger.Printf("session: invalid line: %v", err)
		}
		return err
	}

	s.lastFrame = frame
	if s.calibration.MaybeInitialize(frame) {
		o := s.calibration.Offsets()
		s.logger.Printf("session: flat reference set (roll=%v pitch=%v yaw=%v)", o.Roll, o.Pitch, o.Yaw)
	}
	if s.state == AwaitingFirstFrame {
		s.state = Running
	}

	s.sample = s.engine.Compute(frame, s.calibration.Offsets())
	s.text = s.engine.Display(s.sample)
	s.haveSample = true
	s.seq++

	reading := Reading{
		Session: s.id,
		Seq:     s.seq,
		Time:    s.now(),
		Pose:    s.sample.Pose(),
		Axis:    s.sample.Axis,
		Up:      s.sample.Up,
		Text:    s.text,
	}
	for _, c := range s.consumers {
		if err := c.Publish(reading); err != nil {
			s.logger.Printf("session: publish error (%T): %v", c, err)
		}
	}
	return nil
}

// recordRaw forwards line to the raw log and taps. A writer that fails is
// reported once and then skipped for the rest of the session.
func (s *Session) recordRaw(line string) {
	if s.echo != nil {
		fmt.Fprint(s.echo, line)
	}
	writers := s.rawTaps
	if s.rawLog != nil {
		writers = append([]LineWriter{s.rawLog}, s.rawTaps...)
	}
	for i, w := range writers {
		if s.rawFailed[i] {
			continue
		}
		if err := w.WriteLine(line); err != nil {
			s.rawFailed[i] = true
			s.logger.Printf("session: raw line logging disabled (%T): %v", w, err)
		}
	}
}

// Run processes lines until ctx is cancelled or a finite source runs out.
// A read timeout just starts the next iteration; any other read error ends
// the session and is returned. The source and raw log are closed on return.
func (s *Session) Run(ctx context.Context) error {
	defer s.close()

	for {
		if ctx.Err() != nil {
			s.logger.Printf("session: end of session requested")
			return nil
		}
		s.pollReset()

		line, err := s.source.ReadLine()
		if err != nil {
			switch {
			case errors.Is(err, imu.ErrTimeout):
				continue
			case errors.Is(err, io.EOF):
				s.logger.Printf("session: input exhausted after %d readings", s.seq)
				return nil
			default:
				return fmt.Errorf("session: read: %w", err)
			}
		}

		s.recordRaw(line)
		_ = s.HandleLine(line) // already logged
	}
}

func (s *Session) close() {
	if err := s.source.Close(); err != nil {
		s.logger.Printf("session: close source: %v", err)
	}
	if c, ok := s.rawLog.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.logger.Printf("session: close raw log: %v", err)
		}
	}
}
