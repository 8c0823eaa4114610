// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// The IMU in ASCII mode sends one frame per line, fields separated by '\t':
//
//	A <count> <roll> <pitch> <yaw> Z\n
//
// With every sensor channel enabled the accelerometer fields are sent too,
// which gives more fields and is rejected: we need exactly roll, pitch and
// yaw behind the counter.
const FrameFieldCount = 6

// Field positions inside a frame.
const (
	fieldStart = 0
	fieldCount = 1
	fieldRoll  = 2
	fieldPitch = 3
	fieldYaw   = 4
	fieldEnd   = 5
)

// placeholderText is what the angle fields hold before the first valid frame.
const placeholderText = "0"

var (
	// ErrWrongFieldCount means the line did not split into FrameFieldCount fields.
	ErrWrongFieldCount = errors.New("wrong field count")
	// ErrBadNumber means one of the angle fields is not a number.
	ErrBadNumber = errors.New("bad number")
)

// ParseError describes why a line was rejected.
type ParseError struct {
	Err    error  // ErrWrongFieldCount or ErrBadNumber
	Fields int    // number of fields found
	Field  string // "roll", "pitch" or "yaw" for ErrBadNumber
	Text   string // offending field text for ErrBadNumber
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrBadNumber) {
		return fmt.Sprintf("%v: %s field %q", e.Err, e.Field, e.Text)
	}
	return fmt.Sprintf("%v: got %d, want %d", e.Err, e.Fields, FrameFieldCount)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Frame is one parsed line of IMU telemetry. The angle values are still on
// the sensor's own scale; nothing is calibrated here.
type Frame struct {
	Start string `json:"start"`
	Count string `json:"count"`
	End   string `json:"end"`

	RollText  string `json:"roll_text"`
	PitchText string `json:"pitch_text"`
	YawText   string `json:"yaw_text"`

	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// PlaceholderFrame is the frame used before anything has been parsed.
// Its angle texts are "0", so a zero reset at that point gives zero offsets.
func PlaceholderFrame() Frame {
	return Frame{
		RollText:  placeholderText,
		PitchText: placeholderText,
		YawText:   placeholderText,
	}
}

// ParseLine turns one raw line into a Frame.
//
// Only the field count is checked for framing; the start/end markers are not
// validated, so a line with six fields and wrong markers is still accepted.
func ParseLine(line string) (Frame, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != FrameFieldCount {
		return Frame{}, &ParseError{Err: ErrWrongFieldCount, Fields: len(fields)}
	}

	f := Frame{
		Start:     fields[fieldStart],
		Count:     fields[fieldCount],
		End:       fields[fieldEnd],
		RollText:  fields[fieldRoll],
		PitchText: fields[fieldPitch],
		YawText:   fields[fieldYaw],
	}

	var err error
	if f.Roll, err = parseAngle("roll", f.RollText); err != nil {
		return Frame{}, err
	}
	if f.Pitch, err = parseAngle("pitch", f.PitchText); err != nil {
		return Frame{}, err
	}
	if f.Yaw, err = parseAngle("yaw", f.YawText); err != nil {
		return Frame{}, err
	}
	return f, nil
}

func parseAngle(name, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, &ParseError{Err: ErrBadNumber, Fields: FrameFieldCount, Field: name, Text: text}
	}
	return v, nil
}
