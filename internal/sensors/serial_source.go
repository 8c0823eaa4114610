// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/imu_display/internal/imu"
)

// SerialOptions describes the serial link to the IMU.
type SerialOptions struct {
	PortName    string
	BaudRate    int
	StopBits    int
	ReadTimeout time.Duration
}

// DefaultSerialOptions returns the link settings of the Atomic IMU.
func DefaultSerialOptions(port string) SerialOptions {
	return SerialOptions{
		PortName:    port,
		BaudRate:    115200,
		StopBits:    2,
		ReadTimeout: time.Second,
	}
}

// OpenOptions converts the options into what go-serial expects. With
// MinimumReadSize 0 a read returns after ReadTimeout even if nothing arrived.
func (o SerialOptions) OpenOptions() serial.OpenOptions {
	return serial.OpenOptions{
		PortName:              o.PortName,
		BaudRate:              uint(o.BaudRate),
		DataBits:              8,
		StopBits:              uint(o.StopBits),
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       0,
		InterCharacterTimeout: uint(o.ReadTimeout / time.Millisecond),
	}
}

// PortOpener opens a serial port. Replaced in tests.
type PortOpener func(serial.OpenOptions) (io.ReadWriteCloser, error)

// SerialSource reads IMU telemetry lines from a serial port.
type SerialSource struct {
	name    string
	port    io.ReadWriteCloser
	reader  *bufio.Reader
	pending strings.Builder
}

// OpenSerialSource opens the IMU serial port.
func OpenSerialSource(opts SerialOptions) (*SerialSource, error) {
	return openSerialSource(opts, serial.Open)
}

func openSerialSource(opts SerialOptions, open PortOpener) (*SerialSource, error) {
	if opts.PortName == "" {
		return nil, errors.New("serial: port name is required")
	}
	port, err := open(opts.OpenOptions())
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", opts.PortName, err)
	}
	log.Printf("serial: opened %s at %d baud, %d stop bits", opts.PortName, opts.BaudRate, opts.StopBits)
	return NewSerialSource(opts.PortName, port), nil
}

// NewSerialSource reads lines from an already open port.
func NewSerialSource(name string, port io.ReadWriteCloser) *SerialSource {
	return &SerialSource{
		name:   name,
		port:   port,
		reader: bufio.NewReaderSize(port, maxLineLength),
	}
}

// maxLineLength bounds a line. Noise without a newline is handed on in
// pieces of this size so the parser can reject it.
const maxLineLength = 4096

// ReadLine returns the next complete line. When the read timeout expires
// first, the partial line is kept for the next call and imu.ErrTimeout is
// returned. A line reaching maxLineLength is returned as it is.
func (s *SerialSource) ReadLine() (string, error) {
	for {
		frag, err := s.reader.ReadSlice('\n')
		s.pending.Write(frag)
		if err == nil {
			return s.takePending(), nil
		}
		if !errors.Is(err, bufio.ErrBufferFull) && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("serial: read %s: %w", s.name, err)
		}
		if s.pending.Len() >= maxLineLength {
			log.Printf("serial: %s: no line end after %d bytes", s.name, s.pending.Len())
			return s.takePending(), nil
		}
		if errors.Is(err, io.EOF) {
			// An expired read timeout shows up as a zero-length read, which
			// the port reports as io.EOF.
			return "", imu.ErrTimeout
		}
	}
}

func (s *SerialSource) takePending() string {
	line := s.pending.String()
	s.pending.Reset()
	return line
}

func (s *SerialSource) Close() error {
	return s.port.Close()
}
