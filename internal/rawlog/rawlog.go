// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package rawlog records every line received from the IMU, verbatim, in one
// file per session.
package rawlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how the session log is written.
type Options struct {
	Dir        string
	MaxSizeMB  int // rotate after this many megabytes
	MaxBackups int // rotated files to keep, 0 keeps all
}

// Log is the append-only raw line log of one session.
type Log struct {
	path   string
	writer *lumberjack.Logger
}

// FileName returns the log file name for a session started at start.
func FileName(start time.Time) string {
	return fmt.Sprintf("Serial%d.%03d.log", start.Unix(), start.Nanosecond()/int(time.Millisecond))
}

// Open creates the log directory if needed and opens the session log file.
func Open(opts Options, start time.Time) (*Log, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("rawlog: create dir %s: %w", opts.Dir, err)
	}

	path := filepath.Join(opts.Dir, FileName(start))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("rawlog: create %s: %w", path, err)
	}
	f.Close()

	return &Log{
		path: path,
		writer: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		},
	}, nil
}

// Path returns the file the log writes to.
func (l *Log) Path() string { return l.path }

// WriteLine appends line, adding a newline if it has none.
func (l *Log) WriteLine(line string) error {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if _, err := l.writer.Write([]byte(line)); err != nil {
		return fmt.Errorf("rawlog: write %s: %w", l.path, err)
	}
	return nil
}

func (l *Log) Close() error {
	return l.writer.Close()
}
