// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Command imu_display reads the Atomic IMU over a serial link and shows its
// orientation relative to the position it had when the session started.
//
// Usage:
//
//	imu_display [-config imu_config.txt] [-mock | -replay logs/Serial....log] [device]
//
// Ctrl+C resets the zero position; SIGTERM or Ctrl+\ ends the session.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/imu_display/internal/app"
	"github.com/relabs-tech/imu_display/internal/config"
)

func main() {
	configPath := flag.String("config", "./imu_config.txt", "path to configuration file (optional)")
	mock := flag.Bool("mock", false, "use a simulated IMU instead of the serial port")
	replay := flag.String("replay", "", "replay a raw session log instead of reading the serial port")
	echo := flag.Bool("echo", false, "print every raw line received")
	flag.Parse()

	cfg, found, err := config.LoadOptional(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !found {
		log.Printf("no config file at %s, using defaults", *configPath)
	}
	if flag.NArg() > 0 {
		cfg.SerialPort = flag.Arg(0)
	}

	// Ctrl+C is the zero-reset gesture, not an exit.
	resets := make(chan os.Signal, 1)
	signal.Notify(resets, os.Interrupt)
	defer signal.Stop(resets)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	log.Println("starting imu display")

	err = app.RunDisplay(ctx, cfg, app.DisplayOptions{
		Mock:         *mock,
		ReplayPath:   *replay,
		Echo:         *echo,
		ResetSignals: resets,
	})
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	log.Println("session ended")
}
