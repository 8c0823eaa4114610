// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration values.
type Config struct {
	// Serial link to the IMU
	SerialPort        string
	SerialBaudRate    int
	SerialStopBits    int
	SerialReadTimeout time.Duration

	// Raw session log
	LogDir        string
	LogMaxSizeMB  int
	LogMaxBackups int

	// Orientation
	UnitAdjust       float64
	YawEnabled       bool
	DisplayTextWidth int

	// MQTT (disabled when MQTTBroker is empty)
	MQTTBroker       string
	MQTTClientID     string
	TopicOrientation string
	TopicRaw         string
	TopicReset       string

	// Web Server (disabled when 0)
	WebServerPort int

	// OLED
	OLEDEnabled        bool
	OLEDI2CBus         string
	OLEDUpdateInterval int // milliseconds

	// Mock source
	MockInterval int // milliseconds
}

// Default returns the configuration used when no file is given: the Atomic
// IMU on /dev/ttyUSB0 at 115200 baud, two stop bits, 1 s read timeout.
func Default() *Config {
	return &Config{
		SerialPort:        "/dev/ttyUSB0",
		SerialBaudRate:    115200,
		SerialStopBits:    2,
		SerialReadTimeout: time.Second,

		LogDir:        "logs",
		LogMaxSizeMB:  100,
		LogMaxBackups: 0,

		UnitAdjust:       0.29999,
		YawEnabled:       false,
		DisplayTextWidth: 6,

		MQTTClientID:     "imu-display",
		TopicOrientation: "imu/orientation",
		TopicRaw:         "imu/raw",
		TopicReset:       "imu/reset",

		OLEDUpdateInterval: 200,

		MockInterval: 20,
	}
}

// Load reads the configuration file on top of the defaults.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(configPath string) (*Config, bool, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Parse reads KEY=VALUE lines from r on top of the defaults.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Serial
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate
	case "SERIAL_STOP_BITS":
		bits, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_STOP_BITS %q: %w", value, err)
		}
		if bits != 1 && bits != 2 {
			return fmt.Errorf("SERIAL_STOP_BITS must be 1 or 2, got %d", bits)
		}
		c.SerialStopBits = bits
	case "SERIAL_READ_TIMEOUT_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_READ_TIMEOUT_MS %q: %w", value, err)
		}
		c.SerialReadTimeout = time.Duration(ms) * time.Millisecond

	// Raw log
	case "LOG_DIR":
		c.LogDir = value
	case "LOG_MAX_SIZE_MB":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LOG_MAX_SIZE_MB %q: %w", value, err)
		}
		c.LogMaxSizeMB = size
	case "LOG_MAX_BACKUPS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LOG_MAX_BACKUPS %q: %w", value, err)
		}
		c.LogMaxBackups = n

	// Orientation
	case "UNIT_ADJUST":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid UNIT_ADJUST %q: %w", value, err)
		}
		c.UnitAdjust = v
	case "YAW_ENABLED":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid YAW_ENABLED %q: %w", value, err)
		}
		c.YawEnabled = v
	case "DISPLAY_TEXT_WIDTH":
		w, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_TEXT_WIDTH %q: %w", value, err)
		}
		c.DisplayTextWidth = w

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_ORIENTATION":
		c.TopicOrientation = value
	case "TOPIC_RAW":
		c.TopicRaw = value
	case "TOPIC_RESET":
		c.TopicReset = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// OLED
	case "OLED_ENABLED":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid OLED_ENABLED %q: %w", value, err)
		}
		c.OLEDEnabled = v
	case "OLED_I2C_BUS":
		c.OLEDI2CBus = value
	case "OLED_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid OLED_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.OLEDUpdateInterval = interval

	case "MOCK_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_INTERVAL_MS %q: %w", value, err)
		}
		c.MockInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

const (
	minReadTimeout = 100 * time.Millisecond
	maxReadTimeout = 25500 * time.Millisecond
)

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	if c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required")
	}
	if c.SerialBaudRate <= 0 {
		return fmt.Errorf("SERIAL_BAUD_RATE must be positive, got %d", c.SerialBaudRate)
	}
	// The port driver counts the timeout in tenths of a second and needs at
	// least one when reads may return empty.
	if c.SerialReadTimeout < minReadTimeout || c.SerialReadTimeout > maxReadTimeout {
		return fmt.Errorf("SERIAL_READ_TIMEOUT_MS must be %d-%d, got %d",
			minReadTimeout.Milliseconds(), maxReadTimeout.Milliseconds(), c.SerialReadTimeout.Milliseconds())
	}
	if c.LogDir == "" {
		return fmt.Errorf("LOG_DIR is required")
	}
	if c.UnitAdjust == 0 {
		return fmt.Errorf("UNIT_ADJUST must be non-zero")
	}
	if c.DisplayTextWidth < 1 {
		return fmt.Errorf("DISPLAY_TEXT_WIDTH must be at least 1, got %d", c.DisplayTextWidth)
	}
	if c.MQTTBroker != "" && c.TopicOrientation == "" {
		return fmt.Errorf("TOPIC_ORIENTATION is required when MQTT_BROKER is set")
	}
	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", c.WebServerPort)
	}
	if c.OLEDEnabled && c.OLEDUpdateInterval <= 0 {
		return fmt.Errorf("OLED_UPDATE_INTERVAL must be positive when OLED_ENABLED is set")
	}
	return nil
}
