// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/relabs-tech/imu_display/internal/config"
	"github.com/relabs-tech/imu_display/internal/imu"
	"github.com/relabs-tech/imu_display/internal/orientation"
	"github.com/relabs-tech/imu_display/internal/rawlog"
	"github.com/relabs-tech/imu_display/internal/sensors"
)

// DisplayOptions selects the input of a session. With neither Mock nor
// ReplayPath set, the serial port from the config is used.
type DisplayOptions struct {
	Mock       bool
	ReplayPath string
	Echo       bool
	// ResetSignals delivers the operator's zero-reset gesture (Ctrl+C).
	ResetSignals <-chan os.Signal
}

// RunDisplay opens the IMU, wires the consumers the config enables and runs
// a session until ctx is cancelled. Only a failure to open the input source
// (or a fatal read error) is returned; the raw log and every consumer are
// optional and their failures are only logged.
func RunDisplay(ctx context.Context, cfg *config.Config, opts DisplayOptions) error {
	engine, err := orientation.NewEngine(orientation.EngineConfig{
		UnitAdjust: cfg.UnitAdjust,
		YawEnabled: cfg.YawEnabled,
		TextWidth:  cfg.DisplayTextWidth,
	})
	if err != nil {
		return err
	}

	source, err := openSource(cfg, opts)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	sessionOpts := SessionOptions{
		ID:        id,
		Source:    source,
		Engine:    engine,
		Consumers: []Consumer{NewConsole(os.Stdout)},
		Logger:    log.Default(),
	}
	if opts.Echo {
		sessionOpts.Echo = os.Stdout
	}

	start := time.Now()
	log.Printf("Opening log file named %s ...", rawlog.FileName(start))
	rawLog, err := rawlog.Open(rawlog.Options{
		Dir:        cfg.LogDir,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	}, start)
	if err != nil {
		log.Printf("Failed to open log file: %v", err)
	} else {
		sessionOpts.RawLog = rawLog
		log.Printf("%s opened!", rawLog.Path())
	}

	var hub *Hub
	if cfg.WebServerPort != 0 {
		hub = NewHub(nil)
		sessionOpts.Consumers = append(sessionOpts.Consumers, hub)
	}

	if cfg.OLEDEnabled {
		oled, err := OpenOLED(cfg.OLEDI2CBus, time.Duration(cfg.OLEDUpdateInterval)*time.Millisecond)
		if err != nil {
			log.Printf("display: OLED not available: %v", err)
		} else {
			defer oled.Close()
			sessionOpts.Consumers = append(sessionOpts.Consumers, oled)
		}
	}

	var mqttPub *MQTTPublisher
	if cfg.MQTTBroker != "" {
		client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID+"-"+id[:8])
		if err != nil {
			log.Printf("mqtt: publishing disabled: %v", err)
		} else {
			defer client.Disconnect(250)
			mqttPub = NewMQTTPublisher(client, cfg.TopicOrientation, cfg.TopicRaw)
			sessionOpts.Consumers = append(sessionOpts.Consumers, mqttPub)
			sessionOpts.RawTaps = append(sessionOpts.RawTaps, mqttPub)
		}
	}

	session := NewSession(sessionOpts)

	if mqttPub != nil && cfg.TopicReset != "" {
		if err := SubscribeReset(mqttPub.client, cfg.TopicReset, session.RequestReset); err != nil {
			log.Printf("mqtt: remote reset disabled: %v", err)
		}
	}
	if hub != nil {
		hub.reset = session.RequestReset
		webCtx, stopWeb := context.WithCancel(ctx)
		webDone := make(chan struct{})
		go func() {
			defer close(webDone)
			if err := ServeWeb(webCtx, cfg.WebServerPort, hub); err != nil {
				log.Printf("web: server stopped: %v", err)
			}
		}()
		defer func() {
			stopWeb()
			<-webDone
		}()
	}

	if opts.ResetSignals != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-opts.ResetSignals:
					session.RequestReset()
				}
			}
		}()
	}

	log.Printf("session %s started", id)
	fmt.Println("Ctrl+C to reset zeros position")
	return session.Run(ctx)
}

func openSource(cfg *config.Config, opts DisplayOptions) (imu.LineSource, error) {
	switch {
	case opts.Mock:
		log.Printf("using mock IMU source")
		return imu.NewMockSource(time.Duration(cfg.MockInterval) * time.Millisecond), nil

	case opts.ReplayPath != "":
		log.Printf("replaying %s", opts.ReplayPath)
		return imu.OpenReplaySource(opts.ReplayPath, time.Duration(cfg.MockInterval)*time.Millisecond)

	default:
		fmt.Printf("Opening %s ...\n", cfg.SerialPort)
		src, err := sensors.OpenSerialSource(sensors.SerialOptions{
			PortName:    cfg.SerialPort,
			BaudRate:    cfg.SerialBaudRate,
			StopBits:    cfg.SerialStopBits,
			ReadTimeout: cfg.SerialReadTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("could not open device %s: %w", cfg.SerialPort, err)
		}
		fmt.Printf("Opened %s !\n", cfg.SerialPort)
		return src, nil
	}
}
