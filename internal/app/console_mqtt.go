package app

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/imu_display/internal/config"
)

// RunConsoleMQTT prints readings published by a running session until
// Ctrl+C or SIGTERM.
func RunConsoleMQTT(cfg *config.Config) error {
	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID+"-console")
	if err != nil {
		return err
	}

	if err := SubscribeReadings(client, cfg.TopicOrientation, NewConsole(os.Stdout)); err != nil {
		client.Disconnect(250)
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
