// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ConnectMQTT connects to the broker and waits for the result.
func ConnectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	log.Printf("mqtt: connected to broker at %s as %s", broker, clientID)
	return client, nil
}

// MQTTPublisher publishes readings as retained JSON and, when rawTopic is
// set, every raw line as it arrives.
type MQTTPublisher struct {
	client   mqtt.Client
	topic    string
	rawTopic string
}

func NewMQTTPublisher(client mqtt.Client, topic, rawTopic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, rawTopic: rawTopic}
}

func (p *MQTTPublisher) Publish(r Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("mqtt: marshal reading: %w", err)
	}
	if token := p.client.Publish(p.topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt: publish %s: %w", p.topic, token.Error())
	}
	return nil
}

// WriteLine publishes a raw line, not retained.
func (p *MQTTPublisher) WriteLine(line string) error {
	if p.rawTopic == "" {
		return nil
	}
	if token := p.client.Publish(p.rawTopic, 0, false, line); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt: publish %s: %w", p.rawTopic, token.Error())
	}
	return nil
}

// SubscribeReset calls reset for every message on topic. The payload is
// ignored.
func SubscribeReset(client mqtt.Client, topic string, reset func()) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		log.Printf("mqtt: zero reset requested on %s", msg.Topic())
		reset()
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt: subscribe %s: %w", topic, token.Error())
	}
	log.Printf("mqtt: subscribed to %s", topic)
	return nil
}

// SubscribeReadings decodes readings published on topic and hands them to c.
func SubscribeReadings(client mqtt.Client, topic string, c Consumer) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("mqtt: reading unmarshal error: %v", err)
			return
		}
		if err := c.Publish(r); err != nil {
			log.Printf("mqtt: consumer error: %v", err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt: subscribe %s: %w", topic, token.Error())
	}
	log.Printf("mqtt: subscribed to %s", topic)
	return nil
}
