/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// readingFromConfig applies --from-raw and then --gamma to the channels.
// Either transform must leave every channel in 0-255.
func readingFromConfig(cfg *Config) (Reading, error) {
	channels := []struct {
		name  string
		value int
	}{
		{"red", cfg.red},
		{"green", cfg.green},
		{"blue", cfg.blue},
	}

	if cfg.fromRaw {
		r, g, b := rawToRGB(cfg.red, cfg.green, cfg.blue, cfg.clear)
		channels[0].value, channels[1].value, channels[2].value = r, g, b

		for _, ch := range channels {
			if ch.value < 0 || ch.value > 255 {
				return Reading{}, fmt.Errorf("%w: %s scaled to %d (raw count exceeds clear %d)", ErrChannelRange, ch.name, ch.value, cfg.clear)
			}
		}
	}

	if cfg.gamma {
		for i, ch := range channels {
			v, ok := gammaCorrect(ch.value)
			if !ok {
				return Reading{}, fmt.Errorf("%w: %s is %d, gamma needs 0-255", ErrChannelRange, ch.name, ch.value)
			}
			channels[i].value = v
		}
	}

	return Reading{
		Red:   channels[0].value,
		Green: channels[1].value,
		Blue:  channels[2].value,
		Clear: cfg.clear,
	}, nil
}

// Publish sends one sensor reading to the hub and closes the connection.
func Publish(ctx context.Context, cfg *Config) error {
	reading, err := readingFromConfig(cfg)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(sensorReading{Reading: reading, ID: cfg.sensorSecret})
	if err != nil {
		return fmt.Errorf("encode reading: %w", err)
	}

	dialer := &websocket.Dialer{HandshakeTimeout: timeout}

	conn, _, err := dialer.DialContext(ctx, cfg.endpoint, nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", cfg.endpoint, err)
	}
	defer conn.Close()

	logf(cfg, "PUBLISH: Connected to %s", cfg.endpoint)

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("send reading: %w", err)
	}

	logf(cfg, "PUBLISH: Sent r=%d g=%d b=%d clear=%d", reading.Red, reading.Green, reading.Blue, reading.Clear)

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	// Wait for the hub to answer the close.
	_ = conn.SetReadDeadline(time.Now().Add(closeGrace))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	return nil
}
