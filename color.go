/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedColor = errors.New("malformed color message")
	ErrMissingChannel = errors.New("missing color channel")
)

// ColorMessage is one decoded color update. Channels keep the number
// literal that arrived on the wire, so rendering never rounds or clamps.
type ColorMessage struct {
	Red   json.Number `json:"red"`
	Green json.Number `json:"green"`
	Blue  json.Number `json:"blue"`
}

func decodeColor(data []byte) (ColorMessage, error) {
	var msg ColorMessage

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return msg, fmt.Errorf("%w: not a JSON object: %q", ErrMalformedColor, data)
	}

	var raw struct {
		Red   json.RawMessage `json:"red"`
		Green json.RawMessage `json:"green"`
		Blue  json.RawMessage `json:"blue"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMalformedColor, err)
	}

	var missing []string
	for _, ch := range []struct {
		name  string
		value json.RawMessage
		dst   *json.Number
	}{
		{"red", raw.Red, &msg.Red},
		{"green", raw.Green, &msg.Green},
		{"blue", raw.Blue, &msg.Blue},
	} {
		if len(ch.value) == 0 || string(ch.value) == "null" {
			missing = append(missing, ch.name)

			continue
		}

		// Unmarshal already checked the value is valid JSON, so a leading
		// digit or minus sign means a number literal.
		if c := ch.value[0]; c != '-' && (c < '0' || c > '9') {
			return msg, fmt.Errorf("%w: %s is not a number: %s", ErrMalformedColor, ch.name, ch.value)
		}
		*ch.dst = json.Number(ch.value)
	}
	if len(missing) > 0 {
		return msg, fmt.Errorf("%w: %s", ErrMissingChannel, strings.Join(missing, ", "))
	}

	return msg, nil
}

// CSS renders the message as a CSS color, e.g. "rgb(10, 20, 30)".
func (m ColorMessage) CSS() string {
	return fmt.Sprintf("rgb(%s, %s, %s)", m.Red, m.Green, m.Blue)
}

// RGB reports the channels as bytes when all three are integers in [0,255].
func (m ColorMessage) RGB() (r, g, b uint8, ok bool) {
	var out [3]uint8
	for i, n := range []json.Number{m.Red, m.Green, m.Blue} {
		v, err := n.Int64()
		if err != nil || v < 0 || v > 255 {
			return 0, 0, 0, false
		}
		out[i] = uint8(v)
	}

	return out[0], out[1], out[2], true
}
