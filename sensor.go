/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
)

var (
	ErrInvalidReading = errors.New("invalid reading")
	ErrChannelRange   = errors.New("channel out of range")
)

// Reading is what a sensor publishes and what the hub broadcasts.
type Reading struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
	Clear int `json:"clear"`
}

// sensorReading is the inbound form; ID carries the sensor secret.
type sensorReading struct {
	Reading
	ID string `json:"id,omitempty"`
}

var readingKeys = []string{"clear", "red", "green", "blue"}

// parseReading validates an inbound frame: a JSON object holding integer
// clear, red, green and blue values, plus an optional string id.
func parseReading(data []byte) (Reading, string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return Reading{}, "", fmt.Errorf("%w: invalid json data: %s", ErrInvalidReading, data)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Reading{}, "", fmt.Errorf("%w: invalid json data: %s", ErrInvalidReading, data)
	}
	if obj == nil {
		return Reading{}, "", fmt.Errorf("%w: object is not a dictionary", ErrInvalidReading)
	}

	var missing []string
	for _, key := range readingKeys {
		if _, ok := obj[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Reading{}, "", fmt.Errorf("%w: missing keys: %s", ErrInvalidReading, strings.Join(missing, ", "))
	}

	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	values := make(map[string]int, len(readingKeys))
	id := ""
	for _, key := range keys {
		if key == "id" {
			s, ok := obj[key].(string)
			if !ok {
				return Reading{}, "", fmt.Errorf("%w: id is not a string: %v", ErrInvalidReading, obj[key])
			}
			id = s

			continue
		}

		n, ok := obj[key].(json.Number)
		if !ok {
			return Reading{}, "", fmt.Errorf("%w: value for %s is not an integer: %v", ErrInvalidReading, key, obj[key])
		}
		v, err := n.Int64()
		if err != nil || v < math.MinInt32 || v > math.MaxInt32 {
			return Reading{}, "", fmt.Errorf("%w: value for %s is not an integer: %s", ErrInvalidReading, key, n)
		}
		values[key] = int(v)
	}

	return Reading{
		Red:   values["red"],
		Green: values["green"],
		Blue:  values["blue"],
		Clear: values["clear"],
	}, id, nil
}

func isSensor(id, secret string) bool {
	if secret == "" || id == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(id), []byte(secret)) == 1
}

var gammaTable = func() [256]int {
	var table [256]int
	for i := range table {
		table[i] = int(math.Pow(float64(i)/255, 2.5) * 255)
	}
	return table
}()

// gammaCorrect maps a 0-255 channel through the 2.5 gamma curve.
func gammaCorrect(v int) (int, bool) {
	if v < 0 || v >= len(gammaTable) {
		return 0, false
	}

	return gammaTable[v], true
}

// rawToRGB scales raw 16-bit channel counts to 0-255 relative to clear.
func rawToRGB(red, green, blue, clear int) (int, int, int) {
	if clear == 0 {
		return 0, 0, 0
	}

	scale := func(raw int) int {
		return int(float64(raw) / float64(clear) * 255)
	}

	return scale(red), scale(green), scale(blue)
}
