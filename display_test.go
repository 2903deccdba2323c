package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleDisplaySwatch(t *testing.T) {
	blank := strings.Repeat(" ", swatchWidth)

	tests := []struct {
		name   string
		msg    ColorMessage
		swatch bool
		want   string
	}{
		{
			name:   "in range color",
			msg:    ColorMessage{Red: "10", Green: "20", Blue: "30"},
			swatch: true,
			want:   "\x1b[48;2;10;20;30m" + blank + "\x1b[0m\n",
		},
		{
			name:   "bounds",
			msg:    ColorMessage{Red: "0", Green: "255", Blue: "0"},
			swatch: true,
			want:   "\x1b[48;2;0;255;0m" + blank + "\x1b[0m\n",
		},
		{
			name:   "out of range color",
			msg:    ColorMessage{Red: "999", Green: "0", Blue: "0"},
			swatch: true,
		},
		{
			name:   "fractional color",
			msg:    ColorMessage{Red: "0.5", Green: "128", Blue: "255"},
			swatch: true,
		},
		{
			name: "swatch disabled",
			msg:  ColorMessage{Red: "10", Green: "20", Blue: "30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			require.NoError(t, newConsoleDisplay(&out, tt.swatch).SetBackground(tt.msg))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestConsoleDisplayWriteError(t *testing.T) {
	d := newConsoleDisplay(failingWriter{}, true)

	assert.Error(t, d.SetBackground(ColorMessage{Red: "1", Green: "2", Blue: "3"}))
	assert.NoError(t, d.SetBackground(ColorMessage{Red: "999", Green: "2", Blue: "3"}))
}
