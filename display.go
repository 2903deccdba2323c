/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"strings"
)

// Display is whatever surface a watcher paints.
type Display interface {
	SetBackground(msg ColorMessage) error
}

const swatchWidth = 32

type consoleDisplay struct {
	out    io.Writer
	swatch bool
}

func newConsoleDisplay(out io.Writer, swatch bool) *consoleDisplay {
	return &consoleDisplay{out: out, swatch: swatch}
}

func (d *consoleDisplay) SetBackground(msg ColorMessage) error {
	logEvent("DISPLAY: background-color: %s", msg.CSS())

	if !d.swatch {
		return nil
	}

	r, g, b, ok := msg.RGB()
	if !ok {
		return nil
	}

	_, err := fmt.Fprintf(d.out, "\x1b[48;2;%d;%d;%dm%s\x1b[0m\n", r, g, b, strings.Repeat(" ", swatchWidth))

	return err
}
