/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeGrace = time.Second

type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}

	return fmt.Sprintf("State(%d)", int(s))
}

// Watcher holds the single connection to an endpoint and paints every
// color it receives onto a Display. It never reconnects.
type Watcher struct {
	endpoint string
	display  Display
	dialer   *websocket.Dialer

	mu        sync.Mutex
	state     State
	closeCode int
}

func newWatcher(endpoint string, display Display) *Watcher {
	return &Watcher{
		endpoint: endpoint,
		display:  display,
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
		},
	}
}

func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// CloseCode is the close code logged when the connection ended, or zero.
func (w *Watcher) CloseCode() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.closeCode
}

func (w *Watcher) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Run dials the endpoint once and handles events until the remote end
// closes or ctx is cancelled. Only a failed dial is returned as an error.
func (w *Watcher) Run(ctx context.Context) error {
	w.setState(StateConnecting)

	conn, _, err := w.dialer.DialContext(ctx, w.endpoint, nil)
	if err != nil {
		w.setState(StateClosed)
		w.onError(err)

		return fmt.Errorf("connect to %s: %w", w.endpoint, err)
	}

	w.setState(StateOpen)
	w.onOpen()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeGrace))

			select {
			case <-done:
			case <-time.After(closeGrace):
				_ = conn.Close()
			}
		case <-done:
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			w.setState(StateClosed)

			var closeErr *websocket.CloseError
			switch {
			case errors.As(err, &closeErr):
				w.onClose(closeErr.Code)
			case ctx.Err() != nil:
				w.onClose(websocket.CloseNormalClosure)
			default:
				w.onError(err)
				w.onClose(websocket.CloseAbnormalClosure)
			}

			return nil
		}

		if messageType != websocket.TextMessage {
			continue
		}

		w.onMessage(data)
	}
}

func (w *Watcher) onOpen() {
	logEvent("OPEN: Connected to %s", w.endpoint)
}

func (w *Watcher) onClose(code int) {
	w.mu.Lock()
	w.closeCode = code
	w.mu.Unlock()

	logEvent("CLOSE: Connection closed (%d)", code)
}

func (w *Watcher) onError(err error) {
	logEvent("ERROR: Connection error (%v)", err)
}

func (w *Watcher) onMessage(data []byte) {
	logEvent("MESSAGE: Received %s", data)

	msg, err := decodeColor(data)
	if err != nil {
		logEvent("MESSAGE: Skipped (%v)", err)

		return
	}

	if err := w.display.SetBackground(msg); err != nil {
		logEvent("DISPLAY: %v", err)
	}
}
