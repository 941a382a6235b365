package stream

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"threadloom/pkg/telemetry"
)

// Event names emitted on a thread stream.
const (
	EventConnected    = "connected"
	EventReady        = "ready"
	EventThreadUpdate = "thread_update"
	EventPing         = "ping"
	EventError        = "error"
)

// Event is one server-sent event. The wire rendering is fixed for client
// compatibility: optional comment line, optional retry, optional id,
// required event name, data lines split per physical line, blank-line
// terminator.
type Event struct {
	Comment string
	RetryMS int
	ID      *int64
	Name    string
	Data    []byte // JSON, may span multiple lines
}

// Encode renders the event in wire order.
func (ev Event) Encode() string {
	var b strings.Builder
	if ev.Comment != "" {
		b.WriteString(": " + ev.Comment + "\n")
	}
	if ev.RetryMS > 0 {
		fmt.Fprintf(&b, "retry: %d\n", ev.RetryMS)
	}
	if ev.ID != nil {
		fmt.Fprintf(&b, "id: %d\n", *ev.ID)
	}
	b.WriteString("event: " + ev.Name + "\n")
	if len(ev.Data) > 0 {
		for _, line := range strings.Split(strings.TrimRight(string(ev.Data), "\n"), "\n") {
			b.WriteString("data: " + line + "\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Writer emits events on an HTTP response, flushing after each one. Used by
// exactly one session goroutine; no locking.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter prepares the response for streaming. It fails when the
// underlying ResponseWriter cannot flush.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	return &Writer{w: w, flusher: flusher}, nil
}

// Send writes one event and flushes it to the client.
func (sw *Writer) Send(ev Event) error {
	if _, err := io.WriteString(sw.w, ev.Encode()); err != nil {
		return err
	}
	sw.flusher.Flush()
	telemetry.EventsEmitted.WithLabelValues(ev.Name).Inc()
	return nil
}
