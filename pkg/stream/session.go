// Package stream serves real-time thread views over server-sent events.
// Each connection is one Session: a single timer-driven poll loop against
// the Thread Store proxy with a local cursor, no shared state between
// connections. The only backpressure is skipping a tick while a poll is
// still in flight; the client disconnect signal is the sole authority that
// tears the session down.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"threadloom/pkg/logger"
	"threadloom/pkg/models"
	"threadloom/pkg/telemetry"
)

// Fetcher is the slice of the thread store client a session needs.
type Fetcher interface {
	FetchThread(ctx context.Context, threadID string, includeBodies bool) (*models.ThreadView, error)
}

// Options configures one session.
type Options struct {
	ThreadID      string
	Fetcher       Fetcher
	Interval      time.Duration // already clamped by the handler
	IncludeBodies bool
	InitialCursor *int64 // resolved from client hints; nil = unset
	RetryMS       int
	BatchMax      int
}

type sessionState string

const (
	stateConnecting sessionState = "connecting"
	stateReady      sessionState = "ready"
	stateStreaming  sessionState = "streaming"
	stateIdle       sessionState = "idle"
	stateClosed     sessionState = "closed"
)

// Session owns one connection's poll timer, cursor and in-flight flag.
type Session struct {
	opts Options
	w    *Writer

	cursor    int64
	cursorSet bool
	readySent bool
	inFlight  bool
	state     sessionState
}

// NewSession prepares a streaming session on the given response writer.
func NewSession(w http.ResponseWriter, opts Options) (*Session, error) {
	sw, err := NewWriter(w)
	if err != nil {
		return nil, err
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.RetryMS <= 0 {
		opts.RetryMS = DefaultRetryMS
	}
	if opts.BatchMax <= 0 {
		opts.BatchMax = DefaultBatchMax
	}
	s := &Session{opts: opts, w: sw, state: stateConnecting}
	if opts.InitialCursor != nil {
		s.cursor = *opts.InitialCursor
		s.cursorSet = true
	}
	return s, nil
}

// Run drives the session until ctx is canceled by the client disconnect.
// The returned error reflects a broken response stream only; poll failures
// are emitted as non-fatal error events and retried on the next tick.
func (s *Session) Run(ctx context.Context) error {
	telemetry.ActiveStreams.Inc()
	defer telemetry.ActiveStreams.Dec()
	defer func() { s.state = stateClosed }()

	connData, _ := json.Marshal(map[string]string{"thread_id": s.opts.ThreadID})
	if err := s.w.Send(Event{
		Comment: "thread stream established",
		RetryMS: s.opts.RetryMS,
		Name:    EventConnected,
		Data:    connData,
	}); err != nil {
		return err
	}

	// First poll runs immediately so the client gets its ready anchor
	// without waiting a full interval.
	if err := s.poll(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("stream_closed", "thread", s.opts.ThreadID, "cursor", s.cursor)
			return nil
		case <-ticker.C:
			if err := s.poll(ctx); err != nil {
				return err
			}
			// A tick that fired while the poll above was outstanding is
			// dropped, not queued.
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}

// poll performs one fetch against the thread store and emits whichever
// event the result calls for.
func (s *Session) poll(ctx context.Context) error {
	if s.inFlight {
		return nil
	}
	s.inFlight = true
	defer func() { s.inFlight = false }()

	telemetry.PollsTotal.Inc()
	view, err := s.opts.Fetcher.FetchThread(ctx, s.opts.ThreadID, s.opts.IncludeBodies)
	if err != nil {
		if ctx.Err() != nil {
			return nil // client went away mid-poll
		}
		telemetry.PollErrors.Inc()
		logger.Warn("stream_poll_failed", "thread", s.opts.ThreadID, "error", err)
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		return s.w.Send(Event{Name: EventError, Data: data})
	}

	if !s.readySent {
		return s.sendReady(view)
	}
	if view.LatestID <= s.cursor {
		s.state = stateIdle
		return s.w.Send(Event{Name: EventPing})
	}
	return s.sendUpdate(view)
}

// sendReady resolves the definitive starting cursor and tells the client
// where streaming begins. A connection without client hints starts at the
// current latest id; history is not replayed by default.
func (s *Session) sendReady(view *models.ThreadView) error {
	if !s.cursorSet {
		s.cursor = view.LatestID
		s.cursorSet = true
	}
	s.readySent = true
	s.state = stateReady
	id := s.cursor
	data, _ := json.Marshal(map[string]int64{"latest_id": view.LatestID})
	return s.w.Send(Event{ID: &id, Name: EventReady, Data: data})
}

// sendUpdate collects messages beyond the cursor, trims the batch to the
// configured cap (most recent kept) and advances the cursor to the new
// latest id, which becomes the reconnection anchor.
func (s *Session) sendUpdate(view *models.ThreadView) error {
	fresh := make([]models.Message, 0, len(view.Messages))
	for _, m := range view.Messages {
		if m.ID > s.cursor {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) > s.opts.BatchMax {
		fresh = fresh[len(fresh)-s.opts.BatchMax:]
	}
	s.cursor = view.LatestID
	s.state = stateStreaming

	id := s.cursor
	payload := struct {
		ThreadID string           `json:"thread_id"`
		LatestID int64            `json:"latest_id"`
		Count    int              `json:"count"`
		Messages []models.Message `json:"messages"`
	}{s.opts.ThreadID, view.LatestID, len(fresh), fresh}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.w.Send(Event{ID: &id, Name: EventThreadUpdate, Data: data})
}
