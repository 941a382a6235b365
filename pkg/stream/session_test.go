package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadloom/pkg/models"
)

// step is one scripted poll result.
type step struct {
	view *models.ThreadView
	err  error
}

// scriptedFetcher serves a fixed sequence of poll results, then cancels the
// session's context so Run exits deterministically.
type scriptedFetcher struct {
	steps  []step
	i      int
	cancel context.CancelFunc
}

func (f *scriptedFetcher) FetchThread(ctx context.Context, threadID string, includeBodies bool) (*models.ThreadView, error) {
	if f.i >= len(f.steps) {
		f.cancel()
		return nil, ctx.Err()
	}
	st := f.steps[f.i]
	f.i++
	return st.view, st.err
}

func msgs(ids ...int64) []models.Message {
	out := make([]models.Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Message{
			ID:        id,
			ThreadID:  "thr-1",
			Subject:   "s",
			From:      "agent",
			To:        []string{"viewer"},
			CreatedTS: "2026-08-29T10:00:00Z",
		})
	}
	return out
}

func view(ids ...int64) *models.ThreadView {
	v := &models.ThreadView{ThreadID: "thr-1", Messages: msgs(ids...)}
	for _, id := range ids {
		if id > v.LatestID {
			v.LatestID = id
		}
	}
	return v
}

// frame is one decoded SSE event.
type frame struct {
	name string
	id   *int64
	data string
}

func parseFrames(t *testing.T, body string) []frame {
	t.Helper()
	var out []frame
	for _, chunk := range strings.Split(strings.TrimSuffix(body, "\n\n"), "\n\n") {
		var f frame
		var dataLines []string
		for _, line := range strings.Split(chunk, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				f.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "id: "):
				n, err := strconv.ParseInt(strings.TrimPrefix(line, "id: "), 10, 64)
				require.NoError(t, err)
				f.id = &n
			case strings.HasPrefix(line, "data: "):
				dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
			}
		}
		f.data = strings.Join(dataLines, "\n")
		require.NotEmpty(t, f.name, "chunk without event field: %q", chunk)
		out = append(out, f)
	}
	return out
}

// runSession drives a session over the scripted steps and returns the
// decoded frames.
func runSession(t *testing.T, steps []step, initialCursor *int64, batchMax int) []frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := &scriptedFetcher{steps: steps, cancel: cancel}

	rec := httptest.NewRecorder()
	s, err := NewSession(rec, Options{
		ThreadID:      "thr-1",
		Fetcher:       f,
		Interval:      5 * time.Millisecond,
		InitialCursor: initialCursor,
		BatchMax:      batchMax,
	})
	require.NoError(t, err)
	require.NoError(t, s.Run(ctx))
	return parseFrames(t, rec.Body.String())
}

func TestHeaderWinsOverLowerQueryCursor(t *testing.T) {
	// Thread seeded with 3 messages; client reconnects with cursor=0 and
	// last-event-id=2. The ready event must anchor at 2, and the next poll
	// must deliver only message 3.
	initial := ResolveCursor(ptr(2), ptr(0))
	frames := runSession(t, []step{
		{view: view(1, 2, 3)},
		{view: view(1, 2, 3)},
	}, initial, 0)

	require.GreaterOrEqual(t, len(frames), 3)
	assert.Equal(t, EventConnected, frames[0].name)

	ready := frames[1]
	assert.Equal(t, EventReady, ready.name)
	require.NotNil(t, ready.id)
	assert.Equal(t, int64(2), *ready.id)
	assert.Contains(t, ready.data, `"latest_id":3`)

	upd := frames[2]
	assert.Equal(t, EventThreadUpdate, upd.name)
	require.NotNil(t, upd.id)
	assert.Equal(t, int64(3), *upd.id)
	var payload struct {
		Count    int              `json:"count"`
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(upd.data), &payload))
	assert.Equal(t, 1, payload.Count)
	require.Len(t, payload.Messages, 1)
	assert.Equal(t, int64(3), payload.Messages[0].ID)
}

func TestFreshConnectionDoesNotReplayHistory(t *testing.T) {
	frames := runSession(t, []step{
		{view: view(1, 2, 3)},
		{view: view(1, 2, 3)},
	}, nil, 0)

	require.GreaterOrEqual(t, len(frames), 3)
	ready := frames[1]
	assert.Equal(t, EventReady, ready.name)
	assert.Equal(t, int64(3), *ready.id, "unset cursor anchors at current latest")

	// Nothing new since, so the follow-up tick is a heartbeat.
	assert.Equal(t, EventPing, frames[2].name)
	assert.Nil(t, frames[2].id, "heartbeats advance nothing")
}

func TestIdleSuppression(t *testing.T) {
	frames := runSession(t, []step{
		{view: view(1, 2)},
		{view: view(1, 2)},
		{view: view(1, 2)},
	}, ptr(2), 0)

	for _, f := range frames {
		assert.NotEqual(t, EventThreadUpdate, f.name, "no update while latest <= cursor")
	}
}

func TestMonotonicSequenceIDs(t *testing.T) {
	frames := runSession(t, []step{
		{view: view(1)},
		{view: view(1, 2)},
		{view: view(1, 2, 3)},
		{view: view(1, 2, 3)},
		{view: view(1, 2, 3, 4, 5)},
	}, ptr(0), 0)

	var last int64
	var updates int
	for _, f := range frames {
		if f.name != EventThreadUpdate {
			continue
		}
		updates++
		require.NotNil(t, f.id)
		assert.Greater(t, *f.id, last)
		last = *f.id
	}
	assert.Equal(t, 3, updates)
	assert.Equal(t, int64(5), last)
}

func TestPollErrorIsNonFatal(t *testing.T) {
	frames := runSession(t, []step{
		{err: errors.New("proxy unreachable")},
		{view: view(1, 2)},
		{view: view(1, 2, 3)},
	}, ptr(1), 0)

	require.GreaterOrEqual(t, len(frames), 4)
	assert.Equal(t, EventError, frames[1].name)
	assert.Contains(t, frames[1].data, "proxy unreachable")

	// The stream survives: ready arrives on the next successful poll with
	// the cursor unharmed, followed by the update past it.
	assert.Equal(t, EventReady, frames[2].name)
	assert.Equal(t, int64(1), *frames[2].id)
	assert.Equal(t, EventThreadUpdate, frames[3].name)
	assert.Equal(t, int64(3), *frames[3].id)
}

func TestBatchCapKeepsMostRecent(t *testing.T) {
	ids := make([]int64, 60)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	frames := runSession(t, []step{
		{view: view(ids[:1]...)}, // ready anchors at 1
		{view: view(ids...)},
	}, nil, 50)

	var upd *frame
	for i := range frames {
		if frames[i].name == EventThreadUpdate {
			upd = &frames[i]
			break
		}
	}
	require.NotNil(t, upd)
	assert.Equal(t, int64(60), *upd.id, "cursor advances to true latest")

	var payload struct {
		Count    int              `json:"count"`
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(upd.data), &payload))
	assert.Equal(t, 50, payload.Count)
	assert.Equal(t, int64(11), payload.Messages[0].ID, "oldest entries trimmed")
	assert.Equal(t, int64(60), payload.Messages[len(payload.Messages)-1].ID)
}

func TestConnectedFrameCarriesRetryHint(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	f := &scriptedFetcher{steps: []step{{view: view(1)}}, cancel: cancel}

	rec := httptest.NewRecorder()
	s, err := NewSession(rec, Options{ThreadID: "thr-1", Fetcher: f, Interval: 5 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, s.Run(ctx))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, ": thread stream established\n"+fmt.Sprintf("retry: %d\n", DefaultRetryMS)),
		"connected frame must lead with comment and retry hint, got: %q", body[:min(len(body), 120)])
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}

func ptr(v int64) *int64 { return &v }
