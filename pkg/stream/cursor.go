package stream

import "time"

// Poll interval bounds. Client-requested intervals are clamped into this
// range to bound load.
const (
	MinPollInterval     = 500 * time.Millisecond
	MaxPollInterval     = 10 * time.Second
	DefaultPollInterval = 2 * time.Second
)

// DefaultRetryMS is the client retry hint sent on the connected event.
const DefaultRetryMS = 3000

// DefaultBatchMax bounds how many messages one thread_update may carry.
// When exceeded, the batch is trimmed to the most recent entries; the
// cursor still advances to the true latest id.
const DefaultBatchMax = 50

// ResolveCursor computes the effective starting cursor from the two client
// hints. When both are present the maximum wins: a reconnect must never
// silently rewind past what the client already has. Nil means unset, in
// which case the first poll defines the cursor as the current latest id.
func ResolveCursor(lastEventID, queryCursor *int64) *int64 {
	switch {
	case lastEventID != nil && queryCursor != nil:
		if *lastEventID >= *queryCursor {
			v := *lastEventID
			return &v
		}
		v := *queryCursor
		return &v
	case lastEventID != nil:
		v := *lastEventID
		return &v
	case queryCursor != nil:
		v := *queryCursor
		return &v
	}
	return nil
}

// ClampInterval converts a client-requested poll interval in milliseconds
// into the server-safe range. Zero or negative selects the default.
func ClampInterval(ms int) time.Duration {
	if ms <= 0 {
		return DefaultPollInterval
	}
	d := time.Duration(ms) * time.Millisecond
	if d < MinPollInterval {
		return MinPollInterval
	}
	if d > MaxPollInterval {
		return MaxPollInterval
	}
	return d
}
