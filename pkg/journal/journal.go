// Package journal keeps a local append-only record of what this service
// composed and parsed: kickoffs sent and deltas accepted or rejected. It is
// an audit aid, never authoritative for message identity or ordering — the
// Thread Store proxy owns those.
package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"threadloom/pkg/logger"
	"threadloom/pkg/models"
)

var db *pebble.DB

// seq reduces key collisions when entries share a nanosecond timestamp.
var seq uint64

// Entry kinds recorded in the journal.
const (
	KindKickoff = "kickoff"
	KindDelta   = "delta"
)

// Entry is one journal record.
type Entry struct {
	Kind     string          `json:"kind"`
	ThreadID string          `json:"thread_id"`
	TS       int64           `json:"ts"` // unix nanos
	Payload  json.RawMessage `json:"payload"`
}

// Open opens (or creates) the pebble database at path and keeps a global
// handle, matching how the rest of the service treats the journal as a
// process-wide singleton.
func Open(path string) error {
	var err error
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("journal_open_failed", "path", path, "error", err)
		return err
	}
	logger.Info("journal_opened", "path", path)
	return nil
}

// Close closes the journal if open.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("journal_closed")
	return nil
}

// Ready reports whether the journal is open.
func Ready() bool { return db != nil }

// key format: thread:<threadID>:<kind>:<unix_nano_padded>-<seq>
func entryKey(threadID, kind string, ts int64) []byte {
	n := atomic.AddUint64(&seq, 1)
	return []byte(fmt.Sprintf("thread:%s:%s:%020d-%06d", threadID, kind, ts, n))
}

func record(threadID, kind string, payload any) error {
	if db == nil {
		return fmt.Errorf("journal not opened; call journal.Open first")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal journal payload: %w", err)
	}
	ts := time.Now().UTC().UnixNano()
	e := Entry{Kind: kind, ThreadID: threadID, TS: ts, Payload: raw}
	val, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return db.Set(entryKey(threadID, kind, ts), val, pebble.Sync)
}

// RecordKickoff journals one composed kickoff for a thread.
func RecordKickoff(threadID string, msg models.KickoffMessage) error {
	return record(threadID, KindKickoff, msg)
}

// RecordDelta journals one parse result, valid or not.
func RecordDelta(threadID string, d models.Delta) error {
	return record(threadID, KindDelta, d)
}

// ListEntries returns a thread's journal entries in insertion order.
func ListEntries(threadID string) ([]Entry, error) {
	if db == nil {
		return nil, fmt.Errorf("journal not opened; call journal.Open first")
	}
	prefix := []byte("thread:" + threadID + ":")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Entry
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			logger.Warn("journal_entry_undecodable", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, e)
	}
	return out, iter.Error()
}

// SweepBefore deletes entries older than cutoff across all threads and
// returns how many were removed. Used by the retention scheduler.
func SweepBefore(cutoff time.Time) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("journal not opened; call journal.Open first")
	}
	cutoffNS := cutoff.UTC().UnixNano()
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}

	var stale [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			continue
		}
		if e.TS < cutoffNS {
			stale = append(stale, append([]byte(nil), iter.Key()...))
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}

	for _, k := range stale {
		if err := db.Delete(k, pebble.Sync); err != nil {
			return 0, err
		}
	}
	if len(stale) > 0 {
		logger.Info("journal_swept", "removed", len(stale), "cutoff", cutoff.UTC().Format(time.RFC3339))
	}
	return len(stale), nil
}
