package models

// Message is the external message record as the Thread Store proxy exposes
// it. IDs are monotonically increasing within a project; the streaming
// cursor logic depends on that.
type Message struct {
	ID        int64    `json:"id"`
	ThreadID  string   `json:"thread_id"`
	Subject   string   `json:"subject"`
	From      string   `json:"from"`
	To        []string `json:"to"`
	ReplyTo   *int64   `json:"reply_to,omitempty"`
	BodyMD    string   `json:"body_md,omitempty"`
	CreatedTS string   `json:"created_ts"`
}

// ThreadView is one observation of a thread as fetched through the proxy.
type ThreadView struct {
	ThreadID string    `json:"thread_id"`
	LatestID int64     `json:"latest_id"`
	Messages []Message `json:"messages"`
}

// KickoffMessage is one composed kickoff, immutable once built. In
// per-recipient mode there is one instance per recipient; unified mode
// produces a single shared instance with Role left empty and a
// role-assignment table embedded in the body instead.
type KickoffMessage struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	AckRequired bool   `json:"ack_required"`
	Role        Role   `json:"role,omitempty"`
}
