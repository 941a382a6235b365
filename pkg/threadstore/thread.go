package threadstore

import (
	"context"
	"encoding/json"
	"fmt"

	"threadloom/pkg/models"
)

// FetchThread reads one thread through the proxy. When includeBodies is
// false, message bodies are stripped from the returned view to keep poll
// payloads small. LatestID is derived from the messages when the proxy does
// not supply it.
func (c *Client) FetchThread(ctx context.Context, threadID string, includeBodies bool) (*models.ThreadView, error) {
	raw, err := c.ReadResource(ctx, "thread://"+threadID)
	if err != nil {
		return nil, err
	}
	var view models.ThreadView
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("thread %s: decode payload: %w", threadID, err)
	}
	if view.ThreadID == "" {
		view.ThreadID = threadID
	}
	for i := range view.Messages {
		if view.Messages[i].ID > view.LatestID {
			view.LatestID = view.Messages[i].ID
		}
		if !includeBodies {
			view.Messages[i].BodyMD = ""
		}
	}
	return &view, nil
}

// SendKickoff delivers one composed kickoff through the proxy's
// send_message operation. The envelope shape is fixed: `{to, subject,
// body_md, ack_required}` with ack_required always true for kickoffs.
func (c *Client) SendKickoff(ctx context.Context, threadID string, msg models.KickoffMessage) error {
	args := map[string]any{
		"thread_id":    threadID,
		"to":           msg.To,
		"subject":      msg.Subject,
		"body_md":      msg.Body,
		"ack_required": true,
	}
	_, err := c.CallTool(ctx, "send_message", args)
	if err != nil {
		return fmt.Errorf("send kickoff to %s: %w", msg.To, err)
	}
	return nil
}

// ListAgents reads the proxy's agent directory resource.
func (c *Client) ListAgents(ctx context.Context) ([]models.Agent, error) {
	raw, err := c.ReadResource(ctx, "agents://directory")
	if err != nil {
		return nil, err
	}
	var out struct {
		Agents []models.Agent `json:"agents"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("agent directory: decode payload: %w", err)
	}
	return out.Agents, nil
}
