// Package threadstore is the client for the external Thread Store proxy,
// the collaborator that owns message identity and ordering. The wire
// surface is fixed: a JSON `{method, params}` request envelope with
// methods tools/list, tools/call and resources/read, and `{code, message}`
// error envelopes. Nothing here stores messages; the proxy is consumed
// only.
package threadstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"threadloom/pkg/logger"
	"threadloom/pkg/telemetry"
)

// RPCError is the proxy's structured error envelope.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("thread store proxy error %d: %s", e.Code, e.Message)
}

// Client talks to one Thread Store proxy endpoint. Safe for concurrent use.
type Client struct {
	base       string
	projectKey string
	httpc      *http.Client
}

// NewClient returns a client bound to the proxy base URL. projectKey, when
// non-empty, is forwarded on every request so the proxy can resolve the
// right project.
func NewClient(base, projectKey string) *Client {
	return &Client{
		base:       base,
		projectKey: projectKey,
		httpc:      &http.Client{Timeout: 30 * time.Second},
	}
}

type rpcRequest struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

// call posts one request envelope and returns the raw result.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	start := time.Now()
	defer telemetry.ObserveProxyCall(method, start)

	body, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.projectKey != "" {
		req.Header.Set("X-Project-Key", c.projectKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", method, err)
	}
	if out.Error != nil {
		logger.Warn("proxy_rpc_error", "method", method, "code", out.Error.Code, "message", out.Error.Message)
		return nil, out.Error
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}
	return out.Result, nil
}

// ToolInfo describes one operation the proxy exposes.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListTools enumerates the proxy's available operations.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	res, err := c.call(ctx, "tools/list", struct{}{})
	if err != nil {
		return nil, err
	}
	var out struct {
		Tools []ToolInfo `json:"tools"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return nil, fmt.Errorf("tools/list: decode result: %w", err)
	}
	return out.Tools, nil
}

// CallTool invokes a named operation with an arguments object and returns
// the structuredContent wrapper from the result.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	params := map[string]any{"name": name, "arguments": args}
	res, err := c.call(ctx, "tools/call", params)
	if err != nil {
		return nil, err
	}
	var out struct {
		StructuredContent json.RawMessage `json:"structuredContent"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return nil, fmt.Errorf("tools/call %s: decode result: %w", name, err)
	}
	return out.StructuredContent, nil
}

// ReadResource fetches a named resource by URI and returns its JSON payload
// (the proxy wraps it as a text blob).
func (c *Client) ReadResource(ctx context.Context, uri string) ([]byte, error) {
	res, err := c.call(ctx, "resources/read", map[string]any{"uri": uri})
	if err != nil {
		return nil, err
	}
	var out struct {
		Contents []struct {
			URI      string `json:"uri"`
			MimeType string `json:"mimeType,omitempty"`
			Text     string `json:"text"`
		} `json:"contents"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return nil, fmt.Errorf("resources/read %s: decode result: %w", uri, err)
	}
	if len(out.Contents) == 0 {
		return nil, fmt.Errorf("resources/read %s: empty contents", uri)
	}
	return []byte(out.Contents[0].Text), nil
}

// Health verifies the proxy is reachable by listing tools with a short
// deadline.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.ListTools(ctx)
	return err
}
