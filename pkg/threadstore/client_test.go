package threadstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProxy records requests and serves canned envelope responses keyed by
// method.
type fakeProxy struct {
	t        *testing.T
	requests []map[string]any
	respond  func(method string, params map[string]any) (any, *RPCError)
}

func (f *fakeProxy) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.requests = append(f.requests, req)

		method, _ := req["method"].(string)
		params, _ := req["params"].(map[string]any)
		result, rpcErr := f.respond(method, params)

		w.Header().Set("Content-Type", "application/json")
		if rpcErr != nil {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": rpcErr})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
	}
}

func TestListTools(t *testing.T) {
	fp := &fakeProxy{t: t, respond: func(method string, _ map[string]any) (any, *RPCError) {
		require.Equal(t, "tools/list", method)
		return map[string]any{"tools": []map[string]string{
			{"name": "send_message", "description": "deliver a message"},
		}}, nil
	}}
	srv := httptest.NewServer(fp.handler())
	defer srv.Close()

	c := NewClient(srv.URL, "")
	tools, err := c.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "send_message", tools[0].Name)
}

func TestCallToolUnwrapsStructuredContent(t *testing.T) {
	fp := &fakeProxy{t: t, respond: func(method string, params map[string]any) (any, *RPCError) {
		require.Equal(t, "tools/call", method)
		assert.Equal(t, "send_message", params["name"])
		args, _ := params["arguments"].(map[string]any)
		assert.Equal(t, true, args["ack_required"])
		return map[string]any{"structuredContent": map[string]any{"delivered": true}}, nil
	}}
	srv := httptest.NewServer(fp.handler())
	defer srv.Close()

	c := NewClient(srv.URL, "")
	res, err := c.CallTool(context.Background(), "send_message", map[string]any{"ack_required": true})
	require.NoError(t, err)
	var out map[string]bool
	require.NoError(t, json.Unmarshal(res, &out))
	assert.True(t, out["delivered"])
}

func TestErrorEnvelope(t *testing.T) {
	fp := &fakeProxy{t: t, respond: func(string, map[string]any) (any, *RPCError) {
		return nil, &RPCError{Code: -32601, Message: "method not found"}
	}}
	srv := httptest.NewServer(fp.handler())
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.ListTools(context.Background())
	require.Error(t, err)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
	assert.Contains(t, rpcErr.Message, "method not found")
}

func TestProjectKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Project-Key")
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"tools": []any{}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/abs/project/path")
	_, err := c.ListTools(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/abs/project/path", gotKey)
}

func TestFetchThread(t *testing.T) {
	threadJSON, _ := json.Marshal(map[string]any{
		"thread_id": "thr-9",
		"messages": []map[string]any{
			{"id": 1, "thread_id": "thr-9", "subject": "s", "from": "a", "to": []string{"b"}, "body_md": "hello", "created_ts": "2026-08-29T10:00:00Z"},
			{"id": 3, "thread_id": "thr-9", "subject": "s", "from": "b", "to": []string{"a"}, "body_md": "world", "created_ts": "2026-08-29T10:05:00Z"},
		},
	})
	fp := &fakeProxy{t: t, respond: func(method string, params map[string]any) (any, *RPCError) {
		require.Equal(t, "resources/read", method)
		assert.Equal(t, "thread://thr-9", params["uri"])
		return map[string]any{"contents": []map[string]string{
			{"uri": "thread://thr-9", "mimeType": "application/json", "text": string(threadJSON)},
		}}, nil
	}}
	srv := httptest.NewServer(fp.handler())
	defer srv.Close()

	c := NewClient(srv.URL, "")

	view, err := c.FetchThread(context.Background(), "thr-9", true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), view.LatestID, "latest id derived from messages")
	assert.Equal(t, "hello", view.Messages[0].BodyMD)

	view, err = c.FetchThread(context.Background(), "thr-9", false)
	require.NoError(t, err)
	assert.Empty(t, view.Messages[0].BodyMD, "bodies stripped when not requested")
}
