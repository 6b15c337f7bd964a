package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageServer(t *testing.T, text string, gotBody *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		if gotBody != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, gotBody)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":   "msg_test_001",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": text},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  12,
				"output_tokens": 4,
			},
		})
	}))
}

func TestCreateMessage(t *testing.T) {
	var body map[string]any
	srv := messageServer(t, "MSFT, GOOGL", &body)
	defer srv.Close()

	client := NewClient("test-key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	resp, err := client.CreateMessage(context.Background(), MessageRequest{
		System:   "answer with tickers",
		Messages: []Message{{Role: "user", Content: "peers of AAPL"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_test_001", resp.ID)
	assert.Equal(t, "MSFT, GOOGL", resp.Text())
	assert.Equal(t, int64(12), resp.Usage.InputTokens)

	assert.Equal(t, DefaultModel, body["model"])
	assert.EqualValues(t, 512, body["max_tokens"])
	assert.NotNil(t, body["system"])
}

func TestCreateMessage_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	_, err := client.CreateMessage(context.Background(), MessageRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
}

func TestMessageResponse_Text(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "one"},
		{Type: "tool_use"},
		{Type: "text", Text: "two"},
	}}
	assert.Equal(t, "one\ntwo", resp.Text())

	var nilResp *MessageResponse
	assert.Empty(t, nilResp.Text())
}

func TestToSDKMessages(t *testing.T) {
	out := toSDKMessages([]Message{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "user", string(out[0].Role))
	assert.Equal(t, "assistant", string(out[1].Role))
}

func TestEstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 4.80, u.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
	assert.Zero(t, u.EstimateCost("unknown-model"))
}
