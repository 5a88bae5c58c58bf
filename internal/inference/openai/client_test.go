package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkawano/kanshu/internal/inference"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-key", "gpt-4o-mini", 0)
	client.httpClient.SetBaseURL(server.URL)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func chatResponse(content string) ChatCompletionResponse {
	return ChatCompletionResponse{
		ID:     "chatcmpl-123",
		Object: "chat.completion",
		Model:  "gpt-4o-mini",
		Choices: []Choice{
			{
				Index:        0,
				Message:      ChoiceMessage{Role: RoleAssistant, Content: content},
				FinishReason: "stop",
			},
		},
	}
}

func TestClient_GenerateSentences(t *testing.T) {
	validContent := `[
		{
			"japanese": "猫が好きです。",
			"translation": "I like cats.",
			"tokens": [
				{"word": "猫", "reading": "ねこ", "definition": "cat", "level": 5},
				{"word": "好き", "reading": "すき", "definition": "to like", "level": 5}
			]
		}
	]`

	tests := []struct {
		name            string
		request         inference.GenerateRequest
		handler         func(t *testing.T, w http.ResponseWriter, r *http.Request)
		wantSentences   []inference.Sentence
		wantError       bool
		wantErrorString string
	}{
		{
			name: "foreign-first sentence keeps Japanese primary",
			request: inference.GenerateRequest{
				Characters:  []string{"猫"},
				TargetLevel: 5,
				Direction:   inference.DirectionForeignFirst,
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				var reqBody ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "gpt-4o-mini", reqBody.Model)
				require.Len(t, reqBody.Messages, 2)
				assert.Contains(t, reqBody.Messages[0].Content, "JLPT N5")
				assert.Contains(t, reqBody.Messages[1].Content, "猫")

				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse(validContent)))
			},
			wantSentences: []inference.Sentence{
				{
					Direction: inference.DirectionForeignFirst,
					Primary:   "猫が好きです。",
					Secondary: "I like cats.",
					Tokens: []inference.Token{
						{Word: "猫", Reading: "ねこ", Definition: "cat", Level: 5},
						{Word: "好き", Reading: "すき", Definition: "to like", Level: 5},
					},
				},
			},
		},
		{
			name: "native-first sentence swaps primary and secondary",
			request: inference.GenerateRequest{
				Characters: []string{"猫"},
				Direction:  inference.DirectionNativeFirst,
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse(validContent)))
			},
			wantSentences: []inference.Sentence{
				{
					Direction: inference.DirectionNativeFirst,
					Primary:   "I like cats.",
					Secondary: "猫が好きです。",
					Tokens: []inference.Token{
						{Word: "猫", Reading: "ねこ", Definition: "cat", Level: 5},
						{Word: "好き", Reading: "すき", Definition: "to like", Level: 5},
					},
				},
			},
		},
		{
			name: "malformed JSON content fails",
			request: inference.GenerateRequest{
				Characters: []string{"猫"},
				Direction:  inference.DirectionForeignFirst,
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse("here are your sentences!")))
			},
			wantError:       true,
			wantErrorString: "json.Unmarshal",
		},
		{
			name: "sentence missing translation fails",
			request: inference.GenerateRequest{
				Characters: []string{"猫"},
				Direction:  inference.DirectionForeignFirst,
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(chatResponse(`[{"japanese": "猫が好きです。", "translation": ""}]`)))
			},
			wantError:       true,
			wantErrorString: "missing japanese or translation",
		},
		{
			name: "API error status fails",
			request: inference.GenerateRequest{
				Characters: []string{"猫"},
				Direction:  inference.DirectionForeignFirst,
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
			},
			wantError:       true,
			wantErrorString: "response error 401",
		},
		{
			name: "empty choices fails",
			request: inference.GenerateRequest{
				Characters: []string{"猫"},
				Direction:  inference.DirectionForeignFirst,
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				require.NoError(t, json.NewEncoder(w).Encode(ChatCompletionResponse{ID: "chatcmpl-456"}))
			},
			wantError:       true,
			wantErrorString: "empty response body or choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				tt.handler(t, w, r)
			})

			got, err := client.GenerateSentences(context.Background(), tt.request)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSentences, got.Sentences)
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "unrelated error", err: assert.AnError, want: false},
		{name: "server error", err: fmt.Errorf("response error 503: unavailable"), want: true},
		{name: "rate limit", err: fmt.Errorf("response error 429: slow down"), want: true},
		{name: "network error", err: fmt.Errorf("dial tcp: connection refused"), want: true},
		{name: "truncated json", err: fmt.Errorf("json.Unmarshal([) > unexpected end of JSON input"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}
