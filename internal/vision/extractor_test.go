package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-key", "gpt-4o-mini")
	client.httpClient.SetBaseURL(server.URL)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientExtract(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var requestBody chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&requestBody))
		require.Len(t, requestBody.Messages, 1)
		require.Len(t, requestBody.Messages[0].Content, 2)
		assert.True(t, strings.HasPrefix(requestBody.Messages[0].Content[1].ImageURL.URL, "data:image/png;base64,"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"content": "火山に登った。火は熱い。"}}]
		}`))
	})

	characters, err := client.Extract(context.Background(), []byte("fake image bytes"))
	require.NoError(t, err)
	// Distinct Kanji in order of first appearance; kana are dropped.
	assert.Equal(t, []string{"火", "山", "登", "熱"}, characters)
}

func TestClientExtractNoJapaneseText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": ""}}]}`))
	})

	characters, err := client.Extract(context.Background(), []byte("fake image bytes"))
	require.NoError(t, err)
	assert.Empty(t, characters)
}

func TestClientExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		image   []byte
		handler http.HandlerFunc
		want    string
	}{
		{
			name:  "empty image",
			image: nil,
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("no request expected")
			},
			want: "empty image",
		},
		{
			name:  "API error status",
			image: []byte("fake image bytes"),
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
			},
			want: "response error 429",
		},
		{
			name:  "empty choices",
			image: []byte("fake image bytes"),
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"choices": []}`))
			},
			want: "empty response body or choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Extract(context.Background(), tt.image)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
