package dictionary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const volcanoResponse = `{
	"data": [
		{
			"slug": "火山",
			"japanese": [{"word": "火山", "reading": "かざん"}],
			"senses": [{"english_definitions": ["volcano"]}],
			"jlpt": ["jlpt-n3", "jlpt-n4"]
		}
	]
}`

func TestClientLookup(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/search/words", r.URL.Path)
		assert.Equal(t, "火山", r.URL.Query().Get("keyword"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(volcanoResponse))
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	client := NewClient(cacheDir, Config{BaseURL: server.URL})

	entry, err := client.Lookup(context.Background(), "火山")
	require.NoError(t, err)
	assert.Equal(t, Entry{
		Word:       "火山",
		Reading:    "かざん",
		Definition: "volcano",
		Level:      4,
	}, entry)

	// The second lookup is served from the file cache.
	entry, err = client.Lookup(context.Background(), "火山")
	require.NoError(t, err)
	assert.Equal(t, "かざん", entry.Reading)
	assert.Equal(t, 1, requests)

	_, err = os.Stat(filepath.Join(cacheDir, "火山.json"))
	assert.NoError(t, err)
}

func TestClientLookupNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := NewClient(t.TempDir(), Config{BaseURL: server.URL})
	_, err := client.Lookup(context.Background(), "存在しない語")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	client := NewClient(cacheDir, Config{BaseURL: server.URL})
	_, err := client.Lookup(context.Background(), "火山")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code: 500")

	// Failures are not cached.
	_, err = os.Stat(filepath.Join(cacheDir, "火山.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestParseJLPTLevel(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want int
	}{
		{name: "single tag", tags: []string{"jlpt-n2"}, want: 2},
		{name: "easiest rank wins", tags: []string{"jlpt-n1", "jlpt-n3"}, want: 3},
		{name: "no tags", tags: nil, want: 0},
		{name: "garbage ignored", tags: []string{"jlpt-nx", "common"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseJLPTLevel(tt.tags))
		})
	}
}
