package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://jisho.org/api/v1"

type Config struct {
	// BaseURL overrides the dictionary endpoint. Empty means the public API.
	BaseURL string
}

// Client looks up expressions against the Jisho word-search API, backed by a
// file cache.
type Client struct {
	config    Config
	fileCache *FileCache
}

func NewClient(cacheDirectory string, config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{
		config:    config,
		fileCache: NewFileCache(cacheDirectory),
	}
}

func (c *Client) lookupAPI(ctx context.Context, expression string) ([]byte, error) {
	client := resty.New()
	res, err := client.R().
		SetContext(ctx).
		SetQueryParam("keyword", expression).
		Get(c.config.BaseURL + "/search/words")
	if err != nil {
		return nil, fmt.Errorf("client.R.Get > %w, response %s", err, string(res.Body()))
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status code: %d, body: %s", res.StatusCode(), string(res.Body()))
	}
	return res.Body(), nil
}

// Lookup returns the best dictionary entry for the expression. A miss is
// ErrNotFound and is also cached.
func (c *Client) Lookup(ctx context.Context, expression string) (Entry, error) {
	var entry Entry
	contents, err := c.fileCache.cache(expression, func() ([]byte, error) {
		body, err := c.lookupAPI(ctx, expression)
		if err != nil {
			return nil, fmt.Errorf("c.lookupAPI > %w", err)
		}
		return body, nil
	})
	if err != nil {
		return entry, fmt.Errorf("c.fileCache.cache > %w", err)
	}

	var response searchResponse
	if err := json.Unmarshal(contents, &response); err != nil {
		return entry, fmt.Errorf("json.Unmarshal > %w", err)
	}
	if len(response.Data) == 0 {
		return entry, fmt.Errorf("%w: %s", ErrNotFound, expression)
	}

	result := response.Data[0]
	entry.Word = expression
	if len(result.Japanese) > 0 {
		if result.Japanese[0].Word != "" {
			entry.Word = result.Japanese[0].Word
		}
		entry.Reading = result.Japanese[0].Reading
	}
	if len(result.Senses) > 0 && len(result.Senses[0].EnglishDefinitions) > 0 {
		entry.Definition = strings.Join(result.Senses[0].EnglishDefinitions, "; ")
	}
	entry.Level = parseJLPTLevel(result.JLPT)
	return entry, nil
}

// parseJLPTLevel picks the easiest rank from tags like "jlpt-n4".
func parseJLPTLevel(tags []string) int {
	level := 0
	for _, tag := range tags {
		value := strings.TrimPrefix(strings.ToLower(tag), "jlpt-n")
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 || parsed > 5 {
			continue
		}
		if parsed > level {
			level = parsed
		}
	}
	return level
}
