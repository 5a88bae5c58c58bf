// Package vision extracts Kanji characters from images via the OpenAI
// chat completions API.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"resty.dev/v3"

	"github.com/mkawano/kanshu/internal/library"
)

//go:generate mockgen -source=extractor.go -destination=../mocks/vision/mock_extractor.go -package=mock_vision

// Extractor turns an image into the list of characters it contains. Results
// feed the same add-path as manual text entry.
type Extractor interface {
	Extract(ctx context.Context, image []byte) ([]string, error)
}

type Client struct {
	httpClient *resty.Client
	model      string
}

func NewClient(apiKey, model string) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: client,
		model:      model,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

type chatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const extractPrompt = `Transcribe every piece of Japanese text visible in this image. Return only the transcribed text, nothing else. If the image contains no Japanese text, return an empty string.`

// Extract transcribes the image and returns the distinct Kanji it contains,
// in order of first appearance.
func (client *Client) Extract(ctx context.Context, image []byte) ([]string, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	requestBody := chatCompletionRequest{
		Model: client.model,
		Messages: []message{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: extractPrompt},
					{Type: "image_url", ImageURL: &imageURL{
						URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(image),
					}},
				},
			},
		},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&chatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*chatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return nil, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := strings.TrimSpace(responseBody.Choices[0].Message.Content)
	slog.Default().Debug("vision response content", "content", content)
	return library.ExtractKanji(content), nil
}
