// Package openai implements the sentence-generation client against the
// OpenAI chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/mkawano/kanshu/internal/inference"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(apiKey, model string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Retry on JSON parsing errors as they might be due to incomplete responses
	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

// GenerateSentences implements the inference.Client interface
func (client *Client) GenerateSentences(
	ctx context.Context,
	params inference.GenerateRequest,
) (inference.GenerateResponse, error) {
	var result inference.GenerateResponse
	if err := retry.Do(
		func() error {
			response, err := client.generateSentences(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return inference.GenerateResponse{}, err
	}
	return result, nil
}

func (client *Client) getRequestBody(args inference.GenerateRequest) ChatCompletionRequest {
	systemPrompt := fmt.Sprintf(`You are a Japanese teacher writing natural example sentences for a Kanji learner.

GOAL
Write exactly %d short, natural Japanese sentences. Each sentence must use at least one of the learner's target characters; across the whole set, use as many distinct target characters as possible.

OUTPUT
Return ONLY a JSON array with one object per sentence:
[
  {
    "japanese": "<the Japanese sentence>",
    "translation": "<natural English translation>",
    "tokens": [
      {"word": "<surface form>", "reading": "<hiragana reading>", "definition": "<short English gloss>", "level": <JLPT rank 1-5 or 0 if unsure>}
    ]
  }
]

RULES
- No text outside the JSON array.
- Tokens must cover every content word of the sentence, in order of appearance.
- Readings are hiragana only. Glosses are short English phrases.
- Keep each sentence under 25 characters of Japanese.
- Vary sentence topics; everyday situations preferred.`, inference.SentenceCount)

	if args.TargetLevel != 0 {
		systemPrompt += fmt.Sprintf(
			"\n- Target difficulty: around JLPT N%d. Prefer vocabulary and grammar of that level.",
			args.TargetLevel)
	}

	userContent := struct {
		Characters []string `json:"characters"`
	}{Characters: args.Characters}
	userJSON, _ := json.Marshal(userContent)

	return ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.7,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: string(userJSON)},
		},
	}
}

// generatedSentence mirrors the JSON shape the model is instructed to return.
type generatedSentence struct {
	Japanese    string `json:"japanese"`
	Translation string `json:"translation"`
	Tokens      []struct {
		Word       string `json:"word"`
		Reading    string `json:"reading"`
		Definition string `json:"definition"`
		Level      int    `json:"level"`
	} `json:"tokens"`
}

func (client *Client) generateSentences(
	ctx context.Context,
	args inference.GenerateRequest,
) (inference.GenerateResponse, error) {
	if len(args.Characters) == 0 {
		return inference.GenerateResponse{}, fmt.Errorf("no characters in generation request")
	}

	requestBody := client.getRequestBody(args)

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return inference.GenerateResponse{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return inference.GenerateResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.GenerateResponse{}, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return inference.GenerateResponse{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"request", requestBody,
		"response", responseBody,
	)

	var decoded []generatedSentence
	if err := json.NewDecoder(strings.NewReader(content)).Decode(&decoded); err != nil {
		slog.Default().Error("Failed to parse OpenAI response as JSON",
			"request", requestBody,
			"characterCount", len(args.Characters),
			"error", err)
		return inference.GenerateResponse{}, fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
	}
	if len(decoded) == 0 {
		return inference.GenerateResponse{}, fmt.Errorf("no sentences in response: %s", content)
	}

	result := inference.GenerateResponse{
		Sentences: make([]inference.Sentence, 0, len(decoded)),
	}
	for i, s := range decoded {
		if s.Japanese == "" || s.Translation == "" {
			return inference.GenerateResponse{}, fmt.Errorf("sentence %d missing japanese or translation: %s", i, content)
		}
		sentence := inference.Sentence{
			Direction: args.Direction,
			Primary:   s.Japanese,
			Secondary: s.Translation,
		}
		if args.Direction == inference.DirectionNativeFirst {
			sentence.Primary, sentence.Secondary = s.Translation, s.Japanese
		}
		for _, token := range s.Tokens {
			sentence.Tokens = append(sentence.Tokens, inference.Token{
				Word:       token.Word,
				Reading:    token.Reading,
				Definition: token.Definition,
				Level:      token.Level,
			})
		}
		result.Sentences = append(result.Sentences, sentence)
	}
	return result, nil
}
