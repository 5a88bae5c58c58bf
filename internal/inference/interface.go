// Package inference defines the sentence-generation collaborator interface.
package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client generates example sentences from a bounded character subset.
type Client interface {
	GenerateSentences(ctx context.Context, params GenerateRequest) (GenerateResponse, error)
}

// Direction selects which language leads in a generated sentence.
type Direction string

const (
	// DirectionNativeFirst shows the user's language first, Japanese second.
	DirectionNativeFirst Direction = "native_first"
	// DirectionForeignFirst shows Japanese first, the translation second.
	DirectionForeignFirst Direction = "foreign_first"
)

// SentenceCount is the fixed number of sentences per generation request.
const SentenceCount = 5

// GenerateRequest asks for sentences anchored on the given characters.
// TargetLevel is an optional JLPT-style rank (1 = hardest .. 5 = easiest,
// 0 = unset, provider default applies).
type GenerateRequest struct {
	Characters  []string  `json:"characters"`
	TargetLevel int       `json:"target_level,omitempty"`
	Direction   Direction `json:"direction"`
}

// Token is one segment of a generated sentence's breakdown.
type Token struct {
	Word       string `json:"word"`
	Reading    string `json:"reading"`
	Definition string `json:"definition"`
	Level      int    `json:"level,omitempty"`
}

// Sentence is one generated sentence. Direction is the discriminant:
// Primary holds the leading text for that direction, Secondary the other
// language. Tokens break down the Japanese text.
type Sentence struct {
	Direction Direction `json:"direction"`
	Primary   string    `json:"primary"`
	Secondary string    `json:"secondary"`
	Tokens    []Token   `json:"tokens"`
}

// Japanese returns the Japanese side of the sentence regardless of direction.
func (s Sentence) Japanese() string {
	if s.Direction == DirectionForeignFirst {
		return s.Primary
	}
	return s.Secondary
}

// GenerateResponse carries the full, validated generation result. A response
// is never partial: the provider fails instead of returning malformed data.
type GenerateResponse struct {
	Sentences []Sentence `json:"sentences"`
}

const (
	DefaultMaxRetryAttempts = 3
)
