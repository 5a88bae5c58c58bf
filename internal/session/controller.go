// Package session orchestrates one sentence-generation round trip: select
// characters, call the generator, bind results back to library state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mkawano/kanshu/internal/inference"
	"github.com/mkawano/kanshu/internal/library"
	"github.com/mkawano/kanshu/internal/selection"
	"github.com/mkawano/kanshu/internal/srs"
)

var (
	// ErrGenerationInFlight rejects a second generation request while one is
	// still running. Both requests would mutate the same usage counters.
	ErrGenerationInFlight = errors.New("session: generation already in progress")
	// ErrStaleResponse marks a generation result that arrived after the
	// session it belonged to was abandoned. The result is discarded.
	ErrStaleResponse = errors.New("session: session was abandoned")
)

// SentenceWithContext pairs a generated sentence with the tracked characters
// whose text appears in it. Context covers the full tracked set, not just the
// prompted subset.
type SentenceWithContext struct {
	Sentence inference.Sentence
	Context  []string
}

// Session is one batch of generated sentences awaiting feedback. It is never
// persisted.
type Session struct {
	ID          int64
	TargetLevel int
	Sentences   []SentenceWithContext
}

type Controller struct {
	store     *library.Store
	generator inference.Client
	limit     int
	now       func() time.Time

	mu         sync.Mutex
	generating bool
	sessionID  int64
	current    *Session
}

func NewController(store *library.Store, generator inference.Client) *Controller {
	return &Controller{
		store:     store,
		generator: generator,
		limit:     selection.PromptLimit,
		now:       time.Now,
	}
}

// Current returns the session awaiting feedback, or nil.
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Abandon discards the current session. A generation request still in flight
// for it is discarded on arrival.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID++
	c.current = nil
}

// Start runs one generation round trip. level optionally filters candidates
// to a single proficiency rank (0 = no filter). Usage counters are
// incremented exactly once per distinct character across the whole batch, and
// only after the response is fully parsed.
func (c *Controller) Start(ctx context.Context, level int, direction inference.Direction) (*Session, error) {
	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	c.generating = true
	c.sessionID++
	id := c.sessionID
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.generating = false
		c.mu.Unlock()
	}()

	tracked := c.store.Characters()
	selected, err := selection.SelectPrompt(tracked, level, c.limit, c.now())
	if err != nil {
		return nil, err
	}

	characters := make([]string, 0, len(selected.Characters))
	for _, ch := range selected.Characters {
		characters = append(characters, ch.Character)
	}

	response, err := c.generator.GenerateSentences(ctx, inference.GenerateRequest{
		Characters:  characters,
		TargetLevel: selected.TargetLevel,
		Direction:   direction,
	})
	if err != nil {
		return nil, fmt.Errorf("generator.GenerateSentences > %w", err)
	}

	c.mu.Lock()
	stale := id != c.sessionID
	c.mu.Unlock()
	if stale {
		return nil, ErrStaleResponse
	}

	sentences := make([]SentenceWithContext, 0, len(response.Sentences))
	seen := make(map[string]struct{})
	var used []string
	for _, sentence := range response.Sentences {
		sentenceContext := contextCharacters(sentence.Japanese(), tracked)
		sentences = append(sentences, SentenceWithContext{
			Sentence: sentence,
			Context:  sentenceContext,
		})
		for _, character := range sentenceContext {
			if _, ok := seen[character]; ok {
				continue
			}
			seen[character] = struct{}{}
			used = append(used, character)
		}
	}

	if _, err := c.store.RecordUsage(used, c.now()); err != nil {
		slog.Default().Warn("Failed to save usage counters", "error", err)
	}

	result := &Session{
		ID:          id,
		TargetLevel: selected.TargetLevel,
		Sentences:   sentences,
	}
	c.mu.Lock()
	c.current = result
	c.mu.Unlock()
	return result, nil
}

// RecordFeedback applies one outcome uniformly to every character in the
// sentence's context. A sentence with an empty context is a no-op.
func (c *Controller) RecordFeedback(sentence SentenceWithContext, outcome srs.Outcome) error {
	if len(sentence.Context) == 0 {
		return nil
	}
	if _, err := c.store.ApplyReview(sentence.Context, outcome, c.now()); err != nil {
		return fmt.Errorf("store.ApplyReview > %w", err)
	}
	return nil
}

// contextCharacters returns the tracked characters whose text appears in the
// sentence, in library order.
func contextCharacters(text string, tracked []library.TrackedCharacter) []string {
	var result []string
	for _, ch := range tracked {
		if strings.Contains(text, ch.Character) {
			result = append(result, ch.Character)
		}
	}
	return result
}
