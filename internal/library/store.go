package library

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkawano/kanshu/internal/srs"
)

// ErrNotFound is returned when an operation references a character or word
// that is not in the library.
var ErrNotFound = errors.New("library: entry not found")

// Repository persists whole-collection snapshots. Every save writes the
// complete collection so a crash between compute and write leaves the
// previous snapshot intact.
type Repository interface {
	LoadCharacters() ([]TrackedCharacter, error)
	SaveCharacters(characters []TrackedCharacter) error
	LoadVocabulary() ([]VocabularyItem, error)
	SaveVocabulary(items []VocabularyItem) error
}

// NewCharacter describes a character about to be added, usually enriched by a
// dictionary lookup. A zero ProficiencyLevel means unranked.
type NewCharacter struct {
	Character        string
	ProficiencyLevel int
}

// Store owns the in-memory library and writes a snapshot through the
// repository on every mutation. It preserves insertion order.
type Store struct {
	repo       Repository
	characters []TrackedCharacter
	charIndex  map[string]int
	vocabulary []VocabularyItem
	vocabIndex map[string]int
}

// NewStore creates an empty store backed by repo.
func NewStore(repo Repository) *Store {
	return &Store{
		repo:       repo,
		charIndex:  make(map[string]int),
		vocabIndex: make(map[string]int),
	}
}

// Load reads both collections from the repository. A load failure is
// non-fatal: the store starts empty and the error is logged, because the
// in-memory state is authoritative for the process lifetime.
func (s *Store) Load() {
	characters, err := s.repo.LoadCharacters()
	if err != nil {
		slog.Default().Warn("failed to load characters, starting empty", "error", err)
		characters = nil
	}
	vocabulary, err := s.repo.LoadVocabulary()
	if err != nil {
		slog.Default().Warn("failed to load vocabulary, starting empty", "error", err)
		vocabulary = nil
	}

	s.characters = characters
	s.vocabulary = vocabulary
	s.charIndex = make(map[string]int, len(characters))
	for i, c := range characters {
		s.charIndex[c.Character] = i
	}
	s.vocabIndex = make(map[string]int, len(vocabulary))
	for i, v := range vocabulary {
		s.vocabIndex[v.Word] = i
	}
}

// Characters returns a copy of the tracked characters in insertion order.
func (s *Store) Characters() []TrackedCharacter {
	result := make([]TrackedCharacter, len(s.characters))
	copy(result, s.characters)
	return result
}

// Character returns one entry by its character key.
func (s *Store) Character(character string) (TrackedCharacter, bool) {
	i, ok := s.charIndex[character]
	if !ok {
		return TrackedCharacter{}, false
	}
	return s.characters[i], true
}

// Vocabulary returns a copy of the vocabulary items in insertion order.
func (s *Store) Vocabulary() []VocabularyItem {
	result := make([]VocabularyItem, len(s.vocabulary))
	copy(result, s.vocabulary)
	return result
}

// AddCharacters inserts the characters that are not yet tracked and returns
// them. Adding an existing character is a no-op. A new character's next
// review is its creation time, so it is immediately eligible for selection.
func (s *Store) AddCharacters(entries []NewCharacter, now time.Time) ([]string, error) {
	t := now.UnixMilli()
	var added []string
	for _, entry := range entries {
		if entry.Character == "" {
			continue
		}
		if _, ok := s.charIndex[entry.Character]; ok {
			continue
		}
		s.charIndex[entry.Character] = len(s.characters)
		s.characters = append(s.characters, TrackedCharacter{
			Character:        entry.Character,
			AddedAt:          t,
			NextReviewAt:     t,
			ProficiencyLevel: entry.ProficiencyLevel,
		})
		added = append(added, entry.Character)
	}
	if len(added) == 0 {
		return nil, nil
	}
	if err := s.repo.SaveCharacters(s.characters); err != nil {
		return added, fmt.Errorf("repo.SaveCharacters > %w", err)
	}
	return added, nil
}

// RemoveCharacter deletes one entry. Characters are never removed by any
// other path.
func (s *Store) RemoveCharacter(character string) error {
	i, ok := s.charIndex[character]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, character)
	}
	s.characters = append(s.characters[:i], s.characters[i+1:]...)
	delete(s.charIndex, character)
	for j := i; j < len(s.characters); j++ {
		s.charIndex[s.characters[j].Character] = j
	}
	if err := s.repo.SaveCharacters(s.characters); err != nil {
		return fmt.Errorf("repo.SaveCharacters > %w", err)
	}
	return nil
}

// RecordUsage increments the usage count of each character once, with a
// single timestamp. Unknown characters are skipped and the batch continues.
// Usage does not affect scheduling.
func (s *Store) RecordUsage(characters []string, now time.Time) (int, error) {
	t := now.UnixMilli()
	updated := 0
	for _, character := range characters {
		i, ok := s.charIndex[character]
		if !ok {
			slog.Default().Debug("usage for untracked character skipped", "character", character)
			continue
		}
		s.characters[i].UsedCount++
		s.characters[i].LastUsedAt = t
		updated++
	}
	if updated == 0 {
		return 0, nil
	}
	if err := s.repo.SaveCharacters(s.characters); err != nil {
		return updated, fmt.Errorf("repo.SaveCharacters > %w", err)
	}
	return updated, nil
}

// ApplyReview applies one review outcome to every listed character, all with
// the same timestamp. Unknown characters are skipped and the batch continues.
func (s *Store) ApplyReview(characters []string, outcome srs.Outcome, now time.Time) (int, error) {
	updated := 0
	for _, character := range characters {
		i, ok := s.charIndex[character]
		if !ok {
			slog.Default().Debug("review for untracked character skipped", "character", character)
			continue
		}
		next := srs.Apply(s.characters[i].State(), outcome, now)
		s.characters[i].applyState(next)
		updated++
	}
	if updated == 0 {
		return 0, nil
	}
	if err := s.repo.SaveCharacters(s.characters); err != nil {
		return updated, fmt.Errorf("repo.SaveCharacters > %w", err)
	}
	return updated, nil
}

// AddVocabulary inserts a word if it is not already present. Adding an
// existing word is a no-op and reports false.
func (s *Store) AddVocabulary(item VocabularyItem, now time.Time) (bool, error) {
	if item.Word == "" {
		return false, nil
	}
	if _, ok := s.vocabIndex[item.Word]; ok {
		return false, nil
	}
	if item.AddedAt == 0 {
		item.AddedAt = now.UnixMilli()
	}
	s.vocabIndex[item.Word] = len(s.vocabulary)
	s.vocabulary = append(s.vocabulary, item)
	if err := s.repo.SaveVocabulary(s.vocabulary); err != nil {
		return true, fmt.Errorf("repo.SaveVocabulary > %w", err)
	}
	return true, nil
}

// PromoteToken turns a sentence token into a vocabulary item and, as a side
// effect, tracks any Kanji in the token's text that are not yet in the
// character library.
func (s *Store) PromoteToken(token WordToken, now time.Time) (bool, []string, error) {
	added, err := s.AddVocabulary(VocabularyItem{
		Word:       token.Word,
		Reading:    token.Reading,
		Definition: token.Definition,
	}, now)
	if err != nil {
		return added, nil, fmt.Errorf("s.AddVocabulary > %w", err)
	}

	var entries []NewCharacter
	for _, character := range ExtractKanji(token.Word) {
		entries = append(entries, NewCharacter{
			Character:        character,
			ProficiencyLevel: token.ProficiencyLevel,
		})
	}
	newCharacters, err := s.AddCharacters(entries, now)
	if err != nil {
		return added, newCharacters, fmt.Errorf("s.AddCharacters > %w", err)
	}
	return added, newCharacters, nil
}
