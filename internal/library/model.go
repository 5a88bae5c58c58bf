// Package library holds the user's tracked characters and vocabulary, and
// owns their persistence. All timestamps are epoch milliseconds; zero means
// "never".
package library

import (
	"unicode"

	"github.com/mkawano/kanshu/internal/srs"
)

// TrackedCharacter is one Kanji entry in the user's library.
// Character is the primary key; one entry exists per distinct character.
type TrackedCharacter struct {
	Character        string `yaml:"character" db:"character"`
	AddedAt          int64  `yaml:"added_at" db:"added_at"`
	LastUsedAt       int64  `yaml:"last_used_at,omitempty" db:"last_used_at"`
	LastReviewedAt   int64  `yaml:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
	NextReviewAt     int64  `yaml:"next_review_at" db:"next_review_at"`
	UsedCount        int    `yaml:"used_count,omitempty" db:"used_count"`
	ProficiencyLevel int    `yaml:"proficiency_level,omitempty" db:"proficiency_level"`
	SRSLevel         int    `yaml:"srs_level,omitempty" db:"srs_level"`
	CorrectStreak    int    `yaml:"correct_streak,omitempty" db:"correct_streak"`
}

// State extracts the scheduling state of the character.
func (c TrackedCharacter) State() srs.State {
	return srs.State{
		Level:          c.SRSLevel,
		Streak:         c.CorrectStreak,
		LastReviewedAt: c.LastReviewedAt,
		NextReviewAt:   c.NextReviewAt,
	}
}

// applyState writes a scheduling state back onto the character.
func (c *TrackedCharacter) applyState(s srs.State) {
	c.SRSLevel = s.Level
	c.CorrectStreak = s.Streak
	c.LastReviewedAt = s.LastReviewedAt
	c.NextReviewAt = s.NextReviewAt
}

// VocabularyItem is a word entry. Word is the primary key. Its lifecycle is
// independent from the characters it contains.
type VocabularyItem struct {
	Word       string `yaml:"word" db:"word"`
	Reading    string `yaml:"reading,omitempty" db:"reading"`
	Definition string `yaml:"definition,omitempty" db:"definition"`
	AddedAt    int64  `yaml:"added_at" db:"added_at"`
}

// WordToken is one segment of a generated sentence. It is never persisted on
// its own; it becomes a VocabularyItem only on explicit promotion.
type WordToken struct {
	Word             string
	Reading          string
	Definition       string
	ProficiencyLevel int
}

// ExtractKanji returns the distinct Kanji runes of text in order of first
// appearance. Kana, Latin and punctuation are skipped.
func ExtractKanji(text string) []string {
	var result []string
	seen := make(map[rune]struct{})
	for _, r := range text {
		if !unicode.Is(unicode.Han, r) {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		result = append(result, string(r))
	}
	return result
}
