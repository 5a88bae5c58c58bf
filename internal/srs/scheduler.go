// Package srs implements the spaced repetition scheduling rules for tracked
// characters. All functions are pure: they take the current state and a
// reference time and return the next state, so callers control the clock.
package srs

import "time"

const (
	// MasteryThreshold is the level at or above which a character counts as mastered.
	MasteryThreshold = 7

	// LeechMaxLevel and LeechMaxStreak bound the "leech" window: a character
	// that has been reviewed but keeps a fragile history.
	LeechMaxLevel  = 3
	LeechMaxStreak = 1
)

// Intervals is the review interval ladder indexed by level. Levels beyond the
// ladder clamp to the last entry.
var Intervals = []time.Duration{
	4 * time.Hour,
	8 * time.Hour,
	24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	14 * 24 * time.Hour,
	30 * 24 * time.Hour,
	120 * 24 * time.Hour,
}

// PenaltyInterval is the cooldown applied after an incorrect answer,
// regardless of the resulting level.
var PenaltyInterval = Intervals[0] / 4

// Outcome is the user's judgment of one review.
type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// State is the scheduling state of a single character.
// Timestamps are epoch milliseconds; zero means "never".
type State struct {
	Level          int
	Streak         int
	LastReviewedAt int64
	NextReviewAt   int64
}

// Classification buckets a State for display and prompt selection.
type Classification string

const (
	ClassNew      Classification = "new"
	ClassDue      Classification = "due"
	ClassLeech    Classification = "leech"
	ClassLearning Classification = "learning"
	ClassMastered Classification = "mastered"
)

// NextInterval returns the ladder interval for a level, clamping at the top.
func NextInterval(level int) time.Duration {
	if level < 0 {
		level = 0
	}
	if level >= len(Intervals) {
		level = len(Intervals) - 1
	}
	return Intervals[level]
}

// Apply computes the state after one review outcome at time now.
func Apply(state State, outcome Outcome, now time.Time) State {
	t := now.UnixMilli()
	next := state
	next.LastReviewedAt = t

	if outcome == OutcomeCorrect {
		next.Level = state.Level + 1
		next.Streak = state.Streak + 1
		next.NextReviewAt = t + NextInterval(next.Level).Milliseconds()
		return next
	}

	next.Level = state.Level - 2
	if next.Level < 0 {
		next.Level = 0
	}
	next.Streak = 0
	next.NextReviewAt = t + PenaltyInterval.Milliseconds()
	return next
}

// IsLeech reports whether a not-yet-due state has a fragile review history.
func IsLeech(state State, now time.Time) bool {
	if state.NextReviewAt <= now.UnixMilli() {
		return false
	}
	return state.Level > 0 && state.Level <= LeechMaxLevel && state.Streak <= LeechMaxStreak
}

// Classify buckets a state. Precedence: new > due > leech > learning > mastered.
func Classify(state State, now time.Time) Classification {
	if state.Level == 0 {
		return ClassNew
	}
	if now.UnixMilli() >= state.NextReviewAt {
		return ClassDue
	}
	if IsLeech(state, now) {
		return ClassLeech
	}
	if state.Level < MasteryThreshold {
		return ClassLearning
	}
	return ClassMastered
}
