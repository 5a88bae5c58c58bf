// Package selection picks the bounded subset of tracked characters that
// anchors a sentence-generation request.
package selection

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/mkawano/kanshu/internal/library"
	"github.com/mkawano/kanshu/internal/srs"
)

// PromptLimit is the default cap on characters per generation request.
const PromptLimit = 10

const (
	minProficiencyLevel = 1
	maxProficiencyLevel = 5
)

// ErrNoCandidates is returned when the filtered candidate pool is empty.
// The caller must not start a session.
var ErrNoCandidates = errors.New("selection: no candidate characters")

// Selection is the result of SelectPrompt: a prioritized, deduplicated
// character subset and an optional target proficiency level for generation
// (zero = unset, the generator applies its own default).
type Selection struct {
	Characters  []library.TrackedCharacter
	TargetLevel int
}

// orderedSet accumulates characters with insertion-order priority, dropping
// duplicates and stopping at the cap. This is the selection algorithm's core
// primitive.
type orderedSet struct {
	limit   int
	seen    map[string]struct{}
	entries []library.TrackedCharacter
}

func newOrderedSet(limit int) *orderedSet {
	return &orderedSet{
		limit: limit,
		seen:  make(map[string]struct{}),
	}
}

// insert adds the character unless it is already present or the set is full.
func (s *orderedSet) insert(c library.TrackedCharacter) {
	if len(s.entries) >= s.limit {
		return
	}
	if _, ok := s.seen[c.Character]; ok {
		return
	}
	s.seen[c.Character] = struct{}{}
	s.entries = append(s.entries, c)
}

func (s *orderedSet) full() bool {
	return len(s.entries) >= s.limit
}

// SelectPrompt selects up to limit characters for a generation request.
//
// Candidates are optionally filtered to one proficiency level, then inserted
// tier by tier: due (weakest level first), leeches (stalest review first),
// learning (newest first). If every tier is empty, the selection falls back
// to the stalest-used candidates so it is never empty while candidates
// exist. Ties keep original library order.
func SelectPrompt(characters []library.TrackedCharacter, level int, limit int, now time.Time) (Selection, error) {
	if limit <= 0 {
		limit = PromptLimit
	}

	candidates := characters
	if level != 0 {
		candidates = nil
		for _, c := range characters {
			if c.ProficiencyLevel == level {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return Selection{}, ErrNoCandidates
	}

	t := now.UnixMilli()
	var due, leeches, learning []library.TrackedCharacter
	for _, c := range candidates {
		state := c.State()
		switch {
		case state.NextReviewAt <= t:
			due = append(due, c)
		case srs.IsLeech(state, now):
			leeches = append(leeches, c)
		case state.Level < srs.MasteryThreshold:
			learning = append(learning, c)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].SRSLevel < due[j].SRSLevel
	})
	sort.SliceStable(leeches, func(i, j int) bool {
		return leeches[i].LastReviewedAt < leeches[j].LastReviewedAt
	})
	sort.SliceStable(learning, func(i, j int) bool {
		return learning[i].AddedAt > learning[j].AddedAt
	})

	set := newOrderedSet(limit)
	for _, tier := range [][]library.TrackedCharacter{due, leeches, learning} {
		for _, c := range tier {
			if set.full() {
				break
			}
			set.insert(c)
		}
	}

	// Everything mastered and not due: fall back to the least recently used.
	if len(set.entries) == 0 {
		stale := make([]library.TrackedCharacter, len(candidates))
		copy(stale, candidates)
		sort.SliceStable(stale, func(i, j int) bool {
			return stale[i].LastUsedAt < stale[j].LastUsedAt
		})
		for _, c := range stale {
			if set.full() {
				break
			}
			set.insert(c)
		}
	}

	selection := Selection{
		Characters:  set.entries,
		TargetLevel: level,
	}
	if level == 0 {
		selection.TargetLevel = estimateTargetLevel(candidates)
	}
	return selection, nil
}

// estimateTargetLevel averages the assigned proficiency levels of the
// candidate pool, rounded to the nearest level. Unranked candidates are
// excluded; if none are ranked, the target stays unset.
func estimateTargetLevel(candidates []library.TrackedCharacter) int {
	sum, count := 0, 0
	for _, c := range candidates {
		if c.ProficiencyLevel == 0 {
			continue
		}
		sum += c.ProficiencyLevel
		count++
	}
	if count == 0 {
		return 0
	}
	level := int(math.Round(float64(sum) / float64(count)))
	if level < minProficiencyLevel {
		level = minProficiencyLevel
	}
	if level > maxProficiencyLevel {
		level = maxProficiencyLevel
	}
	return level
}
