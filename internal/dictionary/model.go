// Package dictionary looks up readings and glosses for characters and words.
package dictionary

import "errors"

// ErrNotFound reports that the dictionary has no entry for the expression.
// Callers insert the entry anyway, with the rank left unset.
var ErrNotFound = errors.New("dictionary: entry not found")

// Entry is one dictionary result. Level is a JLPT-style rank (1 = hardest,
// 5 = easiest, 0 = unknown).
type Entry struct {
	Word       string
	Reading    string
	Definition string
	Level      int
}

// searchResponse mirrors the Jisho word-search API payload.
type searchResponse struct {
	Data []struct {
		Slug     string `json:"slug"`
		Japanese []struct {
			Word    string `json:"word"`
			Reading string `json:"reading"`
		} `json:"japanese"`
		Senses []struct {
			EnglishDefinitions []string `json:"english_definitions"`
		} `json:"senses"`
		JLPT []string `json:"jlpt"`
	} `json:"data"`
}
