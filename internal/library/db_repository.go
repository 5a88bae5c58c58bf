package library

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DBRepository persists the library in MySQL. Saves replace the whole
// collection inside one transaction to keep snapshot semantics.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

type characterRow struct {
	Position int `db:"position"`
	TrackedCharacter
}

// LoadCharacters returns all tracked characters in insertion order.
func (r *DBRepository) LoadCharacters() ([]TrackedCharacter, error) {
	var rows []characterRow
	if err := r.db.Select(&rows, "SELECT * FROM tracked_characters ORDER BY position"); err != nil {
		return nil, fmt.Errorf("db.Select(tracked_characters) > %w", err)
	}
	characters := make([]TrackedCharacter, 0, len(rows))
	for _, row := range rows {
		characters = append(characters, row.TrackedCharacter)
	}
	return characters, nil
}

// SaveCharacters replaces the character snapshot.
func (r *DBRepository) SaveCharacters(characters []TrackedCharacter) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("db.Beginx() > %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec("DELETE FROM tracked_characters"); err != nil {
		return fmt.Errorf("tx.Exec(delete tracked_characters) > %w", err)
	}
	for i, c := range characters {
		if _, err := tx.Exec(
			"INSERT INTO tracked_characters (position, `character`, added_at, last_used_at, last_reviewed_at, next_review_at, used_count, proficiency_level, srs_level, correct_streak) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			i, c.Character, c.AddedAt, c.LastUsedAt, c.LastReviewedAt, c.NextReviewAt,
			c.UsedCount, c.ProficiencyLevel, c.SRSLevel, c.CorrectStreak); err != nil {
			return fmt.Errorf("tx.Exec(insert tracked_character %s) > %w", c.Character, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}

type vocabularyRow struct {
	Position int `db:"position"`
	VocabularyItem
}

// LoadVocabulary returns all vocabulary items in insertion order.
func (r *DBRepository) LoadVocabulary() ([]VocabularyItem, error) {
	var rows []vocabularyRow
	if err := r.db.Select(&rows, "SELECT * FROM vocabulary_items ORDER BY position"); err != nil {
		return nil, fmt.Errorf("db.Select(vocabulary_items) > %w", err)
	}
	items := make([]VocabularyItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.VocabularyItem)
	}
	return items, nil
}

// SaveVocabulary replaces the vocabulary snapshot.
func (r *DBRepository) SaveVocabulary(items []VocabularyItem) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("db.Beginx() > %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec("DELETE FROM vocabulary_items"); err != nil {
		return fmt.Errorf("tx.Exec(delete vocabulary_items) > %w", err)
	}
	for i, item := range items {
		if _, err := tx.Exec(
			"INSERT INTO vocabulary_items (position, word, reading, definition, added_at) VALUES (?, ?, ?, ?, ?)",
			i, item.Word, item.Reading, item.Definition, item.AddedAt); err != nil {
			return fmt.Errorf("tx.Exec(insert vocabulary_item %s) > %w", item.Word, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}
