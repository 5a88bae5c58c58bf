package library

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ImportConfig describes the workbook layout for a vocabulary import.
// Columns are Excel letters.
type ImportConfig struct {
	SheetName        string
	WordColumn       string
	ReadingColumn    string
	DefinitionColumn string
	LevelColumn      string
	StartRow         int
}

// DefaultImportConfig expects a header row and word/reading/definition/level
// in columns A-D of Sheet1.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SheetName:        "Sheet1",
		WordColumn:       "A",
		ReadingColumn:    "B",
		DefinitionColumn: "C",
		LevelColumn:      "D",
		StartRow:         2,
	}
}

// ImportResult summarizes one import run. Row errors do not abort the run.
type ImportResult struct {
	TotalProcessed  int
	WordsAdded      int
	WordsSkipped    int
	CharactersAdded []string
	Errors          []string
}

// ImportVocabulary reads a vocabulary workbook and promotes each row through
// the store, tracking any new Kanji found in the imported words.
func (s *Store) ImportVocabulary(path string, config ImportConfig, now time.Time) (*ImportResult, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("excelize.OpenFile(%s) > %w", path, err)
	}
	defer func() {
		_ = workbook.Close()
	}()

	rows, err := workbook.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("workbook.GetRows(%s) > %w", config.SheetName, err)
	}

	result := &ImportResult{}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		token := WordToken{
			Word:             cell(row, config.WordColumn),
			Reading:          cell(row, config.ReadingColumn),
			Definition:       cell(row, config.DefinitionColumn),
			ProficiencyLevel: parseLevel(cell(row, config.LevelColumn)),
		}
		if token.Word == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: empty word", i+1))
			continue
		}

		added, newCharacters, err := s.PromoteToken(token, now)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if added {
			result.WordsAdded++
		} else {
			result.WordsSkipped++
		}
		result.CharactersAdded = append(result.CharactersAdded, newCharacters...)
	}
	return result, nil
}

func cell(row []string, column string) string {
	i := columnIndex(column)
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func columnIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

// parseLevel accepts "4" or "N4". Anything else means unranked.
func parseLevel(value string) int {
	value = strings.TrimPrefix(strings.ToUpper(value), "N")
	level, err := strconv.Atoi(value)
	if err != nil || level < 1 || level > 5 {
		return 0
	}
	return level
}
