package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeTestWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	workbook := excelize.NewFile()
	defer func() {
		_ = workbook.Close()
	}()

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, workbook.SetSheetRow("Sheet1", cellName, &row))
	}

	path := filepath.Join(t.TempDir(), "vocabulary.xlsx")
	require.NoError(t, workbook.SaveAs(path))
	return path
}

func TestStoreImportVocabulary(t *testing.T) {
	store := newTestStore(t)
	path := writeTestWorkbook(t, [][]any{
		{"word", "reading", "definition", "level"},
		{"火山", "かざん", "volcano", "N4"},
		{"水着", "みずぎ", "swimsuit", "3"},
		{"", "よみ", "skipped", ""},
		{"火山", "かざん", "volcano again", ""},
	})

	result, err := store.ImportVocabulary(path, DefaultImportConfig(), testNow)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 2, result.WordsAdded)
	// The duplicate of 火山 is skipped, not an error.
	assert.Equal(t, 1, result.WordsSkipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "empty word")
	assert.Equal(t, []string{"火", "山", "水", "着"}, result.CharactersAdded)

	require.Len(t, store.Vocabulary(), 2)
	volcano, ok := store.Character("山")
	require.True(t, ok)
	assert.Equal(t, 4, volcano.ProficiencyLevel)
	swimsuit, ok := store.Character("着")
	require.True(t, ok)
	assert.Equal(t, 3, swimsuit.ProficiencyLevel)
}

func TestStoreImportVocabularyMissingFile(t *testing.T) {
	store := newTestStore(t)
	_, err := store.ImportVocabulary(filepath.Join(t.TempDir(), "missing.xlsx"), DefaultImportConfig(), testNow)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{value: "N4", want: 4},
		{value: "3", want: 3},
		{value: "n1", want: 1},
		{value: "", want: 0},
		{value: "9", want: 0},
		{value: "hard", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.value))
		})
	}
}
