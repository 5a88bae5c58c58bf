// Package export renders the library as a markdown study sheet, optionally
// converted to PDF.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mandolyte/mdtopdf"

	"github.com/mkawano/kanshu/internal/library"
	"github.com/mkawano/kanshu/internal/srs"
)

// RenderMarkdown builds a study sheet: characters grouped by status, then the
// vocabulary list. Characters within a group keep library order.
func RenderMarkdown(characters []library.TrackedCharacter, vocabulary []library.VocabularyItem, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Study Sheet\n\n")
	b.WriteString(fmt.Sprintf("Generated on %s. %d characters, %d words.\n",
		now.Format("2006-01-02"), len(characters), len(vocabulary)))

	groups := map[srs.Classification][]library.TrackedCharacter{}
	for _, c := range characters {
		class := srs.Classify(c.State(), now)
		groups[class] = append(groups[class], c)
	}

	order := []srs.Classification{
		srs.ClassDue, srs.ClassLeech, srs.ClassNew, srs.ClassLearning, srs.ClassMastered,
	}
	for _, class := range order {
		group := groups[class]
		if len(group) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n## %s (%d)\n\n", titles[class], len(group)))
		b.WriteString("| Character | Level | Streak | Used | Next review |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, c := range group {
			b.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %s |\n",
				c.Character, c.SRSLevel, c.CorrectStreak, c.UsedCount, formatMillis(c.NextReviewAt)))
		}
	}

	if len(vocabulary) > 0 {
		sorted := make([]library.VocabularyItem, len(vocabulary))
		copy(sorted, vocabulary)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Word < sorted[j].Word
		})

		b.WriteString(fmt.Sprintf("\n## Vocabulary (%d)\n\n", len(sorted)))
		b.WriteString("| Word | Reading | Definition |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, item := range sorted {
			b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", item.Word, item.Reading, item.Definition))
		}
	}
	return b.String()
}

var titles = map[srs.Classification]string{
	srs.ClassDue:      "Due for review",
	srs.ClassLeech:    "Leeches",
	srs.ClassNew:      "New",
	srs.ClassLearning: "Learning",
	srs.ClassMastered: "Mastered",
}

func formatMillis(t int64) string {
	if t == 0 {
		return "-"
	}
	return time.UnixMilli(t).Format("2006-01-02")
}

// WriteMarkdown writes the study sheet to path.
func WriteMarkdown(path string, characters []library.TrackedCharacter, vocabulary []library.VocabularyItem, now time.Time) error {
	content := RenderMarkdown(characters, vocabulary, now)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}

// ConvertMarkdownToPDF converts a markdown file to PDF next to the source
// file and returns the PDF path.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"

	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}

	return absPath, nil
}
