package services

import (
	"fmt"
	"strings"

	"helpdesk-suggestion-engine/models"

	"github.com/xuri/excelize/v2"
)

// BuildKnowledgeWorkbook renders the curated corpus with its feedback
// counters into an Excel workbook for instructor review.
func BuildKnowledgeWorkbook(entries []models.KnowledgeEntry) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := "Knowledge Base"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"ID", "Question", "Answer", "Course Scope", "Tags",
		"Views", "Helpful", "Not Helpful", "Helpfulness %", "Updated"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, entry := range entries {
		values := []interface{}{
			entry.ID.Hex(),
			entry.QuestionText,
			entry.AnswerText,
			entry.CourseScope,
			strings.Join(entry.Tags, ", "),
			entry.ViewCount,
			entry.HelpfulCount,
			entry.NotHelpfulCount,
			fmt.Sprintf("%.1f", entry.HelpfulnessPercent()),
			entry.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
