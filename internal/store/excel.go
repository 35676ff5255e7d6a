// Package store persists qualified leads: an idempotent upsert into the
// document store and a fingerprint-deduplicated merge into a spreadsheet.
package store

import (
	"errors"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

const sheetName = "Leads"

var headers = []string{
	"Name", "Phone", "Address", "Category", "Website", "Email", "Description",
	"Rating", "Rating Count", "Source", "Relevant", "Clean Category", "Summary",
}

// ReadRows loads previously persisted leads from the spreadsheet. A missing
// file is an empty destination, not an error.
func ReadRows(path string) ([]*models.Lead, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	sheet := sheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	var leads []*models.Lead
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		l := fromRow(row)
		if l.Name == "" {
			continue
		}
		leads = append(leads, l)
	}
	return leads, nil
}

// MergeRows merges a batch into the destination file keyed by fingerprint:
// rows already present are skipped, the combined set is rewritten in full.
// Running the same batch twice appends it exactly once.
func MergeRows(path string, incoming []*models.Lead) (appended, skipped int, err error) {
	existing, err := ReadRows(path)
	if err != nil {
		return 0, 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		seen[l.Fingerprint()] = true
	}

	combined := existing
	for _, l := range incoming {
		fp := l.Fingerprint()
		if seen[fp] {
			skipped++
			continue
		}
		seen[fp] = true
		combined = append(combined, l)
		appended++
	}

	if err := writeRows(path, combined); err != nil {
		return 0, 0, err
	}
	return appended, skipped, nil
}

func writeRows(path string, leads []*models.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return err
	}
	for i, l := range leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := toRow(l)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func toRow(l *models.Lead) []any {
	return []any{
		l.Name, l.Phone, l.Address, l.Category, l.Website, l.Email, l.Description,
		strconv.FormatFloat(l.Rating, 'f', -1, 64), l.RatingCount, string(l.Source),
		strconv.FormatBool(l.IsRelevant), l.CleanCategory, l.Summary,
	}
}

func fromRow(row []string) *models.Lead {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	rating, _ := strconv.ParseFloat(get(7), 64)
	relevant, _ := strconv.ParseBool(get(10))
	return &models.Lead{
		Name:          get(0),
		Phone:         get(1),
		Address:       get(2),
		Category:      get(3),
		Website:       get(4),
		Email:         get(5),
		Description:   get(6),
		Rating:        rating,
		RatingCount:   get(8),
		Source:        models.Source(get(9)),
		IsRelevant:    relevant,
		CleanCategory: get(11),
		Summary:       get(12),
	}
}
