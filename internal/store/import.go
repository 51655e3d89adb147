package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"stockroom/internal/models"
)

const skippedSample = 10

// ImportRow is one parsed line of a bulk import workbook.
type ImportRow struct {
	Name     string
	Quantity float64
	Unit     models.Unit
	Category models.Category
}

type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Sample   []string `json:"skipped_sample"`
}

// ImportMaterials inserts rows as new materials in one transaction. A row
// whose folded name matches an existing material or an earlier row is
// skipped; fold defaults to strings.ToLower.
func (s *Store) ImportMaterials(ctx context.Context, rows []ImportRow, fold func(string) string) (ImportResult, error) {
	res := ImportResult{Sample: []string{}}
	if fold == nil {
		fold = strings.ToLower
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		var names []string
		if err := tx.Model(&models.Material{}).Pluck("name", &names).Error; err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(names)+len(rows))
		for _, n := range names {
			seen[fold(strings.TrimSpace(n))] = struct{}{}
		}
		now := s.now()
		for _, r := range rows {
			name := strings.TrimSpace(r.Name)
			if name == "" {
				continue
			}
			key := fold(name)
			if _, dup := seen[key]; dup {
				res.Skipped++
				if len(res.Sample) < skippedSample {
					res.Sample = append(res.Sample, name)
				}
				continue
			}
			seen[key] = struct{}{}
			code, err := s.newKey(tx, &models.Material{}, "code", "MAT")
			if err != nil {
				return err
			}
			m := importedMaterial(code, name, r)
			m.LastUpdated = now
			m.LastCounted = now
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	s.lg.Infow("materials imported", "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

func importedMaterial(code, name string, r ImportRow) models.Material {
	m := models.Material{
		Code:     code,
		Name:     name,
		Category: r.Category,
		Unit:     r.Unit,
		Stock:    max(r.Quantity, 0),
		MinLevel: 5,
		MaxLevel: 100,
		Location: "Depo",
		Shelf:    "A-1",
	}
	if m.Unit == "" {
		m.Unit = models.UnitPiece
	}
	if m.Category == "" {
		m.Category = models.CategoryCleaning
	}
	if r.Quantity > 0 {
		m.MaxLevel = r.Quantity * 3
	}
	return m
}
