package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stockroom/internal/models"
)

type MaterialInput struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  models.Category `json:"category"`
	Unit      models.Unit     `json:"unit"`
	Stock     float64         `json:"stock"`
	MinLevel  float64         `json:"min_level"`
	MaxLevel  float64         `json:"max_level"`
	Location  string          `json:"location"`
	Shelf     string          `json:"shelf"`
	Barcode   string          `json:"barcode"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewMaterialInput returns an input carrying the default thresholds, for
// decoding partial payloads into.
func NewMaterialInput() MaterialInput {
	return MaterialInput{Unit: models.UnitPiece, Category: models.CategoryOther, MinLevel: 5, MaxLevel: 100}
}

func (in *MaterialInput) normalize() error {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Barcode = strings.TrimSpace(in.Barcode)
	switch {
	case in.Code == "":
		return invalid("code", "required")
	case !validCode(in.Code):
		return invalid("code", "must not contain ':' or ';'")
	case in.Name == "":
		return invalid("name", "required")
	case !in.Category.Valid():
		return invalid("category", fmt.Sprintf("unknown category %q", in.Category))
	case !in.Unit.Valid():
		return invalid("unit", fmt.Sprintf("unknown unit %q", in.Unit))
	case in.Stock < 0:
		return invalid("stock", "must not be negative")
	case in.MinLevel < 0 || in.MaxLevel < 0:
		return invalid("min_level", "levels must not be negative")
	case in.UnitPrice.IsNegative():
		return invalid("unit_price", "must not be negative")
	}
	return nil
}

// validCode reports whether code is free of the order line separators.
func validCode(code string) bool { return !strings.ContainsAny(code, ":;") }

func (in MaterialInput) apply(m *models.Material) {
	m.Code = in.Code
	m.Name = in.Name
	m.Category = in.Category
	m.Unit = in.Unit
	m.Stock = in.Stock
	m.MinLevel = in.MinLevel
	m.MaxLevel = in.MaxLevel
	m.Location = in.Location
	m.Shelf = in.Shelf
	m.Barcode = nil
	if in.Barcode != "" {
		b := in.Barcode
		m.Barcode = &b
	}
	m.UnitPrice = in.UnitPrice
}

type MaterialFilter struct {
	Category models.Category
	Status   models.StockStatus
	Search   string
}

func (f MaterialFilter) match(m models.Material) bool {
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(m.Name), q) &&
			!strings.Contains(strings.ToLower(m.Code), q) &&
			!strings.Contains(strings.ToLower(m.BarcodeString()), q) {
			return false
		}
	}
	return true
}

// ListMaterials returns materials in insertion order with status computed.
func (s *Store) ListMaterials(ctx context.Context, f MaterialFilter) ([]models.Material, error) {
	var all []models.Material
	q := s.read(ctx).Order("id asc")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if err := q.Find(&all).Error; err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	out := all[:0]
	for _, m := range all {
		if f.match(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) CriticalMaterials(ctx context.Context) ([]models.Material, error) {
	return s.ListMaterials(ctx, MaterialFilter{Status: models.StockCritical})
}

func (s *Store) GetMaterial(ctx context.Context, code string) (models.Material, error) {
	return getMaterial(s.read(ctx), code)
}

func getMaterial(tx *gorm.DB, code string) (models.Material, error) {
	var m models.Material
	if err := tx.Where("code = ?", code).First(&m).Error; err != nil {
		return m, notFound(err)
	}
	return m, nil
}

// GetMaterialByBarcode matches case-insensitively; the earliest row wins.
func (s *Store) GetMaterialByBarcode(ctx context.Context, barcode string) (models.Material, error) {
	var m models.Material
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return m, ErrNotFound
	}
	err := s.read(ctx).Where("barcode IS NOT NULL AND LOWER(barcode) = LOWER(?)", barcode).Order("id asc").First(&m).Error
	if err != nil {
		return m, notFound(err)
	}
	return m, nil
}

func barcodeTaken(tx *gorm.DB, barcode string, exceptID uint) (bool, error) {
	if barcode == "" {
		return false, nil
	}
	var n int64
	q := tx.Model(&models.Material{}).Where("barcode IS NOT NULL AND LOWER(barcode) = LOWER(?)", barcode)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) CreateMaterial(ctx context.Context, in MaterialInput) (models.Material, error) {
	var m models.Material
	if err := in.normalize(); err != nil {
		return m, err
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		taken, err := exists(tx, &models.Material{}, "code", in.Code)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("material %s: %w", in.Code, ErrDuplicateKey)
		}
		if taken, err = barcodeTaken(tx, in.Barcode, 0); err != nil {
			return err
		} else if taken {
			return fmt.Errorf("barcode %s: %w", in.Barcode, ErrDuplicateKey)
		}
		now := s.now()
		in.apply(&m)
		m.LastUpdated = now
		m.LastCounted = now
		return tx.Create(&m).Error
	})
	if err != nil {
		return models.Material{}, err
	}
	m.Refresh()
	return m, nil
}

// UpdateMaterial replaces every editable field of the material at code.
// The last-count stamp is kept.
func (s *Store) UpdateMaterial(ctx context.Context, code string, in MaterialInput) (models.Material, error) {
	var m models.Material
	if in.Code == "" {
		in.Code = code
	}
	if err := in.normalize(); err != nil {
		return m, err
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		var err error
		if m, err = getMaterial(tx, code); err != nil {
			return err
		}
		if in.Code != code {
			taken, err := exists(tx, &models.Material{}, "code", in.Code)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("material %s: %w", in.Code, ErrDuplicateKey)
			}
		}
		if taken, err := barcodeTaken(tx, in.Barcode, m.ID); err != nil {
			return err
		} else if taken {
			return fmt.Errorf("barcode %s: %w", in.Barcode, ErrDuplicateKey)
		}
		in.apply(&m)
		m.LastUpdated = s.now()
		return tx.Save(&m).Error
	})
	if err != nil {
		return models.Material{}, err
	}
	m.Refresh()
	return m, nil
}

// DeleteMaterial reports false when no material has the code.
func (s *Store) DeleteMaterial(ctx context.Context, code string) (bool, error) {
	var deleted bool
	err := s.write(ctx, func(tx *gorm.DB) error {
		res := tx.Where("code = ?", code).Delete(&models.Material{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}
