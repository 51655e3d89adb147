package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"stockroom/internal/models"
)

type SupplierInput struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	ContactPerson string  `json:"contact_person"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email"`
	Address       string  `json:"address"`
	Category      string  `json:"category"`
	Rating        float64 `json:"rating"`
	Notes         string  `json:"notes"`
	Active        *bool   `json:"active,omitempty"`
}

// NewSupplierInput returns an input carrying the default rating.
func NewSupplierInput() SupplierInput { return SupplierInput{Rating: 5.0} }

func (in *SupplierInput) normalize() error {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Code == "":
		return invalid("code", "required")
	case in.Name == "":
		return invalid("name", "required")
	case in.Rating < 0 || in.Rating > 5:
		return invalid("rating", "must be between 0 and 5")
	}
	return nil
}

func (in SupplierInput) apply(sp *models.Supplier) {
	sp.Code = in.Code
	sp.Name = in.Name
	sp.ContactPerson = in.ContactPerson
	sp.Phone = in.Phone
	sp.Email = in.Email
	sp.Address = in.Address
	sp.Category = in.Category
	sp.Rating = in.Rating
	sp.Notes = in.Notes
	if in.Active != nil {
		sp.Active = *in.Active
	}
}

type SupplierFilter struct {
	Category string
	Active   *bool
}

func (s *Store) ListSuppliers(ctx context.Context, f SupplierFilter) ([]models.Supplier, error) {
	q := s.read(ctx).Order("id asc")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	var out []models.Supplier
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return out, nil
}

func (s *Store) GetSupplier(ctx context.Context, code string) (models.Supplier, error) {
	return getSupplier(s.read(ctx), code)
}

func getSupplier(tx *gorm.DB, code string) (models.Supplier, error) {
	var sp models.Supplier
	if err := tx.Where("code = ?", code).First(&sp).Error; err != nil {
		return sp, notFound(err)
	}
	return sp, nil
}

func (s *Store) CreateSupplier(ctx context.Context, in SupplierInput) (models.Supplier, error) {
	var sp models.Supplier
	if err := in.normalize(); err != nil {
		return sp, err
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		taken, err := exists(tx, &models.Supplier{}, "code", in.Code)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("supplier %s: %w", in.Code, ErrDuplicateKey)
		}
		sp.Active = true
		in.apply(&sp)
		return tx.Create(&sp).Error
	})
	if err != nil {
		return models.Supplier{}, err
	}
	return sp, nil
}

// UpdateSupplier replaces the editable fields. Order statistics are kept,
// and the active flag only changes when the input sets it.
func (s *Store) UpdateSupplier(ctx context.Context, code string, in SupplierInput) (models.Supplier, error) {
	var sp models.Supplier
	if in.Code == "" {
		in.Code = code
	}
	if err := in.normalize(); err != nil {
		return sp, err
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		var err error
		if sp, err = getSupplier(tx, code); err != nil {
			return err
		}
		if in.Code != code {
			taken, err := exists(tx, &models.Supplier{}, "code", in.Code)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("supplier %s: %w", in.Code, ErrDuplicateKey)
			}
		}
		in.apply(&sp)
		return tx.Save(&sp).Error
	})
	if err != nil {
		return models.Supplier{}, err
	}
	return sp, nil
}

func (s *Store) DeleteSupplier(ctx context.Context, code string) (bool, error) {
	var deleted bool
	err := s.write(ctx, func(tx *gorm.DB) error {
		res := tx.Where("code = ?", code).Delete(&models.Supplier{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}
