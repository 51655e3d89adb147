package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"stockroom/internal/models"
)

type LocationInput struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Manager string `json:"manager"`
	Phone   string `json:"phone"`
}

func (s *Store) ListLocations(ctx context.Context) ([]models.Location, error) {
	var out []models.Location
	if err := s.read(ctx).Order("id asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return out, nil
}

func (s *Store) CreateLocation(ctx context.Context, in LocationInput) (models.Location, error) {
	var l models.Location
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return l, invalid("name", "required")
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		if in.Code == "" {
			var n int64
			if err := tx.Model(&models.Location{}).Count(&n).Error; err != nil {
				return err
			}
			in.Code = fmt.Sprintf("LOK%03d", n+1)
		}
		taken, err := exists(tx, &models.Location{}, "code", in.Code)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("location %s: %w", in.Code, ErrDuplicateKey)
		}
		l = models.Location{
			Code:    in.Code,
			Name:    in.Name,
			Address: in.Address,
			Manager: in.Manager,
			Phone:   in.Phone,
			Active:  true,
		}
		return tx.Create(&l).Error
	})
	if err != nil {
		return models.Location{}, err
	}
	return l, nil
}

func (s *Store) DeleteLocation(ctx context.Context, code string) (bool, error) {
	var deleted bool
	err := s.write(ctx, func(tx *gorm.DB) error {
		res := tx.Where("code = ?", code).Delete(&models.Location{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}
