package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"stockroom/internal/models"
)

type StockCountInput struct {
	Location    string `json:"location"`
	Category    string `json:"category"`
	CreatedBy   string `json:"created_by"`
	Description string `json:"description"`
}

func (s *Store) ListStockCounts(ctx context.Context) ([]models.StockCount, error) {
	var out []models.StockCount
	if err := s.read(ctx).Order("id desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list stock counts: %w", err)
	}
	return out, nil
}

// CreateStockCount plans a count over the materials at Location and in
// Category; an empty field matches everything.
func (s *Store) CreateStockCount(ctx context.Context, in StockCountInput) (models.StockCount, error) {
	var c models.StockCount
	err := s.write(ctx, func(tx *gorm.DB) error {
		no, err := s.newKey(tx, &models.StockCount{}, "count_no", "CNT")
		if err != nil {
			return err
		}
		c = models.StockCount{
			CountNo:     no,
			CreatedAt:   s.now(),
			Location:    in.Location,
			Category:    in.Category,
			Status:      models.CountPlanned,
			CreatedBy:   in.CreatedBy,
			Description: in.Description,
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return models.StockCount{}, err
	}
	return c, nil
}

// CompleteStockCount closes the count and stamps the last-counted time of
// every material it covers.
func (s *Store) CompleteStockCount(ctx context.Context, no, completedBy string) (models.StockCount, error) {
	var c models.StockCount
	err := s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("count_no = ?", no).First(&c).Error; err != nil {
			return notFound(err)
		}
		if c.Status == models.CountCompleted {
			return fmt.Errorf("stock count %s: %w", no, ErrInvalidTransition)
		}
		now := s.now()
		c.Status = models.CountCompleted
		c.CompletedBy = completedBy
		c.CompletedAt = &now
		if err := tx.Save(&c).Error; err != nil {
			return err
		}
		q := tx.Model(&models.Material{}).Where("1 = 1")
		if c.Location != "" {
			q = q.Where("location = ?", c.Location)
		}
		if c.Category != "" {
			q = q.Where("category = ?", c.Category)
		}
		return q.Update("last_counted", now).Error
	})
	if err != nil {
		return models.StockCount{}, err
	}
	return c, nil
}
