package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stockroom/internal/models"
)

type BudgetInput struct {
	Year         int             `json:"year"`
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	AnnualLimit  decimal.Decimal `json:"annual_limit"`
	Used         decimal.Decimal `json:"used"`
}

func (in *BudgetInput) normalize() error {
	in.Category = strings.TrimSpace(in.Category)
	switch {
	case in.Year < 2000 || in.Year > 9999:
		return invalid("year", "out of range")
	case in.Category == "":
		return invalid("category", "required")
	case in.AnnualLimit.IsNegative() || in.MonthlyLimit.IsNegative():
		return invalid("annual_limit", "limits must not be negative")
	case in.Used.IsNegative():
		return invalid("used", "must not be negative")
	}
	return nil
}

func (s *Store) CreateBudget(ctx context.Context, in BudgetInput) (models.Budget, error) {
	var b models.Budget
	if err := in.normalize(); err != nil {
		return b, err
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Budget{}).Where("year = ? AND category = ?", in.Year, in.Category).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("budget %d/%s: %w", in.Year, in.Category, ErrDuplicateKey)
		}
		b = models.Budget{
			Year:         in.Year,
			Category:     in.Category,
			MonthlyLimit: in.MonthlyLimit,
			AnnualLimit:  in.AnnualLimit,
			Used:         in.Used,
			Remaining:    in.AnnualLimit.Sub(in.Used),
		}
		return tx.Create(&b).Error
	})
	if err != nil {
		return models.Budget{}, err
	}
	return b, nil
}

// ListBudgets returns every budget row, or only those of year when it is
// non-zero.
func (s *Store) ListBudgets(ctx context.Context, year int) ([]models.Budget, error) {
	q := s.read(ctx).Order("id asc")
	if year != 0 {
		q = q.Where("year = ?", year)
	}
	var out []models.Budget
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return out, nil
}

func (s *Store) GetBudgetSummary(ctx context.Context, year int) (models.BudgetSummary, error) {
	rows, err := s.ListBudgets(ctx, year)
	if err != nil {
		return models.BudgetSummary{}, err
	}
	return Summarize(year, rows), nil
}

// Summarize totals budget rows. UsedRatio is a percentage and is zero
// when nothing is allocated.
func Summarize(year int, rows []models.Budget) models.BudgetSummary {
	sum := models.BudgetSummary{Year: year, Total: decimal.Zero, Used: decimal.Zero, Categories: rows}
	if sum.Categories == nil {
		sum.Categories = []models.Budget{}
	}
	for _, b := range rows {
		sum.Total = sum.Total.Add(b.AnnualLimit)
		sum.Used = sum.Used.Add(b.Used)
	}
	sum.Remaining = sum.Total.Sub(sum.Used)
	if sum.Total.IsPositive() {
		sum.UsedRatio = sum.Used.Mul(decimal.NewFromInt(100)).Div(sum.Total).InexactFloat64()
	}
	return sum
}

// ApplySpend adds amount to the year/category budget and warns the admin
// whenever the remainder is negative afterwards.
func (s *Store) ApplySpend(ctx context.Context, year int, category string, amount decimal.Decimal) (models.Budget, error) {
	var b models.Budget
	if amount.IsNegative() {
		return b, invalid("amount", "must not be negative")
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("year = ? AND category = ?", year, category).First(&b).Error; err != nil {
			return fmt.Errorf("budget %d/%s: %w", year, category, notFound(err))
		}
		b.Used = b.Used.Add(amount)
		b.Remaining = b.AnnualLimit.Sub(b.Used)
		if err := tx.Model(&b).Updates(map[string]any{"used": b.Used, "remaining": b.Remaining}).Error; err != nil {
			return fmt.Errorf("apply spend: %w", err)
		}
		if !b.Remaining.IsNegative() {
			return nil
		}
		_, err := s.notify(tx, NotificationInput{
			Recipient: s.opts.AdminRecipient,
			Type:      models.NotifyBudgetWarning,
			Title:     fmt.Sprintf("%s budget exceeded", category),
			Message:   fmt.Sprintf("%d %s budget is over by %s", year, category, b.Remaining.Neg().StringFixed(2)),
			Link:      "/budget",
		})
		return err
	})
	if err != nil {
		return models.Budget{}, err
	}
	return b, nil
}
