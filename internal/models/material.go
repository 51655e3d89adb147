package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Material struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	Code        string          `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Name        string          `gorm:"not null" json:"name"`
	Category    Category        `gorm:"size:32;not null" json:"category"`
	Unit        Unit            `gorm:"size:16;not null" json:"unit"`
	Stock       float64         `gorm:"not null" json:"stock"`
	MinLevel    float64         `gorm:"not null" json:"min_level"`
	MaxLevel    float64         `gorm:"not null" json:"max_level"`
	Location    string          `json:"location"`
	Shelf       string          `json:"shelf"`
	Barcode     *string         `gorm:"uniqueIndex;size:64" json:"barcode,omitempty"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	LastUpdated time.Time       `json:"last_updated"`
	LastCounted time.Time       `json:"last_counted"`

	Status StockStatus `gorm:"-" json:"status"`
}

// StockStatusFor classifies a stock level against its thresholds.
// Critical wins over Excess when the thresholds overlap.
func StockStatusFor(stock, min, max float64) StockStatus {
	switch {
	case stock <= min:
		return StockCritical
	case stock >= max:
		return StockExcess
	default:
		return StockNormal
	}
}

func (m *Material) Refresh() {
	m.Status = StockStatusFor(m.Stock, m.MinLevel, m.MaxLevel)
}

func (m *Material) AfterFind(tx *gorm.DB) error {
	m.Refresh()
	return nil
}

// StockValue is stock × unit price.
func (m Material) StockValue() decimal.Decimal {
	return m.UnitPrice.Mul(decimal.NewFromFloat(m.Stock))
}

func (m Material) BarcodeString() string {
	if m.Barcode == nil {
		return ""
	}
	return *m.Barcode
}

type StockMovement struct {
	ID           uint         `gorm:"primaryKey;autoIncrement" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	MaterialCode string       `gorm:"index;size:64;not null" json:"material_code"`
	Type         MovementType `gorm:"size:8;not null" json:"type"`
	Quantity     float64      `gorm:"not null" json:"quantity"`
	Counterparty string       `json:"counterparty"`
	Description  string       `json:"description"`
	OrderRef     string       `json:"order_ref"`
	Approver     string       `json:"approver"`
}

type Supplier struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	Code          string     `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Name          string     `gorm:"not null" json:"name"`
	ContactPerson string     `json:"contact_person"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	Address       string     `json:"address"`
	Category      string     `json:"category"`
	Rating        float64    `json:"rating"`
	Notes         string     `json:"notes"`
	LastOrderAt   *time.Time `json:"last_order_at,omitempty"`
	OrderCount    int        `json:"order_count"`
	Active        bool       `gorm:"not null" json:"active"`
}
