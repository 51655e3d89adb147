package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPendingApproval OrderStatus = "Pending Approval"
	OrderApproved        OrderStatus = "Approved"
	OrderOrdered         OrderStatus = "Ordered"
	OrderShipping        OrderStatus = "Shipping"
	OrderDelivered       OrderStatus = "Delivered"
	OrderCancelled       OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderPendingApproval, OrderApproved, OrderOrdered,
	OrderShipping, OrderDelivered, OrderCancelled,
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPendingApproval: {OrderApproved, OrderCancelled},
	OrderApproved:        {OrderOrdered, OrderCancelled},
	OrderOrdered:         {OrderShipping, OrderCancelled},
	OrderShipping:        {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool { return validIn(s, OrderStatuses) }

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return validIn(to, orderTransitions[s])
}

type Order struct {
	ID               uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderNo          string          `gorm:"uniqueIndex;size:32;not null" json:"order_no"`
	CreatedAt        time.Time       `json:"created_at"`
	SupplierCode     string          `gorm:"index;size:64" json:"supplier_code"`
	SupplierName     string          `json:"supplier_name"`
	Status           OrderStatus     `gorm:"size:32;not null" json:"status"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	CreatedBy        string          `json:"created_by"`
	ApprovedBy       string          `json:"approved_by"`
	ExpectedDelivery *time.Time      `json:"expected_delivery,omitempty"`
	DeliveredAt      *time.Time      `json:"delivered_at,omitempty"`
	Notes            string          `json:"notes"`
	Lines            []OrderLine     `gorm:"foreignKey:OrderNo;references:OrderNo;constraint:OnDelete:CASCADE" json:"lines"`
}

type OrderLine struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderNo      string          `gorm:"index;size:32;not null" json:"-"`
	Position     int             `gorm:"not null" json:"-"`
	MaterialCode string          `gorm:"size:64;not null" json:"material_code"`
	MaterialName string          `json:"material_name"`
	Quantity     float64         `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"line_total"`
}

// OrderTotal sums quantity × unit price over lines, filling LineTotal.
func OrderTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for i := range lines {
		lines[i].LineTotal = lines[i].UnitPrice.Mul(decimal.NewFromFloat(lines[i].Quantity))
		total = total.Add(lines[i].LineTotal)
	}
	return total
}

type Request struct {
	ID           uint          `gorm:"primaryKey;autoIncrement" json:"-"`
	RequestNo    string        `gorm:"uniqueIndex;size:32;not null" json:"request_no"`
	CreatedAt    time.Time     `json:"created_at"`
	MaterialCode string        `gorm:"size:64" json:"material_code"`
	MaterialName string        `json:"material_name"`
	Quantity     float64       `gorm:"not null" json:"quantity"`
	Priority     Priority      `gorm:"size:16;not null" json:"priority"`
	Requester    string        `gorm:"index;size:64" json:"requester"`
	Department   string        `json:"department"`
	Status       RequestStatus `gorm:"size:16;not null" json:"status"`
	Approver     string        `json:"approver"`
	ApprovedAt   *time.Time    `json:"approved_at,omitempty"`
	RejectReason string        `json:"reject_reason"`
	Description  string        `json:"description"`
}

type Budget struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	Year         int             `gorm:"uniqueIndex:idx_budget_year_category;not null" json:"year"`
	Category     string          `gorm:"uniqueIndex:idx_budget_year_category;size:32;not null" json:"category"`
	MonthlyLimit decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"monthly_limit"`
	AnnualLimit  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"annual_limit"`
	Used         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"used"`
	Remaining    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"remaining"`
}

type BudgetSummary struct {
	Year       int             `json:"year"`
	Total      decimal.Decimal `json:"total"`
	Used       decimal.Decimal `json:"used"`
	Remaining  decimal.Decimal `json:"remaining"`
	UsedRatio  float64         `json:"used_ratio"`
	Categories []Budget        `json:"categories"`
}

type Notification struct {
	ID             uint             `gorm:"primaryKey;autoIncrement" json:"-"`
	NotificationID string           `gorm:"uniqueIndex;size:32;not null" json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	Recipient      string           `gorm:"index;size:64;not null" json:"recipient"`
	Type           NotificationType `gorm:"size:32;not null" json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Link           string           `json:"link"`
	Read           bool             `gorm:"not null" json:"read"`
}

// Broadcast is the recipient that every user sees.
const Broadcast = "all"
