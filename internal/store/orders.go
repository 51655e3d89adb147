package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stockroom/internal/models"
)

type LineInput struct {
	MaterialCode string          `json:"material_code"`
	MaterialName string          `json:"material_name"`
	Quantity     float64         `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

type OrderInput struct {
	SupplierCode     string      `json:"supplier_code"`
	SupplierName     string      `json:"supplier_name"`
	Lines            []LineInput `json:"lines"`
	CreatedBy        string      `json:"created_by"`
	ExpectedDelivery *time.Time  `json:"expected_delivery,omitempty"`
	Notes            string      `json:"notes"`
}

func (in *OrderInput) normalize() error {
	in.SupplierCode = strings.TrimSpace(in.SupplierCode)
	if len(in.Lines) == 0 {
		return invalid("lines", "at least one line is required")
	}
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		switch {
		case strings.TrimSpace(l.MaterialCode) == "":
			return invalid(field, "material_code required")
		case !validCode(l.MaterialCode):
			return invalid(field, "material_code must not contain ':' or ';'")
		case l.Quantity <= 0:
			return invalid(field, "quantity must be greater than zero")
		case l.UnitPrice.IsNegative():
			return invalid(field, "unit_price must not be negative")
		}
	}
	return nil
}

type OrderFilter struct {
	Status       models.OrderStatus
	SupplierCode string
}

// CreateOrder stores a new order awaiting approval. When the supplier is
// known its order statistics are bumped in the same transaction.
func (s *Store) CreateOrder(ctx context.Context, in OrderInput) (models.Order, error) {
	var o models.Order
	if err := in.normalize(); err != nil {
		return o, err
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		no, err := s.newKey(tx, &models.Order{}, "order_no", "ORD")
		if err != nil {
			return err
		}
		now := s.now()
		lines := make([]models.OrderLine, len(in.Lines))
		for i, l := range in.Lines {
			lines[i] = models.OrderLine{
				OrderNo:      no,
				Position:     i,
				MaterialCode: strings.TrimSpace(l.MaterialCode),
				MaterialName: l.MaterialName,
				Quantity:     l.Quantity,
				UnitPrice:    l.UnitPrice,
			}
		}
		o = models.Order{
			OrderNo:          no,
			CreatedAt:        now,
			SupplierCode:     in.SupplierCode,
			SupplierName:     in.SupplierName,
			Status:           models.OrderPendingApproval,
			TotalAmount:      models.OrderTotal(lines),
			CreatedBy:        in.CreatedBy,
			ExpectedDelivery: in.ExpectedDelivery,
			Notes:            in.Notes,
			Lines:            lines,
		}
		if err := tx.Create(&o).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if in.SupplierCode == "" {
			return nil
		}
		res := tx.Model(&models.Supplier{}).Where("code = ?", in.SupplierCode).Updates(map[string]any{
			"last_order_at": now,
			"order_count":   gorm.Expr("order_count + 1"),
		})
		return res.Error
	})
	if err != nil {
		return models.Order{}, err
	}
	s.lg.Infow("order created", "order_no", o.OrderNo, "supplier", o.SupplierCode, "total", o.TotalAmount.String())
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, orderNo string) (models.Order, error) {
	return getOrder(s.read(ctx), orderNo)
}

func getOrder(tx *gorm.DB, orderNo string) (models.Order, error) {
	var o models.Order
	err := tx.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("order_no = ?", orderNo).First(&o).Error
	if err != nil {
		return o, notFound(err)
	}
	return o, nil
}

// ListOrders returns orders newest first with their lines.
func (s *Store) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := s.read(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).Order("id desc")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SupplierCode != "" {
		q = q.Where("supplier_code = ?", f.SupplierCode)
	}
	var out []models.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// UpdateOrderStatus moves the order to status. Setting the current status
// again is a no-op that still succeeds. approver is recorded only on the
// move to Approved.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderNo string, status models.OrderStatus, approver string) (models.Order, error) {
	var o models.Order
	if !status.Valid() {
		return o, invalid("status", fmt.Sprintf("unknown order status %q", status))
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		var err error
		if o, err = getOrder(tx, orderNo); err != nil {
			return err
		}
		if o.Status == status {
			return nil
		}
		if s.opts.StrictOrderTransitions && !o.Status.CanTransition(status) {
			return fmt.Errorf("order %s %s -> %s: %w", orderNo, o.Status, status, ErrInvalidTransition)
		}
		updates := map[string]any{"status": status}
		if status == models.OrderApproved && approver != "" {
			updates["approved_by"] = approver
			o.ApprovedBy = approver
		}
		if status == models.OrderDelivered {
			now := s.now()
			updates["delivered_at"] = now
			o.DeliveredAt = &now
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", o.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		o.Status = status
		if o.CreatedBy == "" {
			return nil
		}
		_, err = s.notify(tx, NotificationInput{
			Recipient: o.CreatedBy,
			Type:      models.NotifyOrderUpdate,
			Title:     fmt.Sprintf("Order %s is now %s", o.OrderNo, status),
			Message:   fmt.Sprintf("Supplier: %s, Total: %s", o.SupplierName, o.TotalAmount.StringFixed(2)),
			Link:      "/orders",
		})
		return err
	})
	if err != nil {
		return models.Order{}, err
	}
	return o, nil
}
