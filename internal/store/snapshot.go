package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockroom/internal/models"
)

// Snapshot is a full copy of every table, in insertion order.
type Snapshot struct {
	Materials     []models.Material
	Movements     []models.StockMovement
	Suppliers     []models.Supplier
	Orders        []models.Order
	Requests      []models.Request
	Budgets       []models.Budget
	Notifications []models.Notification
	Users         []models.User
	AuditLogs     []models.AuditLog
	Locations     []models.Location
	StockCounts   []models.StockCount
}

func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	db := s.read(ctx).Order("id asc").Session(&gorm.Session{})
	for name, dst := range map[string]any{
		"materials":     &snap.Materials,
		"movements":     &snap.Movements,
		"suppliers":     &snap.Suppliers,
		"requests":      &snap.Requests,
		"budgets":       &snap.Budgets,
		"notifications": &snap.Notifications,
		"users":         &snap.Users,
		"audit logs":    &snap.AuditLogs,
		"locations":     &snap.Locations,
		"stock counts":  &snap.StockCounts,
	} {
		if err := db.Find(dst).Error; err != nil {
			return Snapshot{}, fmt.Errorf("snapshot %s: %w", name, err)
		}
	}
	err := db.Preload("Lines", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") }).Find(&snap.Orders).Error
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot orders: %w", err)
	}
	return snap, nil
}

// Restore inserts every row of snap whose key is not already stored and
// reports the number of inserted rows per table. Movements are keyed by
// material, time, type and quantity since they carry no key of their own.
func (s *Store) Restore(ctx context.Context, snap Snapshot) (map[string]int, error) {
	counts := map[string]int{}
	err := s.write(ctx, func(tx *gorm.DB) error {
		run := func(name string, n int, err error) error {
			if err != nil {
				return fmt.Errorf("restore %s: %w", name, err)
			}
			counts[name] = n
			return nil
		}
		n, err := restoreKeyed(tx, snap.Users, "username", func(u models.User) any { return u.Username })
		if err := run("users", n, err); err != nil {
			return err
		}
		n, err = restoreKeyed(tx, snap.Materials, "code", func(m models.Material) any { return m.Code })
		if err := run("materials", n, err); err != nil {
			return err
		}
		n, err = restoreKeyed(tx, snap.Suppliers, "code", func(sp models.Supplier) any { return sp.Code })
		if err := run("suppliers", n, err); err != nil {
			return err
		}
		n, err = restoreOrders(tx, snap.Orders)
		if err := run("orders", n, err); err != nil {
			return err
		}
		n, err = restoreKeyed(tx, snap.Requests, "request_no", func(r models.Request) any { return r.RequestNo })
		if err := run("requests", n, err); err != nil {
			return err
		}
		n, err = restoreBudgets(tx, snap.Budgets)
		if err := run("budgets", n, err); err != nil {
			return err
		}
		n, err = restoreKeyed(tx, snap.Notifications, "notification_id", func(nt models.Notification) any { return nt.NotificationID })
		if err := run("notifications", n, err); err != nil {
			return err
		}
		n, err = restoreKeyed(tx, snap.AuditLogs, "log_id", func(a models.AuditLog) any { return a.LogID })
		if err := run("audit_logs", n, err); err != nil {
			return err
		}
		n, err = restoreKeyed(tx, snap.Locations, "code", func(l models.Location) any { return l.Code })
		if err := run("locations", n, err); err != nil {
			return err
		}
		n, err = restoreKeyed(tx, snap.StockCounts, "count_no", func(c models.StockCount) any { return c.CountNo })
		if err := run("stock_counts", n, err); err != nil {
			return err
		}
		n, err = restoreMovements(tx, snap.Movements)
		return run("movements", n, err)
	})
	if err != nil {
		return nil, err
	}
	s.lg.Infow("snapshot restored", "counts", counts)
	return counts, nil
}

func restoreKeyed[T any](tx *gorm.DB, rows []T, column string, key func(T) any) (int, error) {
	n := 0
	for _, row := range rows {
		var model T
		taken, err := exists(tx, &model, column, key(row))
		if err != nil {
			return n, err
		}
		if taken {
			continue
		}
		if err := tx.Omit("id").Create(&row).Error; err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func restoreOrders(tx *gorm.DB, orders []models.Order) (int, error) {
	n := 0
	for _, o := range orders {
		taken, err := exists(tx, &models.Order{}, "order_no", o.OrderNo)
		if err != nil {
			return n, err
		}
		if taken {
			continue
		}
		o.ID = 0
		for i := range o.Lines {
			o.Lines[i].ID = 0
			o.Lines[i].OrderNo = o.OrderNo
			o.Lines[i].Position = i
		}
		if err := tx.Omit(clause.Associations).Create(&o).Error; err != nil {
			return n, err
		}
		if len(o.Lines) > 0 {
			if err := tx.Create(&o.Lines).Error; err != nil {
				return n, err
			}
		}
		n++
	}
	return n, nil
}

func restoreBudgets(tx *gorm.DB, budgets []models.Budget) (int, error) {
	n := 0
	for _, b := range budgets {
		var c int64
		if err := tx.Model(&models.Budget{}).Where("year = ? AND category = ?", b.Year, b.Category).Count(&c).Error; err != nil {
			return n, err
		}
		if c > 0 {
			continue
		}
		b.ID = 0
		if err := tx.Create(&b).Error; err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func restoreMovements(tx *gorm.DB, movements []models.StockMovement) (int, error) {
	n := 0
	for _, mv := range movements {
		var c int64
		err := tx.Model(&models.StockMovement{}).
			Where("material_code = ? AND created_at = ? AND type = ? AND quantity = ?", mv.MaterialCode, mv.CreatedAt, mv.Type, mv.Quantity).
			Count(&c).Error
		if err != nil {
			return n, err
		}
		if c > 0 {
			continue
		}
		mv.ID = 0
		if err := tx.Create(&mv).Error; err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
