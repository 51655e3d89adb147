package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"stockroom/internal/models"
)

const (
	auditValueLimit  = 200
	defaultAuditRows = 100
)

type AuditInput struct {
	Username  string
	Action    string
	Module    string
	RecordKey string
	OldValue  string
	NewValue  string
	IP        string
	Metadata  models.JSONB
}

type AuditFilter struct {
	Module   string
	Username string
	Limit    int
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// AppendAudit records an action. Old and new values are cut to 200
// characters.
func (s *Store) AppendAudit(ctx context.Context, in AuditInput) (models.AuditLog, error) {
	var a models.AuditLog
	if in.Action == "" {
		return a, invalid("action", "required")
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		id, err := s.newKey(tx, &models.AuditLog{}, "log_id", "AUD")
		if err != nil {
			return err
		}
		a = models.AuditLog{
			LogID:     id,
			CreatedAt: s.now(),
			Username:  in.Username,
			Action:    in.Action,
			Module:    in.Module,
			RecordKey: in.RecordKey,
			OldValue:  truncate(in.OldValue, auditValueLimit),
			NewValue:  truncate(in.NewValue, auditValueLimit),
			IP:        in.IP,
			Metadata:  in.Metadata,
		}
		return tx.Create(&a).Error
	})
	if err != nil {
		return models.AuditLog{}, err
	}
	return a, nil
}

// ListAuditLogs returns the newest entries first, 100 unless f.Limit says
// otherwise.
func (s *Store) ListAuditLogs(ctx context.Context, f AuditFilter) ([]models.AuditLog, error) {
	if f.Limit <= 0 {
		f.Limit = defaultAuditRows
	}
	q := s.read(ctx).Order("id desc").Limit(f.Limit)
	if f.Module != "" {
		q = q.Where("module = ?", f.Module)
	}
	if f.Username != "" {
		q = q.Where("username = ?", f.Username)
	}
	var out []models.AuditLog
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return out, nil
}
