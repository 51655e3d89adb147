package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"stockroom/internal/models"
)

type RequestInput struct {
	MaterialCode string          `json:"material_code"`
	MaterialName string          `json:"material_name"`
	Quantity     float64         `json:"quantity"`
	Priority     models.Priority `json:"priority"`
	Requester    string          `json:"requester"`
	Department   string          `json:"department"`
	Description  string          `json:"description"`
}

func (in *RequestInput) normalize() error {
	in.MaterialCode = strings.TrimSpace(in.MaterialCode)
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}
	switch {
	case in.MaterialCode == "" && strings.TrimSpace(in.MaterialName) == "":
		return invalid("material_code", "material code or name required")
	case in.Quantity <= 0:
		return invalid("quantity", "must be greater than zero")
	case !in.Priority.Valid():
		return invalid("priority", fmt.Sprintf("unknown priority %q", in.Priority))
	case strings.TrimSpace(in.Requester) == "":
		return invalid("requester", "required")
	}
	return nil
}

type RequestFilter struct {
	Status     models.RequestStatus
	Department string
	Requester  string
}

// CreateRequest files a pending request and notifies the manager.
func (s *Store) CreateRequest(ctx context.Context, in RequestInput) (models.Request, error) {
	var r models.Request
	if err := in.normalize(); err != nil {
		return r, err
	}
	err := s.write(ctx, func(tx *gorm.DB) error {
		if in.MaterialName == "" {
			if m, err := getMaterial(tx, in.MaterialCode); err == nil {
				in.MaterialName = m.Name
			}
		}
		no, err := s.newKey(tx, &models.Request{}, "request_no", "REQ")
		if err != nil {
			return err
		}
		r = models.Request{
			RequestNo:    no,
			CreatedAt:    s.now(),
			MaterialCode: in.MaterialCode,
			MaterialName: in.MaterialName,
			Quantity:     in.Quantity,
			Priority:     in.Priority,
			Requester:    in.Requester,
			Department:   in.Department,
			Status:       models.RequestPending,
			Description:  in.Description,
		}
		if err := tx.Create(&r).Error; err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		_, err = s.notify(tx, NotificationInput{
			Recipient: s.opts.ManagerRecipient,
			Type:      models.NotifySystem,
			Title:     fmt.Sprintf("New material request from %s", r.Requester),
			Message:   fmt.Sprintf("%s x %s (%s)", r.MaterialName, formatQty(r.Quantity), r.Priority),
			Link:      "/requests",
		})
		return err
	})
	if err != nil {
		return models.Request{}, err
	}
	return r, nil
}

func (s *Store) GetRequest(ctx context.Context, no string) (models.Request, error) {
	return getRequest(s.read(ctx), no)
}

func getRequest(tx *gorm.DB, no string) (models.Request, error) {
	var r models.Request
	if err := tx.Where("request_no = ?", no).First(&r).Error; err != nil {
		return r, notFound(err)
	}
	return r, nil
}

// ListRequests returns requests newest first.
func (s *Store) ListRequests(ctx context.Context, f RequestFilter) ([]models.Request, error) {
	q := s.read(ctx).Order("id desc")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Department != "" {
		q = q.Where("department = ?", f.Department)
	}
	if f.Requester != "" {
		q = q.Where("requester = ?", f.Requester)
	}
	var out []models.Request
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

func (s *Store) ListPendingRequests(ctx context.Context) ([]models.Request, error) {
	return s.ListRequests(ctx, RequestFilter{Status: models.RequestPending})
}

func (s *Store) ApproveRequest(ctx context.Context, no, approver string) (models.Request, error) {
	return s.decideRequest(ctx, no, approver, models.RequestApproved, "")
}

func (s *Store) RejectRequest(ctx context.Context, no, approver, reason string) (models.Request, error) {
	return s.decideRequest(ctx, no, approver, models.RequestRejected, reason)
}

func (s *Store) decideRequest(ctx context.Context, no, approver string, to models.RequestStatus, reason string) (models.Request, error) {
	var r models.Request
	err := s.write(ctx, func(tx *gorm.DB) error {
		var err error
		if r, err = getRequest(tx, no); err != nil {
			return err
		}
		if r.Status != models.RequestPending {
			return fmt.Errorf("request %s is %s: %w", no, r.Status, ErrInvalidTransition)
		}
		now := s.now()
		r.Status = to
		r.Approver = approver
		r.ApprovedAt = &now
		r.RejectReason = reason
		if err := tx.Save(&r).Error; err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		n := NotificationInput{Recipient: r.Requester, Link: "/requests"}
		if to == models.RequestApproved {
			n.Type = models.NotifyRequestApproved
			n.Title = "Your request was approved"
			n.Message = fmt.Sprintf("%s x %s approved by %s", r.MaterialName, formatQty(r.Quantity), approver)
		} else {
			n.Type = models.NotifyRequestRejected
			n.Title = "Your request was rejected"
			n.Message = fmt.Sprintf("%s x %s rejected by %s. Reason: %s", r.MaterialName, formatQty(r.Quantity), approver, reason)
		}
		_, err = s.notify(tx, n)
		return err
	})
	if err != nil {
		return models.Request{}, err
	}
	return r, nil
}

// CompleteRequest marks an approved request as handed out.
func (s *Store) CompleteRequest(ctx context.Context, no string) (models.Request, error) {
	var r models.Request
	err := s.write(ctx, func(tx *gorm.DB) error {
		var err error
		if r, err = getRequest(tx, no); err != nil {
			return err
		}
		if r.Status != models.RequestApproved {
			return fmt.Errorf("request %s is %s: %w", no, r.Status, ErrInvalidTransition)
		}
		r.Status = models.RequestCompleted
		return tx.Model(&models.Request{}).Where("id = ?", r.ID).Update("status", r.Status).Error
	})
	if err != nil {
		return models.Request{}, err
	}
	return r, nil
}
