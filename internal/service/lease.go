package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/event"
	"github.com/rentdesk/rentdesk/internal/model"
)

// LeaseService owns the lease lifecycle. Assigning a tenant, the room
// status flip, and the first rent invoice happen in one transaction.
type LeaseService struct {
	db  *gorm.DB
	rec event.Recorder
}

// CreateLeaseInput describes a tenant assignment.
type CreateLeaseInput struct {
	TenantID    uint
	RoomID      uint
	StartDate   time.Time
	MonthlyRent decimal.Decimal
	Deposit     decimal.Decimal
	BillingDay  int
}

// Create assigns a tenant to a room. Occupancy is decided by the lease
// table, not the room status field, so a stale status cannot block or
// permit an assignment. The room flips to occupied and a rent invoice for
// the start month is created atomically; the partial unique index on
// active leases catches concurrent assignments.
func (s *LeaseService) Create(ctx context.Context, in CreateLeaseInput) (*model.Lease, error) {
	if !in.MonthlyRent.IsPositive() {
		return nil, Invalid("monthly rent must be positive")
	}
	if in.Deposit.IsNegative() {
		return nil, Invalid("deposit cannot be negative")
	}
	if in.BillingDay < 1 || in.BillingDay > 28 {
		in.BillingDay = 1
	}

	var tenant model.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, in.TenantID).Error; err != nil {
		return nil, err
	}
	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, in.RoomID).Error; err != nil {
		return nil, err
	}

	var active model.Lease
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND status = ?", in.RoomID, model.LeaseActive).
		First(&active).Error
	if err == nil {
		return nil, Invalid("room %s already has an active lease", room.RoomNumber)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	lease := model.Lease{
		TenantID:    in.TenantID,
		RoomID:      in.RoomID,
		StartDate:   in.StartDate,
		MonthlyRent: in.MonthlyRent,
		Deposit:     in.Deposit,
		BillingDay:  in.BillingDay,
		Status:      model.LeaseActive,
	}
	month := model.MonthStart(in.StartDate)
	var invoice model.Invoice

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lease).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Invalid("room %s already has an active lease", room.RoomNumber)
			}
			return err
		}
		if err := tx.Model(&model.Room{}).Where("id = ?", room.ID).
			Update("status", model.RoomOccupied).Error; err != nil {
			return err
		}

		var existing model.Invoice
		err := tx.Where("room_id = ? AND month = ?", room.ID, month).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		invoice = model.Invoice{
			RoomID:   room.ID,
			Month:    month,
			Type:     model.InvoiceRent,
			Subtotal: in.MonthlyRent,
			Total:    in.MonthlyRent,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		item := model.InvoiceItem{
			InvoiceID: invoice.ID,
			Label:     "Room Rent",
			Qty:       decimal.NewFromInt(1),
			Rate:      in.MonthlyRent,
			Amount:    in.MonthlyRent,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}

	_ = s.rec.Record(ctx, event.NewLeaseStarted(
		lease.ID, room.ID, tenant.ID, tenant.FullName, room.RoomNumber, in.MonthlyRent))
	if invoice.ID != 0 {
		_ = s.rec.Record(ctx, event.NewInvoiceCreated(
			invoice.ID, room.ID, room.RoomNumber, invoice.Period(), invoice.Type, invoice.Total))
	}
	return &lease, nil
}

// End closes an active lease and frees the room.
func (s *LeaseService) End(ctx context.Context, leaseID uint, endDate time.Time) (*model.Lease, error) {
	var lease model.Lease
	if err := s.db.WithContext(ctx).Preload("Room").First(&lease, leaseID).Error; err != nil {
		return nil, err
	}
	if lease.Status != model.LeaseActive {
		return nil, Invalid("lease is not active")
	}
	if endDate.Before(lease.StartDate) {
		return nil, Invalid("end date cannot be before the lease start date")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Lease{}).Where("id = ?", lease.ID).
			Updates(map[string]any{
				"status":   model.LeaseEnded,
				"end_date": endDate,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&model.Room{}).Where("id = ?", lease.RoomID).
			Update("status", model.RoomVacant).Error
	})
	if err != nil {
		return nil, err
	}

	lease.Status = model.LeaseEnded
	lease.EndDate = &endDate

	roomNumber := ""
	if lease.Room != nil {
		roomNumber = lease.Room.RoomNumber
	}
	_ = s.rec.Record(ctx, event.NewLeaseEnded(
		lease.ID, lease.RoomID, lease.TenantID, roomNumber, endDate))
	return &lease, nil
}

// Get returns a lease with tenant and room preloaded.
func (s *LeaseService) Get(ctx context.Context, id uint) (*model.Lease, error) {
	var lease model.Lease
	err := s.db.WithContext(ctx).
		Preload("Tenant").Preload("Room").Preload("Room.Building").
		First(&lease, id).Error
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

// List returns leases newest first, optionally filtered by status.
func (s *LeaseService) List(ctx context.Context, status string) ([]model.Lease, error) {
	q := s.db.WithContext(ctx).
		Preload("Tenant").Preload("Room").
		Order("start_date DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []model.Lease
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveForRoom returns the room's active lease, or gorm.ErrRecordNotFound.
func (s *LeaseService) ActiveForRoom(ctx context.Context, roomID uint) (*model.Lease, error) {
	var lease model.Lease
	err := s.db.WithContext(ctx).Preload("Tenant").
		Where("room_id = ? AND status = ?", roomID, model.LeaseActive).
		First(&lease).Error
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

// Balance returns how much the lease's room has been invoiced since the
// lease began, minus everything paid on the lease. Positive means owed.
func (s *LeaseService) Balance(ctx context.Context, leaseID uint) (decimal.Decimal, error) {
	var lease model.Lease
	if err := s.db.WithContext(ctx).First(&lease, leaseID).Error; err != nil {
		return decimal.Zero, err
	}

	var invoices []model.Invoice
	q := s.db.WithContext(ctx).
		Where("room_id = ? AND month >= ?", lease.RoomID, model.MonthStart(lease.StartDate))
	if lease.EndDate != nil {
		q = q.Where("month <= ?", model.MonthStart(*lease.EndDate))
	}
	if err := q.Find(&invoices).Error; err != nil {
		return decimal.Zero, err
	}

	var payments []model.RentPayment
	if err := s.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).Find(&payments).Error; err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, inv := range invoices {
		balance = balance.Add(inv.Total)
	}
	for _, p := range payments {
		balance = balance.Sub(p.Amount)
	}
	return balance, nil
}
