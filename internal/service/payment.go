package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/event"
	"github.com/rentdesk/rentdesk/internal/model"
)

// PaymentService records money received against leases.
type PaymentService struct {
	db  *gorm.DB
	rec event.Recorder
}

// RecordInput is one received payment.
type RecordInput struct {
	LeaseID uint
	PaidOn  time.Time
	Amount  decimal.Decimal
	Method  string
	Notes   string
}

// Record stores a payment against the lease. Ended leases still accept
// payments so late settlements can be captured.
func (s *PaymentService) Record(ctx context.Context, in RecordInput) (*model.RentPayment, error) {
	if !in.Amount.IsPositive() {
		return nil, Invalid("payment amount must be positive")
	}

	var lease model.Lease
	if err := s.db.WithContext(ctx).Preload("Room").First(&lease, in.LeaseID).Error; err != nil {
		return nil, err
	}
	if in.PaidOn.Before(lease.StartDate) {
		return nil, Invalid("payment date cannot be before the lease start date")
	}

	payment := model.RentPayment{
		LeaseID: in.LeaseID,
		PaidOn:  in.PaidOn,
		Amount:  in.Amount,
		Method:  in.Method,
		Notes:   in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}

	roomNumber := ""
	if lease.Room != nil {
		roomNumber = lease.Room.RoomNumber
	}
	_ = s.rec.Record(ctx, event.NewPaymentRecorded(
		payment.ID, lease.ID, lease.RoomID, roomNumber, in.Amount, in.PaidOn))
	return &payment, nil
}

// List returns payments newest first, optionally filtered by lease.
func (s *PaymentService) List(ctx context.Context, leaseID uint) ([]model.RentPayment, error) {
	q := s.db.WithContext(ctx).Order("paid_on DESC, id DESC")
	if leaseID != 0 {
		q = q.Where("lease_id = ?", leaseID)
	}
	var out []model.RentPayment
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a payment.
func (s *PaymentService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.RentPayment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
