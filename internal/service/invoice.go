package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/billing"
	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/event"
	"github.com/rentdesk/rentdesk/internal/model"
)

// InvoiceService creates bills and reconciles their payment status.
type InvoiceService struct {
	db  *gorm.DB
	pol config.BillingConfig
	rec event.Recorder
}

// ParseMonth parses a YYYY-MM string into the first day of that month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, Invalid("month must be in YYYY-MM format")
	}
	return model.MonthStart(t), nil
}

// recheckOnePerMonth re-counts a room's invoices for the month inside
// the create transaction. The unique index only covers (room, month,
// type), so without this two concurrent creates of different types
// could both land on one month.
func recheckOnePerMonth(tx *gorm.DB, roomID uint, month time.Time) error {
	var n int64
	if err := tx.Model(&model.Invoice{}).
		Where("room_id = ? AND month = ?", roomID, month).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 1 {
		return ErrDuplicateInvoice
	}
	return nil
}

// CreateBillInput describes a manual bill for a room and month.
type CreateBillInput struct {
	RoomID             uint
	Month              string // YYYY-MM
	IncludeElectricity bool
}

// CreateBill creates a rent bill for the month, optionally combined with
// the electricity charge derived from meter readings. A room carries at
// most one bill per month regardless of type.
func (s *InvoiceService) CreateBill(ctx context.Context, in CreateBillInput) (*model.Invoice, error) {
	month, err := ParseMonth(in.Month)
	if err != nil {
		return nil, err
	}

	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, in.RoomID).Error; err != nil {
		return nil, err
	}

	var lease model.Lease
	err = s.db.WithContext(ctx).
		Where("room_id = ? AND status = ?", in.RoomID, model.LeaseActive).
		First(&lease).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Invalid("room %s has no active lease to bill", room.RoomNumber)
	}
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("room_id = ? AND month = ?", in.RoomID, month).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateInvoice
	}

	items := []model.InvoiceItem{{
		Label:  "Room Rent",
		Qty:    decimal.NewFromInt(1),
		Rate:   lease.MonthlyRent,
		Amount: lease.MonthlyRent,
	}}
	invoiceType := model.InvoiceRent
	meta := map[string]any(nil)

	if in.IncludeElectricity {
		mb, err := billing.CalcMonthBill(s.db.WithContext(ctx), in.RoomID, month.Year(), month.Month())
		if err != nil {
			return nil, err
		}
		if mb.Err != "" {
			return nil, Invalid("electricity charge unavailable: %s", mb.Err)
		}
		if mb.Total.IsPositive() {
			items = append(items, model.InvoiceItem{
				Label:  "Electricity",
				Qty:    mb.Units,
				Rate:   mb.Rate,
				Amount: mb.Total,
			})
			invoiceType = model.InvoiceCombined
			meta = map[string]any{
				"elec_units":  mb.Units.String(),
				"elec_amount": mb.Total.String(),
			}
		}
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Amount)
	}

	invoice := model.Invoice{
		RoomID:   in.RoomID,
		Month:    month,
		Type:     invoiceType,
		Subtotal: subtotal,
		Total:    subtotal,
		Meta:     meta,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateInvoice
			}
			return err
		}
		if err := recheckOnePerMonth(tx, in.RoomID, month); err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.rec.Record(ctx, event.NewInvoiceCreated(
		invoice.ID, room.ID, room.RoomNumber, invoice.Period(), invoice.Type, invoice.Total))
	return &invoice, nil
}

// CreateElectricityInvoice creates an electricity-only invoice for the
// month from the room's meter readings.
func (s *InvoiceService) CreateElectricityInvoice(ctx context.Context, roomID uint, monthStr string) (*model.Invoice, error) {
	month, err := ParseMonth(monthStr)
	if err != nil {
		return nil, err
	}
	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, roomID).Error; err != nil {
		return nil, err
	}

	mb, err := billing.CalcMonthBill(s.db.WithContext(ctx), roomID, month.Year(), month.Month())
	if err != nil {
		return nil, err
	}
	if mb.Err != "" {
		return nil, Invalid("electricity charge unavailable: %s", mb.Err)
	}
	if !mb.Total.IsPositive() {
		return nil, Invalid("no electricity consumption recorded for %s", monthStr)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("room_id = ? AND month = ?", roomID, month).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateInvoice
	}

	invoice := model.Invoice{
		RoomID:   roomID,
		Month:    month,
		Type:     model.InvoiceElectricity,
		Subtotal: mb.Total,
		Total:    mb.Total,
		Meta: map[string]any{
			"elec_units":  mb.Units.String(),
			"elec_amount": mb.Total.String(),
		},
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateInvoice
			}
			return err
		}
		if err := recheckOnePerMonth(tx, roomID, month); err != nil {
			return err
		}
		item := model.InvoiceItem{
			InvoiceID: invoice.ID,
			Label:     "Electricity",
			Qty:       mb.Units,
			Rate:      mb.Rate,
			Amount:    mb.Total,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}

	_ = s.rec.Record(ctx, event.NewInvoiceCreated(
		invoice.ID, room.ID, room.RoomNumber, invoice.Period(), invoice.Type, invoice.Total))
	return &invoice, nil
}

// EnsureMonthRent returns the room's invoice for the month containing
// now, creating a rent invoice from the active lease when none exists.
// Rooms without an active lease get no invoice and no error.
func (s *InvoiceService) EnsureMonthRent(ctx context.Context, roomID uint, now time.Time) (*model.Invoice, error) {
	month := model.MonthStart(now)

	var existing model.Invoice
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND month = ?", roomID, month).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var lease model.Lease
	err = s.db.WithContext(ctx).
		Where("room_id = ? AND status = ?", roomID, model.LeaseActive).
		First(&lease).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, roomID).Error; err != nil {
		return nil, err
	}

	invoice := model.Invoice{
		RoomID:   roomID,
		Month:    month,
		Type:     model.InvoiceRent,
		Subtotal: lease.MonthlyRent,
		Total:    lease.MonthlyRent,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a race with a concurrent request; reuse theirs.
				return tx.Where("room_id = ? AND month = ?", roomID, month).
					First(&invoice).Error
			}
			return err
		}
		item := model.InvoiceItem{
			InvoiceID: invoice.ID,
			Label:     "Room Rent",
			Qty:       decimal.NewFromInt(1),
			Rate:      lease.MonthlyRent,
			Amount:    lease.MonthlyRent,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}

	_ = s.rec.Record(ctx, event.NewInvoiceCreated(
		invoice.ID, room.ID, room.RoomNumber, invoice.Period(), invoice.Type, invoice.Total))
	return &invoice, nil
}

// SetStatus reconciles the payments of the invoice's month to match the
// requested status. Paid replaces the month's payments with one payment
// for the full total; unpaid deletes them; partial replaces them with one
// payment of the given amount, which must be positive and below the total.
func (s *InvoiceService) SetStatus(ctx context.Context, invoiceID uint, status string, amount decimal.Decimal) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := s.db.WithContext(ctx).Preload("Room").First(&invoice, invoiceID).Error; err != nil {
		return nil, err
	}

	var lease model.Lease
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND status = ?", invoice.RoomID, model.LeaseActive).
		First(&lease).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Invalid("no active lease to record payments against")
	}
	if err != nil {
		return nil, err
	}

	first := model.MonthStart(invoice.Month)
	next := first.AddDate(0, 1, 0)

	var paid decimal.Decimal
	switch status {
	case billing.PayPaid:
		paid = invoice.Total
	case billing.PayUnpaid:
		paid = decimal.Zero
	case billing.PayPartial:
		if !amount.IsPositive() {
			return nil, Invalid("partial amount must be positive")
		}
		if amount.GreaterThanOrEqual(invoice.Total) {
			return nil, Invalid("partial amount must be below the invoice total")
		}
		paid = amount
	default:
		return nil, Invalid("status must be paid, partial, or unpaid")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lease_id = ? AND paid_on >= ? AND paid_on < ?",
			lease.ID, first, next).Delete(&model.RentPayment{}).Error; err != nil {
			return err
		}
		if paid.IsZero() {
			return nil
		}
		paidOn := time.Now().UTC()
		if paidOn.Before(first) || !paidOn.Before(next) {
			paidOn = first
		}
		return tx.Create(&model.RentPayment{
			LeaseID: lease.ID,
			PaidOn:  paidOn,
			Amount:  paid,
			Method:  "adjustment",
		}).Error
	})
	if err != nil {
		return nil, err
	}

	roomNumber := ""
	if invoice.Room != nil {
		roomNumber = invoice.Room.RoomNumber
	}
	_ = s.rec.Record(ctx, event.NewInvoiceStatusChanged(
		invoice.ID, invoice.RoomID, roomNumber, invoice.Period(), status))
	return &invoice, nil
}

// Get returns an invoice with its items and room preloaded.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Room").Preload("Room.Building").Preload("Room.Floor").
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// List returns invoices newest month first, optionally filtered by room,
// month (YYYY-MM), and type.
func (s *InvoiceService) List(ctx context.Context, roomID uint, monthStr, invType string) ([]model.Invoice, error) {
	q := s.db.WithContext(ctx).Preload("Room").Order("month DESC, id DESC")
	if roomID != 0 {
		q = q.Where("room_id = ?", roomID)
	}
	if monthStr != "" {
		month, err := ParseMonth(monthStr)
		if err != nil {
			return nil, err
		}
		q = q.Where("month >= ? AND month < ?", month, month.AddDate(0, 1, 0))
	}
	if invType != "" {
		q = q.Where("type = ?", invType)
	}
	var out []model.Invoice
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
