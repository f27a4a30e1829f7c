package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/billing"
	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/model"
)

// ReportService produces the dashboard KPIs and monthly reports.
type ReportService struct {
	db  *gorm.DB
	pol config.BillingConfig
}

// Dashboard is the landing-page KPI block.
type Dashboard struct {
	Buildings        int64           `json:"buildings"`
	Rooms            int64           `json:"rooms"`
	Occupied         int64           `json:"occupied"`
	Vacant           int64           `json:"vacant"`
	Maintenance      int64           `json:"maintenance"`
	ActiveLeases     int64           `json:"active_leases"`
	Tenants          int64           `json:"tenants"`
	MonthBilled      decimal.Decimal `json:"month_billed"`
	MonthCollected   decimal.Decimal `json:"month_collected"`
	OverdueInvoices  int             `json:"overdue_invoices"`
	OccupancyPercent int             `json:"occupancy_percent"`
	Series           []MonthTotals   `json:"series"`
}

// MonthTotals is one month of the dashboard's collection series.
type MonthTotals struct {
	Month     string          `json:"month"`
	Billed    decimal.Decimal `json:"billed"`
	Collected decimal.Decimal `json:"collected"`
}

// BuildDashboard computes the KPIs as of now.
func (s *ReportService) BuildDashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	var d Dashboard

	counts := []struct {
		dst   *int64
		model any
		query func(*gorm.DB) *gorm.DB
	}{
		{&d.Buildings, &model.Building{}, nil},
		{&d.Rooms, &model.Room{}, nil},
		{&d.Occupied, &model.Room{}, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", model.RoomOccupied) }},
		{&d.Vacant, &model.Room{}, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", model.RoomVacant) }},
		{&d.Maintenance, &model.Room{}, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", model.RoomMaintenance) }},
		{&d.ActiveLeases, &model.Lease{}, func(q *gorm.DB) *gorm.DB { return q.Where("status = ?", model.LeaseActive) }},
		{&d.Tenants, &model.Tenant{}, nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.query != nil {
			q = c.query(q)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	if d.Rooms > 0 {
		d.OccupancyPercent = int(d.Occupied * 100 / d.Rooms)
	}

	month := model.MonthStart(now)
	rows, err := s.RentCollection(ctx, month, now)
	if err != nil {
		return nil, err
	}
	d.MonthBilled = decimal.Zero
	d.MonthCollected = decimal.Zero
	for _, r := range rows {
		d.MonthBilled = d.MonthBilled.Add(r.Billed)
		d.MonthCollected = d.MonthCollected.Add(r.Paid)
		if r.Badge == billing.BadgeOverdue {
			d.OverdueInvoices++
		}
	}

	series, err := s.collectionSeries(ctx, month, 6)
	if err != nil {
		return nil, err
	}
	d.Series = series
	return &d, nil
}

// collectionSeries returns billed and collected totals for the given month
// and the months before it, oldest first.
func (s *ReportService) collectionSeries(ctx context.Context, month time.Time, months int) ([]MonthTotals, error) {
	db := s.db.WithContext(ctx)
	out := make([]MonthTotals, 0, months)

	for i := months - 1; i >= 0; i-- {
		first := model.MonthStart(month).AddDate(0, -i, 0)
		next := first.AddDate(0, 1, 0)

		var invoices []model.Invoice
		if err := db.Where("month >= ? AND month < ?", first, next).Find(&invoices).Error; err != nil {
			return nil, err
		}
		billed := decimal.Zero
		for _, inv := range invoices {
			billed = billed.Add(inv.Total)
		}

		var payments []model.RentPayment
		if err := db.Where("paid_on >= ? AND paid_on < ?", first, next).Find(&payments).Error; err != nil {
			return nil, err
		}
		collected := decimal.Zero
		for _, p := range payments {
			collected = collected.Add(p.Amount)
		}

		out = append(out, MonthTotals{
			Month:     first.Format("2006-01"),
			Billed:    billed,
			Collected: collected,
		})
	}
	return out, nil
}

// CollectionRow is one room's line in the rent collection report.
type CollectionRow struct {
	RoomID     uint            `json:"room_id"`
	Building   string          `json:"building"`
	RoomNumber string          `json:"room_number"`
	TenantName string          `json:"tenant_name,omitempty"`
	Billed     decimal.Decimal `json:"billed"`
	Paid       decimal.Decimal `json:"paid"`
	Status     string          `json:"status"`
	Badge      string          `json:"badge"`
}

// RentCollection reports billed versus collected per room for the month.
// Rooms with no invoice that month are skipped.
func (s *ReportService) RentCollection(ctx context.Context, month, now time.Time) ([]CollectionRow, error) {
	db := s.db.WithContext(ctx)
	first := model.MonthStart(month)
	next := first.AddDate(0, 1, 0)

	var invoices []model.Invoice
	err := db.Preload("Room").Preload("Room.Building").
		Where("month >= ? AND month < ?", first, next).
		Order("room_id").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	rows := make([]CollectionRow, 0, len(invoices))
	for _, inv := range invoices {
		row := CollectionRow{
			RoomID: inv.RoomID,
			Billed: inv.Total,
			Paid:   decimal.Zero,
		}
		if inv.Room != nil {
			row.RoomNumber = inv.Room.RoomNumber
			if inv.Room.Building != nil {
				row.Building = inv.Room.Building.Name
			}
		}

		var lease model.Lease
		err := db.Preload("Tenant").
			Where("room_id = ? AND status = ?", inv.RoomID, model.LeaseActive).
			First(&lease).Error
		if err == nil {
			if lease.Tenant != nil {
				row.TenantName = lease.Tenant.FullName
			}
			paid, err := billing.MonthPayments(db, lease.ID, inv.Month)
			if err != nil {
				return nil, err
			}
			row.Paid = paid
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		row.Status = billing.PaymentStatus(row.Paid, inv.Total)
		due := first.AddDate(0, 0, s.pol.DueDayOffset)
		switch {
		case row.Status == billing.PayPaid:
			row.Badge = billing.BadgeOK
		case now.After(due):
			row.Badge = billing.BadgeOverdue
		case now.After(due.AddDate(0, 0, -s.pol.DueSoonDays)):
			row.Badge = billing.BadgeDueSoon
		default:
			row.Badge = billing.BadgeOK
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ElectricityRow is one room's line in the electricity report.
type ElectricityRow struct {
	RoomID          uint             `json:"room_id"`
	Building        string           `json:"building"`
	RoomNumber      string           `json:"room_number"`
	PreviousReading *decimal.Decimal `json:"previous_reading"`
	CurrentReading  *decimal.Decimal `json:"current_reading"`
	Units           decimal.Decimal  `json:"units"`
	Amount          decimal.Decimal  `json:"amount"`
	Problem         string           `json:"problem,omitempty"`
}

// Electricity reports per-room consumption and charge for the month,
// covering every room with at least one reading.
func (s *ReportService) Electricity(ctx context.Context, month time.Time) ([]ElectricityRow, error) {
	db := s.db.WithContext(ctx)

	var roomIDs []uint
	err := db.Model(&model.MeterReading{}).
		Distinct("room_id").Order("room_id").Pluck("room_id", &roomIDs).Error
	if err != nil {
		return nil, err
	}

	rows := make([]ElectricityRow, 0, len(roomIDs))
	for _, id := range roomIDs {
		mb, err := billing.CalcMonthBill(db, id, month.Year(), month.Month())
		if err != nil {
			return nil, err
		}

		var room model.Room
		if err := db.Preload("Building").First(&room, id).Error; err != nil {
			return nil, err
		}

		row := ElectricityRow{
			RoomID:          id,
			RoomNumber:      room.RoomNumber,
			PreviousReading: mb.PreviousReading,
			CurrentReading:  mb.CurrentReading,
			Units:           mb.Units,
			Amount:          mb.Total,
			Problem:         mb.Err,
		}
		if room.Building != nil {
			row.Building = room.Building.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}
