package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/model"
)

// Badge values shown on room cards.
const (
	BadgeOK          = "OK"
	BadgeDueSoon     = "Due Soon"
	BadgeOverdue     = "Overdue"
	BadgeVacant      = "Vacant"
	BadgeMaintenance = "Maintenance"
)

// Payment status values derived for an invoice month.
const (
	PayPaid    = "paid"
	PayPartial = "partial"
	PayUnpaid  = "unpaid"
)

// Snapshot is the finance summary for one room, driving both the room
// card badge and the room panel.
type Snapshot struct {
	RoomID        uint             `json:"room_id"`
	RoomNumber    string           `json:"room_number"`
	Status        string           `json:"status"`
	Badge         string           `json:"badge"`
	TenantName    string           `json:"tenant_name,omitempty"`
	LeaseID       uint             `json:"lease_id,omitempty"`
	MonthlyRent   decimal.Decimal  `json:"monthly_rent"`
	InvoiceID     uint             `json:"invoice_id,omitempty"`
	InvoiceMonth  string           `json:"invoice_month,omitempty"`
	InvoiceType   string           `json:"invoice_type,omitempty"`
	InvoiceTotal  decimal.Decimal  `json:"invoice_total"`
	PaidAmount    decimal.Decimal  `json:"paid_amount"`
	PaymentStatus string           `json:"payment_status,omitempty"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	ElecUnits     *decimal.Decimal `json:"elec_units,omitempty"`
	ElecAmount    *decimal.Decimal `json:"elec_amount,omitempty"`
	// RecentInvoices lists the room's latest invoices newest first, each
	// with its own derived payment state. The scalar invoice fields above
	// mirror the first entry.
	RecentInvoices []InvoiceStatus `json:"recent_invoices,omitempty"`
}

// InvoiceStatus is one recent invoice with its payment state derived
// from the payments recorded in its month.
type InvoiceStatus struct {
	InvoiceID  uint             `json:"invoice_id"`
	Month      string           `json:"month"`
	Type       string           `json:"type"`
	Total      decimal.Decimal  `json:"total"`
	Paid       decimal.Decimal  `json:"paid"`
	Status     string           `json:"status"`
	DueDate    time.Time        `json:"due_date"`
	ElecUnits  *decimal.Decimal `json:"elec_units,omitempty"`
	ElecAmount *decimal.Decimal `json:"elec_amount,omitempty"`
}

// RoomSnapshot builds the finance summary for a room as of now.
func RoomSnapshot(db *gorm.DB, pol config.BillingConfig, roomID uint) (Snapshot, error) {
	return RoomSnapshotAt(db, pol, roomID, time.Now().UTC())
}

// RoomSnapshotAt builds the finance summary for a room as of the given
// instant. Rooms without an active lease carry a Vacant or Maintenance
// badge; otherwise the badge reflects the latest recent invoice against
// payments recorded in its month and the configured due-date policy.
func RoomSnapshotAt(db *gorm.DB, pol config.BillingConfig, roomID uint, now time.Time) (Snapshot, error) {
	var room model.Room
	if err := db.First(&room, roomID).Error; err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		RoomID:     room.ID,
		RoomNumber: room.RoomNumber,
		Status:     room.Status,
	}

	var lease model.Lease
	err := db.Preload("Tenant").
		Where("room_id = ? AND status = ?", roomID, model.LeaseActive).
		First(&lease).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if room.Status == model.RoomMaintenance {
			snap.Badge = BadgeMaintenance
		} else {
			snap.Badge = BadgeVacant
		}
		return snap, nil
	}
	if err != nil {
		return Snapshot{}, err
	}

	snap.LeaseID = lease.ID
	snap.MonthlyRent = lease.MonthlyRent
	if lease.Tenant != nil {
		snap.TenantName = lease.Tenant.FullName
	}

	var invoices []model.Invoice
	if err := db.Where("room_id = ?", roomID).
		Order("month DESC, id DESC").
		Limit(pol.RecentInvoices).
		Find(&invoices).Error; err != nil {
		return Snapshot{}, err
	}
	if len(invoices) == 0 {
		snap.Badge = BadgeOK
		return snap, nil
	}

	recent := make([]InvoiceStatus, 0, len(invoices))
	for _, inv := range invoices {
		paid, err := MonthPayments(db, lease.ID, inv.Month)
		if err != nil {
			return Snapshot{}, err
		}
		st := InvoiceStatus{
			InvoiceID: inv.ID,
			Month:     inv.Period(),
			Type:      inv.Type,
			Total:     inv.Total,
			Paid:      paid,
			Status:    PaymentStatus(paid, inv.Total),
			DueDate:   model.MonthStart(inv.Month).AddDate(0, 0, pol.DueDayOffset),
		}
		if inv.Type == model.InvoiceElectricity || inv.Type == model.InvoiceCombined {
			if u, ok := metaDecimal(inv.Meta, "elec_units"); ok {
				st.ElecUnits = &u
			}
			if a, ok := metaDecimal(inv.Meta, "elec_amount"); ok {
				st.ElecAmount = &a
			}
		}
		recent = append(recent, st)
	}
	snap.RecentInvoices = recent

	latest := recent[0]
	snap.InvoiceID = latest.InvoiceID
	snap.InvoiceMonth = latest.Month
	snap.InvoiceType = latest.Type
	snap.InvoiceTotal = latest.Total
	snap.PaidAmount = latest.Paid
	snap.PaymentStatus = latest.Status
	due := latest.DueDate
	snap.DueDate = &due
	snap.Badge = badgeFor(latest.Status, due, pol.DueSoonDays, now)
	snap.ElecUnits = latest.ElecUnits
	snap.ElecAmount = latest.ElecAmount

	return snap, nil
}

// MonthPayments sums payments recorded against a lease during the month
// containing t.
func MonthPayments(db *gorm.DB, leaseID uint, t time.Time) (decimal.Decimal, error) {
	first := model.MonthStart(t)
	next := first.AddDate(0, 1, 0)

	var payments []model.RentPayment
	err := db.Where("lease_id = ? AND paid_on >= ? AND paid_on < ?", leaseID, first, next).
		Find(&payments).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

// PaymentStatus derives paid/partial/unpaid from the amount received
// against the invoice total.
func PaymentStatus(paid, total decimal.Decimal) string {
	switch {
	case total.IsPositive() && paid.GreaterThanOrEqual(total):
		return PayPaid
	case paid.IsPositive():
		return PayPartial
	default:
		return PayUnpaid
	}
}

func badgeFor(payStatus string, due time.Time, dueSoonDays int, now time.Time) string {
	if payStatus == PayPaid {
		return BadgeOK
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case today.After(due):
		return BadgeOverdue
	case today.After(due.AddDate(0, 0, -dueSoonDays)):
		return BadgeDueSoon
	default:
		return BadgeOK
	}
}

func metaDecimal(meta map[string]any, key string) (decimal.Decimal, bool) {
	v, ok := meta[key]
	if !ok {
		return decimal.Zero, false
	}
	switch t := v.(type) {
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(t), true
	default:
		return decimal.Zero, false
	}
}
