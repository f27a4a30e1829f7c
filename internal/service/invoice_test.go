package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/billing"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/store"
)

func TestCreateBillRejectsBadMonth(t *testing.T) {
	svc, db := newTestServices(t)
	_, room := seedActiveLease(t, svc, db)

	for _, month := range []string{"2025", "01-2025", "2025-13", "jan"} {
		_, err := svc.Invoices.CreateBill(context.Background(), CreateBillInput{
			RoomID: room.ID,
			Month:  month,
		})
		assert.True(t, IsValidation(err), "month %q should be rejected", month)
	}
}

func TestCreateBillRejectsDuplicateMonth(t *testing.T) {
	svc, db := newTestServices(t)
	_, room := seedActiveLease(t, svc, db)

	// Lease creation already produced the 2025-01 invoice.
	_, err := svc.Invoices.CreateBill(context.Background(), CreateBillInput{
		RoomID: room.ID,
		Month:  "2025-01",
	})
	assert.ErrorIs(t, err, ErrDuplicateInvoice)
}

func TestOneInvoicePerMonthAcrossTypes(t *testing.T) {
	svc, db := newTestServices(t)
	_, room := seedActiveLease(t, svc, db)
	ctx := context.Background()

	require.NoError(t, store.SetSetting(db, model.SettingElectricityRate, "10.50"))
	_, err := svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2024-12-28"), Value: dec("100")})
	require.NoError(t, err)
	_, err = svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-25"), Value: dec("150")})
	require.NoError(t, err)

	// The 2025-01 rent invoice from lease creation blocks an electricity
	// invoice for the same month even though their types differ.
	_, err = svc.Invoices.CreateElectricityInvoice(ctx, room.ID, "2025-01")
	assert.ErrorIs(t, err, ErrDuplicateInvoice)

	var count int64
	require.NoError(t, db.Model(&model.Invoice{}).
		Where("room_id = ?", room.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateBillRequiresActiveLease(t *testing.T) {
	svc, db := newTestServices(t)
	b := seedBuilding(t, svc)
	room := firstRoom(t, db, b.ID)

	_, err := svc.Invoices.CreateBill(context.Background(), CreateBillInput{
		RoomID: room.ID,
		Month:  "2025-02",
	})
	assert.True(t, IsValidation(err))
}

func TestCreateBillCombinedWithElectricity(t *testing.T) {
	svc, db := newTestServices(t)
	_, room := seedActiveLease(t, svc, db)
	ctx := context.Background()

	require.NoError(t, store.SetSetting(db, model.SettingElectricityRate, "10.50"))
	for _, r := range []struct{ date, value string }{
		{"2025-01-28", "100"},
		{"2025-02-25", "150"},
	} {
		_, err := svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, r.date), Value: dec(r.value)})
		require.NoError(t, err)
	}

	invoice, err := svc.Invoices.CreateBill(ctx, CreateBillInput{
		RoomID:             room.ID,
		Month:              "2025-02",
		IncludeElectricity: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceCombined, invoice.Type)
	assert.True(t, invoice.Total.Equal(dec("5525.00")), "total %s", invoice.Total)
	assert.Equal(t, "50", invoice.Meta["elec_units"])

	var items []model.InvoiceItem
	require.NoError(t, db.Where("invoice_id = ?", invoice.ID).Order("id").Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, "Room Rent", items[0].Label)
	assert.Equal(t, "Electricity", items[1].Label)
	assert.True(t, items[1].Amount.Equal(dec("525.00")))
}

func TestCreateElectricityInvoice(t *testing.T) {
	svc, db := newTestServices(t)
	_, room := seedActiveLease(t, svc, db)
	ctx := context.Background()

	require.NoError(t, store.SetSetting(db, model.SettingElectricityRate, "10.50"))
	_, err := svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-28"), Value: dec("100")})
	require.NoError(t, err)
	_, err = svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-02-25"), Value: dec("150")})
	require.NoError(t, err)

	invoice, err := svc.Invoices.CreateElectricityInvoice(ctx, room.ID, "2025-02")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceElectricity, invoice.Type)
	assert.True(t, invoice.Total.Equal(dec("525.00")), "total %s", invoice.Total)
}

func TestEnsureMonthRentCreatesOnce(t *testing.T) {
	svc, db := newTestServices(t)
	_, room := seedActiveLease(t, svc, db)
	ctx := context.Background()
	now := day(t, "2025-02-15")

	first, err := svc.Invoices.EnsureMonthRent(ctx, room.ID, now)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "2025-02", first.Period())
	assert.True(t, first.Total.Equal(dec("5000")))

	second, err := svc.Invoices.EnsureMonthRent(ctx, room.ID, now)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&model.Invoice{}).
		Where("room_id = ?", room.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count, "january from lease start plus february")
}

func TestEnsureMonthRentSkipsVacantRoom(t *testing.T) {
	svc, db := newTestServices(t)
	b := seedBuilding(t, svc)
	room := firstRoom(t, db, b.ID)

	invoice, err := svc.Invoices.EnsureMonthRent(context.Background(), room.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, invoice)
}

func TestSetStatusPaid(t *testing.T) {
	svc, db := newTestServices(t)
	lease, room := seedActiveLease(t, svc, db)
	ctx := context.Background()

	var invoice model.Invoice
	require.NoError(t, db.Where("room_id = ?", room.ID).First(&invoice).Error)

	_, err := svc.Invoices.SetStatus(ctx, invoice.ID, billing.PayPaid, dec("0"))
	require.NoError(t, err)

	paid, err := billing.MonthPayments(db, lease.ID, invoice.Month)
	require.NoError(t, err)
	assert.True(t, paid.Equal(invoice.Total), "paid %s", paid)
}

func TestSetStatusUnpaidClearsPayments(t *testing.T) {
	svc, db := newTestServices(t)
	lease, room := seedActiveLease(t, svc, db)
	ctx := context.Background()

	var invoice model.Invoice
	require.NoError(t, db.Where("room_id = ?", room.ID).First(&invoice).Error)

	_, err := svc.Invoices.SetStatus(ctx, invoice.ID, billing.PayPaid, dec("0"))
	require.NoError(t, err)
	_, err = svc.Invoices.SetStatus(ctx, invoice.ID, billing.PayUnpaid, dec("0"))
	require.NoError(t, err)

	paid, err := billing.MonthPayments(db, lease.ID, invoice.Month)
	require.NoError(t, err)
	assert.True(t, paid.IsZero())
}

func TestSetStatusPartialTakesExplicitAmount(t *testing.T) {
	svc, db := newTestServices(t)
	lease, room := seedActiveLease(t, svc, db)
	ctx := context.Background()

	var invoice model.Invoice
	require.NoError(t, db.Where("room_id = ?", room.ID).First(&invoice).Error)

	_, err := svc.Invoices.SetStatus(ctx, invoice.ID, billing.PayPartial, dec("2500"))
	require.NoError(t, err)

	paid, err := billing.MonthPayments(db, lease.ID, invoice.Month)
	require.NoError(t, err)
	assert.True(t, paid.Equal(dec("2500")), "paid %s", paid)
}

func TestSetStatusPartialValidation(t *testing.T) {
	svc, db := newTestServices(t)
	_, room := seedActiveLease(t, svc, db)
	ctx := context.Background()

	var invoice model.Invoice
	require.NoError(t, db.Where("room_id = ?", room.ID).First(&invoice).Error)

	_, err := svc.Invoices.SetStatus(ctx, invoice.ID, billing.PayPartial, dec("0"))
	assert.True(t, IsValidation(err))

	_, err = svc.Invoices.SetStatus(ctx, invoice.ID, billing.PayPartial, dec("5000"))
	assert.True(t, IsValidation(err), "partial equal to total should be rejected")

	_, err = svc.Invoices.SetStatus(ctx, invoice.ID, "settled", dec("100"))
	assert.True(t, IsValidation(err))
}

func TestSetStatusReplacesPreviousMonthPayments(t *testing.T) {
	svc, db := newTestServices(t)
	lease, room := seedActiveLease(t, svc, db)
	ctx := context.Background()

	var invoice model.Invoice
	require.NoError(t, db.Where("room_id = ?", room.ID).First(&invoice).Error)

	_, err := svc.Invoices.SetStatus(ctx, invoice.ID, billing.PayPartial, dec("1000"))
	require.NoError(t, err)
	_, err = svc.Invoices.SetStatus(ctx, invoice.ID, billing.PayPaid, dec("0"))
	require.NoError(t, err)

	paid, err := billing.MonthPayments(db, lease.ID, invoice.Month)
	require.NoError(t, err)
	assert.True(t, paid.Equal(invoice.Total), "marking paid replaces partials, got %s", paid)
}
