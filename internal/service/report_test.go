package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/billing"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/store"
)

func TestRentCollectionReport(t *testing.T) {
	svc, db := newTestServices(t)
	lease, room := seedActiveLease(t, svc, db)
	ctx := context.Background()

	_, err := svc.Payments.Record(ctx, RecordInput{
		LeaseID: lease.ID,
		PaidOn:  day(t, "2025-01-12"),
		Amount:  dec("2000"),
		Method:  "upi",
	})
	require.NoError(t, err)

	rows, err := svc.Reports.RentCollection(ctx, day(t, "2025-01-01"), day(t, "2025-01-20"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, room.ID, rows[0].RoomID)
	assert.True(t, rows[0].Billed.Equal(dec("5000")))
	assert.True(t, rows[0].Paid.Equal(dec("2000")))
	assert.Equal(t, billing.PayPartial, rows[0].Status)
	assert.Equal(t, billing.BadgeOverdue, rows[0].Badge)
}

func TestElectricityReport(t *testing.T) {
	svc, db := newTestServices(t)
	_, room := seedActiveLease(t, svc, db)
	ctx := context.Background()

	require.NoError(t, store.SetSetting(db, model.SettingElectricityRate, "10.50"))
	_, err := svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-28"), Value: dec("100")})
	require.NoError(t, err)
	_, err = svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-02-25"), Value: dec("150")})
	require.NoError(t, err)

	rows, err := svc.Reports.Electricity(ctx, day(t, "2025-02-01"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Units.Equal(dec("50")))
	assert.True(t, rows[0].Amount.Equal(dec("525.00")), "amount %s", rows[0].Amount)
}

func TestDashboardCounts(t *testing.T) {
	svc, db := newTestServices(t)
	_, _ = seedActiveLease(t, svc, db)
	ctx := context.Background()

	d, err := svc.Reports.BuildDashboard(ctx, day(t, "2025-01-20"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Buildings)
	assert.Equal(t, int64(6), d.Rooms)
	assert.Equal(t, int64(1), d.Occupied)
	assert.Equal(t, int64(5), d.Vacant)
	assert.Equal(t, int64(1), d.ActiveLeases)
	assert.True(t, d.MonthBilled.Equal(dec("5000")))
	assert.Equal(t, 1, d.OverdueInvoices)
	assert.Equal(t, 16, d.OccupancyPercent)

	require.Len(t, d.Series, 6)
	assert.Equal(t, "2024-08", d.Series[0].Month)
	last := d.Series[5]
	assert.Equal(t, "2025-01", last.Month)
	assert.True(t, last.Billed.Equal(dec("5000")))
}
