package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/model"
)

func TestMeterAddAndUpdateInPlace(t *testing.T) {
	svc, db := newTestServices(t)
	b := seedBuilding(t, svc)
	room := firstRoom(t, db, b.ID)
	ctx := context.Background()

	first, err := svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-10"), Value: dec("100")})
	require.NoError(t, err)

	second, err := svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-10"), Value: dec("105")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same-date reading updates in place")
	assert.True(t, second.ReadingValue.Equal(dec("105")))

	var count int64
	require.NoError(t, db.Model(&model.MeterReading{}).Where("room_id = ?", room.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMeterAddRejectsDecreasing(t *testing.T) {
	svc, db := newTestServices(t)
	b := seedBuilding(t, svc)
	room := firstRoom(t, db, b.ID)
	ctx := context.Background()

	_, err := svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-10"), Value: dec("100")})
	require.NoError(t, err)

	_, err = svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-20"), Value: dec("90")})
	assert.True(t, IsValidation(err), "decreasing reading must be rejected")
}

func TestMeterAddRejectsAboveLaterReading(t *testing.T) {
	svc, db := newTestServices(t)
	b := seedBuilding(t, svc)
	room := firstRoom(t, db, b.ID)
	ctx := context.Background()

	_, err := svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-10"), Value: dec("100")})
	require.NoError(t, err)
	_, err = svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-30"), Value: dec("150")})
	require.NoError(t, err)

	_, err = svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-20"), Value: dec("160")})
	assert.True(t, IsValidation(err), "backfilled reading above the later one must be rejected")

	mid, err := svc.Meters.Add(ctx, ReadingInput{RoomID: room.ID, Date: day(t, "2025-01-20"), Value: dec("120")})
	require.NoError(t, err)
	assert.True(t, mid.ReadingValue.Equal(dec("120")))
}

func TestMeterBulkAddAllOrNothing(t *testing.T) {
	svc, db := newTestServices(t)
	b := seedBuilding(t, svc)
	ctx := context.Background()

	var rooms []model.Room
	require.NoError(t, db.Where("building_id = ?", b.ID).Order("room_number").Limit(2).Find(&rooms).Error)

	_, err := svc.Meters.Add(ctx, ReadingInput{RoomID: rooms[1].ID, Date: day(t, "2025-01-01"), Value: dec("500")})
	require.NoError(t, err)

	_, err = svc.Meters.BulkAdd(ctx, []ReadingInput{
		{RoomID: rooms[0].ID, Date: day(t, "2025-01-15"), Value: dec("100")},
		{RoomID: rooms[1].ID, Date: day(t, "2025-01-15"), Value: dec("400")}, // below previous 500
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.MeterReading{}).
		Where("room_id = ?", rooms[0].ID).Count(&count).Error)
	assert.Equal(t, int64(0), count, "failed batch must not persist earlier entries")
}

func TestMeterBulkAddSuccess(t *testing.T) {
	svc, db := newTestServices(t)
	b := seedBuilding(t, svc)
	ctx := context.Background()

	var rooms []model.Room
	require.NoError(t, db.Where("building_id = ?", b.ID).Order("room_number").Limit(3).Find(&rooms).Error)

	entries := make([]ReadingInput, 0, len(rooms))
	for i, r := range rooms {
		entries = append(entries, ReadingInput{
			RoomID: r.ID,
			Date:   day(t, "2025-01-31"),
			Value:  dec("100").Add(decimal.NewFromInt(int64(10 * i))),
		})
	}
	out, err := svc.Meters.BulkAdd(ctx, entries)
	require.NoError(t, err)
	assert.Len(t, out, len(rooms))
}
