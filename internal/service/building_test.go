package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/model"
)

func TestBulkCreateBuildsGrid(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	b, err := svc.Buildings.BulkCreate(ctx, BulkCreateInput{
		Name:          "Sunrise Residency",
		Floors:        3,
		RoomsPerFloor: 10,
	})
	require.NoError(t, err)

	var floors, rooms int64
	require.NoError(t, db.Model(&model.Floor{}).Where("building_id = ?", b.ID).Count(&floors).Error)
	require.NoError(t, db.Model(&model.Room{}).Where("building_id = ?", b.ID).Count(&rooms).Error)
	assert.Equal(t, int64(3), floors)
	assert.Equal(t, int64(30), rooms)
}

func TestBulkCreateRoomNumbering(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	b, err := svc.Buildings.BulkCreate(ctx, BulkCreateInput{
		Name:          "Annex",
		Floors:        2,
		RoomsPerFloor: 3,
		RoomPrefix:    "A",
	})
	require.NoError(t, err)

	var numbers []string
	require.NoError(t, db.Model(&model.Room{}).Where("building_id = ?", b.ID).
		Order("room_number").Pluck("room_number", &numbers).Error)
	assert.Equal(t, []string{"A101", "A102", "A103", "A201", "A202", "A203"}, numbers)
}

func TestBulkCreateRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Buildings.BulkCreate(ctx, BulkCreateInput{Name: "Sunrise", Floors: 1, RoomsPerFloor: 1})
	require.NoError(t, err)

	_, err = svc.Buildings.BulkCreate(ctx, BulkCreateInput{Name: "SUNRISE", Floors: 1, RoomsPerFloor: 1})
	assert.True(t, IsValidation(err), "expected validation error, got %v", err)
}

func TestBulkCreateBounds(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	cases := []BulkCreateInput{
		{Name: "B1", Floors: 0, RoomsPerFloor: 1},
		{Name: "B2", Floors: 51, RoomsPerFloor: 1},
		{Name: "B3", Floors: 1, RoomsPerFloor: 0},
		{Name: "B4", Floors: 1, RoomsPerFloor: 101},
		{Name: "   ", Floors: 1, RoomsPerFloor: 1},
	}
	for _, in := range cases {
		_, err := svc.Buildings.BulkCreate(ctx, in)
		assert.True(t, IsValidation(err), "input %+v should be rejected", in)
	}
}

func TestBulkCreateRollsBackOnFailure(t *testing.T) {
	svc, db := newTestServices(t)
	ctx := context.Background()

	// Force a mid-transaction failure with a pre-existing room number.
	b, err := svc.Buildings.BulkCreate(ctx, BulkCreateInput{Name: "First", Floors: 1, RoomsPerFloor: 1})
	require.NoError(t, err)
	_ = b

	var before int64
	require.NoError(t, db.Model(&model.Building{}).Count(&before).Error)

	_, err = svc.Buildings.BulkCreate(ctx, BulkCreateInput{Name: "first", Floors: 1, RoomsPerFloor: 1})
	require.Error(t, err)

	var after int64
	require.NoError(t, db.Model(&model.Building{}).Count(&after).Error)
	assert.Equal(t, before, after)
}
