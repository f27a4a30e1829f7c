package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/event"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/store"
)

func newTestServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db, err := store.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	pol := config.BillingConfig{DueDayOffset: 5, DueSoonDays: 3, RecentInvoices: 6}
	return New(db, pol, event.NopRecorder{}), db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func seedBuilding(t *testing.T, svc *Services) *model.Building {
	t.Helper()
	b, err := svc.Buildings.BulkCreate(context.Background(), BulkCreateInput{
		Name:          "Sunrise Residency",
		Floors:        2,
		RoomsPerFloor: 3,
	})
	require.NoError(t, err)
	return b
}

func firstRoom(t *testing.T, db *gorm.DB, buildingID uint) model.Room {
	t.Helper()
	var room model.Room
	require.NoError(t, db.Where("building_id = ?", buildingID).Order("room_number").First(&room).Error)
	return room
}

func seedTenant(t *testing.T, svc *Services, name string) *model.Tenant {
	t.Helper()
	tenant, err := svc.Tenants.Create(context.Background(), TenantInput{FullName: name, Phone: "9000000001"})
	require.NoError(t, err)
	return tenant
}

func seedActiveLease(t *testing.T, svc *Services, db *gorm.DB) (*model.Lease, model.Room) {
	t.Helper()
	b := seedBuilding(t, svc)
	room := firstRoom(t, db, b.ID)
	tenant := seedTenant(t, svc, "Asha Verma")
	lease, err := svc.Leases.Create(context.Background(), CreateLeaseInput{
		TenantID:    tenant.ID,
		RoomID:      room.ID,
		StartDate:   day(t, "2025-01-10"),
		MonthlyRent: dec("5000"),
		Deposit:     dec("10000"),
	})
	require.NoError(t, err)
	return lease, room
}
