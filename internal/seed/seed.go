// Package seed fills the database with demo data for local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/event"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
	"github.com/rentdesk/rentdesk/internal/store"
)

var tenantNames = []string{
	"Asha Verma", "Ravi Kumar", "Priya Nair", "Amit Shah",
	"Sneha Kulkarni", "Vikram Singh", "Divya Menon", "Rahul Joshi",
	"Neha Gupta", "Arjun Reddy", "Kavita Iyer", "Sanjay Patel",
}

// Run seeds a demo building with tenants, leases, readings, and
// payments. If a building already exists the seed is skipped.
func Run(ctx context.Context, db *gorm.DB, pol config.BillingConfig, log *zap.Logger) error {
	var count int64
	if err := db.Model(&model.Building{}).Count(&count).Error; err != nil {
		return fmt.Errorf("checking buildings: %w", err)
	}
	if count > 0 {
		log.Info("demo data already seeded, skipping", zap.Int64("buildings", count))
		return nil
	}

	settings := map[string]string{
		model.SettingOrgName:         "Sunrise Property Management",
		model.SettingOrgAddress:      "12 MG Road, Pune 411001",
		model.SettingGSTIN:           "27ABCDE1234F1Z5",
		model.SettingCurrencySymbol:  "₹",
		model.SettingElectricityRate: "10.50",
	}
	for key, value := range settings {
		if err := store.SetSetting(db, key, value); err != nil {
			return fmt.Errorf("seeding setting %s: %w", key, err)
		}
	}

	svc := service.New(db, pol, event.NopRecorder{})

	building, err := svc.Buildings.BulkCreate(ctx, service.BulkCreateInput{
		Name:          "Sunrise Residency",
		Floors:        3,
		RoomsPerFloor: 4,
	})
	if err != nil {
		return fmt.Errorf("seeding building: %w", err)
	}

	var rooms []model.Room
	if err := db.Where("building_id = ?", building.ID).Order("room_number").Find(&rooms).Error; err != nil {
		return err
	}

	tenants := make([]*model.Tenant, 0, len(tenantNames))
	for i, name := range tenantNames {
		t, err := svc.Tenants.Create(ctx, service.TenantInput{
			FullName: name,
			Phone:    fmt.Sprintf("90000000%02d", i+1),
			Email:    fmt.Sprintf("tenant%02d@example.com", i+1),
		})
		if err != nil {
			return fmt.Errorf("seeding tenant %s: %w", name, err)
		}
		tenants = append(tenants, t)
	}

	now := time.Now().UTC()
	thisMonth := model.MonthStart(now)
	lastMonth := thisMonth.AddDate(0, -1, 0)

	// Occupy eight of the twelve rooms; leave the rest vacant plus one
	// under maintenance.
	occupied := 8
	if occupied > len(rooms) {
		occupied = len(rooms)
	}
	for i := 0; i < occupied; i++ {
		rent := decimal.NewFromInt(int64(4500 + 250*i))
		lease, err := svc.Leases.Create(ctx, service.CreateLeaseInput{
			TenantID:    tenants[i].ID,
			RoomID:      rooms[i].ID,
			StartDate:   lastMonth,
			MonthlyRent: rent,
			Deposit:     rent.Mul(decimal.NewFromInt(2)),
		})
		if err != nil {
			return fmt.Errorf("seeding lease for room %s: %w", rooms[i].RoomNumber, err)
		}

		base := decimal.NewFromInt(int64(1000 + 120*i))
		readings := []service.ReadingInput{
			{RoomID: rooms[i].ID, Date: lastMonth, Value: base},
			{RoomID: rooms[i].ID, Date: thisMonth.AddDate(0, 0, -3), Value: base.Add(decimal.NewFromInt(int64(40 + 15*i)))},
		}
		if _, err := svc.Meters.BulkAdd(ctx, readings); err != nil {
			return fmt.Errorf("seeding readings for room %s: %w", rooms[i].RoomNumber, err)
		}

		// Alternate paid, partial, and unpaid rooms so the dashboard
		// shows every badge state.
		switch i % 3 {
		case 0:
			_, err = svc.Payments.Record(ctx, service.RecordInput{
				LeaseID: lease.ID,
				PaidOn:  lastMonth.AddDate(0, 0, 2),
				Amount:  rent,
				Method:  "upi",
			})
		case 1:
			_, err = svc.Payments.Record(ctx, service.RecordInput{
				LeaseID: lease.ID,
				PaidOn:  lastMonth.AddDate(0, 0, 4),
				Amount:  rent.Div(decimal.NewFromInt(2)).Round(2),
				Method:  "cash",
			})
		}
		if err != nil {
			return fmt.Errorf("seeding payment for room %s: %w", rooms[i].RoomNumber, err)
		}
	}

	if occupied < len(rooms) {
		last := rooms[len(rooms)-1]
		if _, err := svc.Rooms.SetStatus(ctx, last.ID, model.RoomMaintenance); err != nil {
			return fmt.Errorf("seeding maintenance room: %w", err)
		}
	}

	log.Info("demo data seeded",
		zap.String("building", building.Name),
		zap.Int("rooms", len(rooms)),
		zap.Int("tenants", len(tenants)),
		zap.Int("leases", occupied))
	return nil
}

// Clear drops all domain rows. Used by the seed command's --clear flag.
func Clear(db *gorm.DB) error {
	tables := []any{
		&model.InvoiceItem{},
		&model.Invoice{},
		&model.RentPayment{},
		&model.MeterReading{},
		&model.Lease{},
		&model.Tenant{},
		&model.Room{},
		&model.Floor{},
		&model.Building{},
		&model.Setting{},
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
