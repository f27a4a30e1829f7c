package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/event"
	"github.com/rentdesk/rentdesk/internal/model"
)

// Bulk creation bounds.
const (
	MaxFloors        = 50
	MaxRoomsPerFloor = 100
)

// BuildingService creates and queries buildings.
type BuildingService struct {
	db  *gorm.DB
	rec event.Recorder
}

// BulkCreateInput describes a building with a uniform floor/room grid.
type BulkCreateInput struct {
	Name          string
	Floors        int
	RoomsPerFloor int
	RoomPrefix    string
}

// BulkCreate creates a building with its floors and rooms in one
// transaction. Room numbers follow prefix + floor number + two-digit
// room index, so floor 2 room 3 with prefix "A" is "A203".
func (s *BuildingService) BulkCreate(ctx context.Context, in BulkCreateInput) (*model.Building, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, Invalid("building name is required")
	}
	if in.Floors < 1 || in.Floors > MaxFloors {
		return nil, Invalid("floors must be between 1 and %d", MaxFloors)
	}
	if in.RoomsPerFloor < 1 || in.RoomsPerFloor > MaxRoomsPerFloor {
		return nil, Invalid("rooms per floor must be between 1 and %d", MaxRoomsPerFloor)
	}

	var existing model.Building
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&existing).Error
	if err == nil {
		return nil, Invalid("a building named %q already exists", existing.Name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	building := model.Building{Name: name}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&building).Error; err != nil {
			return err
		}
		for f := 1; f <= in.Floors; f++ {
			floor := model.Floor{BuildingID: building.ID, FloorNumber: f}
			if err := tx.Create(&floor).Error; err != nil {
				return err
			}
			for r := 1; r <= in.RoomsPerFloor; r++ {
				room := model.Room{
					BuildingID: building.ID,
					FloorID:    floor.ID,
					RoomNumber: fmt.Sprintf("%s%d%02d", in.RoomPrefix, f, r),
					Status:     model.RoomVacant,
				}
				if err := tx.Create(&room).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.rec.Record(ctx, event.NewBuildingCreated(
		building.ID, building.Name, in.Floors, in.Floors*in.RoomsPerFloor))
	return &building, nil
}

// Get returns a building with its floors and rooms preloaded, rooms
// ordered by number within each floor.
func (s *BuildingService) Get(ctx context.Context, id uint) (*model.Building, error) {
	var b model.Building
	err := s.db.WithContext(ctx).
		Preload("Floors", func(db *gorm.DB) *gorm.DB { return db.Order("floor_number") }).
		Preload("Floors.Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("room_number") }).
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns all buildings ordered by name.
func (s *BuildingService) List(ctx context.Context) ([]model.Building, error) {
	var out []model.Building
	if err := s.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a building and everything under it.
func (s *BuildingService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Building{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
