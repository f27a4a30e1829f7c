package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/model"
)

// RoomService updates room metadata and status.
type RoomService struct {
	db *gorm.DB
}

// SetStatus changes a room's status. Occupied is owned by the lease
// lifecycle and cannot be set by hand; a room with an active lease can
// only leave occupied by ending the lease.
func (s *RoomService) SetStatus(ctx context.Context, roomID uint, status string) (*model.Room, error) {
	if status != model.RoomVacant && status != model.RoomMaintenance {
		return nil, Invalid("status must be vacant or maintenance")
	}

	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, roomID).Error; err != nil {
		return nil, err
	}

	var lease model.Lease
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND status = ?", roomID, model.LeaseActive).
		First(&lease).Error
	if err == nil {
		return nil, Invalid("room %s has an active lease; end it first", room.RoomNumber)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ?", roomID).Update("status", status).Error; err != nil {
		return nil, err
	}
	room.Status = status
	return &room, nil
}

// SetNotes replaces the room's free-form notes.
func (s *RoomService) SetNotes(ctx context.Context, roomID uint, notes string) (*model.Room, error) {
	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, roomID).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ?", roomID).Update("notes", notes).Error; err != nil {
		return nil, err
	}
	room.Notes = notes
	return &room, nil
}

// Get returns a room with its building and floor preloaded.
func (s *RoomService) Get(ctx context.Context, id uint) (*model.Room, error) {
	var room model.Room
	err := s.db.WithContext(ctx).
		Preload("Building").Preload("Floor").
		First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// List returns rooms, optionally filtered by building and status.
func (s *RoomService) List(ctx context.Context, buildingID uint, status string) ([]model.Room, error) {
	q := s.db.WithContext(ctx).Preload("Building").Preload("Floor").Order("room_number")
	if buildingID != 0 {
		q = q.Where("building_id = ?", buildingID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []model.Room
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
