package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/event"
	"github.com/rentdesk/rentdesk/internal/model"
)

// MeterService records electricity meter readings.
type MeterService struct {
	db  *gorm.DB
	rec event.Recorder
}

// ReadingInput is one meter sample.
type ReadingInput struct {
	RoomID uint
	Date   time.Time
	Value  decimal.Decimal
}

// Add records a reading. A second reading on the same date updates the
// existing row. The value must keep the room's series non-decreasing
// against both the previous and the next reading.
func (s *MeterService) Add(ctx context.Context, in ReadingInput) (*model.MeterReading, error) {
	reading, err := s.addTx(s.db.WithContext(ctx), in)
	if err != nil {
		return nil, err
	}

	var room model.Room
	if err := s.db.WithContext(ctx).First(&room, in.RoomID).Error; err == nil {
		_ = s.rec.Record(ctx, event.NewReadingRecorded(
			reading.ID, room.ID, room.RoomNumber, reading.ReadingValue, reading.ReadingDate))
	}
	return reading, nil
}

// BulkAdd records readings for many rooms in one transaction. Any invalid
// entry rejects the whole batch.
func (s *MeterService) BulkAdd(ctx context.Context, entries []ReadingInput) ([]model.MeterReading, error) {
	if len(entries) == 0 {
		return nil, Invalid("no readings provided")
	}

	var out []model.MeterReading
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		out = out[:0]
		for _, in := range entries {
			r, err := s.addTx(tx, in)
			if err != nil {
				return err
			}
			out = append(out, *r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, r := range out {
		var room model.Room
		if err := s.db.WithContext(ctx).First(&room, r.RoomID).Error; err == nil {
			_ = s.rec.Record(ctx, event.NewReadingRecorded(
				r.ID, room.ID, room.RoomNumber, r.ReadingValue, r.ReadingDate))
		}
	}
	return out, nil
}

func (s *MeterService) addTx(tx *gorm.DB, in ReadingInput) (*model.MeterReading, error) {
	if in.Value.IsNegative() {
		return nil, Invalid("reading value cannot be negative")
	}
	date := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, time.UTC)

	var room model.Room
	if err := tx.First(&room, in.RoomID).Error; err != nil {
		return nil, err
	}

	var prev model.MeterReading
	err := tx.Where("room_id = ? AND reading_date < ?", in.RoomID, date).
		Order("reading_date DESC").First(&prev).Error
	if err == nil && in.Value.LessThan(prev.ReadingValue) {
		return nil, Invalid("reading %s is below the previous reading %s for room %s",
			in.Value.StringFixed(2), prev.ReadingValue.StringFixed(2), room.RoomNumber)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var next model.MeterReading
	err = tx.Where("room_id = ? AND reading_date > ?", in.RoomID, date).
		Order("reading_date ASC").First(&next).Error
	if err == nil && in.Value.GreaterThan(next.ReadingValue) {
		return nil, Invalid("reading %s is above the later reading %s for room %s",
			in.Value.StringFixed(2), next.ReadingValue.StringFixed(2), room.RoomNumber)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var existing model.MeterReading
	err = tx.Where("room_id = ? AND reading_date = ?", in.RoomID, date).First(&existing).Error
	if err == nil {
		existing.ReadingValue = in.Value
		if err := tx.Model(&model.MeterReading{}).Where("id = ?", existing.ID).
			Update("reading_value", in.Value).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reading := model.MeterReading{
		RoomID:       in.RoomID,
		ReadingDate:  date,
		ReadingValue: in.Value,
	}
	if err := tx.Create(&reading).Error; err != nil {
		return nil, err
	}
	return &reading, nil
}

// ListForRoom returns a room's readings, newest first.
func (s *MeterService) ListForRoom(ctx context.Context, roomID uint, limit int) ([]model.MeterReading, error) {
	q := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("reading_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []model.MeterReading
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
