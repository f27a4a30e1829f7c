// Package billing computes electricity bills and room finance snapshots.
// Everything here is read-only over the store; mutations live in service.
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/store"
)

// ErrNegativeDelta is returned when a current reading is below the
// previous one. Readings must be monotonically non-decreasing.
var ErrNegativeDelta = errors.New("current reading cannot be less than previous reading")

// Rate returns the electricity rate per unit from settings, zero when
// unset or unparseable.
func Rate(db *gorm.DB) decimal.Decimal {
	raw := store.SettingValue(db, model.SettingElectricityRate, "0")
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// ComputeUnits returns the units consumed between two readings. A missing
// previous or current reading yields zero (first month has no baseline).
func ComputeUnits(previous, current *decimal.Decimal) (decimal.Decimal, error) {
	if previous == nil || current == nil {
		return decimal.Zero, nil
	}
	delta := current.Sub(*previous)
	if delta.IsNegative() {
		return decimal.Zero, ErrNegativeDelta
	}
	return delta, nil
}

// Bill is the result of a units × rate computation.
type Bill struct {
	Units decimal.Decimal `json:"units"`
	Rate  decimal.Decimal `json:"rate"`
	Total decimal.Decimal `json:"total"`
}

// ComputeBill prices the consumption between two readings, rounding
// half-up to two decimal places.
func ComputeBill(previous, current *decimal.Decimal, rate decimal.Decimal) (Bill, error) {
	units, err := ComputeUnits(previous, current)
	if err != nil {
		return Bill{}, err
	}
	return Bill{
		Units: units,
		Rate:  rate,
		Total: units.Mul(rate).Round(2),
	}, nil
}

// MonthReadings returns the previous reading (latest before the month) and
// the current reading (latest within the month) for a room. Either may be
// nil when no such reading exists.
func MonthReadings(db *gorm.DB, roomID uint, year int, month time.Month) (previous, current *decimal.Decimal, err error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	var prev model.MeterReading
	res := db.Where("room_id = ? AND reading_date < ?", roomID, first).
		Order("reading_date DESC").First(&prev)
	if res.Error == nil {
		previous = &prev.ReadingValue
	} else if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, nil, res.Error
	}

	var curr model.MeterReading
	res = db.Where("room_id = ? AND reading_date >= ? AND reading_date < ?", roomID, first, next).
		Order("reading_date DESC").First(&curr)
	if res.Error == nil {
		current = &curr.ReadingValue
	} else if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, nil, res.Error
	}

	return previous, current, nil
}

// MonthBill is a full electricity bill for a room and month.
type MonthBill struct {
	RoomID          uint             `json:"room_id"`
	Month           string           `json:"month"`
	PreviousReading *decimal.Decimal `json:"previous_reading"`
	CurrentReading  *decimal.Decimal `json:"current_reading"`
	Units           decimal.Decimal  `json:"units"`
	Rate            decimal.Decimal  `json:"rate"`
	Total           decimal.Decimal  `json:"total"`
	// Err carries a reading problem (negative delta) as display text; the
	// bill degrades to zero rather than failing the page.
	Err string `json:"error,omitempty"`
}

// CalcMonthBill computes the electricity bill for a room and month using
// the persisted rate. The room must exist; a bad reading pair degrades to
// a zero bill with Err set.
func CalcMonthBill(db *gorm.DB, roomID uint, year int, month time.Month) (MonthBill, error) {
	var room model.Room
	if err := db.First(&room, roomID).Error; err != nil {
		return MonthBill{}, fmt.Errorf("room %d: %w", roomID, err)
	}

	previous, current, err := MonthReadings(db, roomID, year, month)
	if err != nil {
		return MonthBill{}, err
	}
	rate := Rate(db)

	mb := MonthBill{
		RoomID:          roomID,
		Month:           fmt.Sprintf("%04d-%02d", year, month),
		PreviousReading: previous,
		CurrentReading:  current,
		Rate:            rate,
	}

	bill, err := ComputeBill(previous, current, rate)
	if err != nil {
		mb.Err = err.Error()
		return mb, nil
	}
	mb.Units = bill.Units
	mb.Total = bill.Total
	return mb, nil
}

// ValidateMonotonic reports whether a reading at the given date would keep
// the room's reading series non-decreasing.
func ValidateMonotonic(db *gorm.DB, roomID uint, readingDate time.Time, value decimal.Decimal) (bool, error) {
	var prev model.MeterReading
	err := db.Where("room_id = ? AND reading_date < ?", roomID, readingDate).
		Order("reading_date DESC").First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return !value.LessThan(prev.ReadingValue), nil
}
