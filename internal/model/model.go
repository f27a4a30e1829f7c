// Package model defines the persistent entities for the rental ledger.
package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Room status values.
const (
	RoomVacant      = "vacant"
	RoomOccupied    = "occupied"
	RoomMaintenance = "maintenance"
)

// Lease status values.
const (
	LeaseActive = "active"
	LeaseEnded  = "ended"
)

// Invoice types.
const (
	InvoiceRent        = "rent"
	InvoiceElectricity = "electricity"
	InvoiceCombined    = "combined"
)

// Well-known setting keys.
const (
	SettingElectricityRate = "electricity_rate_per_unit"
	SettingOrgName         = "org_name"
	SettingOrgAddress      = "address"
	SettingGSTIN           = "gstin"
	SettingCurrencySymbol  = "currency_symbol"
)

// Building is the top-level grouping for floors and rooms.
type Building struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Floors []Floor `gorm:"constraint:OnDelete:CASCADE" json:"floors,omitempty"`
	Rooms  []Room  `gorm:"constraint:OnDelete:CASCADE" json:"rooms,omitempty"`
}

// Floor belongs to a building; floor numbers are unique within it.
type Floor struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	BuildingID  uint      `gorm:"not null;uniqueIndex:idx_floors_building_number" json:"building_id"`
	Building    *Building `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	FloorNumber int       `gorm:"not null;uniqueIndex:idx_floors_building_number" json:"floor_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Rooms []Room `gorm:"constraint:OnDelete:CASCADE" json:"rooms,omitempty"`
}

// Room is the unit being leased. RoomNumber is unique per building.
type Room struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BuildingID uint      `gorm:"not null;uniqueIndex:idx_rooms_building_number" json:"building_id"`
	Building   *Building `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	FloorID    uint      `gorm:"not null" json:"floor_id"`
	Floor      *Floor    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RoomNumber string    `gorm:"size:20;not null;uniqueIndex:idx_rooms_building_number" json:"room_number"`
	Status     string    `gorm:"size:20;not null;default:vacant;index" json:"status"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Leases        []Lease        `gorm:"constraint:OnDelete:CASCADE" json:"leases,omitempty"`
	Invoices      []Invoice      `gorm:"constraint:OnDelete:CASCADE" json:"invoices,omitempty"`
	MeterReadings []MeterReading `gorm:"constraint:OnDelete:CASCADE" json:"meter_readings,omitempty"`
}

// Label renders the conventional "Building - Floor N - Room X" display name.
func (r Room) Label() string {
	name := "Room " + r.RoomNumber
	if r.Floor != nil {
		name = "Floor " + strconv.Itoa(r.Floor.FloorNumber) + " - " + name
	}
	if r.Building != nil {
		name = r.Building.Name + " - " + name
	}
	return name
}

// Tenant is a person who can hold leases.
type Tenant struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FullName   string    `gorm:"size:100;not null;index" json:"full_name"`
	Phone      string    `gorm:"size:15" json:"phone"`
	Email      string    `gorm:"size:254" json:"email"`
	IDProofURL string    `gorm:"size:500" json:"id_proof_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Leases []Lease `gorm:"constraint:OnDelete:CASCADE" json:"leases,omitempty"`
}

// Lease binds a tenant to a room for a period at a monthly rent.
// At most one active lease may exist per room at any time; the partial
// unique index created in store.Migrate is the authoritative guard.
type Lease struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TenantID    uint            `gorm:"not null;index" json:"tenant_id"`
	Tenant      *Tenant         `json:"-"`
	RoomID      uint            `gorm:"not null;index:idx_leases_room_status" json:"room_id"`
	Room        *Room           `json:"-"`
	StartDate   time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate     *time.Time      `gorm:"type:date" json:"end_date,omitempty"`
	MonthlyRent decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"monthly_rent"`
	Deposit     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"deposit"`
	BillingDay  int             `gorm:"not null;default:1" json:"billing_day"`
	Status      string          `gorm:"size:20;not null;default:active;index:idx_leases_room_status" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Payments []RentPayment `gorm:"constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

// RentPayment records money received against a lease. Payment status of an
// invoice is derived from payments in the invoice month, never stored.
type RentPayment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	LeaseID   uint            `gorm:"not null;index" json:"lease_id"`
	Lease     *Lease          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PaidOn    time.Time       `gorm:"type:date;not null;index" json:"paid_on"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method    string          `gorm:"size:40" json:"method"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MeterReading is an electricity meter sample for a room. Readings must be
// non-decreasing over time so consumed units can be derived.
type MeterReading struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	RoomID       uint            `gorm:"not null;uniqueIndex:idx_readings_room_date" json:"room_id"`
	Room         *Room           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ReadingDate  time.Time       `gorm:"type:date;not null;uniqueIndex:idx_readings_room_date" json:"reading_date"`
	ReadingValue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"reading_value"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Invoice is a billable record for a room and month. Month is always
// truncated to the first of the month.
type Invoice struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	RoomID    uint            `gorm:"not null;uniqueIndex:idx_invoices_room_month_type" json:"room_id"`
	Room      *Room           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Month     time.Time       `gorm:"type:date;not null;uniqueIndex:idx_invoices_room_month_type" json:"month"`
	Type      string          `gorm:"size:20;not null;uniqueIndex:idx_invoices_room_month_type" json:"type"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Tax       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"tax"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	PDFURL    string          `gorm:"size:500" json:"pdf_url"`
	Meta      map[string]any  `gorm:"serializer:json" json:"meta"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Items []InvoiceItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Period renders the invoice month as YYYY-MM.
func (i Invoice) Period() string {
	return i.Month.Format("2006-01")
}

// InvoiceItem is a single line under an invoice.
type InvoiceItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	InvoiceID uint            `gorm:"not null;index" json:"invoice_id"`
	Invoice   *Invoice        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Label     string          `gorm:"not null" json:"label"`
	Qty       decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"qty"`
	Rate      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rate"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Meta      map[string]any  `gorm:"serializer:json" json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Setting is a persisted key/value configuration row. Read it through
// store.SettingValue rather than caching values in package globals.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:50" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
