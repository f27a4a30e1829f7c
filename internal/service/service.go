// Package service implements the business operations over the store:
// lease lifecycle, billing, payments, meter readings, and bulk property
// setup. Handlers call services; services own transactions and emit
// domain events after commit.
package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/event"
)

// ErrDuplicateInvoice is returned when a room already has an invoice for
// the requested month.
var ErrDuplicateInvoice = errors.New("an invoice already exists for this room and month")

// ValidationError marks a request that fails a business rule. Handlers map
// it to a 400 response.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Services bundles all business services over one database handle.
type Services struct {
	Buildings *BuildingService
	Rooms     *RoomService
	Tenants   *TenantService
	Leases    *LeaseService
	Invoices  *InvoiceService
	Meters    *MeterService
	Payments  *PaymentService
	Reports   *ReportService
}

// New wires every service with the shared database, billing policy, and
// event recorder.
func New(db *gorm.DB, pol config.BillingConfig, rec event.Recorder) *Services {
	return &Services{
		Buildings: &BuildingService{db: db, rec: rec},
		Rooms:     &RoomService{db: db},
		Tenants:   &TenantService{db: db},
		Leases:    &LeaseService{db: db, rec: rec},
		Invoices:  &InvoiceService{db: db, pol: pol, rec: rec},
		Meters:    &MeterService{db: db, rec: rec},
		Payments:  &PaymentService{db: db, rec: rec},
		Reports:   &ReportService{db: db, pol: pol},
	}
}
