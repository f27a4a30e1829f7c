// Package event defines domain events and their recording path. Service
// methods emit events after their transaction commits; the recorder fans
// them into the activity feed and onto the in-process bus.
package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntityRef points an event at one of the entities it concerns.
type EntityRef struct {
	EntityType string `json:"entity_type"`
	EntityID   uint   `json:"entity_id"`
	Role       string `json:"role"` // "subject", "target", "context"
}

// DomainEvent is the canonical shape of every domain event.
type DomainEvent struct {
	ID               string
	EventType        string
	OccurredAt       time.Time
	AffectedEntities []EntityRef
	Summary          string
	Category         string // "lease", "billing", "payment", "meter", "property"
	Payload          map[string]any
}

func newEvent(eventType, category, summary string, refs []EntityRef, payload map[string]any) DomainEvent {
	return DomainEvent{
		ID:               uuid.New().String(),
		EventType:        eventType,
		OccurredAt:       time.Now().UTC(),
		AffectedEntities: refs,
		Summary:          summary,
		Category:         category,
		Payload:          payload,
	}
}

// NewLeaseStarted records a tenant being assigned to a room.
func NewLeaseStarted(leaseID, roomID, tenantID uint, tenantName, roomNumber string, rent decimal.Decimal) DomainEvent {
	return newEvent("lease_started", "lease",
		fmt.Sprintf("%s moved into room %s at rent %s", tenantName, roomNumber, rent.StringFixed(2)),
		[]EntityRef{
			{EntityType: "lease", EntityID: leaseID, Role: "subject"},
			{EntityType: "room", EntityID: roomID, Role: "target"},
			{EntityType: "tenant", EntityID: tenantID, Role: "context"},
		},
		map[string]any{
			"lease_id":     leaseID,
			"room_id":      roomID,
			"tenant_id":    tenantID,
			"monthly_rent": rent.String(),
		})
}

// NewLeaseEnded records a lease being closed and the room freed.
func NewLeaseEnded(leaseID, roomID, tenantID uint, roomNumber string, endDate time.Time) DomainEvent {
	return newEvent("lease_ended", "lease",
		fmt.Sprintf("Lease ended for room %s on %s", roomNumber, endDate.Format("2006-01-02")),
		[]EntityRef{
			{EntityType: "lease", EntityID: leaseID, Role: "subject"},
			{EntityType: "room", EntityID: roomID, Role: "target"},
			{EntityType: "tenant", EntityID: tenantID, Role: "context"},
		},
		map[string]any{
			"lease_id": leaseID,
			"room_id":  roomID,
			"end_date": endDate.Format("2006-01-02"),
		})
}

// NewInvoiceCreated records a new invoice for a room and month.
func NewInvoiceCreated(invoiceID, roomID uint, roomNumber, month, invoiceType string, total decimal.Decimal) DomainEvent {
	return newEvent("invoice_created", "billing",
		fmt.Sprintf("%s invoice of %s created for room %s (%s)", invoiceType, total.StringFixed(2), roomNumber, month),
		[]EntityRef{
			{EntityType: "invoice", EntityID: invoiceID, Role: "subject"},
			{EntityType: "room", EntityID: roomID, Role: "target"},
		},
		map[string]any{
			"invoice_id": invoiceID,
			"room_id":    roomID,
			"month":      month,
			"type":       invoiceType,
			"total":      total.String(),
		})
}

// NewPaymentRecorded records money received against a lease.
func NewPaymentRecorded(paymentID, leaseID, roomID uint, roomNumber string, amount decimal.Decimal, paidOn time.Time) DomainEvent {
	return newEvent("payment_recorded", "payment",
		fmt.Sprintf("Payment of %s received for room %s", amount.StringFixed(2), roomNumber),
		[]EntityRef{
			{EntityType: "payment", EntityID: paymentID, Role: "subject"},
			{EntityType: "lease", EntityID: leaseID, Role: "context"},
			{EntityType: "room", EntityID: roomID, Role: "target"},
		},
		map[string]any{
			"payment_id": paymentID,
			"lease_id":   leaseID,
			"room_id":    roomID,
			"amount":     amount.String(),
			"paid_on":    paidOn.Format("2006-01-02"),
		})
}

// NewReadingRecorded records a meter reading for a room.
func NewReadingRecorded(readingID, roomID uint, roomNumber string, value decimal.Decimal, date time.Time) DomainEvent {
	return newEvent("reading_recorded", "meter",
		fmt.Sprintf("Meter reading %s recorded for room %s", value.StringFixed(2), roomNumber),
		[]EntityRef{
			{EntityType: "reading", EntityID: readingID, Role: "subject"},
			{EntityType: "room", EntityID: roomID, Role: "target"},
		},
		map[string]any{
			"reading_id": readingID,
			"room_id":    roomID,
			"value":      value.String(),
			"date":       date.Format("2006-01-02"),
		})
}

// NewBuildingCreated records a bulk building setup.
func NewBuildingCreated(buildingID uint, name string, floors, rooms int) DomainEvent {
	return newEvent("building_created", "property",
		fmt.Sprintf("Building %q created with %d floors and %d rooms", name, floors, rooms),
		[]EntityRef{
			{EntityType: "building", EntityID: buildingID, Role: "subject"},
		},
		map[string]any{
			"building_id": buildingID,
			"name":        name,
			"floors":      floors,
			"rooms":       rooms,
		})
}

// NewInvoiceStatusChanged records a paid/partial/unpaid change on an invoice.
func NewInvoiceStatusChanged(invoiceID, roomID uint, roomNumber, month, status string) DomainEvent {
	return newEvent("invoice_status_changed", "billing",
		fmt.Sprintf("Invoice for room %s (%s) marked %s", roomNumber, month, status),
		[]EntityRef{
			{EntityType: "invoice", EntityID: invoiceID, Role: "subject"},
			{EntityType: "room", EntityID: roomID, Role: "target"},
		},
		map[string]any{
			"invoice_id": invoiceID,
			"room_id":    roomID,
			"month":      month,
			"status":     status,
		})
}
