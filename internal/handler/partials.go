package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/billing"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/store"
)

var two = decimal.NewFromInt(2)

func (h *Web) renderPartial(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.render.Partial(w, name, data); err != nil {
		h.log.Error("rendering partial failed", zap.String("partial", name), zap.Error(err))
	}
}

// FloorRooms renders the room card grid for one floor, each card carrying
// the room's finance snapshot.
func (h *Web) FloorRooms(w http.ResponseWriter, r *http.Request) {
	floorID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var floor model.Floor
	if err := h.db.WithContext(r.Context()).
		Preload("Rooms", func(db *gorm.DB) *gorm.DB { return db.Order("room_number") }).
		First(&floor, floorID).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	db := h.db.WithContext(r.Context())
	snaps := make([]billing.Snapshot, 0, len(floor.Rooms))
	for _, room := range floor.Rooms {
		snap, err := billing.RoomSnapshot(db, h.pol, room.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		snaps = append(snaps, snap)
	}
	h.renderPartial(w, "floor_rooms.html", map[string]any{"Rooms": snaps})
}

// RoomPanel renders the room drawer. Opening the panel for an occupied
// room lazily creates the current month's rent invoice, so the first
// view of a month always has something to collect against.
func (h *Web) RoomPanel(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()
	db := h.db.WithContext(ctx)
	now := time.Now().UTC()

	room, err := h.svc.Rooms.Get(ctx, roomID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if _, err := h.svc.Invoices.EnsureMonthRent(ctx, roomID, now); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	snap, err := billing.RoomSnapshotAt(db, h.pol, roomID, now)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var invoice *model.Invoice
	if snap.InvoiceID != 0 {
		invoice, err = h.svc.Invoices.Get(ctx, snap.InvoiceID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	readings, err := h.svc.Meters.ListForRoom(ctx, roomID, 6)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	tenants, err := h.svc.Tenants.List(ctx, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	halfAmount := ""
	if invoice != nil {
		// Pre-fill half the total so a one-click partial matches the
		// common half-now, half-later arrangement.
		halfAmount = invoice.Total.Div(two).Round(2).StringFixed(2)
	}

	h.renderPartial(w, "room_panel.html", map[string]any{
		"Room":           room,
		"Snapshot":       snap,
		"Invoice":        invoice,
		"Readings":       readings,
		"Tenants":        tenants,
		"HalfAmount":     halfAmount,
		"Today":          now.Format("2006-01-02"),
		"CurrentMonth":   now.Format("2006-01"),
		"CurrencySymbol": store.SettingValue(db, model.SettingCurrencySymbol, h.org.CurrencySymbol),
	})
}
