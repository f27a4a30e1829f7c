package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/billing"
	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
	"github.com/rentdesk/rentdesk/internal/store"
	"github.com/rentdesk/rentdesk/internal/web"
)

// Web serves the HTML pages and form posts.
type Web struct {
	db     *gorm.DB
	svc    *service.Services
	pol    config.BillingConfig
	org    config.OrgConfig
	feed   activity.Store
	render *web.Renderer
	log    *zap.Logger
}

// NewWeb creates the HTML handler set.
func NewWeb(db *gorm.DB, svc *service.Services, cfg *config.Config, feed activity.Store, render *web.Renderer, log *zap.Logger) *Web {
	return &Web{
		db:     db,
		svc:    svc,
		pol:    cfg.Billing,
		org:    cfg.Org,
		feed:   feed,
		render: render,
		log:    log,
	}
}

// pageData carries the fields every page template expects, plus
// page-specific extras merged in by each handler.
type pageData map[string]any

func (h *Web) base(r *http.Request) pageData {
	return pageData{
		"OrgName":        store.SettingValue(h.db, model.SettingOrgName, h.org.Name),
		"CurrencySymbol": store.SettingValue(h.db, model.SettingCurrencySymbol, h.org.CurrencySymbol),
		"Flash":          r.URL.Query().Get("flash"),
		"Error":          r.URL.Query().Get("error"),
		"Today":          time.Now().UTC().Format("2006-01-02"),
	}
}

func (h *Web) renderPage(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.render.Page(w, name, data); err != nil {
		h.log.Error("rendering page failed", zap.String("page", name), zap.Error(err))
	}
}

// redirect sends the browser back with an optional flash or error message.
func redirect(w http.ResponseWriter, r *http.Request, path, flash string, err error) {
	u := url.URL{Path: path}
	q := u.Query()
	if err != nil {
		q.Set("error", err.Error())
	} else if flash != "" {
		q.Set("flash", flash)
	}
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

func (h *Web) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Reports.BuildDashboard(r.Context(), time.Now().UTC())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	entries, err := h.feed.Entries(r.Context(), activity.Query{Limit: 15})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// The feed fans one event out per entity; collapse to one row per event.
	seen := map[string]bool{}
	recent := entries[:0]
	for _, e := range entries {
		if seen[e.EventID] {
			continue
		}
		seen[e.EventID] = true
		recent = append(recent, e)
	}

	data := h.base(r)
	data["Dash"] = d
	data["Activity"] = recent
	h.renderPage(w, "dashboard.html", data)
}

func (h *Web) BuildingsPage(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.svc.Buildings.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data := h.base(r)
	data["Buildings"] = buildings
	h.renderPage(w, "buildings.html", data)
}

func (h *Web) BuildingDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.svc.Buildings.Get(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data := h.base(r)
	data["Building"] = b
	h.renderPage(w, "building_detail.html", data)
}

func (h *Web) RoomDetailPage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	room, err := h.svc.Rooms.Get(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	snap, err := billing.RoomSnapshot(h.db.WithContext(ctx), h.pol, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	invoices, err := h.svc.Invoices.List(ctx, id, "", "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	readings, err := h.svc.Meters.ListForRoom(ctx, id, 12)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := h.base(r)
	data["Room"] = room
	data["Snapshot"] = snap
	data["Invoices"] = invoices
	data["Readings"] = readings
	h.renderPage(w, "room_detail.html", data)
}

func (h *Web) TenantsPage(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	tenants, err := h.svc.Tenants.List(r.Context(), search)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data := h.base(r)
	data["Tenants"] = tenants
	data["Search"] = search
	h.renderPage(w, "tenants.html", data)
}

func (h *Web) LeasesPage(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	leases, err := h.svc.Leases.List(r.Context(), status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data := h.base(r)
	data["Leases"] = leases
	data["Status"] = status
	h.renderPage(w, "leases.html", data)
}

func (h *Web) PaymentsPage(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.Payments.List(r.Context(), 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	active, err := h.svc.Leases.List(r.Context(), model.LeaseActive)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data := h.base(r)
	data["Payments"] = payments
	data["ActiveLeases"] = active
	h.renderPage(w, "payments.html", data)
}

// meterRow is one line of the bulk meter entry form.
type meterRow struct {
	RoomID    uint
	Label     string
	LastValue *decimal.Decimal
	LastDate  time.Time
}

func (h *Web) MetersPage(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.svc.Rooms.List(r.Context(), 0, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rows := make([]meterRow, 0, len(rooms))
	for _, room := range rooms {
		row := meterRow{RoomID: room.ID, Label: room.Label()}
		readings, err := h.svc.Meters.ListForRoom(r.Context(), room.ID, 1)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if len(readings) > 0 {
			row.LastValue = &readings[0].ReadingValue
			row.LastDate = readings[0].ReadingDate
		}
		rows = append(rows, row)
	}
	data := h.base(r)
	data["Rows"] = rows
	h.renderPage(w, "meters.html", data)
}

func (h *Web) ReportsPage(w http.ResponseWriter, r *http.Request) {
	month, err := reportMonth(r)
	if err != nil {
		month = model.MonthStart(time.Now().UTC())
	}
	rentRows, err := h.svc.Reports.RentCollection(r.Context(), month, time.Now().UTC())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	elecRows, err := h.svc.Reports.Electricity(r.Context(), month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data := h.base(r)
	data["Month"] = month.Format("2006-01")
	data["RentRows"] = rentRows
	data["ElecRows"] = elecRows
	h.renderPage(w, "reports.html", data)
}

func (h *Web) SettingsPage(w http.ResponseWriter, r *http.Request) {
	db := h.db.WithContext(r.Context())
	data := h.base(r)
	data["OrgNameSetting"] = store.SettingValue(db, model.SettingOrgName, h.org.Name)
	data["Address"] = store.SettingValue(db, model.SettingOrgAddress, "")
	data["GSTIN"] = store.SettingValue(db, model.SettingGSTIN, "")
	data["Currency"] = store.SettingValue(db, model.SettingCurrencySymbol, h.org.CurrencySymbol)
	data["ElectricityRate"] = store.SettingValue(db, model.SettingElectricityRate, "0")
	h.renderPage(w, "settings.html", data)
}
