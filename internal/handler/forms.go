package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
	"github.com/rentdesk/rentdesk/internal/store"
)

// roomPage resolves the building page a room lives on, for redirects.
func (h *Web) roomPage(roomID uint) string {
	var room model.Room
	if err := h.db.First(&room, roomID).Error; err != nil {
		return "/buildings"
	}
	return fmt.Sprintf("/buildings/%d", room.BuildingID)
}

type buildingForm struct {
	Name          string `form:"name"`
	Floors        int    `form:"floors"`
	RoomsPerFloor int    `form:"rooms_per_floor"`
	RoomPrefix    string `form:"room_prefix"`
}

func (h *Web) CreateBuildingForm(w http.ResponseWriter, r *http.Request) {
	var f buildingForm
	if err := decodeForm(r, &f); err != nil {
		redirect(w, r, "/buildings", "", err)
		return
	}
	b, err := h.svc.Buildings.BulkCreate(r.Context(), service.BulkCreateInput{
		Name:          f.Name,
		Floors:        f.Floors,
		RoomsPerFloor: f.RoomsPerFloor,
		RoomPrefix:    f.RoomPrefix,
	})
	if err != nil {
		redirect(w, r, "/buildings", "", err)
		return
	}
	redirect(w, r, fmt.Sprintf("/buildings/%d", b.ID), "Building created", nil)
}

type tenantForm struct {
	FullName   string `form:"full_name"`
	Phone      string `form:"phone"`
	Email      string `form:"email"`
	IDProofURL string `form:"id_proof_url"`
}

func (h *Web) CreateTenantForm(w http.ResponseWriter, r *http.Request) {
	var f tenantForm
	if err := decodeForm(r, &f); err != nil {
		redirect(w, r, "/tenants", "", err)
		return
	}
	_, err := h.svc.Tenants.Create(r.Context(), service.TenantInput{
		FullName:   f.FullName,
		Phone:      f.Phone,
		Email:      f.Email,
		IDProofURL: f.IDProofURL,
	})
	if err != nil {
		redirect(w, r, "/tenants", "", err)
		return
	}
	redirect(w, r, "/tenants", "Tenant created", nil)
}

func (h *Web) DeleteTenantForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Tenants.Delete(r.Context(), id); err != nil {
		redirect(w, r, "/tenants", "", err)
		return
	}
	redirect(w, r, "/tenants", "Tenant deleted", nil)
}

type assignLeaseForm struct {
	TenantID    uint   `form:"tenant_id"`
	StartDate   string `form:"start_date"`
	MonthlyRent string `form:"monthly_rent"`
	Deposit     string `form:"deposit"`
}

func (h *Web) AssignLeaseForm(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	back := h.roomPage(roomID)

	var f assignLeaseForm
	if err := decodeForm(r, &f); err != nil {
		redirect(w, r, back, "", err)
		return
	}
	start, err := time.Parse("2006-01-02", f.StartDate)
	if err != nil {
		redirect(w, r, back, "", service.Invalid("start date must be YYYY-MM-DD"))
		return
	}
	rent, err := decimal.NewFromString(f.MonthlyRent)
	if err != nil {
		redirect(w, r, back, "", service.Invalid("monthly rent must be a number"))
		return
	}
	deposit := decimal.Zero
	if f.Deposit != "" {
		if deposit, err = decimal.NewFromString(f.Deposit); err != nil {
			redirect(w, r, back, "", service.Invalid("deposit must be a number"))
			return
		}
	}

	_, err = h.svc.Leases.Create(r.Context(), service.CreateLeaseInput{
		TenantID:    f.TenantID,
		RoomID:      roomID,
		StartDate:   start,
		MonthlyRent: rent,
		Deposit:     deposit,
	})
	if err != nil {
		redirect(w, r, back, "", err)
		return
	}
	redirect(w, r, back, "Tenant assigned", nil)
}

func (h *Web) EndLeaseForm(w http.ResponseWriter, r *http.Request) {
	leaseID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	lease, err := h.svc.Leases.Get(r.Context(), leaseID)
	if err != nil {
		redirect(w, r, "/leases", "", err)
		return
	}
	back := h.roomPage(lease.RoomID)

	end, err := time.Parse("2006-01-02", r.PostFormValue("end_date"))
	if err != nil {
		redirect(w, r, back, "", service.Invalid("end date must be YYYY-MM-DD"))
		return
	}
	if _, err := h.svc.Leases.End(r.Context(), leaseID, end); err != nil {
		redirect(w, r, back, "", err)
		return
	}
	redirect(w, r, back, "Lease ended", nil)
}

func (h *Web) RoomStatusForm(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	back := h.roomPage(roomID)
	if _, err := h.svc.Rooms.SetStatus(r.Context(), roomID, r.PostFormValue("status")); err != nil {
		redirect(w, r, back, "", err)
		return
	}
	redirect(w, r, back, "Room status updated", nil)
}

func (h *Web) AddReadingForm(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	back := h.roomPage(roomID)

	date, err := time.Parse("2006-01-02", r.PostFormValue("date"))
	if err != nil {
		redirect(w, r, back, "", service.Invalid("reading date must be YYYY-MM-DD"))
		return
	}
	value, err := decimal.NewFromString(r.PostFormValue("value"))
	if err != nil {
		redirect(w, r, back, "", service.Invalid("reading value must be a number"))
		return
	}
	if _, err := h.svc.Meters.Add(r.Context(), service.ReadingInput{
		RoomID: roomID, Date: date, Value: value,
	}); err != nil {
		redirect(w, r, back, "", err)
		return
	}
	redirect(w, r, back, "Reading recorded", nil)
}

func (h *Web) CreateBillForm(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	back := h.roomPage(roomID)

	_, err := h.svc.Invoices.CreateBill(r.Context(), service.CreateBillInput{
		RoomID:             roomID,
		Month:              r.PostFormValue("month"),
		IncludeElectricity: r.PostFormValue("include_electricity") != "",
	})
	if err != nil {
		redirect(w, r, back, "", err)
		return
	}
	redirect(w, r, back, "Bill created", nil)
}

func (h *Web) InvoiceStatusForm(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	invoice, err := h.svc.Invoices.Get(r.Context(), invoiceID)
	if err != nil {
		redirect(w, r, "/", "", err)
		return
	}
	back := h.roomPage(invoice.RoomID)

	amount := decimal.Zero
	if raw := r.PostFormValue("amount"); raw != "" {
		if amount, err = decimal.NewFromString(raw); err != nil {
			redirect(w, r, back, "", service.Invalid("amount must be a number"))
			return
		}
	}
	status := r.PostFormValue("status")
	if _, err := h.svc.Invoices.SetStatus(r.Context(), invoiceID, status, amount); err != nil {
		redirect(w, r, back, "", err)
		return
	}
	redirect(w, r, back, "Invoice marked "+status, nil)
}

type paymentForm struct {
	LeaseID uint   `form:"lease_id"`
	PaidOn  string `form:"paid_on"`
	Amount  string `form:"amount"`
	Method  string `form:"method"`
	Notes   string `form:"notes"`
}

func (h *Web) RecordPaymentForm(w http.ResponseWriter, r *http.Request) {
	var f paymentForm
	if err := decodeForm(r, &f); err != nil {
		redirect(w, r, "/payments", "", err)
		return
	}
	paidOn, err := time.Parse("2006-01-02", f.PaidOn)
	if err != nil {
		redirect(w, r, "/payments", "", service.Invalid("payment date must be YYYY-MM-DD"))
		return
	}
	amount, err := decimal.NewFromString(f.Amount)
	if err != nil {
		redirect(w, r, "/payments", "", service.Invalid("amount must be a number"))
		return
	}
	_, err = h.svc.Payments.Record(r.Context(), service.RecordInput{
		LeaseID: f.LeaseID,
		PaidOn:  paidOn,
		Amount:  amount,
		Method:  f.Method,
		Notes:   f.Notes,
	})
	if err != nil {
		redirect(w, r, "/payments", "", err)
		return
	}
	redirect(w, r, "/payments", "Payment recorded", nil)
}

func (h *Web) MetersBulkForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/meters", "", err)
		return
	}
	date, err := time.Parse("2006-01-02", r.PostFormValue("date"))
	if err != nil {
		redirect(w, r, "/meters", "", service.Invalid("reading date must be YYYY-MM-DD"))
		return
	}

	var entries []service.ReadingInput
	for key, vals := range r.PostForm {
		if !strings.HasPrefix(key, "value_") || len(vals) == 0 || vals[0] == "" {
			continue
		}
		roomID, err := strconv.ParseUint(strings.TrimPrefix(key, "value_"), 10, 64)
		if err != nil {
			continue
		}
		value, err := decimal.NewFromString(vals[0])
		if err != nil {
			redirect(w, r, "/meters", "", service.Invalid("reading for room %d must be a number", roomID))
			return
		}
		entries = append(entries, service.ReadingInput{
			RoomID: uint(roomID),
			Date:   date,
			Value:  value,
		})
	}
	if len(entries) == 0 {
		redirect(w, r, "/meters", "", service.Invalid("no readings entered"))
		return
	}

	if _, err := h.svc.Meters.BulkAdd(r.Context(), entries); err != nil {
		redirect(w, r, "/meters", "", err)
		return
	}
	redirect(w, r, "/meters", fmt.Sprintf("%d readings saved", len(entries)), nil)
}

func (h *Web) SaveSettingsForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/settings", "", err)
		return
	}
	db := h.db.WithContext(r.Context())
	keys := []string{
		model.SettingOrgName,
		model.SettingOrgAddress,
		model.SettingGSTIN,
		model.SettingCurrencySymbol,
		model.SettingElectricityRate,
	}
	for _, key := range keys {
		if !r.PostForm.Has(key) {
			continue
		}
		value := r.PostFormValue(key)
		if key == model.SettingElectricityRate {
			if _, err := decimal.NewFromString(value); err != nil {
				redirect(w, r, "/settings", "", service.Invalid("electricity rate must be a number"))
				return
			}
		}
		if err := store.SetSetting(db, key, value); err != nil {
			redirect(w, r, "/settings", "", err)
			return
		}
	}
	redirect(w, r, "/settings", "Settings saved", nil)
}
