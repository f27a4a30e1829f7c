package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rentdesk/rentdesk/internal/billing"
	"github.com/rentdesk/rentdesk/internal/service"
)

// --- Leases ---

type createLeaseRequest struct {
	TenantID    uint   `json:"tenant_id"`
	RoomID      uint   `json:"room_id"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	MonthlyRent string `json:"monthly_rent"`
	Deposit     string `json:"deposit,omitempty"`
	BillingDay  int    `json:"billing_day,omitempty"`
}

func (a *API) CreateLease(w http.ResponseWriter, r *http.Request) {
	var req createLeaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "start_date must be YYYY-MM-DD")
		return
	}
	rent, err := decimal.NewFromString(req.MonthlyRent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "monthly_rent must be a number")
		return
	}
	deposit := decimal.Zero
	if req.Deposit != "" {
		if deposit, err = decimal.NewFromString(req.Deposit); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "deposit must be a number")
			return
		}
	}

	lease, err := a.svc.Leases.Create(r.Context(), service.CreateLeaseInput{
		TenantID:    req.TenantID,
		RoomID:      req.RoomID,
		StartDate:   start,
		MonthlyRent: rent,
		Deposit:     deposit,
		BillingDay:  req.BillingDay,
	})
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lease)
}

func (a *API) GetLease(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	lease, err := a.svc.Leases.Get(r.Context(), id)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lease)
}

func (a *API) ListLeases(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Leases.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type endLeaseRequest struct {
	EndDate string `json:"end_date"` // YYYY-MM-DD
}

func (a *API) EndLease(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req endLeaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "end_date must be YYYY-MM-DD")
		return
	}
	lease, err := a.svc.Leases.End(r.Context(), id, end)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lease)
}

func (a *API) LeaseBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	balance, err := a.svc.Leases.Balance(r.Context(), id)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": balance.StringFixed(2)})
}

// --- Invoices ---

type createBillRequest struct {
	RoomID             uint   `json:"room_id"`
	Month              string `json:"month"` // YYYY-MM
	IncludeElectricity bool   `json:"include_electricity,omitempty"`
}

func (a *API) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	invoice, err := a.svc.Invoices.CreateBill(r.Context(), service.CreateBillInput{
		RoomID:             req.RoomID,
		Month:              req.Month,
		IncludeElectricity: req.IncludeElectricity,
	})
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

type electricityInvoiceRequest struct {
	RoomID uint   `json:"room_id"`
	Month  string `json:"month"` // YYYY-MM
}

func (a *API) CreateElectricityInvoice(w http.ResponseWriter, r *http.Request) {
	var req electricityInvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	invoice, err := a.svc.Invoices.CreateElectricityInvoice(r.Context(), req.RoomID, req.Month)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

func (a *API) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	invoice, err := a.svc.Invoices.Get(r.Context(), id)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

func (a *API) ListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := a.svc.Invoices.List(r.Context(), queryUint(q, "room_id"), q.Get("month"), q.Get("type"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type invoiceStatusRequest struct {
	Status string `json:"status"` // paid, partial, unpaid
	Amount string `json:"amount,omitempty"`
}

func (a *API) SetInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req invoiceStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	amount := decimal.Zero
	if req.Amount != "" {
		var err error
		if amount, err = decimal.NewFromString(req.Amount); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "amount must be a number")
			return
		}
	}
	invoice, err := a.svc.Invoices.SetStatus(r.Context(), id, req.Status, amount)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// --- Payments ---

type recordPaymentRequest struct {
	LeaseID uint   `json:"lease_id"`
	PaidOn  string `json:"paid_on"` // YYYY-MM-DD
	Amount  string `json:"amount"`
	Method  string `json:"method,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

func (a *API) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	paidOn, err := time.Parse("2006-01-02", req.PaidOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "paid_on must be YYYY-MM-DD")
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "amount must be a number")
		return
	}
	payment, err := a.svc.Payments.Record(r.Context(), service.RecordInput{
		LeaseID: req.LeaseID,
		PaidOn:  paidOn,
		Amount:  amount,
		Method:  req.Method,
		Notes:   req.Notes,
	})
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (a *API) ListPayments(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Payments.List(r.Context(), queryUint(r.URL.Query(), "lease_id"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.Payments.Delete(r.Context(), id); err != nil {
		errorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Meter readings ---

type readingRequest struct {
	RoomID uint   `json:"room_id"`
	Date   string `json:"date"` // YYYY-MM-DD
	Value  string `json:"value"`
}

func (req readingRequest) input() (service.ReadingInput, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return service.ReadingInput{}, service.Invalid("date must be YYYY-MM-DD")
	}
	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return service.ReadingInput{}, service.Invalid("value must be a number")
	}
	return service.ReadingInput{RoomID: req.RoomID, Date: date, Value: value}, nil
}

func (a *API) AddReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	reading, err := a.svc.Meters.Add(r.Context(), in)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

type bulkReadingsRequest struct {
	Readings []readingRequest `json:"readings"`
}

func (a *API) AddReadingsBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkReadingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	entries := make([]service.ReadingInput, 0, len(req.Readings))
	for _, rr := range req.Readings {
		in, err := rr.input()
		if err != nil {
			errorToHTTP(w, err)
			return
		}
		entries = append(entries, in)
	}
	out, err := a.svc.Meters.BulkAdd(r.Context(), entries)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (a *API) ListRoomReadings(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	items, err := a.svc.Meters.ListForRoom(r.Context(), id, parsePagination(r).Limit)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type electricityCalcRequest struct {
	RoomID uint   `json:"room_id"`
	Month  string `json:"month"` // YYYY-MM
}

// ElectricityCalc computes a room's electricity bill for a month without
// creating an invoice.
func (a *API) ElectricityCalc(w http.ResponseWriter, r *http.Request) {
	var req electricityCalcRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	month, err := service.ParseMonth(req.Month)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	mb, err := billing.CalcMonthBill(a.db.WithContext(r.Context()), req.RoomID, month.Year(), month.Month())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mb)
}

// RoomElectricity previews the electricity bill for ?month=YYYY-MM
// without creating an invoice.
func (a *API) RoomElectricity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	month, err := service.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	mb, err := billing.CalcMonthBill(a.db.WithContext(r.Context()), id, month.Year(), month.Month())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mb)
}

// --- Reports ---

func (a *API) RentCollectionReport(w http.ResponseWriter, r *http.Request) {
	month, err := reportMonth(r)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	rows, err := a.svc.Reports.RentCollection(r.Context(), month, time.Now().UTC())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (a *API) ElectricityReport(w http.ResponseWriter, r *http.Request) {
	month, err := reportMonth(r)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	rows, err := a.svc.Reports.Electricity(r.Context(), month)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// reportMonth parses ?month=YYYY-MM, defaulting to the current month.
func reportMonth(r *http.Request) (time.Time, error) {
	if raw := r.URL.Query().Get("month"); raw != "" {
		return service.ParseMonth(raw)
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}
