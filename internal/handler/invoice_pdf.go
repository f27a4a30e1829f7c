package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/billing"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/pdf"
	"github.com/rentdesk/rentdesk/internal/store"
)

// InvoicePDF streams the invoice as a PDF download.
func (h *Web) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()
	db := h.db.WithContext(ctx)

	invoice, err := h.svc.Invoices.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	paidAmount, err := leaseMonthPaid(db, invoice)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	status := billing.PaymentStatus(paidAmount.Amount, invoice.Total)

	roomLabel := ""
	if invoice.Room != nil {
		roomLabel = invoice.Room.Label()
	}

	data := pdf.InvoiceData{
		Org: pdf.OrgInfo{
			Name:           store.SettingValue(db, model.SettingOrgName, h.org.Name),
			Address:        store.SettingValue(db, model.SettingOrgAddress, ""),
			GSTIN:          store.SettingValue(db, model.SettingGSTIN, ""),
			CurrencySymbol: store.SettingValue(db, model.SettingCurrencySymbol, h.org.CurrencySymbol),
		},
		Invoice:    *invoice,
		Items:      invoice.Items,
		RoomLabel:  roomLabel,
		TenantName: paidAmount.TenantName,
		PaidAmount: paidAmount.Amount,
		Status:     status,
	}

	out, err := pdf.RenderInvoice(data)
	if err != nil {
		h.log.Error("invoice pdf failed", zap.Uint("invoice_id", id), zap.Error(err))
		http.Error(w, "pdf generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="invoice-%d-%s.pdf"`, invoice.ID, invoice.Period()))
	_, _ = w.Write(out)
}

type monthPaid struct {
	Amount     decimal.Decimal
	TenantName string
}

// leaseMonthPaid sums the invoice month's payments on the room's active
// lease and resolves the tenant name for the letterhead.
func leaseMonthPaid(db *gorm.DB, invoice *model.Invoice) (monthPaid, error) {
	var lease model.Lease
	err := db.Preload("Tenant").
		Where("room_id = ? AND status = ?", invoice.RoomID, model.LeaseActive).
		First(&lease).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return monthPaid{}, nil
	}
	if err != nil {
		return monthPaid{}, err
	}

	amount, err := billing.MonthPayments(db, lease.ID, invoice.Month)
	if err != nil {
		return monthPaid{}, err
	}
	out := monthPaid{Amount: amount}
	if lease.Tenant != nil {
		out.TenantName = lease.Tenant.FullName
	}
	return out, nil
}
