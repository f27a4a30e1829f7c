package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/model"
)

func TestRenderInvoice(t *testing.T) {
	month, _ := time.Parse("2006-01", "2025-01")
	data := InvoiceData{
		Org: OrgInfo{
			Name:           "Rental Management System",
			Address:        "12 MG Road, Pune",
			GSTIN:          "27ABCDE1234F1Z5",
			CurrencySymbol: "₹",
		},
		Invoice: model.Invoice{
			ID:        42,
			Month:     month,
			Type:      model.InvoiceCombined,
			Subtotal:  decimal.RequireFromString("5525.00"),
			Total:     decimal.RequireFromString("5525.00"),
			CreatedAt: month,
		},
		Items: []model.InvoiceItem{
			{Label: "Room Rent", Qty: decimal.NewFromInt(1), Rate: decimal.RequireFromString("5000"), Amount: decimal.RequireFromString("5000")},
			{Label: "Electricity", Qty: decimal.RequireFromString("50"), Rate: decimal.RequireFromString("10.50"), Amount: decimal.RequireFromString("525.00")},
		},
		RoomLabel:  "Sunrise Residency - Floor 1 - Room 101",
		TenantName: "Asha Verma",
		PaidAmount: decimal.Zero,
		Status:     "unpaid",
	}

	out, err := RenderInvoice(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output must be a PDF document")
	assert.Greater(t, len(out), 1000)
}
