// Package pdf renders invoices as A4 documents.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/rentdesk/rentdesk/internal/model"
)

// OrgInfo is the letterhead block, sourced from settings.
type OrgInfo struct {
	Name           string
	Address        string
	GSTIN          string
	CurrencySymbol string
}

// InvoiceData is everything the renderer needs for one invoice.
type InvoiceData struct {
	Org        OrgInfo
	Invoice    model.Invoice
	Items      []model.InvoiceItem
	RoomLabel  string
	TenantName string
	PaidAmount decimal.Decimal
	Status     string
}

// RenderInvoice produces the invoice PDF bytes.
func RenderInvoice(d InvoiceData) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Invoice %d", d.Invoice.ID), true)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")
	cur := d.Org.CurrencySymbol
	money := func(v decimal.Decimal) string {
		return tr(cur + " " + v.StringFixed(2))
	}

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, tr(d.Org.Name), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	if d.Org.Address != "" {
		doc.MultiCell(0, 5, tr(d.Org.Address), "", "L", false)
	}
	if d.Org.GSTIN != "" {
		doc.CellFormat(0, 5, tr("GSTIN: "+d.Org.GSTIN), "", 1, "L", false, 0, "")
	}
	doc.Ln(4)
	doc.SetDrawColor(180, 180, 180)
	doc.Line(10, doc.GetY(), 200, doc.GetY())
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, fmt.Sprintf("Invoice #%d", d.Invoice.ID), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(95, 6, tr("Room: "+d.RoomLabel), "", 0, "L", false, 0, "")
	doc.CellFormat(0, 6, "Period: "+d.Invoice.Period(), "", 1, "R", false, 0, "")
	if d.TenantName != "" {
		doc.CellFormat(95, 6, tr("Tenant: "+d.TenantName), "", 0, "L", false, 0, "")
	}
	doc.CellFormat(0, 6, "Date: "+d.Invoice.CreatedAt.Format("2006-01-02"), "", 1, "R", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(240, 240, 240)
	doc.CellFormat(90, 8, "Description", "1", 0, "L", true, 0, "")
	doc.CellFormat(30, 8, "Qty", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 8, "Rate", "1", 0, "R", true, 0, "")
	doc.CellFormat(35, 8, "Amount", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, it := range d.Items {
		doc.CellFormat(90, 8, tr(it.Label), "1", 0, "L", false, 0, "")
		doc.CellFormat(30, 8, it.Qty.String(), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 8, money(it.Rate), "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 8, money(it.Amount), "1", 1, "R", false, 0, "")
	}

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(155, 8, "Subtotal", "1", 0, "R", false, 0, "")
	doc.CellFormat(35, 8, money(d.Invoice.Subtotal), "1", 1, "R", false, 0, "")
	if d.Invoice.Tax.IsPositive() {
		doc.CellFormat(155, 8, "Tax", "1", 0, "R", false, 0, "")
		doc.CellFormat(35, 8, money(d.Invoice.Tax), "1", 1, "R", false, 0, "")
	}
	doc.CellFormat(155, 8, "Total", "1", 0, "R", false, 0, "")
	doc.CellFormat(35, 8, money(d.Invoice.Total), "1", 1, "R", false, 0, "")

	doc.Ln(6)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr(fmt.Sprintf("Paid: %s    Status: %s", money(d.PaidAmount), d.Status)), "", 1, "L", false, 0, "")

	doc.Ln(10)
	doc.SetFont("Helvetica", "I", 9)
	doc.SetTextColor(120, 120, 120)
	doc.CellFormat(0, 6, "This is a computer-generated invoice and does not require a signature.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
