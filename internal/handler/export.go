package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rentdesk/rentdesk/internal/model"
)

func writeXLSX(w http.ResponseWriter, log *zap.Logger, filename string, build func(f *excelize.File) error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := build(f); err != nil {
		log.Error("building xlsx failed", zap.String("file", filename), zap.Error(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(w); err != nil {
		log.Error("writing xlsx failed", zap.String("file", filename), zap.Error(err))
	}
}

// RentReportXLSX exports the month's rent collection report.
func (h *Web) RentReportXLSX(w http.ResponseWriter, r *http.Request) {
	month, err := reportMonth(r)
	if err != nil {
		month = model.MonthStart(time.Now().UTC())
	}
	rows, err := h.svc.Reports.RentCollection(r.Context(), month, time.Now().UTC())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("rent-collection-%s.xlsx", month.Format("2006-01"))
	writeXLSX(w, h.log, filename, func(f *excelize.File) error {
		sheet := f.GetSheetName(0)
		headers := []any{"Building", "Room", "Tenant", "Billed", "Paid", "Status"}
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			return err
		}
		for i, row := range rows {
			billed, _ := row.Billed.Float64()
			paid, _ := row.Paid.Float64()
			cells := []any{row.Building, row.RoomNumber, row.TenantName, billed, paid, row.Status}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
				return err
			}
		}
		return nil
	})
}

// ElectricityReportXLSX exports the month's electricity report.
func (h *Web) ElectricityReportXLSX(w http.ResponseWriter, r *http.Request) {
	month, err := reportMonth(r)
	if err != nil {
		month = model.MonthStart(time.Now().UTC())
	}
	rows, err := h.svc.Reports.Electricity(r.Context(), month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("electricity-%s.xlsx", month.Format("2006-01"))
	writeXLSX(w, h.log, filename, func(f *excelize.File) error {
		sheet := f.GetSheetName(0)
		headers := []any{"Building", "Room", "Previous", "Current", "Units", "Amount", "Problem"}
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			return err
		}
		for i, row := range rows {
			units, _ := row.Units.Float64()
			amount, _ := row.Amount.Float64()
			cells := []any{row.Building, row.RoomNumber, "", "", units, amount, row.Problem}
			if row.PreviousReading != nil {
				cells[2], _ = row.PreviousReading.Float64()
			}
			if row.CurrentReading != nil {
				cells[3], _ = row.CurrentReading.Float64()
			}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
				return err
			}
		}
		return nil
	})
}
