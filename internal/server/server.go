// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/handler"
	"github.com/rentdesk/rentdesk/internal/service"
	"github.com/rentdesk/rentdesk/internal/web"
)

// Config holds everything the server needs to run.
type Config struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Services *service.Services
	Feed     activity.Store
	Log      *zap.Logger
}

// Run starts the HTTP server with all routes registered and shuts it
// down when the context is cancelled.
func Run(ctx context.Context, cfg Config) error {
	render, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	r := chi.NewRouter()
	r.Use(handler.RequestID)
	r.Use(handler.Logging(cfg.Log))
	r.Use(handler.Recovery(cfg.Log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// --- HTML pages and forms ---
	wh := handler.NewWeb(cfg.DB, cfg.Services, cfg.Cfg, cfg.Feed, render, cfg.Log)
	r.Get("/", wh.Dashboard)
	r.Get("/buildings", wh.BuildingsPage)
	r.Post("/buildings", wh.CreateBuildingForm)
	r.Get("/buildings/{id}", wh.BuildingDetail)
	r.Get("/tenants", wh.TenantsPage)
	r.Post("/tenants", wh.CreateTenantForm)
	r.Post("/tenants/{id}/delete", wh.DeleteTenantForm)
	r.Get("/leases", wh.LeasesPage)
	r.Post("/leases/{id}/end", wh.EndLeaseForm)
	r.Get("/payments", wh.PaymentsPage)
	r.Post("/payments", wh.RecordPaymentForm)
	r.Get("/meters", wh.MetersPage)
	r.Post("/meters/bulk", wh.MetersBulkForm)
	r.Get("/reports", wh.ReportsPage)
	r.Get("/reports/rent.xlsx", wh.RentReportXLSX)
	r.Get("/reports/electricity.xlsx", wh.ElectricityReportXLSX)
	r.Get("/settings", wh.SettingsPage)
	r.Post("/settings", wh.SaveSettingsForm)

	r.Get("/rooms/{id}", wh.RoomDetailPage)
	r.Post("/rooms/{id}/lease", wh.AssignLeaseForm)
	r.Post("/rooms/{id}/status", wh.RoomStatusForm)
	r.Post("/rooms/{id}/readings", wh.AddReadingForm)
	r.Post("/rooms/{id}/bill", wh.CreateBillForm)
	r.Post("/invoices/{id}/status", wh.InvoiceStatusForm)
	r.Get("/invoices/{id}/pdf", wh.InvoicePDF)

	// --- HTMX partials ---
	r.Get("/partials/floors/{id}", wh.FloorRooms)
	r.Get("/partials/rooms/{id}/panel", wh.RoomPanel)

	// --- JSON API ---
	api := handler.NewAPI(cfg.DB, cfg.Services, cfg.Cfg.Billing, cfg.Feed, cfg.Log)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard", api.Dashboard)
		r.Get("/activity", api.Activity)

		r.Post("/buildings", api.CreateBuilding)
		r.Get("/buildings", api.ListBuildings)
		r.Get("/buildings/{id}", api.GetBuilding)
		r.Delete("/buildings/{id}", api.DeleteBuilding)

		r.Get("/floors", api.ListFloors)

		r.Get("/rooms", api.ListRooms)
		r.Get("/rooms/{id}", api.GetRoom)
		r.Post("/rooms/{id}/status", api.SetRoomStatus)
		r.Get("/rooms/{id}/snapshot", api.RoomSnapshot)
		r.Get("/rooms/{id}/readings", api.ListRoomReadings)
		r.Get("/rooms/{id}/electricity", api.RoomElectricity)

		r.Post("/tenants", api.CreateTenant)
		r.Get("/tenants", api.ListTenants)
		r.Get("/tenants/{id}", api.GetTenant)
		r.Patch("/tenants/{id}", api.UpdateTenant)
		r.Delete("/tenants/{id}", api.DeleteTenant)

		r.Post("/leases", api.CreateLease)
		r.Get("/leases", api.ListLeases)
		r.Get("/leases/{id}", api.GetLease)
		r.Post("/leases/{id}/end", api.EndLease)
		r.Get("/leases/{id}/balance", api.LeaseBalance)

		r.Post("/bills", api.CreateBill)
		r.Post("/billing/electricity/calc", api.ElectricityCalc)
		r.Post("/invoices/rent", api.CreateBill)
		r.Post("/invoices/electricity", api.CreateElectricityInvoice)
		r.Get("/invoices", api.ListInvoices)
		r.Get("/invoices/{id}", api.GetInvoice)
		r.Post("/invoices/{id}/status", api.SetInvoiceStatus)

		r.Post("/payments", api.RecordPayment)
		r.Get("/payments", api.ListPayments)
		r.Delete("/payments/{id}", api.DeletePayment)

		r.Post("/readings", api.AddReading)
		r.Post("/readings/bulk", api.AddReadingsBulk)

		r.Get("/reports/rent", api.RentCollectionReport)
		r.Get("/reports/electricity", api.ElectricityReport)

		r.Get("/settings", api.GetSettings)
		r.Put("/settings", api.PutSetting)
	})

	addr := fmt.Sprintf(":%d", cfg.Cfg.Server.Port)
	cfg.Log.Info("starting server", zap.String("addr", addr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
