package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/event"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
	"github.com/rentdesk/rentdesk/internal/store"
	"github.com/rentdesk/rentdesk/internal/web"
)

func newTestWeb(t *testing.T) (*Web, *service.Services, *gorm.DB) {
	t.Helper()
	db, err := store.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	cfg := config.Defaults()
	svc := service.New(db, cfg.Billing, event.NopRecorder{})
	render, err := web.NewRenderer()
	require.NoError(t, err)
	h := NewWeb(db, svc, &cfg, activity.NewMemoryStore(), render, zap.NewNop())
	return h, svc, db
}

func seedOccupiedRoom(t *testing.T, svc *service.Services, db *gorm.DB, rent int64) model.Room {
	t.Helper()
	ctx := context.Background()
	b, err := svc.Buildings.BulkCreate(ctx, service.BulkCreateInput{
		Name:          "Sunrise Residency",
		Floors:        1,
		RoomsPerFloor: 2,
	})
	require.NoError(t, err)
	var room model.Room
	require.NoError(t, db.Where("building_id = ?", b.ID).Order("room_number").First(&room).Error)
	tenant, err := svc.Tenants.Create(ctx, service.TenantInput{FullName: "Asha Verma", Phone: "9000000001"})
	require.NoError(t, err)
	start, err := service.ParseMonth("2025-01")
	require.NoError(t, err)
	_, err = svc.Leases.Create(ctx, service.CreateLeaseInput{
		TenantID:    tenant.ID,
		RoomID:      room.ID,
		StartDate:   start,
		MonthlyRent: decimal.NewFromInt(rent),
	})
	require.NoError(t, err)
	return room
}

func panelBody(t *testing.T, h *Web, roomID uint) string {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/partials/rooms/{id}/panel", h.RoomPanel)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/partials/rooms/%d/panel", roomID), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRoomPanelPrefillsHalfPartialAmount(t *testing.T) {
	h, svc, db := newTestWeb(t)
	room := seedOccupiedRoom(t, svc, db, 5000)

	body := panelBody(t, h, room.ID)
	assert.Contains(t, body, `value="2500.00"`, "partial field pre-fills half the invoice total")
}

func TestRoomPanelPrefillRoundsOddTotals(t *testing.T) {
	h, svc, db := newTestWeb(t)
	room := seedOccupiedRoom(t, svc, db, 5525)

	body := panelBody(t, h, room.ID)
	assert.Contains(t, body, `value="2762.50"`)
}

func TestRoomPanelListsRecentBills(t *testing.T) {
	h, svc, db := newTestWeb(t)
	room := seedOccupiedRoom(t, svc, db, 5000)

	body := panelBody(t, h, room.ID)
	assert.Contains(t, body, "Recent Bills")
	assert.Contains(t, body, "Unpaid", "the month's fresh rent bill shows its payment status")
}
