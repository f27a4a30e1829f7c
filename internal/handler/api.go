// Package handler implements the HTTP surface: the JSON API, the HTML
// pages with their HTMX partials, PDF downloads, and report exports.
package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/billing"
	"github.com/rentdesk/rentdesk/internal/config"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
	"github.com/rentdesk/rentdesk/internal/store"
)

// API serves the JSON endpoints under /api/v1.
type API struct {
	db   *gorm.DB
	svc  *service.Services
	pol  config.BillingConfig
	feed activity.Store
	log  *zap.Logger
}

// NewAPI creates the JSON API handler set.
func NewAPI(db *gorm.DB, svc *service.Services, pol config.BillingConfig, feed activity.Store, log *zap.Logger) *API {
	return &API{db: db, svc: svc, pol: pol, feed: feed, log: log}
}

func (a *API) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.svc.Reports.BuildDashboard(r.Context(), time.Now().UTC())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// --- Buildings ---

type createBuildingRequest struct {
	Name          string `json:"name"`
	Floors        int    `json:"floors"`
	RoomsPerFloor int    `json:"rooms_per_floor"`
	RoomPrefix    string `json:"room_prefix,omitempty"`
}

func (a *API) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	var req createBuildingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	b, err := a.svc.Buildings.BulkCreate(r.Context(), service.BulkCreateInput{
		Name:          req.Name,
		Floors:        req.Floors,
		RoomsPerFloor: req.RoomsPerFloor,
		RoomPrefix:    req.RoomPrefix,
	})
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) GetBuilding(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	b, err := a.svc.Buildings.Get(r.Context(), id)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) ListBuildings(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Buildings.List(r.Context())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) DeleteBuilding(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.Buildings.Delete(r.Context(), id); err != nil {
		errorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Floors ---

func (a *API) ListFloors(w http.ResponseWriter, r *http.Request) {
	q := a.db.WithContext(r.Context()).Order("building_id, floor_number")
	if buildingID := queryUint(r.URL.Query(), "building_id"); buildingID != 0 {
		q = q.Where("building_id = ?", buildingID)
	}
	var items []model.Floor
	if err := q.Find(&items).Error; err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// --- Rooms ---

func (a *API) ListRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := a.svc.Rooms.List(r.Context(), queryUint(q, "building_id"), q.Get("status"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	room, err := a.svc.Rooms.Get(r.Context(), id)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

type roomStatusRequest struct {
	Status string `json:"status"`
}

func (a *API) SetRoomStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req roomStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	room, err := a.svc.Rooms.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (a *API) RoomSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	snap, err := billing.RoomSnapshot(a.db.WithContext(r.Context()), a.pol, id)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// --- Tenants ---

type tenantRequest struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	IDProofURL string `json:"id_proof_url,omitempty"`
}

func (req tenantRequest) input() service.TenantInput {
	return service.TenantInput{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Email:      req.Email,
		IDProofURL: req.IDProofURL,
	}
}

func (a *API) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	t, err := a.svc.Tenants.Create(r.Context(), req.input())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (a *API) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req tenantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	t, err := a.svc.Tenants.Update(r.Context(), id, req.input())
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) GetTenant(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	t, err := a.svc.Tenants.Get(r.Context(), id)
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) ListTenants(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Tenants.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := a.svc.Tenants.Delete(r.Context(), id); err != nil {
		errorToHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Settings ---

func (a *API) GetSettings(w http.ResponseWriter, r *http.Request) {
	var items []model.Setting
	if err := a.db.WithContext(r.Context()).Order("key").Find(&items).Error; err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type settingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (a *API) PutSetting(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "key is required")
		return
	}
	if err := store.SetSetting(a.db.WithContext(r.Context()), req.Key, req.Value); err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Setting{Key: req.Key, Value: req.Value})
}

// --- Activity ---

func (a *API) Activity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := parsePagination(r).Limit
	entries, err := a.feed.Entries(r.Context(), activity.Query{
		EntityType: q.Get("entity_type"),
		EntityID:   queryUint(q, "entity_id"),
		Category:   q.Get("category"),
		Limit:      limit,
	})
	if err != nil {
		errorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
