package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type GeofenceHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Assign(w http.ResponseWriter, r *http.Request)
	Unassign(w http.ResponseWriter, r *http.Request)
}

type geofenceHandlerImpl struct {
	geofenceService geofence.GeofenceService
}

func NewGeofenceHandler(geofenceService geofence.GeofenceService) GeofenceHandler {
	return &geofenceHandlerImpl{
		geofenceService: geofenceService,
	}
}

// List implements GeofenceHandler.
func (h *geofenceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	var filter geofence.ListFilter
	if shopID := r.URL.Query().Get("shop_id"); shopID != "" {
		filter.ShopID = &shopID
	}
	if inactive := r.URL.Query().Get("include_inactive"); inactive != "" {
		include, err := strconv.ParseBool(inactive)
		if err != nil {
			response.BadRequest(w, "include_inactive must be a boolean", nil)
			return
		}
		filter.IncludeInactive = include
	}

	geofences, err := h.geofenceService.List(r.Context(), identity.CompanyID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]geofence.GeofenceResponse, 0, len(geofences))
	for _, g := range geofences {
		result = append(result, geofence.NewGeofenceResponse(g))
	}
	response.Success(w, result)
}

// Create implements GeofenceHandler.
func (h *geofenceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	var req geofence.CreateGeofenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create geofence decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	g, err := h.geofenceService.Create(r.Context(), identity.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Geofence created successfully", geofence.NewGeofenceResponse(g))
}

// Get implements GeofenceHandler.
func (h *geofenceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	detail, err := h.geofenceService.GetByID(r.Context(), chi.URLParam(r, "id"), identity.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, detail)
}

// Update implements GeofenceHandler.
func (h *geofenceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	var req geofence.UpdateGeofenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update geofence decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	g, err := h.geofenceService.Update(r.Context(), chi.URLParam(r, "id"), identity.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Geofence updated successfully", geofence.NewGeofenceResponse(g))
}

// Delete implements GeofenceHandler.
func (h *geofenceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	removed, err := h.geofenceService.Delete(r.Context(), chi.URLParam(r, "id"), identity.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !removed {
		response.SuccessWithMessage(w, "Geofence is referenced by punches and was deactivated", nil)
		return
	}
	response.SuccessWithMessage(w, "Geofence deleted successfully", nil)
}

// Assign implements GeofenceHandler.
func (h *geofenceHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	var req geofence.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Assign geofence decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.geofenceService.Assign(r.Context(), chi.URLParam(r, "id"), identity.CompanyID, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Employee assigned to geofence", nil)
}

// Unassign implements GeofenceHandler.
func (h *geofenceHandlerImpl) Unassign(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidClaims)
		return
	}

	err := h.geofenceService.Unassign(r.Context(), chi.URLParam(r, "id"), identity.CompanyID, chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee unassigned from geofence", nil)
}
