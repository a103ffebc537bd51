package handlers

import (
	"errors"
	"net/http"
	"time"

	authsvc "github.com/zenlit/backend/internal/services/auth"
	locsvc "github.com/zenlit/backend/internal/services/location"
	"github.com/zenlit/backend/internal/transport/http/dto"
	httperrors "github.com/zenlit/backend/internal/transport/http/errors"
)

type LocationHandler struct {
	hub *locsvc.Hub
}

func NewLocationHandler(hub *locsvc.Hub) *LocationHandler {
	return &LocationHandler{hub: hub}
}

// Report accepts a raw device position sample. Samples only reach storage
// when sharing is on and the bucket changed.
func (h *LocationHandler) Report(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authedManagerIdentity(w, r)
	if !ok {
		return
	}

	var req dto.LocationReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeBadRequest(w, "VALIDATION_ERROR", "lat and lon are required")
		return
	}
	if err := locsvc.ValidateCoordinates(*req.Lat, *req.Lon); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid lat/lon")
		return
	}

	if err := h.hub.Report(identity.UserID, locsvc.Position{
		Latitude:  *req.Lat,
		Longitude: *req.Lon,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to accept position report")
		return
	}

	h.writeState(w, r, identity)
}

func (h *LocationHandler) TurnOn(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authedManagerIdentity(w, r)
	if !ok {
		return
	}

	manager, err := h.hub.ManagerFor(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to initialize location manager")
		return
	}

	if err := manager.TurnOn(r.Context()); err != nil {
		handleLocationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LocationToggleResponse{OK: true, State: stateResponse(manager.State())})
}

func (h *LocationHandler) TurnOff(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authedManagerIdentity(w, r)
	if !ok {
		return
	}

	manager, err := h.hub.ManagerFor(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to initialize location manager")
		return
	}

	if err := manager.TurnOff(r.Context()); err != nil {
		handleLocationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LocationToggleResponse{OK: true, State: stateResponse(manager.State())})
}

func (h *LocationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authedManagerIdentity(w, r)
	if !ok {
		return
	}

	manager, err := h.hub.ManagerFor(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to initialize location manager")
		return
	}

	if err := manager.RefreshLocation(r.Context()); err != nil {
		handleLocationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LocationToggleResponse{OK: true, State: stateResponse(manager.State())})
}

func (h *LocationHandler) State(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authedManagerIdentity(w, r)
	if !ok {
		return
	}
	h.writeState(w, r, identity)
}

func (h *LocationHandler) writeState(w http.ResponseWriter, r *http.Request, identity authsvc.Identity) {
	manager, err := h.hub.ManagerFor(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to initialize location manager")
		return
	}

	httperrors.Write(w, http.StatusOK, stateResponse(manager.State()))
}

func (h *LocationHandler) authedManagerIdentity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	if h.hub == nil {
		writeInternal(w, "LOCATION_SERVICE_UNAVAILABLE", "location service is unavailable")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func stateResponse(snap locsvc.Snapshot) dto.LocationStateResponse {
	res := dto.LocationStateResponse{
		Enabled:  snap.Enabled,
		Tracking: snap.Tracking,
		Degraded: snap.Degraded,
	}
	if snap.Current != nil {
		lat := snap.Current.Latitude
		lon := snap.Current.Longitude
		res.Lat = &lat
		res.Lon = &lon
	}
	return res
}

func handleLocationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, locsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid coordinates")
	case errors.Is(err, locsvc.ErrDisabled):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: "LOCATION_DISABLED", Message: "location sharing is off"})
	case errors.Is(err, locsvc.ErrPermissionDenied):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: "PERMISSION_DENIED", Message: "location permission denied"})
	case errors.Is(err, locsvc.ErrUnsupported):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: "UNSUPPORTED", Message: "no position source available"})
	case errors.Is(err, locsvc.ErrPositionUnavailable), errors.Is(err, locsvc.ErrTimeout):
		httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{Code: "POSITION_UNAVAILABLE", Message: "current position is unavailable"})
	case errors.Is(err, locsvc.ErrStorageWrite):
		writeInternal(w, "STORAGE_ERROR", "failed to persist location")
	default:
		writeInternal(w, "INTERNAL_ERROR", "location operation failed")
	}
}
