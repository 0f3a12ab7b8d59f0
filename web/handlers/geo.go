package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/backflowdir/discovery/geocoder"
	"github.com/backflowdir/discovery/models"
)

// Geocode resolves free-text input to coordinates. Each client spends from
// a fixed per-minute budget; exhaustion returns 429.
func (h *GeoHandlers) Geocode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		renderJSON(w, http.StatusUnprocessableEntity, models.APIError{Code: http.StatusUnprocessableEntity, Message: "missing q"})
		return
	}

	if !h.Deps.Limits.Geocode.Allow(clientIP(r)) {
		renderJSON(w, http.StatusTooManyRequests, models.APIError{Code: http.StatusTooManyRequests, Message: "rate limit exceeded"})
		return
	}

	res, err := h.Deps.Geo.Geocode(r.Context(), query)
	if err != nil {
		h.geoError(w, "geocode", err)
		return
	}

	renderJSON(w, http.StatusOK, res)
}

// Reverse resolves coordinates to the nearest locality.
func (h *GeoHandlers) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)

	if latErr != nil || lonErr != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		renderJSON(w, http.StatusUnprocessableEntity, models.APIError{Code: http.StatusUnprocessableEntity, Message: "invalid coordinates"})
		return
	}

	if !h.Deps.Limits.Reverse.Allow(clientIP(r)) {
		renderJSON(w, http.StatusTooManyRequests, models.APIError{Code: http.StatusTooManyRequests, Message: "rate limit exceeded"})
		return
	}

	res, err := h.Deps.Geo.Reverse(r.Context(), lat, lon)
	if err != nil {
		h.geoError(w, "reverse", err)
		return
	}

	renderJSON(w, http.StatusOK, res)
}

// Suggest returns completion candidates for a partial location string.
func (h *GeoHandlers) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")

	if !h.Deps.Limits.Suggest.Allow(clientIP(r)) {
		renderJSON(w, http.StatusTooManyRequests, models.APIError{Code: http.StatusTooManyRequests, Message: "rate limit exceeded"})
		return
	}

	results, err := h.Deps.Geo.Suggest(r.Context(), prefix)
	if err != nil {
		h.geoError(w, "suggest", err)
		return
	}

	if results == nil {
		results = []geocoder.Result{}
	}

	renderJSON(w, http.StatusOK, results)
}

func (h *GeoHandlers) geoError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, geocoder.ErrNotFound) {
		renderJSON(w, http.StatusNotFound, models.APIError{Code: http.StatusNotFound, Message: "location not found"})
		return
	}

	h.Deps.Logger.Error("geocoder call failed", zap.String("op", op), zap.Error(err))
	renderJSON(w, http.StatusBadGateway, models.APIError{Code: http.StatusBadGateway, Message: "geocoding provider unavailable"})
}
