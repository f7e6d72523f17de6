package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RestaurantHandler struct {
	restaurantService *service.RestaurantService
	log               *zap.Logger
}

func NewRestaurantHandler(restaurantService *service.RestaurantService, log *zap.Logger) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService, log: log}
}

type TimingRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	FromTime  string `json:"from_time"`
	ToTime    string `json:"to_time"`
}

type SetTimingsRequest struct {
	Timings []TimingRequest `json:"timings"`
}

type TimingResponse struct {
	ID        uint   `json:"id"`
	DayOfWeek int    `json:"day_of_week"`
	Day       string `json:"day"`
	FromTime  string `json:"from_time"`
	ToTime    string `json:"to_time"`
	Overnight bool   `json:"overnight"`
}

type AddPhotoRequest struct {
	Photo string `json:"photo"`
}

type PhotoResponse struct {
	ID        uint      `json:"id"`
	Photo     string    `json:"photo"`
	CreatedAt time.Time `json:"created_at"`
}

func newTimingResponse(t *domain.RestaurantTiming) TimingResponse {
	return TimingResponse{
		ID:        t.ID,
		DayOfWeek: int(t.DayOfWeek),
		Day:       t.DayOfWeek.String(),
		FromTime:  t.FromTime.String(),
		ToTime:    t.ToTime.String(),
		Overnight: t.Overnight(),
	}
}

func newPhotoResponse(p *domain.RestaurantPhoto) PhotoResponse {
	return PhotoResponse{ID: p.ID, Photo: p.Photo, CreatedAt: p.CreatedAt}
}

func (h *RestaurantHandler) GetTimings(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := uintParam(w, r, "id")
	if !ok {
		return
	}

	timings, err := h.restaurantService.Timings(r.Context(), restaurantID)
	if err != nil {
		h.writeError(w, "timings", err)
		return
	}

	resp := make([]TimingResponse, 0, len(timings))
	for _, t := range timings {
		resp = append(resp, newTimingResponse(t))
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: resp})
}

func (h *RestaurantHandler) SetTimings(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := uintParam(w, r, "id")
	if !ok {
		return
	}

	var req SetTimingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadBody)
		return
	}

	inputs := make([]service.TimingInput, 0, len(req.Timings))
	for _, t := range req.Timings {
		inputs = append(inputs, service.TimingInput{DayOfWeek: t.DayOfWeek, FromTime: t.FromTime, ToTime: t.ToTime})
	}

	timings, err := h.restaurantService.SetTimings(r.Context(), restaurantID, inputs)
	if err != nil {
		h.writeError(w, "timings", err)
		return
	}

	resp := make([]TimingResponse, 0, len(timings))
	for _, t := range timings {
		resp = append(resp, newTimingResponse(t))
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: resp})
}

func (h *RestaurantHandler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := uintParam(w, r, "id")
	if !ok {
		return
	}

	photos, err := h.restaurantService.Photos(r.Context(), restaurantID)
	if err != nil {
		h.writeError(w, "photo", err)
		return
	}

	resp := make([]PhotoResponse, 0, len(photos))
	for _, p := range photos {
		resp = append(resp, newPhotoResponse(p))
	}
	writeJSON(w, http.StatusOK, dataResponse{Data: resp})
}

func (h *RestaurantHandler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := uintParam(w, r, "id")
	if !ok {
		return
	}

	var req AddPhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadBody)
		return
	}

	photo, err := h.restaurantService.AddPhoto(r.Context(), restaurantID, req.Photo)
	if err != nil {
		h.writeError(w, "photo", err)
		return
	}
	writeJSON(w, http.StatusCreated, dataResponse{Data: newPhotoResponse(photo)})
}

func (h *RestaurantHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := uintParam(w, r, "id")
	if !ok {
		return
	}
	photoID, ok := uintParam(w, r, "photoID")
	if !ok {
		return
	}

	if err := h.restaurantService.RemovePhoto(r.Context(), restaurantID, photoID); err != nil {
		h.writeError(w, "photo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RestaurantHandler) writeError(w http.ResponseWriter, field string, err error) {
	switch {
	case errors.Is(err, domain.ErrRestaurantNotFound):
		writeMessage(w, http.StatusNotFound, "Restaurant not found.")
	case errors.Is(err, domain.ErrPhotoNotFound):
		writeMessage(w, http.StatusNotFound, "Photo not found.")
	case errors.Is(err, domain.ErrInvalidDayOfWeek),
		errors.Is(err, domain.ErrInvalidTimeRange),
		errors.Is(err, domain.ErrInvalidTimeFormat),
		errors.Is(err, domain.ErrEmptyPhoto):
		writeValidation(w, http.StatusUnprocessableEntity, service.NewValidationError(field, err.Error()))
	default:
		h.log.Error("restaurant request failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, msgServerError)
	}
}

func uintParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid "+name+".")
		return 0, false
	}
	return uint(id), true
}
