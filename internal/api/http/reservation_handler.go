package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"library-circulation/internal/domain"
	"library-circulation/internal/service"
)

type ReservationHandler struct {
	circulation service.CirculationService
	now         func() time.Time
}

func NewReservationHandler(circulation service.CirculationService, now func() time.Time) *ReservationHandler {
	return &ReservationHandler{circulation: circulation, now: now}
}

type reservationRequest struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
}

type queuePositionResponse struct {
	ResourceID string `json:"resource_id"`
	UserID     string `json:"user_id"`
	Position   int    `json:"position"`
}

// RequestReservation answers 201 for a queued reservation and 200 for one
// refused on creation, whose note carries the reason.
func (h *ReservationHandler) RequestReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ResourceID == "" {
		writeError(w, r, errBadRequest)
		return
	}
	userID, err := actingFor(r, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.circulation.RequestReservation(r.Context(), userID, req.ResourceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Status == domain.ReservationStatusCancelled {
		status = http.StatusOK
	}
	writeJSON(w, status, mapReservation(res, h.now()))
}

func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.circulation.GetReservation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := ownedBy(r, res.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReservation(res, h.now()))
}

func (h *ReservationHandler) transition(w http.ResponseWriter, r *http.Request, step func(context.Context, string) (*domain.Reservation, error)) {
	id := mux.Vars(r)["id"]
	current, err := h.circulation.GetReservation(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := ownedBy(r, current.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := step(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReservation(res, h.now()))
}

func (h *ReservationHandler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.circulation.ConfirmReservation)
}

func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.circulation.CancelReservation)
}

func (h *ReservationHandler) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.circulation.CompleteReservation)
}

func (h *ReservationHandler) QueuePosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := actingFor(r, vars["userID"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	pos, err := h.circulation.QueuePosition(r.Context(), vars["id"], userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queuePositionResponse{ResourceID: vars["id"], UserID: userID, Position: pos})
}

func (h *ReservationHandler) SweepExpired(w http.ResponseWriter, r *http.Request) {
	result, err := h.circulation.SweepExpired(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
