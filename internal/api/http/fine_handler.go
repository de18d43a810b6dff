package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"library-circulation/internal/service"
)

type FineHandler struct {
	fines service.FineService
	now   func() time.Time
}

func NewFineHandler(fines service.FineService, now func() time.Time) *FineHandler {
	return &FineHandler{fines: fines, now: now}
}

type payFineRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

type discountRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

type surchargeRequest struct {
	Days int             `json:"days"`
	Rate decimal.Decimal `json:"rate"`
}

type receiptResponse struct {
	FineID  string `json:"fine_id"`
	Receipt string `json:"receipt"`
}

// authorizeFine checks the caller owns the fine in the path or is staff.
func (h *FineHandler) authorizeFine(r *http.Request) (string, error) {
	id := mux.Vars(r)["id"]
	fine, err := h.fines.GetFine(r.Context(), id)
	if err != nil {
		return "", err
	}
	return id, ownedBy(r, fine.UserID)
}

func (h *FineHandler) GetFine(w http.ResponseWriter, r *http.Request) {
	id, err := h.authorizeFine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fine, err := h.fines.GetFine(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapFine(fine, h.now()))
}

func (h *FineHandler) PayFine(w http.ResponseWriter, r *http.Request) {
	id, err := h.authorizeFine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req payFineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Method == "" {
		req.Method = "CASH"
	}

	fine, err := h.fines.PayFine(r.Context(), id, req.Amount, req.Method)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapFine(fine, h.now()))
}

func (h *FineHandler) DiscountFine(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fine, err := h.fines.ApplyDiscount(r.Context(), mux.Vars(r)["id"], req.Percent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapFine(fine, h.now()))
}

func (h *FineHandler) SurchargeFine(w http.ResponseWriter, r *http.Request) {
	var req surchargeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fine, err := h.fines.AddLateSurcharge(r.Context(), mux.Vars(r)["id"], req.Days, req.Rate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapFine(fine, h.now()))
}

func (h *FineHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := h.authorizeFine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	receipt, err := h.fines.Receipt(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receiptResponse{FineID: id, Receipt: receipt})
}

func (h *FineHandler) ListUnpaid(w http.ResponseWriter, r *http.Request) {
	fines, err := h.fines.ListUnpaid(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapFines(fines, h.now()))
}

func (h *FineHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	fines, err := h.fines.ListOverdueForPayment(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapFines(fines, h.now()))
}
