package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"library-circulation/internal/service"
)

type LoanHandler struct {
	circulation service.CirculationService
	now         func() time.Time
}

func NewLoanHandler(circulation service.CirculationService, now func() time.Time) *LoanHandler {
	return &LoanHandler{circulation: circulation, now: now}
}

type issueLoanRequest struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
}

func (h *LoanHandler) IssueLoan(w http.ResponseWriter, r *http.Request) {
	var req issueLoanRequest
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

	loan, err := h.circulation.IssueLoan(r.Context(), userID, req.ResourceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapLoan(loan, h.now()))
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.circulation.GetLoan(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := ownedBy(r, loan.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapLoan(loan, h.now()))
}

// authorizeLoan loads a loan and checks the caller may act on it.
func (h *LoanHandler) authorizeLoan(r *http.Request) (string, error) {
	id := mux.Vars(r)["id"]
	loan, err := h.circulation.GetLoan(r.Context(), id)
	if err != nil {
		return "", err
	}
	return id, ownedBy(r, loan.UserID)
}

func (h *LoanHandler) ReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, err := h.authorizeLoan(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.circulation.ReturnLoan(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReturn(result, h.now()))
}

func (h *LoanHandler) RenewLoan(w http.ResponseWriter, r *http.Request) {
	id, err := h.authorizeLoan(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	loan, err := h.circulation.RenewLoan(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapLoan(loan, h.now()))
}

func (h *LoanHandler) ListUserLoans(w http.ResponseWriter, r *http.Request) {
	userID, err := actingFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	loans, err := h.circulation.ListUserLoans(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapLoans(loans, h.now()))
}

func (h *LoanHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	loans, err := h.circulation.ListOverdueLoans(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapLoans(loans, h.now()))
}
