package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"library-circulation/internal/security"
	"library-circulation/internal/service"
)

// NewRouter wires every circulation route. Each route is named after its
// entry in config.RouteSecurityConfig. A nil now uses the wall clock.
func NewRouter(svcs *service.Services, tm security.TokenManager, now func() time.Time) *mux.Router {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	loans := NewLoanHandler(svcs.Circulation, now)
	reservations := NewReservationHandler(svcs.Circulation, now)
	fines := NewFineHandler(svcs.Fine, now)
	catalog := NewCatalogHandler(svcs.Catalog)
	notifications := NewNotificationHandler(svcs.Notification)

	r := mux.NewRouter()
	r.Use(loggingMiddleware)
	r.HandleFunc("/health", health).Methods(http.MethodGet).Name("Health")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(NewAuthMiddleware(tm, svcs.Catalog).Handler)

	api.HandleFunc("/loans", loans.IssueLoan).Methods(http.MethodPost).Name("IssueLoan")
	api.HandleFunc("/loans/overdue", loans.ListOverdue).Methods(http.MethodGet).Name("ListOverdue")
	api.HandleFunc("/loans/{id}", loans.GetLoan).Methods(http.MethodGet).Name("GetLoan")
	api.HandleFunc("/loans/{id}/return", loans.ReturnLoan).Methods(http.MethodPost).Name("ReturnLoan")
	api.HandleFunc("/loans/{id}/renew", loans.RenewLoan).Methods(http.MethodPost).Name("RenewLoan")

	api.HandleFunc("/reservations", reservations.RequestReservation).Methods(http.MethodPost).Name("RequestReservation")
	api.HandleFunc("/reservations/sweep", reservations.SweepExpired).Methods(http.MethodPost).Name("SweepExpired")
	api.HandleFunc("/reservations/{id}", reservations.GetReservation).Methods(http.MethodGet).Name("GetReservation")
	api.HandleFunc("/reservations/{id}/confirm", reservations.ConfirmReservation).Methods(http.MethodPost).Name("ConfirmReservation")
	api.HandleFunc("/reservations/{id}/cancel", reservations.CancelReservation).Methods(http.MethodPost).Name("CancelReservation")
	api.HandleFunc("/reservations/{id}/complete", reservations.CompleteReservation).Methods(http.MethodPost).Name("CompleteReservation")

	api.HandleFunc("/fines/unpaid", fines.ListUnpaid).Methods(http.MethodGet).Name("ListUnpaidFines")
	api.HandleFunc("/fines/overdue", fines.ListOverdue).Methods(http.MethodGet).Name("ListOverdueFines")
	api.HandleFunc("/fines/{id}", fines.GetFine).Methods(http.MethodGet).Name("GetFine")
	api.HandleFunc("/fines/{id}/pay", fines.PayFine).Methods(http.MethodPost).Name("PayFine")
	api.HandleFunc("/fines/{id}/discount", fines.DiscountFine).Methods(http.MethodPost).Name("DiscountFine")
	api.HandleFunc("/fines/{id}/surcharge", fines.SurchargeFine).Methods(http.MethodPost).Name("SurchargeFine")
	api.HandleFunc("/fines/{id}/receipt", fines.Receipt).Methods(http.MethodGet).Name("FineReceipt")

	api.HandleFunc("/users", catalog.RegisterUser).Methods(http.MethodPost).Name("RegisterUser")
	api.HandleFunc("/users/{id}", catalog.GetUser).Methods(http.MethodGet).Name("GetUser")
	api.HandleFunc("/users/{id}/active", catalog.SetUserActive).Methods(http.MethodPut).Name("SetUserActive")
	api.HandleFunc("/users/{id}/loans", loans.ListUserLoans).Methods(http.MethodGet).Name("ListUserLoans")

	api.HandleFunc("/resources", catalog.AddResource).Methods(http.MethodPost).Name("AddResource")
	api.HandleFunc("/resources/{id}", catalog.GetResource).Methods(http.MethodGet).Name("GetResource")
	api.HandleFunc("/resources/{id}/condition", catalog.UpdateCondition).Methods(http.MethodPut).Name("UpdateCondition")
	api.HandleFunc("/resources/{id}/queue/{userID}", reservations.QueuePosition).Methods(http.MethodGet).Name("QueuePosition")

	api.HandleFunc("/notifications", notifications.ListNotifications).Methods(http.MethodGet).Name("ListNotifications")
	api.HandleFunc("/notifications/{id}/read", notifications.MarkRead).Methods(http.MethodPost).Name("MarkRead")

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
