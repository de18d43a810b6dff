package http

import (
	"time"

	"library-circulation/internal/domain"
	"library-circulation/internal/service"
)

type loanView struct {
	domain.Loan
	DaysRemaining int `json:"days_remaining"`
	DaysLate      int `json:"days_late"`
}

func mapLoan(l *domain.Loan, now time.Time) loanView {
	v := loanView{Loan: *l, DaysRemaining: l.DaysRemaining(now), DaysLate: l.DaysLate(now)}
	v.Status = l.StatusAt(now)
	return v
}

func mapLoans(loans []domain.Loan, now time.Time) []loanView {
	views := make([]loanView, 0, len(loans))
	for i := range loans {
		views = append(views, mapLoan(&loans[i], now))
	}
	return views
}

type reservationView struct {
	domain.Reservation
	HoursRemaining int    `json:"hours_remaining"`
	Summary        string `json:"summary"`
}

func mapReservation(r *domain.Reservation, now time.Time) reservationView {
	v := reservationView{Reservation: *r, HoursRemaining: r.HoursRemaining(now), Summary: r.Summary(now)}
	v.Status = r.StatusAt(now)
	return v
}

type fineView struct {
	domain.Fine
	Status domain.FineStatus `json:"status"`
}

func mapFine(f *domain.Fine, now time.Time) fineView {
	return fineView{Fine: *f, Status: f.StatusAt(now)}
}

func mapFines(fines []domain.Fine, now time.Time) []fineView {
	views := make([]fineView, 0, len(fines))
	for i := range fines {
		views = append(views, mapFine(&fines[i], now))
	}
	return views
}

type returnView struct {
	Loan         loanView  `json:"loan"`
	Fine         *fineView `json:"fine,omitempty"`
	NotifyUserID string    `json:"notify_user_id,omitempty"`
}

func mapReturn(res *service.ReturnResult, now time.Time) returnView {
	v := returnView{Loan: mapLoan(res.Loan, now), NotifyUserID: res.NotifyUserID}
	if res.Fine != nil {
		f := mapFine(res.Fine, now)
		v.Fine = &f
	}
	return v
}

type resourceView struct {
	domain.Resource
	QueueLength int `json:"queue_length"`
}

func mapResource(r *domain.Resource) resourceView {
	return resourceView{Resource: *r, QueueLength: r.QueueLen()}
}

type notificationPage struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int32                 `json:"total"`
	Page          int32                 `json:"page"`
}
