package jobs

import (
	"context"
	"fmt"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/utils"
)

// SweepExpired drops expired queue entries and expires reservations whose
// window closed without a pickup
func (jr *JobRunner) SweepExpired() {
	jr.runWithRecovery("SweepExpired", func() {
		ctx := context.Background()

		result, err := jr.services.Circulation.SweepExpired(ctx)
		if err != nil {
			logger.Error("Failed to sweep expired reservations", "error", err)
			return
		}

		logger.Info("Swept expired reservations",
			"purged_queue_entries", result.PurgedQueueEntries,
			"expired_reservations", result.ExpiredReservations)
	})
}

// SendOverdueReminders records a reminder for every open loan past due
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		loans, err := jr.services.Circulation.ListOverdueLoans(ctx)
		if err != nil {
			logger.Error("Failed to list overdue loans", "error", err)
			return
		}

		count := 0
		for _, loan := range loans {
			message := fmt.Sprintf("Your loan %s was due on %s. Please return it as soon as possible to limit late fines.",
				loan.ID, utils.FormatDate(loan.DueOn))
			err := jr.services.Notification.Send(ctx, loan.UserID, "Loan Overdue", message, map[string]string{
				"type":        domain.NotificationTypeLoanOverdue,
				"loan_id":     loan.ID,
				"resource_id": loan.ResourceID,
			})
			if err != nil {
				logger.Error("Failed to record overdue reminder",
					"loan_id", loan.ID,
					"user_id", loan.UserID,
					"error", err)
				continue
			}

			count++
			logger.Debug("Sent overdue reminder", "loan_id", loan.ID, "user_id", loan.UserID)
		}

		logger.Info("Sent overdue reminders", "count", count)
	})
}

// FlagOverdueFines tells users about fines left unpaid past the grace period
func (jr *JobRunner) FlagOverdueFines() {
	jr.runWithRecovery("FlagOverdueFines", func() {
		ctx := context.Background()

		fines, err := jr.services.Fine.ListOverdueForPayment(ctx)
		if err != nil {
			logger.Error("Failed to list fines overdue for payment", "error", err)
			return
		}

		count := 0
		for _, fine := range fines {
			message := fmt.Sprintf("Fine %s of %s issued on %s is overdue for payment.",
				fine.ID, fine.Amount.StringFixed(2), utils.FormatDate(fine.GeneratedOn))
			err := jr.services.Notification.Send(ctx, fine.UserID, "Fine Overdue", message, map[string]string{
				"type":    domain.NotificationTypeFineOverdue,
				"fine_id": fine.ID,
				"loan_id": fine.LoanID,
			})
			if err != nil {
				logger.Error("Failed to record fine reminder", "fine_id", fine.ID, "user_id", fine.UserID, "error", err)
				continue
			}
			count++
		}

		logger.Info("Flagged overdue fines", "count", count)
	})
}
