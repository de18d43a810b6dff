package domain

import "time"

// Notification type attribute values.
const (
	NotificationTypeReservationReady = "RESERVATION_READY"
	NotificationTypeLoanOverdue      = "LOAN_OVERDUE"
	NotificationTypeFineOverdue      = "FINE_OVERDUE"
)

// Notification records that a user should be told something. Delivery is
// left to whoever reads the table.
type Notification struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  time.Time         `json:"created_on"`
}
