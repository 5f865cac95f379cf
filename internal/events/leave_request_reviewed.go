package events

import "time"

type LeaveRequestReviewedEvent struct {
	EventType       string    `json:"event_type"`
	LeaveRequestID  string    `json:"leave_request_id"`
	EmployeeID      string    `json:"employee_id"`
	Status          string    `json:"status"`
	ManagerComments string    `json:"manager_comments,omitempty"`
	Actor           string    `json:"actor"`
	OccurredAt      time.Time `json:"occurred_at"`
}
