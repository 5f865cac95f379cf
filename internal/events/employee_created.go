package events

import "time"

type EmployeeCreatedEvent struct {
	EventType    string    `json:"event_type"`
	EmployeeID   string    `json:"employee_id"`
	UniqueID     string    `json:"unique_id"`
	DepartmentID string    `json:"department_id"`
	Email        string    `json:"email"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurred_at"`
}
