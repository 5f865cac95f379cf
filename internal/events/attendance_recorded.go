package events

import "time"

type AttendanceRecordedEvent struct {
	EventType     string    `json:"event_type"`
	AttendanceID  string    `json:"attendance_id"`
	EmployeeID    string    `json:"employee_id"`
	Date          string    `json:"date"`
	WorkedHours   float64   `json:"worked_hours"`
	OvertimeHours float64   `json:"overtime_hours"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurred_at"`
}
