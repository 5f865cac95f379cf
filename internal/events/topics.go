package events

const (
	EmployeeLifecycleTopic   = "hr.employee.lifecycle.v1"
	LeaveLifecycleTopic      = "hr.leave.lifecycle.v1"
	AttendanceLifecycleTopic = "hr.attendance.lifecycle.v1"
)

const (
	EmployeeCreatedType      = "employee_created"
	LeaveRequestReviewedType = "leave_request_reviewed"
	AttendanceRecordedType   = "attendance_recorded"
)

// Topics lists every topic the audit consumer subscribes to.
func Topics() []string {
	return []string{EmployeeLifecycleTopic, LeaveLifecycleTopic, AttendanceLifecycleTopic}
}

// Header is the part shared by every event payload; consumers decode it
// first to route the message.
type Header struct {
	EventType  string `json:"event_type"`
	Actor      string `json:"actor"`
	OccurredAt string `json:"occurred_at"`
}
