package attendance

type CreateAttendanceRequest struct {
	EmployeeID   string  `json:"employee_id" binding:"required,uuid"`
	Date         string  `json:"date" binding:"required"`
	ClockIn      *string `json:"clock_in"`
	ClockOut     *string `json:"clock_out"`
	BreakMinutes *int    `json:"break_minutes"`
	Notes        string  `json:"notes" binding:"max=500"`
}

// UpdateAttendanceRequest is a patch: nil fields keep their stored value.
type UpdateAttendanceRequest struct {
	ClockIn      *string `json:"clock_in"`
	ClockOut     *string `json:"clock_out"`
	BreakMinutes *int    `json:"break_minutes"`
	Notes        *string `json:"notes" binding:"omitempty,max=500"`
}

type ClockInRequest struct {
	EmployeeID string `json:"employee_id" binding:"omitempty,uuid"`
	Notes      string `json:"notes" binding:"max=500"`
}

type ClockOutRequest struct {
	EmployeeID   string  `json:"employee_id" binding:"omitempty,uuid"`
	BreakMinutes *int    `json:"break_minutes"`
	Notes        *string `json:"notes" binding:"omitempty,max=500"`
}

type AttendanceResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name,omitempty"`
	Date          string  `json:"date"`
	ClockIn       string  `json:"clock_in,omitempty"`
	ClockOut      string  `json:"clock_out,omitempty"`
	BreakMinutes  *int    `json:"break_minutes,omitempty"`
	WorkedHours   float64 `json:"worked_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
	Notes         string  `json:"notes,omitempty"`
	CreatedBy     string  `json:"created_by,omitempty"`
	UpdatedBy     string  `json:"updated_by,omitempty"`
}
