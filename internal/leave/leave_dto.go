package leave

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveType  string `json:"leave_type" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Reason     string `json:"reason" binding:"max=1000"`
}

// UpdateLeaveRequest is the administrative patch. Status is applied as given,
// without the review guard.
type UpdateLeaveRequest struct {
	Status          *string `json:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	ManagerComments *string `json:"manager_comments" binding:"omitempty,max=1000"`
}

type ReviewLeaveRequest struct {
	Comments string `json:"comments" binding:"max=1000"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	DaysRequested   int     `json:"days_requested"`
	Reason          string  `json:"reason,omitempty"`
	Status          string  `json:"status"`
	ManagerComments string  `json:"manager_comments,omitempty"`
	ReviewedBy      string  `json:"reviewed_by,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	CreatedBy       string  `json:"created_by,omitempty"`
	UpdatedBy       string  `json:"updated_by,omitempty"`
}
