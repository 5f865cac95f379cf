package department

type CreateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Code        string `json:"code" binding:"required,min=3,max=10"`
	Description string `json:"description" binding:"max=500"`
}

type UpdateDepartmentRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=500"`
}

type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
	UpdatedBy   string `json:"updated_by,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
