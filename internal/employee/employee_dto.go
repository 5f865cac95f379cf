package employee

type CreateEmployeeRequest struct {
	FirstName    string  `json:"first_name" binding:"required,min=2,max=100"`
	LastName     string  `json:"last_name" binding:"required,min=2,max=100"`
	Gender       string  `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	Email        string  `json:"email" binding:"required,email"`
	PhoneNumber  string  `json:"phone_number" binding:"max=30"`
	Address      string  `json:"address" binding:"max=255"`
	Position     string  `json:"position" binding:"max=100"`
	Salary       float64 `json:"salary" binding:"gte=0"`
	DepartmentID string  `json:"department_id" binding:"required,uuid"`
	HireDate     string  `json:"hire_date" binding:"required"`
}

type UpdateEmployeeRequest struct {
	FirstName    string  `json:"first_name" binding:"required,min=2,max=100"`
	LastName     string  `json:"last_name" binding:"required,min=2,max=100"`
	Gender       string  `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	Email        string  `json:"email" binding:"required,email"`
	PhoneNumber  string  `json:"phone_number" binding:"max=30"`
	Address      string  `json:"address" binding:"max=255"`
	Position     string  `json:"position" binding:"max=100"`
	Salary       float64 `json:"salary" binding:"gte=0"`
	DepartmentID string  `json:"department_id" binding:"required,uuid"`
	HireDate     string  `json:"hire_date" binding:"required"`
}

type EmployeeDepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type EmployeeResponse struct {
	ID           string                      `json:"id"`
	UniqueID     string                      `json:"unique_id"`
	FirstName    string                      `json:"first_name"`
	LastName     string                      `json:"last_name"`
	FullName     string                      `json:"full_name"`
	Gender       string                      `json:"gender"`
	Email        string                      `json:"email"`
	PhoneNumber  string                      `json:"phone_number,omitempty"`
	Address      string                      `json:"address,omitempty"`
	Position     string                      `json:"position,omitempty"`
	Salary       float64                     `json:"salary"`
	DepartmentID string                      `json:"department_id"`
	Department   *EmployeeDepartmentResponse `json:"department,omitempty"`
	HireDate     string                      `json:"hire_date"`
	CreatedBy    string                      `json:"created_by,omitempty"`
	UpdatedBy    string                      `json:"updated_by,omitempty"`
	CreatedAt    string                      `json:"created_at,omitempty"`
	UpdatedAt    string                      `json:"updated_at,omitempty"`
}

type EmployeeOptionResponse struct {
	ID       string `json:"id"`
	UniqueID string `json:"unique_id"`
	FullName string `json:"full_name"`
}
