package types

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=GOVERNMENT CONTRACTOR AUDITOR"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProjectCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=200"`
	Description string  `json:"description" validate:"max=1000"`
	Budget      float64 `json:"budget" validate:"required,gt=0"`
}

type ProjectStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=CREATED IN_PROGRESS COMPLETED"`
}

type MilestoneCreateRequest struct {
	ProjectID       uint    `json:"project_id" validate:"required"`
	Title           string  `json:"title" validate:"required,min=3,max=200"`
	Description     string  `json:"description" validate:"max=1000"`
	RequestedAmount float64 `json:"requested_amount" validate:"required,gt=0"`
}
