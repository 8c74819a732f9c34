package customers

type CreateCustomerRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	City    *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=300"`
	City    *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type ListCustomersRequest struct {
	Search  string
	Page    int
	PerPage int
}
