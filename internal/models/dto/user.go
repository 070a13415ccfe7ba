package dto

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	IdentificationTypeID int64  `json:"identificationTypeId"`
	IdentificationNumber string `json:"identificationNumber"`
	Email                string `json:"email"`
	Password             string `json:"password"`
}

// UpdateUserRequest is the body of PUT /users/{id}. Empty fields are left untouched.
type UpdateUserRequest struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	IdentificationTypeID int64  `json:"identificationTypeId"`
	IdentificationNumber string `json:"identificationNumber"`
	Email                string `json:"email"`
	Password             string `json:"password"`
}
