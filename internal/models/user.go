package models

// IdentificationType is reference data describing an identity document category.
type IdentificationType struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// User captures application-facing fields for a directory account.
type User struct {
	ID                   int64               `json:"id"`
	FirstName            string              `json:"firstName"`
	LastName             string              `json:"lastName"`
	IdentificationTypeID int64               `json:"identificationTypeId"`
	IdentificationType   *IdentificationType `json:"identificationType,omitempty"`
	IdentificationNumber string              `json:"identificationNumber"`
	Email                string              `json:"email"`
	// Password carries a plaintext credential into the store, which hashes it.
	// It is never populated on records read back from the store.
	Password     string `json:"-"`
	PasswordHash string `json:"-"`
}

// FullName is the display name embedded in issued tokens.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
