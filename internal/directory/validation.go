package directory

import (
	"strconv"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest accepted password, counted in characters.
const MinPasswordLength = 6

// Column limits shared by every store schema, counted in characters.
const (
	MaxNameLength                 = 100
	MaxEmailLength                = 150
	MaxIdentificationNumberLength = 30
)

// Rules holds the side-effect-free field checks applied before create and update.
type Rules struct {
	validate *validator.Validate
}

func NewRules() *Rules {
	return &Rules{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Email rejects empty values, anything that is not a local@domain address,
// and addresses longer than MaxEmailLength.
func (r *Rules) Email(email string) error {
	if err := r.validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	if err := r.validate.Var(email, maxTag(MaxEmailLength)); err != nil {
		return ErrEmailTooLong
	}
	return nil
}

// Password rejects values shorter than MinPasswordLength characters.
func (r *Rules) Password(password string) error {
	if err := r.validate.Var(password, "required,min="+strconv.Itoa(MinPasswordLength)); err != nil {
		return ErrPasswordTooShort
	}
	return nil
}

// Profile checks the free-text fields against their column limits.
func (r *Rules) Profile(firstName, lastName, idNumber string) error {
	if err := r.validate.Var(firstName, maxTag(MaxNameLength)); err != nil {
		return ErrFirstNameTooLong
	}
	if err := r.validate.Var(lastName, maxTag(MaxNameLength)); err != nil {
		return ErrLastNameTooLong
	}
	if err := r.validate.Var(idNumber, maxTag(MaxIdentificationNumberLength)); err != nil {
		return ErrIDNumberTooLong
	}
	return nil
}

func maxTag(n int) string {
	return "max=" + strconv.Itoa(n)
}
