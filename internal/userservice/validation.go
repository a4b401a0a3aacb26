package userservice

import (
	"regexp"

	"github.com/sushihentaime/blogauth/internal/common"
)

var (
	PhoneRX = regexp.MustCompile(`^\+?[0-9 ()\-]+$`)
)

func validateName(v *common.Validator, name string) {
	v.Check(name != "", "name", "must be provided")
	v.Check(v.MaxChars(name, 255), "name", "must not be more than 255 characters long")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(v.Matches(email, common.EmailRX), "email", "must be a valid email address")
}

// bcrypt ignores everything past 72 bytes, so longer passwords are rejected.
func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(len(password) <= 72, "password", "must not be more than 72 bytes long")
}

func validatePasswordConfirmation(v *common.Validator, password, confirmation string) {
	v.Check(password == confirmation, "password", "confirmation does not match")
}

func validatePhoneNumber(v *common.Validator, phone *string) {
	if phone == nil || *phone == "" {
		return
	}

	v.Check(v.MaxChars(*phone, 20), "phone_number", "must not be more than 20 characters long")
	v.Check(v.Matches(*phone, PhoneRX), "phone_number", "must be a valid phone number")
}

func validateID(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
