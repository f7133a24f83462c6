package services

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && validate.Var(email, "required,email") == nil
}
