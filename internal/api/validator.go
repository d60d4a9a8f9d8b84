package api

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const passwordSymbols = "!@#$%^&*()_+-=[]{};':\",.<>/?\\|`~"

// NewValidator returns a validator with the platform's password rule
// registered: 8-16 characters, at least one uppercase letter and at least
// one symbol.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	return v
}

func ValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 16 {
		return false
	}

	hasUpper := false
	hasSymbol := false
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if strings.ContainsRune(passwordSymbols, r) {
			hasSymbol = true
		}
	}

	return hasUpper && hasSymbol
}
