package main

import "github.com/control-horario/jornada-tracker/internal/validator"

// Validation rules

func validateEmail(v *validator.Validator, email string) {
	v.CheckField(validator.NotBlank(email), "email", "cannot be blank")
	v.CheckField(validator.IsEmail(email), "email", "must be a valid address")
}

func validatePassword(v *validator.Validator, password string) {
	v.CheckField(validator.NotBlank(password), "password", "cannot be blank")
	v.CheckField(validator.MinRunes(password, 6), "password", "must be at least 6 characters")
	v.CheckField(validator.MaxRunes(password, 72), "password", "must be at most 72 characters")
}

func validateDisplayName(v *validator.Validator, displayName string) {
	v.CheckField(validator.NotBlank(displayName), "displayName", "cannot be blank")
	v.CheckField(validator.MaxRunes(displayName, 100), "displayName", "must be at most 100 characters")
}
