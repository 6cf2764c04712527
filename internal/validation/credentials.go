package validation

import (
	"strings"
)

// Credentials учётные данные из формы входа.
type Credentials struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

var credentialsMessages = map[string]string{
	"email":    "Please enter a valid email address.",
	"password": "Password must be at least 6 characters.",
}

// ParseCredentialsForm разбирает поля формы входа.
func ParseCredentialsForm(fields map[string]string) (Credentials, FieldErrors) {
	c := Credentials{
		Email:    strings.TrimSpace(fields["email"]),
		Password: fields["password"],
	}

	fe, err := check(c, credentialsMessages)
	if err != nil {
		return c, FieldErrors{"email": {credentialsMessages["email"]}}
	}
	if len(fe) == 0 {
		return c, nil
	}
	return c, fe
}
