// Package validation evaluates the service's field constraints and reports
// every violated one, keyed by field name.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	MaxNameLength     = 255
	MinPasswordLength = 6
)

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, 0, len(v))
	for _, violation := range v {
		msgs = append(msgs, fmt.Sprintf("%s: %s", violation.Field, violation.Message))
	}

	return strings.Join(msgs, "; ")
}

func checkName(name string) *Violation {
	if strings.TrimSpace(name) == "" {
		return &Violation{Field: "name", Message: "must not be empty"}
	}
	if len(name) > MaxNameLength {
		return &Violation{Field: "name", Message: fmt.Sprintf("must be at most %d characters", MaxNameLength)}
	}

	return nil
}

func checkEmail(email string) *Violation {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &Violation{Field: "email", Message: "must be a valid email address"}
	}

	return nil
}

func checkPassword(password string) *Violation {
	if len(password) < MinPasswordLength {
		return &Violation{Field: "password", Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}

	return nil
}

// Register validates the registration fields. A nil return means all
// constraints hold.
func Register(name, email, password string) Violations {
	var out Violations

	if v := checkName(name); v != nil {
		out = append(out, *v)
	}
	if v := checkEmail(email); v != nil {
		out = append(out, *v)
	}
	if v := checkPassword(password); v != nil {
		out = append(out, *v)
	}

	return out
}

// Login validates the credential fields presented at login.
func Login(email, password string) Violations {
	var out Violations

	if v := checkEmail(email); v != nil {
		out = append(out, *v)
	}
	if password == "" {
		out = append(out, Violation{Field: "password", Message: "must not be empty"})
	}

	return out
}

// Update validates a partial update: only non-nil fields are checked. A
// password change requires a matching confirmation.
func Update(name, email, password, confirmation *string) Violations {
	var out Violations

	if name != nil {
		if v := checkName(*name); v != nil {
			out = append(out, *v)
		}
	}
	if email != nil {
		if v := checkEmail(*email); v != nil {
			out = append(out, *v)
		}
	}
	if password != nil {
		if v := checkPassword(*password); v != nil {
			out = append(out, *v)
		}
		if confirmation == nil || *confirmation != *password {
			out = append(out, Violation{Field: "password_confirmation", Message: "must match password"})
		}
	}

	return out
}
