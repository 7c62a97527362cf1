// Package password enforces the composition policy for new passwords.
package password

import (
	apperrors "github.com/CarlosMilan/Challenge-BCI/pkg/errors"
)

const (
	MsgCapitalLetter = "Password must have a capital letter"
	MsgTwoNumbers    = "Password must have two numbers"
)

// Validate requires exactly one ASCII uppercase letter and exactly two ASCII
// digits anywhere in p. The capital-letter rule is checked first and its
// failure is the one reported. Length is checked by request validation.
func Validate(p string) error {
	var upper, digits int
	for i := 0; i < len(p); i++ {
		switch c := p[i]; {
		case c >= 'A' && c <= 'Z':
			upper++
		case c >= '0' && c <= '9':
			digits++
		}
	}

	if upper != 1 {
		return apperrors.ConstraintViolation(MsgCapitalLetter)
	}
	if digits != 2 {
		return apperrors.ConstraintViolation(MsgTwoNumbers)
	}
	return nil
}
