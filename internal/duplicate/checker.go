// Package duplicate answers whether an email already has a registration.
//
// The check is advisory. Nothing in the store enforces uniqueness, so two
// submissions racing on the same email can both pass it.
package duplicate

import (
	"context"
	"fmt"

	"agriedge/internal/model"
)

type RegistrationFinder interface {
	FindRegistrationsByEmail(ctx context.Context, email string) ([]model.Registration, error)
}

type Checker struct {
	finder RegistrationFinder
}

func NewChecker(finder RegistrationFinder) *Checker {
	return &Checker{finder: finder}
}

// Exists reports whether a registration with the normalized email is stored.
func (c *Checker) Exists(ctx context.Context, email string) (bool, error) {
	regs, err := c.finder.FindRegistrationsByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	return len(regs) > 0, nil
}
