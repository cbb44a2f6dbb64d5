package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"agriedge/internal/model"
	"agriedge/internal/repo"
)

type AdminLookup interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Authorizer decides dashboard access. Lookup failures deny access.
type Authorizer struct {
	admins AdminLookup
	log    *zerolog.Logger
}

func NewAuthorizer(admins AdminLookup, log *zerolog.Logger) *Authorizer {
	return &Authorizer{admins: admins, log: log}
}

func (a *Authorizer) IsAdmin(ctx context.Context, email string) bool {
	email = model.NormalizeEmail(email)
	if email == "" {
		return false
	}
	ok, err := a.admins.IsAdmin(ctx, email)
	if err != nil {
		a.log.Error().Err(err).Str("email", email).Msg("admin lookup failed")
		return false
	}
	return ok
}

type AdminSeeder interface {
	AddAdmin(ctx context.Context, email string) error
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SeedAdmins records the configured admin emails. It returns the emails that
// have no account yet: whoever registers one of them first gets the dashboard.
func SeedAdmins(ctx context.Context, s AdminSeeder, emails []string, log *zerolog.Logger) ([]string, error) {
	var unclaimed []string
	for _, email := range emails {
		email = model.NormalizeEmail(email)
		if email == "" {
			continue
		}
		if err := s.AddAdmin(ctx, email); err != nil {
			return unclaimed, err
		}
		_, err := s.FindUserByEmail(ctx, email)
		switch {
		case errors.Is(err, repo.ErrUserNotFound):
			log.Warn().Str("email", email).Msg("seeded admin has no account yet, register it before exposing the service")
			unclaimed = append(unclaimed, email)
		case err != nil:
			return unclaimed, err
		}
	}
	return unclaimed, nil
}
