package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"agriedge/internal/model"
	"agriedge/internal/store"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type Repository interface {
	CreateRegistration(ctx context.Context, reg *model.Registration) (string, error)
	FindRegistrationsByEmail(ctx context.Context, email string) ([]model.Registration, error)
	ListRegistrations(ctx context.Context) ([]model.Registration, error)
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
	AddAdmin(ctx context.Context, email string) error
}

type repository struct {
	store store.Store
	log   *zerolog.Logger
}

func NewRepository(s store.Store, log *zerolog.Logger) (Repository, error) {
	if s == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	return &repository{store: s, log: log}, nil
}

func (r *repository) CreateRegistration(ctx context.Context, reg *model.Registration) (string, error) {
	id, err := r.store.Insert(ctx, model.CollectionRegistrations, reg)
	if err != nil {
		return "", fmt.Errorf("failed to insert registration: %w", err)
	}
	reg.ID = id
	return id, nil
}

func (r *repository) FindRegistrationsByEmail(ctx context.Context, email string) ([]model.Registration, error) {
	var regs []model.Registration
	if err := r.store.QueryWhere(ctx, model.CollectionRegistrations, "email", email, &regs); err != nil {
		return nil, fmt.Errorf("failed to query registrations by email: %w", err)
	}
	return regs, nil
}

func (r *repository) ListRegistrations(ctx context.Context) ([]model.Registration, error) {
	var regs []model.Registration
	if err := r.store.ListAll(ctx, model.CollectionRegistrations, "timestamp", store.Desc, &regs); err != nil {
		return nil, fmt.Errorf("failed to get registrations: %w", err)
	}
	return regs, nil
}

func (r *repository) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	if err := r.store.Set(ctx, model.CollectionUsers, user.ID, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.store.GetByID(ctx, model.CollectionUsers, id, &u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *repository) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var users []model.User
	if err := r.store.QueryWhere(ctx, model.CollectionUsers, "email", email, &users); err != nil {
		return nil, fmt.Errorf("failed to query users by email: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

func (r *repository) IsAdmin(ctx context.Context, email string) (bool, error) {
	var a model.Admin
	err := r.store.GetByID(ctx, model.CollectionAdmins, email, &a)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check admin: %w", err)
	}
}

func (r *repository) AddAdmin(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)
	admin := model.Admin{Email: email, CreatedAt: time.Now().UTC()}
	if err := r.store.Set(ctx, model.CollectionAdmins, email, admin); err != nil {
		return fmt.Errorf("failed to save admin: %w", err)
	}
	r.log.Info().Str("email", email).Msg("admin seeded")
	return nil
}
