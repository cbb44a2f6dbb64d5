// Package auth is the identity provider (accounts, sign-in, sign-out, current
// user) and the admin authorization lookup.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"agriedge/internal/model"
	"agriedge/internal/repo"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

type Identity struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	TokenID     string    `json:"-"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Label is the name shown for the identity: display name, else email.
func (i Identity) Label() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Email
}

type Session struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
}

type Provider interface {
	Register(ctx context.Context, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*Identity, error)
	UpdateProfile(ctx context.Context, userID, fullName string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type Config struct {
	Secret     string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

type provider struct {
	users   UserStore
	tokens  *tokenIssuer
	revoked *gocache.Cache
	cost    int
	log     *zerolog.Logger
	now     func() time.Time
}

func NewProvider(users UserStore, cfg Config, log *zerolog.Logger) Provider {
	return newProvider(users, cfg, log, time.Now)
}

func newProvider(users UserStore, cfg Config, log *zerolog.Logger, now func() time.Time) *provider {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &provider{
		users: users,
		tokens: &tokenIssuer{
			secret: []byte(cfg.Secret),
			issuer: cfg.Issuer,
			ttl:    cfg.TokenTTL,
			now:    now,
		},
		revoked: gocache.New(cfg.TokenTTL, cfg.TokenTTL),
		cost:    cfg.BcryptCost,
		log:     log,
		now:     now,
	}
}

func (p *provider) Register(ctx context.Context, email, password string) (*Session, error) {
	email = model.NormalizeEmail(email)

	_, err := p.users.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailInUse
	case !errors.Is(err, repo.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	hash, err := hashPassword(password, p.cost)
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	p.log.Info().Str("user_id", user.ID).Str("email", email).Msg("account created")
	return p.openSession(user)
}

func (p *provider) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := p.users.FindUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if err := verifyPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}
	return p.openSession(user)
}

func (p *provider) Logout(_ context.Context, token string) error {
	c, err := p.tokens.parse(token)
	if err != nil {
		return err
	}
	ttl := c.ExpiresAt.Time.Sub(p.now())
	if ttl <= 0 {
		return nil
	}
	p.revoked.Set(c.ID, struct{}{}, ttl)
	p.log.Info().Str("user_id", c.Subject).Msg("signed out")
	return nil
}

func (p *provider) CurrentUser(ctx context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthenticated
	}
	c, err := p.tokens.parse(token)
	if err != nil {
		return nil, err
	}
	if _, revoked := p.revoked.Get(c.ID); revoked {
		return nil, ErrUnauthenticated
	}

	user, err := p.users.GetUserByID(ctx, c.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	return &Identity{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.FullName,
		TokenID:     c.ID,
		ExpiresAt:   c.ExpiresAt.Time,
	}, nil
}

func (p *provider) UpdateProfile(ctx context.Context, userID, fullName string) error {
	user, err := p.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	user.FullName = strings.TrimSpace(fullName)
	user.UpdatedAt = p.now().UTC()
	if err := p.users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (p *provider) openSession(user *model.User) (*Session, error) {
	token, c, err := p.tokens.issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token: token,
		Identity: Identity{
			UserID:      user.ID,
			Email:       user.Email,
			DisplayName: user.FullName,
			TokenID:     c.ID,
			ExpiresAt:   c.ExpiresAt.Time,
		},
	}, nil
}
