// Package registration runs the intake workflow: validation, the advisory
// duplicate check, normalization and the write.
package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"agriedge/internal/auth"
	"agriedge/internal/dto"
	"agriedge/internal/metrics"
	"agriedge/internal/model"
	"agriedge/pkg/validator"
)

type Store interface {
	CreateRegistration(ctx context.Context, reg *model.Registration) (string, error)
}

type DuplicateChecker interface {
	Exists(ctx context.Context, email string) (bool, error)
}

// Publisher delivers the registration.created event. Failures are logged only.
type Publisher interface {
	Publish(ctx context.Context, message []byte) error
}

type Workflow struct {
	validator *validator.DraftValidator
	dups      DuplicateChecker
	store     Store
	publisher Publisher
	metrics   *metrics.Metrics
	log       *zerolog.Logger
	now       func() time.Time
}

type Option func(*Workflow)

func WithPublisher(p Publisher) Option {
	return func(w *Workflow) { w.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workflow) { w.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func NewWorkflow(v *validator.DraftValidator, dups DuplicateChecker, store Store, log *zerolog.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		validator: v,
		dups:      dups,
		store:     store,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workflow) Validator() *validator.DraftValidator {
	return w.validator
}

// Submit validates, checks for a duplicate email and stores the draft. Only
// *ValidationError, ErrDuplicateEmail and ErrSubmissionFailed are returned.
// identity may be nil for anonymous submissions.
func (w *Workflow) Submit(ctx context.Context, draft model.Draft, identity *auth.Identity, lang validator.Lang) (*model.Registration, error) {
	signedIn := identity != nil

	if fields := w.validator.Validate(ctx, draft, lang); len(fields) > 0 {
		w.metrics.IncSubmission(metrics.OutcomeInvalid, signedIn)
		return nil, invalid(fields)
	}

	start := w.now()
	reg := w.normalize(draft, identity)

	exists, err := w.dups.Exists(ctx, reg.Email)
	if err != nil {
		w.log.Error().Err(err).Str("email", reg.Email).Msg("duplicate check failed")
		w.metrics.IncSubmission(metrics.OutcomeFailed, signedIn)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if exists {
		w.log.Info().Str("email", reg.Email).Msg("duplicate registration rejected")
		w.metrics.IncSubmission(metrics.OutcomeDuplicate, signedIn)
		return nil, ErrDuplicateEmail
	}

	if _, err := w.store.CreateRegistration(ctx, reg); err != nil {
		w.log.Error().Err(err).Str("email", reg.Email).Msg("failed to store registration")
		w.metrics.IncSubmission(metrics.OutcomeFailed, signedIn)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	w.metrics.ObserveSubmit(w.now().Sub(start))
	w.metrics.IncSubmission(metrics.OutcomeCreated, signedIn)

	w.log.Info().
		Str("registration_id", reg.ID).
		Str("email", reg.Email).
		Msg("registration created")

	w.publish(ctx, reg, lang)
	return reg, nil
}

// normalize builds the stored record from a draft that already passed validation.
func (w *Workflow) normalize(draft model.Draft, identity *auth.Identity) *model.Registration {
	d := draft.Trimmed()
	catalogue := w.validator.Catalogue()

	interests := make([]string, 0, len(d.Interests))
	seen := make(map[string]bool, len(d.Interests))
	for _, tag := range d.Interests {
		label, ok := catalogue.Canonical(tag)
		if !ok || seen[label] {
			continue
		}
		seen[label] = true
		interests = append(interests, label)
	}

	reg := &model.Registration{
		FullName:  d.FullName,
		Email:     model.NormalizeEmail(d.Email),
		Company:   d.Company,
		Position:  d.Position,
		Phone:     d.Phone,
		Country:   d.Country,
		Interests: interests,
		Timestamp: model.FormatTimestamp(w.now()),
	}
	if seen[model.OtherInterest] {
		reg.OtherInterest = d.OtherInterest
	}
	if identity != nil {
		reg.CreatorEmail = identity.Email
		reg.UserID = identity.UserID
		reg.TeamMember = identity.DisplayName
	}
	return reg
}

func (w *Workflow) publish(ctx context.Context, reg *model.Registration, lang validator.Lang) {
	if w.publisher == nil {
		return
	}
	payload, err := json.Marshal(dto.RegistrationCreatedMessage{
		RegistrationID: reg.ID,
		FullName:       reg.FullName,
		Email:          reg.Email,
		Interests:      reg.Interests,
		Lang:           string(lang),
		Timestamp:      reg.Timestamp,
	})
	if err == nil {
		err = w.publisher.Publish(ctx, payload)
	}
	if err != nil {
		w.metrics.IncPublishFailure()
		w.log.Warn().Err(err).Str("registration_id", reg.ID).Msg("failed to publish registration.created")
	}
}

// SelfRegisterRequest is the account sign-up form: an account plus a pending
// registration for the same person.
type SelfRegisterRequest struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// SelfRegister creates an account and a pending registration linked to it.
// Besides the Submit errors it returns auth.ErrEmailInUse when the email
// belongs to an account whose password does not match.
func (w *Workflow) SelfRegister(ctx context.Context, provider auth.Provider, req SelfRegisterRequest, lang validator.Lang) (*auth.Session, *model.Registration, error) {
	if fields := w.validator.ValidateSignup(ctx, model.SignupDraft{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}, lang); len(fields) > 0 {
		return nil, nil, invalid(fields)
	}
	fullName := strings.TrimSpace(req.FullName)
	email := model.NormalizeEmail(req.Email)

	exists, err := w.dups.Exists(ctx, email)
	if err != nil {
		w.log.Error().Err(err).Str("email", email).Msg("duplicate check failed")
		return nil, nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if exists {
		return nil, nil, ErrDuplicateEmail
	}

	session, err := provider.Register(ctx, email, req.Password)
	if errors.Is(err, auth.ErrEmailInUse) {
		// An earlier attempt may have created the account and then failed to
		// store the registration. Its owner can resume with the same password.
		session, err = provider.Login(ctx, email, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, nil, auth.ErrEmailInUse
		}
		if err == nil {
			w.log.Info().Str("user_id", session.Identity.UserID).Msg("resuming self-registration for existing account")
		}
	}
	switch {
	case errors.Is(err, auth.ErrWeakPassword):
		return nil, nil, invalid(map[string]string{"password": validator.Message("password", "min", lang)})
	case err != nil:
		return nil, nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	if err := provider.UpdateProfile(ctx, session.Identity.UserID, fullName); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	session.Identity.DisplayName = fullName

	reg := &model.Registration{
		FullName:     fullName,
		Email:        email,
		Interests:    []string{},
		CreatorEmail: email,
		UserID:       session.Identity.UserID,
		Timestamp:    model.FormatTimestamp(w.now()),
		Status:       model.StatusPending,
	}
	if _, err := w.store.CreateRegistration(ctx, reg); err != nil {
		w.log.Error().Err(err).Str("email", email).Msg("failed to store pending registration")
		return nil, nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	w.log.Info().Str("user_id", reg.UserID).Str("registration_id", reg.ID).Msg("self-registration created")
	return session, reg, nil
}
