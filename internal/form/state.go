// Package form holds the per-session state of the registration form.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"

	"agriedge/internal/auth"
	"agriedge/internal/model"
	"agriedge/internal/registration"
	"agriedge/pkg/validator"
)

var ErrUnknownField = errors.New("unknown form field")

type Submitter interface {
	Submit(ctx context.Context, draft model.Draft, identity *auth.Identity, lang validator.Lang) (*model.Registration, error)
}

// State is the draft being edited together with its touched set and errors.
// Errors are only reported for touched fields until a submit is attempted.
type State struct {
	mu        sync.Mutex
	validator *validator.DraftValidator
	lang      validator.Lang
	draft     model.Draft
	touched   map[string]bool
	errors    validator.FieldErrors
}

func NewState(v *validator.DraftValidator, lang validator.Lang) *State {
	return &State{
		validator: v,
		lang:      lang,
		touched:   make(map[string]bool),
		errors:    validator.FieldErrors{},
	}
}

// Draft returns a copy of the current draft.
func (s *State) Draft() model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft
	d.Interests = append([]string(nil), s.draft.Interests...)
	return d
}

// Errors returns a copy of the messages currently shown.
func (s *State) Errors() validator.FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(validator.FieldErrors, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

func (s *State) Touched(field string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched[field]
}

// Change sets a text field, or the interests list for "interests", and
// re-validates every touched field.
func (s *State) Change(ctx context.Context, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := setField(&s.draft, field, value); err != nil {
		return err
	}
	s.revalidate(ctx)
	return nil
}

// Blur marks a field as touched and validates it.
func (s *State) Blur(ctx context.Context, field string) error {
	if !isField(field) {
		return ErrUnknownField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched[field] = true
	s.revalidate(ctx)
	return nil
}

// Submit runs the workflow on the current draft. On success the form goes
// back to its empty initial shape.
func (s *State) Submit(ctx context.Context, w Submitter, identity *auth.Identity) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := w.Submit(ctx, s.draft, identity, s.lang)
	if err != nil {
		var verr *registration.ValidationError
		if errors.As(err, &verr) {
			for _, f := range model.DraftFields {
				s.touched[f] = true
			}
			s.errors = validator.FieldErrors(verr.Fields)
		}
		return nil, err
	}
	s.reset()
	return reg, nil
}

func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *State) reset() {
	s.draft = model.Draft{}
	s.touched = make(map[string]bool)
	s.errors = validator.FieldErrors{}
}

func (s *State) revalidate(ctx context.Context) {
	all := s.validator.Validate(ctx, s.draft, s.lang)
	s.errors = validator.FieldErrors{}
	for f := range s.touched {
		if msg, ok := all[f]; ok {
			s.errors[f] = msg
		}
	}
}

// Restore rebuilds a state from a draft and touched set held by the client.
// An empty touched list touches every field.
func Restore(ctx context.Context, v *validator.DraftValidator, lang validator.Lang, d model.Draft, touched []string) (*State, error) {
	st := NewState(v, lang)
	st.draft = d
	st.draft.Interests = append([]string(nil), d.Interests...)
	if len(touched) == 0 {
		touched = model.DraftFields
	}
	for _, f := range touched {
		f = strings.TrimSpace(f)
		if !isField(f) {
			return nil, ErrUnknownField
		}
		st.touched[f] = true
	}
	st.revalidate(ctx)
	return st, nil
}

func isField(field string) bool {
	for _, f := range model.DraftFields {
		if f == field {
			return true
		}
	}
	return false
}

func setField(d *model.Draft, field string, value any) error {
	if field == "interests" {
		tags, ok := value.([]string)
		if !ok {
			return ErrUnknownField
		}
		d.Interests = append([]string(nil), tags...)
		return nil
	}

	text, ok := value.(string)
	if !ok {
		return ErrUnknownField
	}
	switch field {
	case "fullName":
		d.FullName = text
	case "email":
		d.Email = text
	case "company":
		d.Company = text
	case "position":
		d.Position = text
	case "phone":
		d.Phone = text
	case "country":
		d.Country = text
	case "otherInterest":
		d.OtherInterest = text
	default:
		return ErrUnknownField
	}
	return nil
}
