package validator

import (
	"context"
	"strings"

	"github.com/go-playground/validator"

	"agriedge/internal/model"
)

// FieldErrors maps a form field (JSON name) to a human-readable message.
type FieldErrors map[string]string

// DraftValidator evaluates the registration rules against a fixed catalogue.
type DraftValidator struct {
	v         *validator.Validate
	catalogue Catalogue
}

func NewDraftValidator(c Catalogue) *DraftValidator {
	return &DraftValidator{v: New(c), catalogue: c}
}

func (dv *DraftValidator) Catalogue() Catalogue {
	return dv.catalogue
}

// Validate runs every rule and collects one message per failing field.
// The draft is checked in trimmed form and is never modified.
func (dv *DraftValidator) Validate(ctx context.Context, d model.Draft, lang Lang) FieldErrors {
	return collect(dv.v.StructCtx(ctx, d.Trimmed()), lang)
}

// ValidateSignup checks the account sign-up form. Passwords are compared as
// typed; the other fields are trimmed first.
func (dv *DraftValidator) ValidateSignup(ctx context.Context, d model.SignupDraft, lang Lang) FieldErrors {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
	return collect(dv.v.StructCtx(ctx, d), lang)
}

func collect(err error, lang Lang) FieldErrors {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"": fallback.in(lang)}
	}

	out := make(FieldErrors, len(vErrors))
	for _, fe := range vErrors {
		field := baseField(fe.Field())
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = messageFor(field, fe.Tag(), lang)
	}
	return out
}

// ValidateField returns the message for one field, evaluated against the whole
// draft so that cross-field rules apply. Empty means valid.
func (dv *DraftValidator) ValidateField(ctx context.Context, d model.Draft, field string, lang Lang) string {
	return dv.Validate(ctx, d, lang)[field]
}

// baseField strips element indexes, "interests[1]" becomes "interests".
func baseField(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}
