package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"agriedge/internal/model"
)

func validDraft() model.Draft {
	return model.Draft{
		FullName:  "Jane Doe",
		Email:     "JANE@X.com",
		Company:   "Acme",
		Phone:     "0612345678",
		Country:   "Morocco",
		Interests: []string{"AquaEdge"},
	}
}

func newTestValidator() *DraftValidator {
	return NewDraftValidator(NewCatalogue(nil))
}

func TestValidDraftPasses(t *testing.T) {
	dv := newTestValidator()
	assert.Empty(t, dv.Validate(context.Background(), validDraft(), EN))
}

func TestFieldRules(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(d *model.Draft)
		field string
		want  string
	}{
		{"missing full name", func(d *model.Draft) { d.FullName = "   " }, "fullName", "Full name is required"},
		{"short full name", func(d *model.Draft) { d.FullName = "J" }, "fullName", "Full name must be at least 2 characters"},
		{"digits in full name", func(d *model.Draft) { d.FullName = "Jane 2" }, "fullName", "Full name may only contain letters, spaces, apostrophes and hyphens"},
		{"bad email", func(d *model.Draft) { d.Email = "jane@" }, "email", "Email address is invalid"},
		{"missing company", func(d *model.Draft) { d.Company = "" }, "company", "Company is required"},
		{"company charset", func(d *model.Draft) { d.Company = "Acme <script>" }, "company", "Company contains invalid characters"},
		{"position charset", func(d *model.Draft) { d.Position = "CEO!" }, "position", "Position contains invalid characters"},
		{"short phone", func(d *model.Draft) { d.Phone = "06 12 34" }, "phone", "Phone number must contain at least 10 digits"},
		{"phone letters", func(d *model.Draft) { d.Phone = "06123456789a" }, "phone", "Phone number must contain at least 10 digits"},
		{"country digits", func(d *model.Draft) { d.Country = "Morocco1" }, "country", "Country may only contain letters"},
		{"no interests", func(d *model.Draft) { d.Interests = nil }, "interests", "Select at least one interest"},
		{"empty interests", func(d *model.Draft) { d.Interests = []string{} }, "interests", "Select at least one interest"},
		{"unknown interest", func(d *model.Draft) { d.Interests = []string{"AquaEdge", "Drones"} }, "interests", "Unknown interest"},
		{"other without text", func(d *model.Draft) { d.Interests = []string{"other"} }, "otherInterest", "Please specify your other interest"},
		{"other bad charset", func(d *model.Draft) {
			d.Interests = []string{"other"}
			d.OtherInterest = "<b>"
		}, "otherInterest", "Other interest contains invalid characters"},
	}

	dv := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.edit(&d)
			errs := dv.Validate(context.Background(), d, EN)
			require.Contains(t, errs, tt.field)
			assert.Equal(t, tt.want, errs[tt.field])
			assert.Len(t, errs, 1)
		})
	}
}

func TestAccentedNamesAndInternationalPhone(t *testing.T) {
	d := validDraft()
	d.FullName = "Zoé O'Brien-Éluard"
	d.Company = "Société Générale & Co."
	d.Country = "Côte d'Ivoire"
	d.Phone = "+212 (6) 12-34-56-78"
	d.Position = "Directeur R&D"
	assert.Empty(t, newTestValidator().Validate(context.Background(), d, EN))
}

func TestCollectsEveryFieldError(t *testing.T) {
	errs := newTestValidator().Validate(context.Background(), model.Draft{Interests: []string{"other"}}, EN)
	for _, field := range []string{"fullName", "email", "company", "phone", "country", "otherInterest"} {
		assert.Contains(t, errs, field)
	}
	assert.NotContains(t, errs, "position")
	assert.NotContains(t, errs, "interests")
}

func TestFrenchMessages(t *testing.T) {
	d := validDraft()
	d.FullName = ""
	errs := newTestValidator().Validate(context.Background(), d, ParseLang("fr-FR,fr;q=0.9"))
	assert.Equal(t, "Le nom complet est requis", errs["fullName"])
}

func TestValidateFieldUsesWholeDraft(t *testing.T) {
	dv := newTestValidator()
	d := validDraft()
	d.Interests = []string{"other"}

	assert.Equal(t, "Please specify your other interest", dv.ValidateField(context.Background(), d, "otherInterest", EN))
	assert.Empty(t, dv.ValidateField(context.Background(), d, "email", EN))
}

func TestCatalogueIsConfigurable(t *testing.T) {
	dv := NewDraftValidator(NewCatalogue([]string{"Precision Agriculture", "IoT Sensors & Monitoring"}))
	d := validDraft()

	errs := dv.Validate(context.Background(), d, EN)
	assert.Equal(t, "Unknown interest", errs["interests"])

	d.Interests = []string{"precision agriculture"}
	assert.Empty(t, dv.Validate(context.Background(), d, EN))

	label, ok := dv.Catalogue().Canonical("iot sensors & monitoring")
	require.True(t, ok)
	assert.Equal(t, "IoT Sensors & Monitoring", label)
}

func TestOtherInterestIgnoredWithoutSentinel(t *testing.T) {
	dv := newTestValidator()
	rapid.Check(t, func(rt *rapid.T) {
		d := validDraft()
		d.OtherInterest = rapid.String().Draw(rt, "otherInterest")
		if errs := dv.Validate(context.Background(), d, EN); len(errs) != 0 {
			rt.Fatalf("otherInterest %q should be ignored, got %v", d.OtherInterest, errs)
		}
	})
}

func TestOtherInterestRequiredWithSentinel(t *testing.T) {
	dv := newTestValidator()
	rapid.Check(t, func(rt *rapid.T) {
		d := validDraft()
		d.Interests = []string{"other"}
		d.OtherInterest = strings.Repeat(" ", rapid.IntRange(0, 5).Draw(rt, "spaces"))
		if _, ok := dv.Validate(context.Background(), d, EN)["otherInterest"]; !ok {
			rt.Fatalf("blank otherInterest %q must be rejected", d.OtherInterest)
		}
	})
}

func TestValidateDoesNotMutate(t *testing.T) {
	dv := newTestValidator()
	rapid.Check(t, func(rt *rapid.T) {
		d := model.Draft{
			FullName:  rapid.String().Draw(rt, "fullName"),
			Email:     rapid.String().Draw(rt, "email"),
			Interests: rapid.SliceOf(rapid.String()).Draw(rt, "interests"),
		}
		before := append([]string(nil), d.Interests...)
		name := d.FullName
		dv.Validate(context.Background(), d, EN)
		if d.FullName != name || len(d.Interests) != len(before) {
			rt.Fatalf("draft was modified")
		}
		for i := range before {
			if before[i] != d.Interests[i] {
				rt.Fatalf("interests were modified")
			}
		}
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidateReportsFirstError(t *testing.T) {
	err := Validate(context.Background(), loginRequest{Email: "a@x.com", Password: "abc"})
	require.Error(t, err)
	assert.Equal(t, ErrFieldBelowMinLen+": password", err.Error())

	assert.NoError(t, Validate(context.Background(), loginRequest{Email: "a@x.com", Password: "secret1"}))
}
