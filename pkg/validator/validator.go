package validator

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator"

	"agriedge/internal/model"
)

var (
	global *validator.Validate

	fullNameRegex = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s'-]+$`)
	companyRegex  = regexp.MustCompile(`^[a-zA-Z0-9À-ÿ\s'&._-]+$`)
	countryRegex  = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s'-]+$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9\s().-]+$`)
)

const MinPhoneDigits = 10

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrUnknownValidation  = "Unknown validation error"
)

func init() {
	SetValidator(New(NewCatalogue(nil)))
}

// New builds a validator with the registration tags bound to catalogue c.
func New(c Catalogue) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("fullname", matches(fullNameRegex))
	_ = v.RegisterValidation("company", matches(companyRegex))
	_ = v.RegisterValidation("country", matches(countryRegex))
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("interest", func(fl validator.FieldLevel) bool {
		_, ok := c.Canonical(fl.Field().String())
		return ok
	})
	v.RegisterStructValidation(validateOtherInterest, model.Draft{})
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func validatePhone(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if !phoneRegex.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= MinPhoneDigits
}

// validateOtherInterest requires otherInterest only when "other" is selected.
func validateOtherInterest(sl validator.StructLevel) {
	d, ok := sl.Current().Interface().(model.Draft)
	if !ok || !d.HasOther() {
		return
	}
	switch {
	case strings.TrimSpace(d.OtherInterest) == "":
		sl.ReportError(d.OtherInterest, "otherInterest", "OtherInterest", "required", "")
	case !companyRegex.MatchString(d.OtherInterest):
		sl.ReportError(d.OtherInterest, "otherInterest", "OtherInterest", "company", "")
	}
}

// Validate checks a request structure and reports the first failing field.
func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = ErrFieldRequired
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "email", "fullname", "company", "country", "phone", "interest", "eqfield":
		msg = ErrInvalidFormat
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Field())
}
