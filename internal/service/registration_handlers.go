package service

import (
	"errors"

	"github.com/wb-go/wbf/ginext"

	"agriedge/internal/dto"
	"agriedge/internal/form"
	"agriedge/internal/model"
	"agriedge/internal/registration"
	"agriedge/pkg/validator"
)

func (s *service) Interests(ctx *ginext.Context) {
	dto.SuccessResponse(ctx, dto.InterestsResponse{
		Interests: s.workflow.Validator().Catalogue().Labels(),
		Other:     model.OtherInterest,
	})
}

// ValidateDraft reports the errors of the touched fields without storing anything.
func (s *service) ValidateDraft(ctx *ginext.Context) {
	var req dto.ValidateDraftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	st, err := form.Restore(ctx.Request.Context(), s.workflow.Validator(), lang(ctx), req.Draft, req.Touched)
	if err != nil {
		dto.FieldIncorrectError(ctx, "touched")
		return
	}
	errs := st.Errors()
	dto.SuccessResponse(ctx, dto.ValidateDraftResponse{
		Valid:  len(s.workflow.Validator().Validate(ctx.Request.Context(), req.Draft, validator.EN)) == 0,
		Errors: errs,
	})
}

func (s *service) Submit(ctx *ginext.Context) {
	id := identity(ctx)
	if s.opts.RequireAuth && id == nil {
		dto.UnauthenticatedError(ctx)
		return
	}

	var draft model.Draft
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	st, err := form.Restore(ctx.Request.Context(), s.workflow.Validator(), lang(ctx), draft, nil)
	if err != nil {
		dto.InternalServerError(ctx)
		return
	}
	reg, err := st.Submit(ctx.Request.Context(), s.workflow, id)
	if err != nil {
		s.submissionError(ctx, err)
		return
	}
	dto.SuccessCreatedResponse(ctx, dto.NewRegistrationResponse(*reg))
}

func (s *service) submissionError(ctx *ginext.Context, err error) {
	var verr *registration.ValidationError
	switch {
	case errors.As(err, &verr):
		dto.FieldsInvalidError(ctx, verr.Fields)
	case errors.Is(err, registration.ErrDuplicateEmail):
		if lang(ctx) == validator.FR {
			dto.RegistrationDuplicateError(ctx, "Cet email est déjà inscrit")
		} else {
			dto.RegistrationDuplicateError(ctx, "This email is already registered")
		}
	default:
		s.log.Error().Err(err).Msg("registration submission failed")
		dto.ServiceUnavailableError(ctx, dto.ServiceUnavailable, dto.InternalError)
	}
}
