package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"agriedge/internal/auth"
	"agriedge/internal/dto"
	"agriedge/internal/registration"
	"agriedge/pkg/validator"
)

func (s *service) sessionResponse(ctx *ginext.Context, sess *auth.Session) dto.SessionResponse {
	return dto.SessionResponse{
		Token: sess.Token,
		User:  s.meResponse(ctx, &sess.Identity),
	}
}

func (s *service) meResponse(ctx *ginext.Context, id *auth.Identity) dto.MeResponse {
	return dto.MeResponse{
		UserID:      id.UserID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		IsAdmin:     s.authorizer.IsAdmin(ctx.Request.Context(), id.Email),
		ExpiresAt:   id.ExpiresAt,
	}
}

func (s *service) Register(ctx *ginext.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	sess, err := s.provider.Register(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.authError(ctx, err, "register")
		return
	}
	dto.SuccessCreatedResponse(ctx, s.sessionResponse(ctx, sess))
}

func (s *service) Signup(ctx *ginext.Context) {
	var req dto.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	sess, reg, err := s.workflow.SelfRegister(ctx.Request.Context(), s.provider, registration.SelfRegisterRequest{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}, lang(ctx))
	if err != nil {
		if errors.Is(err, auth.ErrEmailInUse) {
			dto.EmailInUseError(ctx)
			return
		}
		s.submissionError(ctx, err)
		return
	}

	dto.SuccessCreatedResponse(ctx, dto.SignupResponse{
		Session:      s.sessionResponse(ctx, sess),
		Registration: dto.NewRegistrationResponse(*reg),
	})
}

func (s *service) Login(ctx *ginext.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	sess, err := s.provider.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.authError(ctx, err, "login")
		return
	}
	dto.SuccessResponse(ctx, s.sessionResponse(ctx, sess))
}

func (s *service) Logout(ctx *ginext.Context) {
	token := auth.BearerToken(ctx.GetHeader("Authorization"))
	if err := s.provider.Logout(ctx.Request.Context(), token); err != nil {
		s.authError(ctx, err, "logout")
		return
	}
	if id := identity(ctx); id != nil {
		s.sessions.Discard(id.TokenID)
	}
	dto.SuccessResponse(ctx, nil)
}

func (s *service) Me(ctx *ginext.Context) {
	id := identity(ctx)
	if id == nil {
		dto.UnauthenticatedError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.meResponse(ctx, id))
}

func (s *service) authError(ctx *ginext.Context, err error, op string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		dto.InvalidCredentialsError(ctx)
	case errors.Is(err, auth.ErrEmailInUse):
		dto.EmailInUseError(ctx)
	case errors.Is(err, auth.ErrUnauthenticated):
		dto.UnauthenticatedError(ctx)
	case errors.Is(err, auth.ErrWeakPassword):
		dto.FieldsInvalidError(ctx, map[string]string{"password": validator.Message("password", "min", lang(ctx))})
	default:
		s.log.Error().Err(err).Str("op", op).Msg("identity provider failure")
		dto.ServiceUnavailableError(ctx, dto.ServiceUnavailable, dto.InternalError)
	}
}
