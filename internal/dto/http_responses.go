package dto

import (
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"

	"agriedge/internal/model"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	FieldInvalid       = "FIELD_INVALID"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	RegistrationDuplicate = "REGISTRATION_DUPLICATE"
	ListingLoadFailed     = "LISTING_LOAD_FAILED"
	ListingNotLoaded      = "LISTING_NOT_LOADED"

	InvalidCredentials = "INVALID_CREDENTIALS"
	EmailInUse         = "EMAIL_IN_USE"
	Unauthenticated    = "UNAUTHENTICATED"
	Forbidden          = "FORBIDDEN"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ValidateDraftRequest asks for the errors of the touched fields of a draft.
// An empty Touched list validates the whole draft.
type ValidateDraftRequest struct {
	Draft   model.Draft `json:"draft"`
	Touched []string    `json:"touched"`
}

type ValidateDraftResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

type SortRequest struct {
	Key string `json:"key" validate:"required"`
}

type SessionResponse struct {
	Token string     `json:"token"`
	User  MeResponse `json:"user"`
}

type MeResponse struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	IsAdmin     bool      `json:"isAdmin"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type SignupResponse struct {
	Session      SessionResponse      `json:"session"`
	Registration RegistrationResponse `json:"registration"`
}

type RegistrationResponse struct {
	model.Registration
	RegisteredBy string `json:"registeredBy"`
}

func NewRegistrationResponse(r model.Registration) RegistrationResponse {
	return RegistrationResponse{Registration: r, RegisteredBy: r.SubmitterLabel()}
}

type InterestsResponse struct {
	Interests []string `json:"interests"`
	Other     string   `json:"other"`
}

type ListingResponse struct {
	State     string                 `json:"state"`
	Query     string                 `json:"query,omitempty"`
	SortKey   string                 `json:"sortKey"`
	SortDir   string                 `json:"sortDir"`
	Page      int                    `json:"page"`
	PageCount int                    `json:"pageCount"`
	PageSize  int                    `json:"pageSize"`
	Total     int                    `json:"total"`
	Matched   int                    `json:"matched"`
	Items     []RegistrationResponse `json:"items"`
}

// RegistrationCreatedMessage is the registration.created event body.
type RegistrationCreatedMessage struct {
	RegistrationID string   `json:"registration_id"`
	FullName       string   `json:"full_name"`
	Email          string   `json:"email"`
	Interests      []string `json:"interests"`
	Lang           string   `json:"lang"`
	Timestamp      string   `json:"timestamp"`
}

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func errorResponse(c *ginext.Context, status int, code, desc string, data any) {
	c.AbortWithStatusJSON(status, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
		Data: data,
	})
}

func BadResponseError(c *ginext.Context, code, desc string) {
	errorResponse(c, http.StatusBadRequest, code, desc, nil)
}

func InternalServerError(c *ginext.Context) {
	errorResponse(c, http.StatusInternalServerError, ServiceUnavailable, InternalError, nil)
}

// ServiceUnavailableError reports a store or identity failure the user may retry.
func ServiceUnavailableError(c *ginext.Context, code, desc string) {
	errorResponse(c, http.StatusServiceUnavailable, code, desc, nil)
}

func FieldBadFormatError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldBadFormat, "Field '"+fieldName+"' has bad format")
}

func FieldIncorrectError(c *ginext.Context, fieldName string) {
	BadResponseError(c, FieldIncorrect, "Field '"+fieldName+"' is incorrect")
}

// FieldsInvalidError returns every field message under data.fields.
func FieldsInvalidError(c *ginext.Context, fields map[string]string) {
	errorResponse(c, http.StatusBadRequest, FieldInvalid, "One or more fields are invalid",
		map[string]any{"fields": fields})
}

func RegistrationDuplicateError(c *ginext.Context, desc string) {
	errorResponse(c, http.StatusConflict, RegistrationDuplicate, desc, nil)
}

func EmailInUseError(c *ginext.Context) {
	errorResponse(c, http.StatusConflict, EmailInUse, "An account already exists for this email", nil)
}

func InvalidCredentialsError(c *ginext.Context) {
	errorResponse(c, http.StatusUnauthorized, InvalidCredentials, "Invalid email or password", nil)
}

func UnauthenticatedError(c *ginext.Context) {
	errorResponse(c, http.StatusUnauthorized, Unauthenticated, "Sign in required", nil)
}

func ForbiddenError(c *ginext.Context) {
	errorResponse(c, http.StatusForbidden, Forbidden, "Admin access required", nil)
}

func ListingLoadFailedError(c *ginext.Context) {
	ServiceUnavailableError(c, ListingLoadFailed, "Registrations could not be loaded. Please try again.")
}

func ListingNotLoadedError(c *ginext.Context) {
	errorResponse(c, http.StatusConflict, ListingNotLoaded, "Load the listing first", nil)
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Status: "ok",
		Data:   data,
	})
}
