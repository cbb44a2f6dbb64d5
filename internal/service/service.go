package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"agriedge/internal/auth"
	"agriedge/internal/export"
	"agriedge/internal/listing"
	"agriedge/internal/metrics"
	"agriedge/internal/registration"
	"agriedge/internal/repo"
	"agriedge/pkg/validator"
)

type Service interface {
	Register(ctx *ginext.Context)
	Signup(ctx *ginext.Context)
	Login(ctx *ginext.Context)
	Logout(ctx *ginext.Context)
	Me(ctx *ginext.Context)

	Interests(ctx *ginext.Context)
	ValidateDraft(ctx *ginext.Context)
	Submit(ctx *ginext.Context)

	LoadListing(ctx *ginext.Context)
	GetListing(ctx *ginext.Context)
	SortListing(ctx *ginext.Context)
	DiscardListing(ctx *ginext.Context)
	ExportCSV(ctx *ginext.Context)
	ExportPDF(ctx *ginext.Context)

	Health(ctx *ginext.Context)
}

type Options struct {
	// RequireAuth rejects anonymous submissions.
	RequireAuth bool
	// Location and DisplayLayout render times in exports.
	Location      *time.Location
	DisplayLayout string
	Now           func() time.Time
}

type Deps struct {
	Repo       repo.Repository
	Provider   auth.Provider
	Authorizer *auth.Authorizer
	Workflow   *registration.Workflow
	Sessions   *listing.Sessions
	Metrics    *metrics.Metrics
	Log        *zerolog.Logger
	Options    Options
}

type service struct {
	repo       repo.Repository
	provider   auth.Provider
	authorizer *auth.Authorizer
	workflow   *registration.Workflow
	sessions   *listing.Sessions
	metrics    *metrics.Metrics
	log        *zerolog.Logger
	opts       Options
}

func NewService(d Deps) Service {
	if d.Options.Now == nil {
		d.Options.Now = time.Now
	}
	if d.Options.Location == nil {
		d.Options.Location = time.Local
	}
	return &service{
		repo:       d.Repo,
		provider:   d.Provider,
		authorizer: d.Authorizer,
		workflow:   d.Workflow,
		sessions:   d.Sessions,
		metrics:    d.Metrics,
		log:        d.Log,
		opts:       d.Options,
	}
}

func (s *service) Health(ctx *ginext.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// lang prefers an explicit ?lang= over Accept-Language.
func lang(ctx *ginext.Context) validator.Lang {
	if l := strings.TrimSpace(ctx.Query("lang")); l != "" {
		return validator.ParseLang(l)
	}
	return validator.ParseLang(ctx.GetHeader("Accept-Language"))
}

func identity(ctx *ginext.Context) *auth.Identity {
	id, ok := auth.FromContext(ctx.Request.Context())
	if !ok {
		return nil
	}
	return id
}

func (s *service) formatter(ctx *ginext.Context) export.Formatter {
	return export.NewFormatter(s.opts.Location, s.opts.DisplayLayout, lang(ctx))
}
