package service

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/wb-go/wbf/ginext"

	"agriedge/internal/dto"
	"agriedge/internal/export"
	"agriedge/internal/listing"
)

// engine returns the admin's listing engine, loading it on first use.
func (s *service) engine(ctx *ginext.Context) (*listing.Engine, error) {
	id := identity(ctx)
	if id == nil {
		return nil, errUnauthenticated
	}
	e := s.sessions.Open(id.TokenID)
	if e.State() == listing.Empty {
		if err := s.load(ctx, e); err != nil {
			return e, err
		}
	}
	if e.State() == listing.Failed {
		return e, listing.ErrLoad
	}
	return e, nil
}

var errUnauthenticated = errors.New("no identity on request")

func (s *service) load(ctx *ginext.Context, e *listing.Engine) error {
	if err := e.Load(ctx.Request.Context(), s.repo); err != nil {
		s.metrics.IncListingLoad("failed")
		s.log.Error().Err(err).Msg("failed to load registrations")
		return err
	}
	s.metrics.IncListingLoad("ok")
	return nil
}

func (s *service) listingError(ctx *ginext.Context, err error) {
	switch {
	case errors.Is(err, errUnauthenticated):
		dto.UnauthenticatedError(ctx)
	case errors.Is(err, listing.ErrLoad):
		dto.ListingLoadFailedError(ctx)
	default:
		s.log.Error().Err(err).Msg("listing failure")
		dto.InternalServerError(ctx)
	}
}

func (s *service) listingResponse(e *listing.Engine, page int) dto.ListingResponse {
	page = e.ClampPage(page)
	key, dir := e.SortState()
	items := e.Page(page)

	out := dto.ListingResponse{
		State:     e.State().String(),
		Query:     e.Query(),
		SortKey:   key,
		SortDir:   dir.String(),
		Page:      page,
		PageCount: e.PageCount(),
		PageSize:  listing.PageSize,
		Total:     e.Len(),
		Matched:   len(e.View()),
		Items:     make([]dto.RegistrationResponse, 0, len(items)),
	}
	for _, r := range items {
		out.Items = append(out.Items, dto.NewRegistrationResponse(r))
	}
	return out
}

// LoadListing fetches the registrations again for this admin session.
func (s *service) LoadListing(ctx *ginext.Context) {
	id := identity(ctx)
	if id == nil {
		dto.UnauthenticatedError(ctx)
		return
	}
	e := s.sessions.Open(id.TokenID)
	if err := s.load(ctx, e); err != nil {
		s.listingError(ctx, err)
		return
	}
	dto.SuccessResponse(ctx, s.listingResponse(e, 1))
}

// GetListing applies ?q= when present and returns ?page= of the view.
func (s *service) GetListing(ctx *ginext.Context) {
	e, err := s.engine(ctx)
	if err != nil {
		s.listingError(ctx, err)
		return
	}

	if q, ok := ctx.GetQuery("q"); ok {
		e.Search(q)
	}
	page := 1
	if raw := ctx.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			dto.FieldBadFormatError(ctx, "page")
			return
		}
		page = n
	}
	dto.SuccessResponse(ctx, s.listingResponse(e, page))
}

func (s *service) SortListing(ctx *ginext.Context) {
	var req dto.SortRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Key == "" {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	e, err := s.engine(ctx)
	if err != nil {
		s.listingError(ctx, err)
		return
	}
	if _, err := e.Sort(req.Key); err != nil {
		dto.FieldIncorrectError(ctx, "key")
		return
	}
	dto.SuccessResponse(ctx, s.listingResponse(e, 1))
}

func (s *service) DiscardListing(ctx *ginext.Context) {
	if id := identity(ctx); id != nil {
		s.sessions.Discard(id.TokenID)
	}
	dto.SuccessResponse(ctx, nil)
}

// ExportCSV downloads the full held set, ignoring search and paging.
func (s *service) ExportCSV(ctx *ginext.Context) {
	e, err := s.engine(ctx)
	if err != nil {
		s.listingError(ctx, err)
		return
	}

	var buf bytes.Buffer
	if err := s.formatter(ctx).WriteCSV(&buf, e.All()); err != nil {
		s.log.Error().Err(err).Msg("failed to write csv export")
		dto.InternalServerError(ctx)
		return
	}
	s.metrics.IncExport("csv")
	attachment(ctx, export.CSVFilename, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *service) ExportPDF(ctx *ginext.Context) {
	e, err := s.engine(ctx)
	if err != nil {
		s.listingError(ctx, err)
		return
	}

	var buf bytes.Buffer
	report := export.Report{Formatter: s.formatter(ctx), Compress: true}
	if err := report.WritePDF(&buf, e.All(), s.opts.Now()); err != nil {
		s.log.Error().Err(err).Msg("failed to write pdf export")
		dto.InternalServerError(ctx)
		return
	}
	s.metrics.IncExport("pdf")
	attachment(ctx, export.PDFFilename, "application/pdf", buf.Bytes())
}

func attachment(ctx *ginext.Context, filename, contentType string, body []byte) {
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, contentType, body)
}
