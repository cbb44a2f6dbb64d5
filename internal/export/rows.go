// Package export reshapes registrations into the flat spreadsheet rows and
// the printable report.
package export

import (
	"strings"
	"time"

	"agriedge/internal/model"
	"agriedge/pkg/validator"
)

const DefaultDisplayLayout = "02/01/2006 15:04:05"

var flatHeader = map[validator.Lang][]string{
	validator.EN: {"Full Name", "Email", "Company", "Position", "Phone", "Country", "Interests", "Other Interest", "Registered At", "Registered By"},
	validator.FR: {"Nom Complet", "Email", "Entreprise", "Poste", "Téléphone", "Pays", "Solutions d'intérêt", "Autre intérêt", "Date d'inscription", "Inscrit par"},
}

var reportHeader = map[validator.Lang][]string{
	validator.EN: {"Full Name", "Email", "Company", "Country", "Interests", "Registered At", "Registered By"},
	validator.FR: {"Nom Complet", "Email", "Entreprise", "Pays", "Solutions d'intérêt", "Date d'inscription", "Inscrit par"},
}

// Formatter renders times in a display zone and layout.
type Formatter struct {
	Location *time.Location
	Layout   string
	Lang     validator.Lang
}

func NewFormatter(loc *time.Location, layout string, lang validator.Lang) Formatter {
	if loc == nil {
		loc = time.Local
	}
	if layout == "" {
		layout = DefaultDisplayLayout
	}
	if lang != validator.FR {
		lang = validator.EN
	}
	return Formatter{Location: loc, Layout: layout, Lang: lang}
}

// DisplayTime renders a stored timestamp, or the raw value if it cannot be parsed.
func (f Formatter) DisplayTime(r model.Registration) string {
	t := r.CreatedAt()
	if t.IsZero() {
		return r.Timestamp
	}
	return t.In(f.Location).Format(f.Layout)
}

func (f Formatter) FlatHeader() []string {
	return append([]string(nil), flatHeader[f.Lang]...)
}

func (f Formatter) ReportHeader() []string {
	return append([]string(nil), reportHeader[f.Lang]...)
}

func (f Formatter) FlatRow(r model.Registration) []string {
	return []string{
		r.FullName,
		r.Email,
		r.Company,
		r.Position,
		r.Phone,
		r.Country,
		strings.Join(r.Interests, ", "),
		r.OtherInterest,
		f.DisplayTime(r),
		r.SubmitterLabel(),
	}
}

func (f Formatter) FlatRows(regs []model.Registration) [][]string {
	rows := make([][]string, 0, len(regs))
	for _, r := range regs {
		rows = append(rows, f.FlatRow(r))
	}
	return rows
}

// ReportRow joins the other-interest text onto the interests column.
func (f Formatter) ReportRow(r model.Registration) []string {
	interests := make([]string, 0, len(r.Interests)+1)
	for _, tag := range r.Interests {
		if tag != "" {
			interests = append(interests, tag)
		}
	}
	if r.OtherInterest != "" {
		interests = append(interests, r.OtherInterest)
	}
	return []string{
		r.FullName,
		r.Email,
		r.Company,
		r.Country,
		strings.Join(interests, ", "),
		f.DisplayTime(r),
		r.SubmitterLabel(),
	}
}

func (f Formatter) ReportRows(regs []model.Registration) [][]string {
	rows := make([][]string, 0, len(regs))
	for _, r := range regs {
		rows = append(rows, f.ReportRow(r))
	}
	return rows
}
