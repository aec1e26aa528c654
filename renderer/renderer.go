package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/arr"
	"github.com/etnz/arr/date"
)

//go:embed *.md
var templates embed.FS

// Report is the view rendered by the report templates.
//
// It is a flattened copy of a computation result, so that templates only deal
// with plain fields, and so that a report can be rendered back from json.
type Report struct {
	Title         string                 `json:"title"`
	Period        string                 `json:"period"` // first column header of the rollforward
	Authoritative bool                   `json:"authoritative"`
	Blocking      int                    `json:"blocking"`
	KPIs          arr.KPIs               `json:"kpis"`
	Latest        arr.Bridge             `json:"latest"`
	Rows          []Row                  `json:"rows"`
	Segments      []arr.SegmentAggregate `json:"segments"`
}

// Row is one line of the rollforward table.
type Row struct {
	Label string `json:"label"`
	arr.Bridge
}

// ReportOptions configures the report.
type ReportOptions struct {
	Period       date.Period // rollforward granularity
	SkipFindings bool
}

// NewReport builds the report view of a result.
func NewReport(res *arr.Result, period date.Period) *Report {
	r := &Report{
		Title:         fmt.Sprintf("ARR Rollforward %s to %s", res.From.MonthKey(), res.Through.MonthKey()),
		Period:        periodHeader(period),
		Authoritative: res.Authoritative,
		KPIs:          res.KPIs,
		Segments:      res.Segments,
	}
	for _, f := range res.Findings {
		if f.Blocking() {
			r.Blocking++
		}
	}
	if len(res.Chain) > 0 {
		r.Latest = res.Latest()
	}
	for _, b := range arr.Rollup(res.Chain, period) {
		r.Rows = append(r.Rows, Row{Label: PeriodLabel(b.Month, period), Bridge: b})
	}
	return r
}

// PeriodLabel names the period ending with 'd', like 2024-03, 2024-Q1 or 2024.
func PeriodLabel(d date.Date, period date.Period) string {
	switch period {
	case date.Quarterly:
		return fmt.Sprintf("%d-Q%d", d.Year(), (int(d.Month())-1)/3+1)
	case date.Yearly:
		return fmt.Sprintf("%d", d.Year())
	default:
		return d.MonthKey()
	}
}

func periodHeader(period date.Period) string {
	switch period {
	case date.Quarterly:
		return "Quarter"
	case date.Yearly:
		return "Year"
	default:
		return "Month"
	}
}

// RenderReport renders the report view to markdown.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"report_title":       "report_title.md",
		"report_kpis":        "report_kpis.md",
		"report_waterfall":   "report_waterfall.md",
		"report_rollforward": "report_rollforward.md",
		"report_segments":    "report_segments.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// ReportMarkdown renders the full markdown report of a result, findings
// included unless skipped.
func ReportMarkdown(res *arr.Result, opts ReportOptions) string {
	var b strings.Builder
	b.WriteString(RenderReport(NewReport(res, opts.Period)))
	if !opts.SkipFindings {
		b.WriteString(FindingsMarkdown(res.Findings))
	}
	return b.String()
}

// RollforwardMarkdown renders only the rollforward table.
func RollforwardMarkdown(res *arr.Result, period date.Period) string {
	return renderTemplate("report_rollforward", "report_rollforward.md", nil, NewReport(res, period))
}

// SegmentsMarkdown renders only the segment breakdown.
func SegmentsMarkdown(res *arr.Result) string {
	return renderTemplate("report_segments", "report_segments.md", nil, NewReport(res, date.Monthly))
}

// KPIsMarkdown renders the headline metrics and the latest waterfall.
func KPIsMarkdown(res *arr.Result) string {
	r := NewReport(res, date.Monthly)
	return renderTemplate("report_kpis", "report_kpis.md", nil, r) + "\n" +
		renderTemplate("report_waterfall", "report_waterfall.md", nil, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
