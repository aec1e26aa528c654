package export

import (
	"github.com/etnz/arr"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

const amountFormat = "#,##0.00"

// sheet appends typed rows to an xlsx sheet.
type sheet struct {
	*xlsx.Sheet
	row *xlsx.Row
}

func (s *sheet) next() *sheet { s.row = s.AddRow(); return s }

func (s *sheet) str(v string) *sheet { s.row.AddCell().SetString(v); return s }

func (s *sheet) count(v int) *sheet { s.row.AddCell().SetInt(v); return s }

func (s *sheet) money(m arr.Money) *sheet {
	s.row.AddCell().SetFloatWithFormat(m.Float64(), amountFormat)
	return s
}

func (s *sheet) pct(p float64) *sheet {
	s.row.AddCell().SetFloatWithFormat(p, "0.00")
	return s
}

// growth leaves the cell empty when there is no baseline.
func (s *sheet) growth(g arr.Growth) *sheet {
	if !g.Defined {
		return s.str("")
	}
	return s.pct(float64(g.Rate))
}

func (s *sheet) header(titles ...string) {
	s.next()
	for _, t := range titles {
		s.str(t)
	}
}

func addSheet(f *xlsx.File, name string) (*sheet, error) {
	sh, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: add sheet %q", name)
	}
	return &sheet{Sheet: sh}, nil
}

// Workbook builds a spreadsheet with one sheet per table of the run.
func Workbook(res *arr.Result) (*xlsx.File, error) {
	f := xlsx.NewFile()

	s, err := addSheet(f, SummarySheet)
	if err != nil {
		return nil, err
	}
	s.header("Month", "ARR", "Active Customers", "ARR per Customer", "New ARR", "Expansion ARR",
		"Contraction ARR", "Churned ARR", "Net New ARR", "Previous ARR", "ARR Growth", "ARR Growth Rate (%)")
	for _, m := range res.Summary {
		s.next().str(m.Month.MonthKey()).money(m.ARR).count(m.Customers).money(m.ARRPerCustomer).
			money(m.New).money(m.Expansion).money(m.Contraction).money(m.Churn).
			money(m.NetNew).money(m.PreviousARR).money(m.GrowthAmount).growth(m.Growth)
	}

	if s, err = addSheet(f, RollforwardSheet); err != nil {
		return nil, err
	}
	s.header("Month", "Starting ARR", "New ARR", "Expansion ARR", "Contraction ARR", "Churned ARR",
		"Ending ARR", "Net Change", "Growth Rate (%)", "Active Customers", "Drift")
	for _, b := range res.Chain {
		s.next().str(b.Month.MonthKey()).money(b.Starting).money(b.New).money(b.Expansion).
			money(b.Contraction).money(b.Churn).money(b.Ending).money(b.NetChange).
			growth(b.Growth).count(b.Customers).money(b.Drift())
	}

	if s, err = addSheet(f, SegmentsSheet); err != nil {
		return nil, err
	}
	s.header("Segment", "ARR", "Customers", "Subscriptions", "% of Total")
	for _, seg := range res.Segments {
		s.next().str(seg.Segment).money(seg.ARR).count(seg.Customers).count(seg.Subscriptions).pct(float64(seg.Share))
	}

	if s, err = addSheet(f, FindingsSheet); err != nil {
		return nil, err
	}
	s.header("Kind", "Severity", "Month", "Record", "Drift", "Message")
	for _, fd := range res.Findings {
		s.next().str(string(fd.Kind)).str(string(fd.Severity)).str(monthCell(fd.Month)).
			str(fd.Record).money(fd.Drift).str(fd.Message)
	}

	if s, err = addSheet(f, KPIsSheet); err != nil {
		return nil, err
	}
	k := res.KPIs
	s.header("Metric", "Value")
	s.next().str("Month").str(k.Month.MonthKey())
	s.next().str("Current ARR").money(k.CurrentARR)
	s.next().str("ARR Change").money(k.ARRChange)
	s.next().str("Active Customers").count(k.ActiveCustomers)
	s.next().str("Customer Change").count(k.CustomerChange)
	s.next().str("ARR per Customer").money(k.ARRPerCustomer)
	s.next().str("Monthly Growth (%)").growth(k.Growth)
	s.next().str("Average Growth (%)").growth(k.AverageGrowth)
	s.next().str("Recent Growth (%)").growth(k.RecentGrowth)
	s.next().str("Trend").str(string(k.Trend))
	s.next().str("Momentum").str(string(k.Momentum))
	s.next().str("Mix").str(string(k.Mix))
	s.next().str("Authoritative").str(yesNo(res.Authoritative))
	return f, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// WriteXLSX saves the run workbook at 'path'.
func WriteXLSX(path string, res *arr.Result) error {
	f, err := Workbook(res)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %q", path)
	}
	return nil
}
