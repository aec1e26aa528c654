// Package export writes a computed run to spreadsheet, CSV and JSON files.
//
// Exported amounts keep the engine sign convention: contraction and churn are
// non-positive.
package export

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/etnz/arr"
	"github.com/etnz/arr/date"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// Sheet and file names.
const (
	SummarySheet     = "ARR_Monthly_Summary"
	RollforwardSheet = "ARR_Rollforward"
	SegmentsSheet    = "Segments"
	FindingsSheet    = "Findings"
	KPIsSheet        = "KPIs"

	SummaryFile     = "arr_monthly_summary.csv"
	RollforwardFile = "arr_rollforward.csv"
	SegmentsFile    = "arr_segments.csv"
	FindingsFile    = "arr_findings.csv"
)

type summaryRow struct {
	Month          string    `csv:"month"`
	ARR            arr.Money `csv:"current_arr"`
	Customers      int       `csv:"active_customers"`
	ARRPerCustomer arr.Money `csv:"arr_per_customer"`
	New            arr.Money `csv:"new_arr"`
	Expansion      arr.Money `csv:"expansion_arr"`
	Contraction    arr.Money `csv:"contraction_arr"`
	Churn          arr.Money `csv:"churned_arr"`
	NetNew         arr.Money `csv:"net_new_arr"`
	PreviousARR    arr.Money `csv:"previous_arr"`
	GrowthAmount   arr.Money `csv:"arr_growth_amount"`
	Growth         string    `csv:"arr_growth_rate"`
}

type rollforwardRow struct {
	Month       string    `csv:"month"`
	Starting    arr.Money `csv:"starting_arr"`
	New         arr.Money `csv:"new_arr"`
	Expansion   arr.Money `csv:"expansion_arr"`
	Contraction arr.Money `csv:"contraction_arr"`
	Churn       arr.Money `csv:"churned_arr"`
	Ending      arr.Money `csv:"ending_arr"`
	NetChange   arr.Money `csv:"net_change"`
	Growth      string    `csv:"growth_rate_pct"`
	Customers   int       `csv:"active_customers"`
	Drift       arr.Money `csv:"drift"`
}

type segmentRow struct {
	Segment       string    `csv:"segment"`
	ARR           arr.Money `csv:"arr"`
	Customers     int       `csv:"customers"`
	Subscriptions int       `csv:"subscriptions"`
	Share         float64   `csv:"percentage_of_total"`
}

type findingRow struct {
	Kind     string    `csv:"kind"`
	Severity string    `csv:"severity"`
	Month    string    `csv:"month"`
	Record   string    `csv:"record"`
	Drift    arr.Money `csv:"drift"`
	Message  string    `csv:"message"`
}

// growthCell writes an undefined growth as an empty cell.
func growthCell(g arr.Growth) string {
	if !g.Defined {
		return ""
	}
	return strconv.FormatFloat(float64(g.Rate), 'f', 2, 64)
}

func monthCell(m date.Date) string {
	if m.IsZero() {
		return ""
	}
	return m.MonthKey()
}

func summaryRows(res *arr.Result) []summaryRow {
	rows := make([]summaryRow, len(res.Summary))
	for i, s := range res.Summary {
		rows[i] = summaryRow{
			Month:          s.Month.MonthKey(),
			ARR:            s.ARR,
			Customers:      s.Customers,
			ARRPerCustomer: s.ARRPerCustomer,
			New:            s.New,
			Expansion:      s.Expansion,
			Contraction:    s.Contraction,
			Churn:          s.Churn,
			NetNew:         s.NetNew,
			PreviousARR:    s.PreviousARR,
			GrowthAmount:   s.GrowthAmount,
			Growth:         growthCell(s.Growth),
		}
	}
	return rows
}

func rollforwardRows(res *arr.Result) []rollforwardRow {
	rows := make([]rollforwardRow, len(res.Chain))
	for i, b := range res.Chain {
		rows[i] = rollforwardRow{
			Month:       b.Month.MonthKey(),
			Starting:    b.Starting,
			New:         b.New,
			Expansion:   b.Expansion,
			Contraction: b.Contraction,
			Churn:       b.Churn,
			Ending:      b.Ending,
			NetChange:   b.NetChange,
			Growth:      growthCell(b.Growth),
			Customers:   b.Customers,
			Drift:       b.Drift(),
		}
	}
	return rows
}

func segmentRows(res *arr.Result) []segmentRow {
	rows := make([]segmentRow, len(res.Segments))
	for i, s := range res.Segments {
		rows[i] = segmentRow{
			Segment:       s.Segment,
			ARR:           s.ARR,
			Customers:     s.Customers,
			Subscriptions: s.Subscriptions,
			Share:         float64(s.Share),
		}
	}
	return rows
}

func findingRows(res *arr.Result) []findingRow {
	rows := make([]findingRow, len(res.Findings))
	for i, f := range res.Findings {
		rows[i] = findingRow{
			Kind:     string(f.Kind),
			Severity: string(f.Severity),
			Month:    monthCell(f.Month),
			Record:   f.Record,
			Drift:    f.Drift,
			Message:  f.Message,
		}
	}
	return rows
}

// WriteCSV writes one CSV file per table of the run into 'dir', creating it
// if needed. It returns the written paths.
func WriteCSV(dir string, res *arr.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create %q", dir)
	}
	tables := []struct {
		name string
		rows any
	}{
		{SummaryFile, summaryRows(res)},
		{RollforwardFile, rollforwardRows(res)},
		{SegmentsFile, segmentRows(res)},
		{FindingsFile, findingRows(res)},
	}
	var paths []string
	for _, t := range tables {
		data, err := csvutil.Marshal(t.rows)
		if err != nil {
			return paths, eris.Wrapf(err, "export: encode %s", t.name)
		}
		path := filepath.Join(dir, t.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, eris.Wrapf(err, "export: write %q", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteJSON writes the whole run as indented JSON.
func WriteJSON(w io.Writer, res *arr.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}
