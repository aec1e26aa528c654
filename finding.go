package arr

import (
	"fmt"

	"github.com/etnz/arr/date"
)

// FindingKind classifies a data quality observation.
type FindingKind string

const (
	// DataIntegrity flags a ledger record that was excluded from the run.
	DataIntegrity FindingKind = "data_integrity"
	// Reconciliation flags a month whose bridge arithmetic does not match
	// its point-in-time snapshot.
	Reconciliation FindingKind = "reconciliation"
	// Plausibility flags a metric outside of its configured sane range.
	Plausibility FindingKind = "plausibility"
)

// Severity tells a caller whether a finding invalidates the run.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a structured data quality observation returned alongside the
// computed chain.
type Finding struct {
	Kind     FindingKind `json:"kind"`
	Severity Severity    `json:"severity"`
	Month    date.Date   `json:"month,omitzero"`  // month-end concerned, if any
	Record   string      `json:"record,omitempty"` // ledger record concerned, if any
	Drift    Money       `json:"drift,omitzero"`
	Message  string      `json:"message"`
}

func (f Finding) String() string {
	where := f.Record
	if !f.Month.IsZero() {
		where = f.Month.MonthKey()
	}
	if where == "" {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Kind, f.Message)
	}
	return fmt.Sprintf("[%s] %s %s: %s", f.Severity, f.Kind, where, f.Message)
}

// Blocking reports whether the finding prevents a result from being
// published as authoritative.
func (f Finding) Blocking() bool { return f.Kind == Reconciliation && f.Severity == SeverityError }

// Findings is an ordered list of findings.
type Findings []Finding

// Of returns the findings of a given kind.
func (fs Findings) Of(kind FindingKind) Findings {
	var out Findings
	for _, f := range fs {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Blocking reports whether any finding is blocking.
func (fs Findings) Blocking() bool {
	for _, f := range fs {
		if f.Blocking() {
			return true
		}
	}
	return false
}

// Count returns the number of findings per severity.
func (fs Findings) Count() (errors, warnings int) {
	for _, f := range fs {
		switch f.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return
}
