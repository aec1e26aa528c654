package arr

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// ValidationOptions configures the reconciliation gate and the plausibility
// bounds.
type ValidationOptions struct {
	// RelativeTolerance is the accepted drift as a fraction of the month ending ARR.
	RelativeTolerance float64
	// AbsoluteTolerance is the accepted drift floor, used for small or zero ARR months.
	AbsoluteTolerance decimal.Decimal

	MinGrowth, MaxGrowth Percent // average monthly growth sane range
	GrowthWindow         int     // months averaged for the growth check, all when <= 0

	MinARRPerCustomer, MaxARRPerCustomer decimal.Decimal // latest month sane range
}

// DefaultValidationOptions returns the bounds used when nothing is configured.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		RelativeTolerance: 0.001,
		AbsoluteTolerance: decimal.NewFromInt(1),
		MinGrowth:         -10,
		MaxGrowth:         50,
		MinARRPerCustomer: decimal.NewFromInt(300),
		MaxARRPerCustomer: decimal.NewFromInt(5000),
	}
}

// Check reports invalid options.
func (o ValidationOptions) Check() error {
	if o.RelativeTolerance < 0 || o.AbsoluteTolerance.IsNegative() {
		return eris.New("validation: tolerances must not be negative")
	}
	if o.MinGrowth > o.MaxGrowth {
		return eris.Errorf("validation: growth range [%v, %v] is empty", o.MinGrowth, o.MaxGrowth)
	}
	if o.MinARRPerCustomer.GreaterThan(o.MaxARRPerCustomer) {
		return eris.Errorf("validation: arr per customer range [%s, %s] is empty", o.MinARRPerCustomer, o.MaxARRPerCustomer)
	}
	return nil
}

// Tolerance returns the drift accepted for a month ending at 'ending'.
func (o ValidationOptions) Tolerance(ending Money) decimal.Decimal {
	rel := ending.Decimal().Abs().Mul(decimal.NewFromFloat(o.RelativeTolerance))
	return decimal.Max(rel, o.AbsoluteTolerance)
}

// Validate cross-checks every bridge of the chain and returns its findings.
// It never modifies the chain.
//
// Reconciliation findings are errors: a month whose components do not add up
// to its snapshot, or a broken link between two months. Plausibility findings
// are warnings.
func Validate(chain []Bridge, opts ValidationOptions) Findings {
	var findings Findings
	for i, b := range chain {
		if i == 0 && !b.Starting.IsZero() {
			findings = append(findings, Finding{
				Kind:     Reconciliation,
				Severity: SeverityError,
				Month:    b.Month,
				Drift:    b.Starting,
				Message:  fmt.Sprintf("first month starts at %s instead of zero", b.Starting),
			})
		}
		if i > 0 {
			prev := chain[i-1]
			if b.Month != prev.Month.AddMonths(1) {
				findings = append(findings, Finding{
					Kind:     Reconciliation,
					Severity: SeverityError,
					Month:    b.Month,
					Message:  fmt.Sprintf("gap in the chain: %s does not follow %s", b.Month.MonthKey(), prev.Month.MonthKey()),
				})
			}
			if !b.Starting.Equal(prev.Ending) {
				findings = append(findings, Finding{
					Kind:     Reconciliation,
					Severity: SeverityError,
					Month:    b.Month,
					Drift:    b.Starting.Sub(prev.Ending),
					Message:  fmt.Sprintf("starting arr %s differs from previous ending arr %s", b.Starting, prev.Ending),
				})
			}
		}

		drift := b.Drift()
		if tol := opts.Tolerance(b.Ending); drift.Decimal().Abs().GreaterThan(tol) {
			findings = append(findings, Finding{
				Kind:     Reconciliation,
				Severity: SeverityError,
				Month:    b.Month,
				Drift:    drift,
				Message: fmt.Sprintf("bridge adds up to %s but snapshot is %s (drift %s, tolerance %s)",
					b.Computed(), b.Ending, drift.SignedString(), tol.StringFixed(2)),
			})
		}
	}
	return append(findings, Plausible(chain, opts)...)
}

// Plausible returns advisory findings for metrics outside of their sane range.
func Plausible(chain []Bridge, opts ValidationOptions) Findings {
	if len(chain) == 0 {
		return nil
	}
	var findings Findings
	if avg, ok := TrailingGrowth(chain, opts.GrowthWindow); ok && (avg < opts.MinGrowth || avg > opts.MaxGrowth) {
		findings = append(findings, Finding{
			Kind:     Plausibility,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("average growth rate %s outside expected range [%s, %s]", avg, opts.MinGrowth, opts.MaxGrowth),
		})
	}

	latest := chain[len(chain)-1]
	if latest.Customers > 0 {
		perCustomer := latest.ARRPerCustomer()
		if perCustomer.Decimal().LessThan(opts.MinARRPerCustomer) || perCustomer.Decimal().GreaterThan(opts.MaxARRPerCustomer) {
			findings = append(findings, Finding{
				Kind:     Plausibility,
				Severity: SeverityWarning,
				Month:    latest.Month,
				Message: fmt.Sprintf("arr per customer %s outside expected range [%s, %s]",
					perCustomer, opts.MinARRPerCustomer.StringFixed(0), opts.MaxARRPerCustomer.StringFixed(0)),
			})
		}
	}
	return findings
}

// ValidateSegments checks that the segment breakdown accounts for the whole
// latest snapshot ARR.
func ValidateSegments(segments []SegmentAggregate, latest Bridge, opts ValidationOptions) Findings {
	total := SegmentTotal(segments, latest.Ending.Currency())
	drift := total.Sub(latest.Ending)
	if drift.Decimal().Abs().LessThanOrEqual(opts.Tolerance(latest.Ending)) {
		return nil
	}
	return Findings{{
		Kind:     Reconciliation,
		Severity: SeverityError,
		Month:    latest.Month,
		Drift:    drift,
		Message:  fmt.Sprintf("segments total %s but snapshot is %s", total, latest.Ending),
	}}
}
