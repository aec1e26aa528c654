package arr

import (
	"context"
	"runtime"

	"github.com/etnz/arr/date"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyLedger is returned when a ledger has no month to report on.
var ErrEmptyLedger = eris.New("ledger has no dated record, no month to compute")

// Options configures a run of the engine.
type Options struct {
	// Unit overrides the ledger declared unit of transaction amounts.
	Unit Unit
	// From and Through restrict or extend the reported months. Zero values
	// use the ledger span.
	From, Through date.Date

	Bands      Bands
	Validation ValidationOptions

	TrailingMonths    int    // window of the average growth KPI
	RecentMonths      int    // window of the recent growth KPI
	EnterpriseSegment string // segment label used to classify the ARR mix

	// Parallelism bounds the number of months computed concurrently.
	Parallelism int

	Logger *zap.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Bands:             DefaultBands,
		Validation:        DefaultValidationOptions(),
		TrailingMonths:    12,
		RecentMonths:      6,
		EnterpriseSegment: "Enterprise",
		Parallelism:       runtime.GOMAXPROCS(0),
	}
}

// Result is a complete, validated run. A Result is immutable once returned.
type Result struct {
	Currency      string             `json:"currency"`
	Unit          Unit               `json:"unit"`
	From          date.Date          `json:"from"`
	Through       date.Date          `json:"through"`
	Authoritative bool               `json:"authoritative"`
	KPIs          KPIs               `json:"kpis"`
	Chain         []Bridge           `json:"rollforward"`
	Summary       []MonthlySummary   `json:"monthly_summary"`
	Segments      []SegmentAggregate `json:"segments"`
	Findings      Findings           `json:"findings"`
}

// Range returns the months covered by the result.
func (r *Result) Range() date.Range { return date.Range{From: r.From.StartOf(date.Monthly), To: r.Through} }

// Latest returns the last bridge of the chain.
func (r *Result) Latest() Bridge { return r.Chain[len(r.Chain)-1] }

// Compute runs the engine over a ledger.
//
// Data quality problems never fail a run: they are returned as findings, and
// a reconciliation failure marks the result as not authoritative. Only
// structural problems (invalid options, a ledger without any month) return an
// error.
func Compute(ctx context.Context, ledger *Ledger, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	unit := ledger.Unit()
	if opts.Unit != UnknownUnit {
		unit = opts.Unit
	}
	if _, err := unit.Factor(); err != nil {
		return nil, err
	}
	if err := opts.Bands.Validate(); err != nil {
		return nil, err
	}
	if !opts.Bands.Has(opts.EnterpriseSegment) {
		return nil, eris.Errorf("enterprise segment %q is not one of the segment labels", opts.EnterpriseSegment)
	}
	if err := opts.Validation.Check(); err != nil {
		return nil, err
	}
	cur := ledger.Currency()

	subs, findings := CheckSubscriptions(ledger.Subscriptions())
	txs, txFindings := CheckTransactions(ledger.Transactions())
	findings = append(findings, txFindings...)
	for _, f := range findings {
		log.Debug("record excluded", zap.String("record", f.Record), zap.String("reason", f.Message))
	}

	clean := NewLedger(cur, unit)
	clean.AddSubscription(subs...)
	clean.AddTransaction(txs...)
	span, ok := clean.Span()
	if !opts.From.IsZero() {
		span.From, ok = opts.From, true
	}
	if !opts.Through.IsZero() {
		span.To, ok = opts.Through, true
	}
	span = date.Range{From: span.From.StartOf(date.Monthly), To: span.To.EndOf(date.Monthly)}
	if !ok || span.Len() == 0 {
		return nil, ErrEmptyLedger
	}

	inSpan := make([]Transaction, 0, len(clean.transactions))
	for _, tx := range clean.transactions {
		if span.Contains(tx.On) {
			inSpan = append(inSpan, tx)
		}
	}
	if skipped := len(clean.transactions) - len(inSpan); skipped > 0 {
		log.Info("transactions outside of the reported months ignored", zap.Int("count", skipped))
	}

	log.Info("computing rollforward",
		zap.String("from", span.From.MonthKey()),
		zap.String("through", span.To.MonthKey()),
		zap.Int("subscriptions", len(subs)),
		zap.Int("transactions", len(inSpan)),
		zap.Stringer("unit", unit),
	)

	sums, err := AggregateMonthly(inSpan, unit, span, cur)
	if err != nil {
		return nil, eris.Wrap(err, "aggregating transactions")
	}
	snapshots, err := snapshotMonths(ctx, clean.subscriptions, sums, cur, opts.Parallelism)
	if err != nil {
		return nil, err
	}
	chain, err := BuildChain(sums, snapshots)
	if err != nil {
		return nil, eris.Wrap(err, "building chain")
	}

	latest := chain[len(chain)-1]
	segments := SegmentBreakdown(Active(clean.subscriptions, latest.Month), opts.Bands, cur)

	findings = append(findings, Validate(chain, opts.Validation)...)
	findings = append(findings, ValidateSegments(segments, latest, opts.Validation)...)

	res := &Result{
		Currency:      cur,
		Unit:          unit,
		From:          chain[0].Month,
		Through:       latest.Month,
		Authoritative: !findings.Blocking(),
		KPIs:          NewKPIs(chain, segments, opts.TrailingMonths, opts.RecentMonths, opts.EnterpriseSegment),
		Chain:         chain,
		Summary:       Summarize(chain),
		Segments:      segments,
		Findings:      findings,
	}

	errs, warns := findings.Count()
	done := log.Info
	if !res.Authoritative {
		done = log.Warn
	}
	done("rollforward computed",
		zap.Int("months", len(chain)),
		zap.Stringer("ending_arr", latest.Ending),
		zap.Bool("authoritative", res.Authoritative),
		zap.Int("errors", errs),
		zap.Int("warnings", warns),
	)
	return res, nil
}

// snapshotMonths computes the point-in-time snapshot of every month
// concurrently. Months are independent so the only ordering is the index.
func snapshotMonths(ctx context.Context, subs []Subscription, sums []MonthlySums, cur string, parallelism int) ([]Snapshot, error) {
	snapshots := make([]Snapshot, len(sums))
	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, s := range sums {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			snapshots[i] = NewSnapshot(subs, s.Month, cur)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "computing snapshots")
	}
	return snapshots, nil
}
