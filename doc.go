/*
Package arr computes the Annual Recurring Revenue rollforward of a
subscription business.

A Ledger holds subscriptions and the transactions that changed their ARR. It
is read from a JSONL file with DecodeLedger, or supplied by any LedgerSource.

Compute runs the engine over a ledger:

  - transactions are aggregated by calendar month into new, expansion,
    contraction and churn sums (AggregateMonthly), amounts being annualized
    according to the ledger Unit.
  - each month end gets an independent Snapshot of the active subscriptions.
  - BuildChain links the months into a chain of Bridge, where the ending ARR
    of a month is the starting ARR of the next one.
  - Validate reconciles every bridge with its snapshot and checks the
    plausibility of growth and ARR per customer.
  - SegmentBreakdown buckets the last month's subscriptions into Bands, and
    NewKPIs derives the headline metrics.

The Result is immutable. It is authoritative only when every month
reconciles; other findings are informational.

Monetary amounts are Money values, exact decimals in the ledger currency.
Percentages are Percent values, and month over month growth is a Growth,
undefined when the starting ARR is zero.
*/
package arr
