package renderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/etnz/arr"
	md "github.com/nao1215/markdown"
)

// FindingsMarkdown renders the findings grouped by kind. It renders nothing
// when there is no finding.
func FindingsMarkdown(findings arr.Findings) string {
	var buf bytes.Buffer
	ConditionalBlock(&buf, func(w io.Writer) bool {
		if len(findings) == 0 {
			return false
		}
		doc := md.NewMarkdown(w)
		errs, warns := findings.Count()
		doc.PlainText("")
		doc.H2("Findings")
		doc.PlainTextf("%d error(s), %d warning(s).", errs, warns)
		for _, kind := range []arr.FindingKind{arr.Reconciliation, arr.DataIntegrity, arr.Plausibility} {
			group := findings.Of(kind)
			if len(group) == 0 {
				continue
			}
			doc.H3(kindTitle(kind))
			items := make([]string, 0, len(group))
			for _, f := range group {
				items = append(items, findingItem(f))
			}
			doc.BulletList(items...)
		}
		if err := doc.Build(); err != nil {
			return false
		}
		fmt.Fprintln(w)
		return true
	})
	return buf.String()
}

func kindTitle(kind arr.FindingKind) string {
	switch kind {
	case arr.Reconciliation:
		return "Reconciliation"
	case arr.DataIntegrity:
		return "Data Integrity"
	default:
		return "Plausibility"
	}
}

func findingItem(f arr.Finding) string {
	var where string
	switch {
	case !f.Month.IsZero():
		where = md.Bold(f.Month.MonthKey()) + " "
	case f.Record != "":
		where = md.Code(f.Record) + " "
	}
	item := fmt.Sprintf("%s%s (%s)", where, f.Message, f.Severity)
	if !f.Drift.IsZero() {
		item += ", drift " + f.Drift.SignedString()
	}
	return item
}

// TrendMarkdown renders the ending ARR of the last 'n' months of a chain,
// all of them when n is not positive.
func TrendMarkdown(chain []arr.Bridge, n int) string {
	if n > 0 && len(chain) > n {
		chain = chain[len(chain)-n:]
	}
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2("ARR Trend")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Month", "Ending ARR", "Net Change", "Growth", "Customers"},
	}
	for _, b := range chain {
		table.Rows = append(table.Rows, []string{
			b.Month.MonthKey(),
			b.Ending.String(),
			b.NetChange.SignedString(),
			b.Growth.String(),
			fmt.Sprint(b.Customers),
		})
	}
	doc.Table(table)
	return doc.String()
}
