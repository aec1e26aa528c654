package arr

import (
	"strings"
	"testing"

	"github.com/etnz/arr/date"
)

func TestNewSnapshot(t *testing.T) {
	testCases := []struct {
		name          string
		subs          []Subscription
		month         string
		wantARR       Money
		wantCustomers int
	}{
		// Scenario A: a subscription started mid-January counts at every month end.
		{"open jan", []Subscription{sub("S1", "C1", "2024-01-15", "", 1200)}, "2024-01-01", USD(1200), 1},
		{"open feb", []Subscription{sub("S1", "C1", "2024-01-15", "", 1200)}, "2024-02-10", USD(1200), 1},
		{"open mar", []Subscription{sub("S1", "C1", "2024-01-15", "", 1200)}, "2024-03-31", USD(1200), 1},
		// Scenario B: the end date is exclusive.
		{"ended jan", []Subscription{sub("S1", "C1", "2024-01-01", "2024-03-01", 600)}, "2024-01-31", USD(600), 1},
		{"ended feb", []Subscription{sub("S1", "C1", "2024-01-01", "2024-03-01", 600)}, "2024-02-29", USD(600), 1},
		{"ended mar", []Subscription{sub("S1", "C1", "2024-01-01", "2024-03-01", 600)}, "2024-03-31", USD(0), 0},
		{"ends on month end", []Subscription{sub("S1", "C1", "2024-01-01", "2024-01-31", 600)}, "2024-01-01", USD(0), 0},
		{"starts after month end", []Subscription{sub("S1", "C1", "2024-02-01", "", 600)}, "2024-01-01", USD(0), 0},
		{
			name: "distinct customers",
			subs: []Subscription{
				sub("S1", "C1", "2024-01-01", "", 100),
				sub("S2", "C1", "2024-01-01", "", 200),
				sub("S3", "C2", "2024-01-01", "", 300),
				sub("S4", "", "2024-01-01", "", 400),
				sub("S5", "", "2024-01-01", "", 500),
			},
			month:         "2024-01-15",
			wantARR:       USD(1500),
			wantCustomers: 4,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewSnapshot(tc.subs, day(tc.month), "USD")
			if !got.ARR.Equal(tc.wantARR) {
				t.Errorf("NewSnapshot().ARR = %v, want %v", got.ARR, tc.wantARR)
			}
			if got.Customers != tc.wantCustomers {
				t.Errorf("NewSnapshot().Customers = %d, want %d", got.Customers, tc.wantCustomers)
			}
			if want := day(tc.month).EndOf(date.Monthly); got.Month != want {
				t.Errorf("NewSnapshot().Month = %v, want %v", got.Month, want)
			}
		})
	}
}

func TestSnapshot_ARRPerCustomer(t *testing.T) {
	if got := (Snapshot{ARR: USD(0)}).ARRPerCustomer(); !got.IsZero() {
		t.Errorf("ARRPerCustomer() without customers = %v, want 0", got)
	}
	if got := (Snapshot{ARR: USD(3000), Customers: 2}).ARRPerCustomer(); !got.Equal(USD(1500)) {
		t.Errorf("ARRPerCustomer() = %v, want 1500", got)
	}
}

func TestActive(t *testing.T) {
	subs := []Subscription{
		sub("S1", "C1", "2024-01-01", "2024-02-01", 100),
		sub("S2", "C2", "2024-01-15", "", 200),
		sub("S3", "C3", "2024-02-01", "", 300),
	}
	got := Active(subs, day("2024-02-01"))
	if len(got) != 2 || got[0].ID != "S2" || got[1].ID != "S3" {
		t.Errorf("Active() = %v, want [S2 S3]", got)
	}
}

func TestCheckSubscriptions(t *testing.T) {
	subs := []Subscription{
		sub("S1", "C1", "2024-01-01", "", 100),
		// duplicate id
		sub("S1", "C1", "2024-02-01", "", 100),
		// ends before it starts
		sub("S2", "C2", "2024-03-01", "2024-02-01", 100),
		// empty interval
		sub("S3", "C3", "2024-03-01", "2024-03-01", 100),
		sub("S4", "C4", "2024-03-01", "", -5),
		{ID: "S5", Customer: "C5", ARR: USD(10)},
		{Customer: "C6", Start: day("2024-01-01"), ARR: USD(10)},
	}
	valid, findings := CheckSubscriptions(subs)
	if len(valid) != 1 || valid[0].ID != "S1" {
		t.Errorf("CheckSubscriptions() valid = %v, want only S1", valid)
	}
	if got, want := len(findings), len(subs)-1; got != want {
		t.Fatalf("CheckSubscriptions() returned %d findings, want %d: %v", got, want, findings)
	}
	for _, f := range findings {
		if f.Kind != DataIntegrity || f.Severity != SeverityError {
			t.Errorf("unexpected finding classification %v", f)
		}
		if f.Blocking() {
			t.Errorf("integrity finding should not be blocking: %v", f)
		}
	}
	if !strings.Contains(findings[0].Message, "duplicate") {
		t.Errorf("first finding = %q, want a duplicate id", findings[0].Message)
	}
}

func TestCheckTransactions(t *testing.T) {
	txs := []Transaction{
		tx("T1", "2024-01-01", KindNew, 100),
		tx("T2", "2024-01-01", KindChurn, 100), // positive reductions are accepted
		tx("T3", "2024-01-01", "upsell", 100),
		tx("T4", "2024-01-01", KindExpansion, -100),
		{ID: "T5", Kind: KindNew, Amount: USD(1)},
	}
	valid, findings := CheckTransactions(txs)
	if len(valid) != 2 {
		t.Errorf("CheckTransactions() kept %d transactions, want 2", len(valid))
	}
	if len(findings) != 3 {
		t.Errorf("CheckTransactions() returned %d findings, want 3: %v", len(findings), findings)
	}
}

func TestCheck_CarriedFaults(t *testing.T) {
	s := sub("S1", "C1", "2024-01-01", "", 100)
	s.Faults = []string{`invalid end_date "2024-13-45"`}
	valid, findings := CheckSubscriptions([]Subscription{s})
	if len(valid) != 0 || len(findings) != 1 {
		t.Fatalf("CheckSubscriptions() = %v, %v, want the subscription excluded", valid, findings)
	}
	if !strings.Contains(findings[0].Message, "2024-13-45") {
		t.Errorf("finding message = %q, want the unreadable value", findings[0].Message)
	}

	x := tx("T1", "2024-01-01", KindExpansion, 0)
	x.Faults = []string{`invalid amount "abc"`}
	if valid, findings := CheckTransactions([]Transaction{x}); len(valid) != 0 || len(findings) != 1 {
		t.Errorf("CheckTransactions() = %v, %v, want the transaction excluded", valid, findings)
	}
}

func TestNewSnapshot_CustomersAndSubscriptions(t *testing.T) {
	subs := []Subscription{
		sub("S1", "C1", "2024-01-01", "", 100),
		sub("S2", "C1", "2024-01-01", "", 200),
		sub("S3", "C2", "2024-01-01", "", 300),
	}
	got := NewSnapshot(subs, day("2024-01-31"), "USD")
	if got.Customers != 2 || got.Subscriptions != 3 {
		t.Errorf("NewSnapshot() = %d customers, %d subscriptions, want 2 and 3", got.Customers, got.Subscriptions)
	}
	if want := USD(300); !got.ARRPerCustomer().Equal(want) {
		t.Errorf("ARRPerCustomer() = %v, want %v (per distinct customer)", got.ARRPerCustomer(), want)
	}
}
