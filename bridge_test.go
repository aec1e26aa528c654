package arr

import (
	"encoding/json"
	"testing"

	"github.com/etnz/arr/date"
)

// chainOf builds a chain from monthly new amounts and snapshot endings,
// starting January 2024.
func chainOf(t *testing.T, news, endings []float64) []Bridge {
	t.Helper()
	var sums []MonthlySums
	var snaps []Snapshot
	for i := range news {
		month := day("2024-01-31").AddMonths(i)
		sums = append(sums, MonthlySums{Month: month, New: USD(news[i]), Expansion: USD(0), Contraction: USD(0), Churn: USD(0)})
		snaps = append(snaps, Snapshot{Month: month, ARR: USD(endings[i]), Customers: i + 1})
	}
	chain, err := BuildChain(sums, snaps)
	if err != nil {
		t.Fatalf("BuildChain() returned an unexpected error: %v", err)
	}
	return chain
}

func TestBuildChain(t *testing.T) {
	chain := chainOf(t, []float64{1000, 500, 0}, []float64{1000, 1500, 1200})

	if len(chain) != 3 {
		t.Fatalf("BuildChain() returned %d bridges, want 3", len(chain))
	}
	if !chain[0].Starting.IsZero() {
		t.Errorf("first month starting = %v, want 0", chain[0].Starting)
	}
	for i := 1; i < len(chain); i++ {
		if !chain[i].Starting.Equal(chain[i-1].Ending) {
			t.Errorf("month %d starting %v != previous ending %v", i, chain[i].Starting, chain[i-1].Ending)
		}
	}
	if got := chain[2].NetChange; !got.Equal(USD(-300)) {
		t.Errorf("NetChange = %v, want -300", got)
	}
	if got := chain[2].Drift(); !got.Equal(USD(-300)) {
		t.Errorf("Drift() = %v, want -300", got)
	}
	if got := chain[1].Growth; !got.Defined || !got.Rate.Equal(50) {
		t.Errorf("Growth = %+v, want 50%%", got)
	}
}

func TestBuildChain_Errors(t *testing.T) {
	jan, feb, mar := day("2024-01-31"), day("2024-02-29"), day("2024-03-31")
	testCases := []struct {
		name  string
		sums  []MonthlySums
		snaps []Snapshot
	}{
		{"length mismatch", []MonthlySums{{Month: jan}}, nil},
		{"month mismatch", []MonthlySums{{Month: jan}}, []Snapshot{{Month: feb}}},
		{"gap", []MonthlySums{{Month: jan}, {Month: mar}}, []Snapshot{{Month: jan}, {Month: mar}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := BuildChain(tc.sums, tc.snaps); err == nil {
				t.Error("BuildChain() expected an error, got nil")
			}
		})
	}
}

func TestGrowth_Undefined(t *testing.T) {
	// First month of a series has no baseline.
	chain := chainOf(t, []float64{1000}, []float64{1000})
	g := chain[0].Growth
	if g.Defined {
		t.Fatalf("Growth with a zero starting arr should be undefined, got %+v", g)
	}
	if got := g.String(); got != "n/a" {
		t.Errorf("String() = %q, want %q", got, "n/a")
	}
	data, err := json.Marshal(chain[0])
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if v, ok := raw["growth_rate_pct"]; !ok || v != nil {
		t.Errorf("growth_rate_pct = %v, want null", v)
	}
}

func TestGrowth_JSON(t *testing.T) {
	for _, g := range []Growth{{}, {Rate: 12.5, Defined: true}, {Rate: 0, Defined: true}} {
		data, err := json.Marshal(g)
		if err != nil {
			t.Fatal(err)
		}
		var got Growth
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatal(err)
		}
		if got != g {
			t.Errorf("round trip of %s = %+v, want %+v", data, got, g)
		}
	}
}

func TestRollup(t *testing.T) {
	chain := chainOf(t, []float64{1000, 500, 0, 100}, []float64{1000, 1500, 1500, 1600})
	quarters := Rollup(chain, date.Quarterly)
	if len(quarters) != 2 {
		t.Fatalf("Rollup() returned %d periods, want 2", len(quarters))
	}
	q1 := quarters[0]
	if got, want := q1.Month, day("2024-03-31"); got != want {
		t.Errorf("Q1 month = %v, want %v", got, want)
	}
	if !q1.Starting.IsZero() || !q1.Ending.Equal(USD(1500)) || !q1.New.Equal(USD(1500)) {
		t.Errorf("Q1 = %+v, want 0 -> 1500 with 1500 new", q1)
	}
	if !q1.Drift().IsZero() {
		t.Errorf("Q1 drift = %v, want 0", q1.Drift())
	}
	q2 := quarters[1]
	if !q2.Starting.Equal(USD(1500)) || !q2.Ending.Equal(USD(1600)) {
		t.Errorf("Q2 = %v -> %v, want 1500 -> 1600", q2.Starting, q2.Ending)
	}
	if !q2.Growth.Defined {
		t.Errorf("Q2 growth should be defined")
	}
	// Rollup must not alter the monthly chain.
	if !chain[0].Ending.Equal(USD(1000)) {
		t.Errorf("Rollup() modified its input")
	}
}
