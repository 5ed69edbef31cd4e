package source

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/budgetviz/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseJSON_NormalizesFieldCasing(t *testing.T) {
	data := []byte(`[
		{"Year": 2019, "Category": "Total Spending", "pctgdp": 0.21},
		{"year": "2020", "category": "Total Spending", "valuePctGDP": "22%"},
		{"YEAR": 2021.0, "CATEGORY": "Total Revenues", "value": "0.165"}
	]`)

	obs, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("len = %d, want 3", len(obs))
	}

	want := []model.Observation{
		{Year: 2019, Category: "Total Spending", ValuePctGDP: 0.21},
		{Year: 2020, Category: "Total Spending", ValuePctGDP: 0.22},
		{Year: 2021, Category: "Total Revenues", ValuePctGDP: 0.165},
	}
	for i, w := range want {
		g := obs[i]
		if g.Year != w.Year || g.Category != w.Category || !approx(g.ValuePctGDP, w.ValuePctGDP) {
			t.Errorf("obs[%d] = %+v, want %+v", i, g, w)
		}
	}
}

func TestParseJSON_AliasPriorityIsStable(t *testing.T) {
	data := []byte(`[{"year":2019,"category":"Total Spending","amount":4447,"pctgdp":0.21,"Value":"9%"}]`)
	for i := 0; i < 200; i++ {
		obs, err := ParseJSON(data)
		if err != nil {
			t.Fatalf("ParseJSON: %v", err)
		}
		if !approx(obs[0].ValuePctGDP, 0.21) {
			t.Fatalf("run %d: value = %v, want pctgdp 0.21", i, obs[0].ValuePctGDP)
		}
	}
}

func TestParseJSONLines_SameSpellingPicksLexically(t *testing.T) {
	in := `{"Year":2019,"year":2020,"category":"Net Interest","pctgdp":0.018}`
	for i := 0; i < 100; i++ {
		obs, err := ParseJSONLines(strings.NewReader(in))
		if err != nil {
			t.Fatalf("ParseJSONLines: %v", err)
		}
		if obs[0].Year != 2019 {
			t.Fatalf("run %d: year = %d, want 2019 from \"Year\"", i, obs[0].Year)
		}
	}
}

func TestParseCSV_AliasPriorityOverColumnOrder(t *testing.T) {
	in := "year,category,amount,pctgdp\n2019,Total Spending,4447,0.21\n"
	obs, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(obs) != 1 || !approx(obs[0].ValuePctGDP, 0.21) {
		t.Fatalf("obs = %+v, want pctgdp 0.21", obs)
	}
}

func TestParseJSON_MissingField(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no year", `[{"category":"x","pctgdp":0.1}]`, "missing year"},
		{"no category", `[{"year":2019,"pctgdp":0.1}]`, "missing category"},
		{"blank category", `[{"year":2019,"category":" ","pctgdp":0.1}]`, "missing category"},
		{"no value", `[{"year":2019,"category":"x"}]`, "missing value"},
		{"fractional year", `[{"year":2019.5,"category":"x","pctgdp":0.1}]`, "non-integer year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error %v does not wrap ErrMalformed", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseJSON_NotAnArray(t *testing.T) {
	_, err := ParseJSON([]byte(`{"year": 2019}`))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestParseJSONLines(t *testing.T) {
	body := `{"year":2019,"category":"Net Interest","pctgdp":0.018}

{"year":2029,"category":"Net Interest","pctgdp":0.031}
`
	obs, err := ParseJSONLines(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseJSONLines: %v", err)
	}
	if len(obs) != 2 || obs[1].Year != 2029 {
		t.Fatalf("obs = %+v", obs)
	}
}

func TestParseCSV_LongFormat(t *testing.T) {
	body := "Year,Category,PctGDP\n2019,Total Spending,0.21\n\n2029,Total Spending,23%\n"
	obs, err := ParseCSV(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("len = %d, want 2", len(obs))
	}
	if !approx(obs[1].ValuePctGDP, 0.23) {
		t.Errorf("obs[1].ValuePctGDP = %v, want 0.23", obs[1].ValuePctGDP)
	}
}

func TestParseCSV_WideFormat(t *testing.T) {
	body := "Discretionary-Mandatory,Spend-Category,2019_proj,2027_proj\n" +
		"Mandatory,Social Security,0.049,0.060\n" +
		"Discretionary,Defense,0.031,\n"

	obs, err := ParseCSV(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(obs), obs)
	}
	if obs[0].Year != 2019 || obs[1].Year != 2027 || obs[0].Category != "Social Security" {
		t.Errorf("unexpected wide decode: %+v", obs)
	}
	if obs[2].Category != "Defense" || obs[2].Year != 2019 {
		t.Errorf("obs[2] = %+v", obs[2])
	}
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("year,value\n2019,0.1\n"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		loc  string
		data string
		want Format
	}{
		{"a.csv", "[", FormatCSV},
		{"a.jsonl", "[", FormatJSONLines},
		{"a.json", `[{}]`, FormatJSON},
		{"a.json", `{"year":1}`, FormatJSONLines},
		{"http://x/data?fmt=1", "  [1]", FormatJSON},
		{"http://x/data", "year,category,value", FormatCSV},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.loc, []byte(tt.data)); got != tt.want {
			t.Errorf("DetectFormat(%q, %q) = %v, want %v", tt.loc, tt.data, got, tt.want)
		}
	}
}

func TestClientFetchDataset_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/overview.json":
			_, _ = w.Write([]byte(`[{"year":2019,"category":"Total Spending","pctgdp":0.21}]`))
		case "/secret.json":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(0)
	ds, err := c.FetchDataset(context.Background(), model.Overview, srv.URL+"/overview.json")
	if err != nil {
		t.Fatalf("FetchDataset: %v", err)
	}
	if ds.Topic != model.Overview || ds.Len() != 1 {
		t.Fatalf("dataset = %+v", ds)
	}

	if _, err := c.Fetch(context.Background(), srv.URL+"/missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}
	if _, err := c.Fetch(context.Background(), srv.URL+"/secret.json"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("secret: err = %v, want ErrUnauthorized", err)
	}
}

func TestClientFetch_LocalFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "revenue.csv")
	if err := os.WriteFile(p, []byte("year,category,pctgdp\n2019,Payroll Taxes,0.058\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := NewClient(0)
	ds, err := c.FetchDataset(context.Background(), model.Revenue, "file://"+p)
	if err != nil {
		t.Fatalf("FetchDataset: %v", err)
	}
	if ds.Len() != 1 || ds.Observations[0].Category != "Payroll Taxes" {
		t.Fatalf("dataset = %+v", ds)
	}

	if _, err := c.Fetch(context.Background(), filepath.Join(dir, "nope.json")); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEncodeJSON_RoundTrip(t *testing.T) {
	var b strings.Builder
	in := []model.Observation{{Year: 2019, Category: "Total Revenues", ValuePctGDP: 0.163}}
	if err := EncodeJSON(&b, in); err != nil {
		t.Fatal(err)
	}
	out, err := ParseJSON([]byte(b.String()))
	if err != nil {
		t.Fatalf("ParseJSON of encoded output: %v", err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("round trip = %+v", out)
	}
}
