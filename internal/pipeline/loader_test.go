package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/theirongolddev/budgetviz/internal/config"
	"github.com/theirongolddev/budgetviz/internal/model"
	"github.com/theirongolddev/budgetviz/internal/source"
	"github.com/theirongolddev/budgetviz/internal/store"
)

func budgetServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/overview.json":
			_, _ = w.Write([]byte(`[
				{"year":2019,"category":"Total Spending","pctgdp":0.21},
				{"year":2029,"category":"Total Spending","pctgdp":0.23}
			]`))
		case "/spending.json":
			_, _ = w.Write([]byte(`[{"Year":2019,"Category":"Net Interest","pctgdp":0.018}]`))
		case "/broken.json":
			_, _ = w.Write([]byte(`[{"year":`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSources_SkipsUnconfiguredTopics(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sources.Revenue = ""

	got := Sources(cfg)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Topic != model.Overview || got[1].Topic != model.Spending {
		t.Fatalf("topics = %v, %v", got[0].Topic, got[1].Topic)
	}
}

func TestLoad_JoinsAllSources(t *testing.T) {
	srv := budgetServer(t, nil)
	sources := []Source{
		{Topic: model.Overview, Location: srv.URL + "/overview.json"},
		{Topic: model.Spending, Location: srv.URL + "/spending.json"},
	}

	var calls atomic.Int64
	res, err := Load(context.Background(), sources, Options{}, func(current, total int) {
		calls.Add(1)
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Datasets.Len() != 2 {
		t.Fatalf("datasets = %d, want 2", res.Datasets.Len())
	}
	if _, ok := res.Datasets.Get(model.Revenue); ok {
		t.Fatal("revenue dataset should be absent")
	}
	if calls.Load() != 2 {
		t.Errorf("progress calls = %d, want 2", calls.Load())
	}
}

func TestLoad_AnyFailureFailsWhole(t *testing.T) {
	srv := budgetServer(t, nil)

	tests := []struct {
		name    string
		sources []Source
		want    error
	}{
		{
			name: "missing revenue",
			sources: []Source{
				{Topic: model.Overview, Location: srv.URL + "/overview.json"},
				{Topic: model.Revenue, Location: srv.URL + "/revenue.json"},
			},
			want: source.ErrNotFound,
		},
		{
			name: "malformed spending",
			sources: []Source{
				{Topic: model.Overview, Location: srv.URL + "/overview.json"},
				{Topic: model.Spending, Location: srv.URL + "/broken.json"},
			},
			want: source.ErrMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Load(context.Background(), tt.sources, Options{}, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if res != nil {
				t.Fatalf("partial result returned: %+v", res)
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("err %T is not *LoadError", err)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_NoSources(t *testing.T) {
	if _, err := Load(context.Background(), nil, Options{}, nil); err == nil {
		t.Fatal("expected error for empty source list")
	}
}

func TestLoad_RefreshesCacheThenServesOffline(t *testing.T) {
	var hits atomic.Int64
	srv := budgetServer(t, &hits)

	cache, err := store.Open(filepath.Join(t.TempDir(), "datasets.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	sources := []Source{{Topic: model.Overview, Location: srv.URL + "/overview.json"}}

	if _, err := Load(context.Background(), sources, Options{Cache: cache}, nil); err != nil {
		t.Fatalf("online Load: %v", err)
	}
	before := hits.Load()

	res, err := Load(context.Background(), sources, Options{Cache: cache, Offline: true}, nil)
	if err != nil {
		t.Fatalf("offline Load: %v", err)
	}
	if hits.Load() != before {
		t.Fatal("offline load hit the network")
	}
	if !res.FromCache {
		t.Error("FromCache = false")
	}
	d, ok := res.Datasets.Get(model.Overview)
	if !ok || d.Len() != 2 {
		t.Fatalf("cached overview = %+v", d)
	}

	missing := append(sources, Source{Topic: model.Revenue, Location: srv.URL + "/revenue.json"})
	if _, err := Load(context.Background(), missing, Options{Cache: cache, Offline: true}, nil); !errors.Is(err, store.ErrMiss) {
		t.Fatalf("offline with uncached source: err = %v, want ErrMiss", err)
	}
}

func TestAggregate(t *testing.T) {
	d := model.Dataset{Topic: model.Overview, Observations: []model.Observation{
		{Year: 2029, Category: "Publicly Held Debt", ValuePctGDP: 0.92},
		{Year: 2019, Category: "Publicly Held Debt", ValuePctGDP: 0.78},
		{Year: 2024, Category: "Publicly Held Debt", ValuePctGDP: 0.95},
		{Year: 2019, Category: "Total Revenues", ValuePctGDP: 0.165},
	}}

	stats := Aggregate(d, 2019)
	if stats.Rows != 4 || stats.FirstYear != 2019 || stats.LastYear != 2029 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(stats.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(stats.Categories))
	}
	debt := stats.Categories[0]
	if debt.First != 0.78 || debt.Last != 0.92 || debt.Peak != 0.95 || debt.PeakYear != 2024 {
		t.Errorf("debt = %+v", debt)
	}
	if !debt.HasReference || debt.Reference != 0.78 {
		t.Errorf("debt reference = %v (%v)", debt.Reference, debt.HasReference)
	}
}
