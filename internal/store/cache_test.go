package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/budgetviz/internal/model"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "budgetviz.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveLoadDataset_PreservesOrder(t *testing.T) {
	c := openTemp(t)

	in := model.Dataset{
		Topic:  model.Overview,
		Source: "https://example.test/overview.json",
		Observations: []model.Observation{
			{Year: 2029, Category: "Total Spending", ValuePctGDP: 0.23},
			{Year: 2019, Category: "Total Spending", ValuePctGDP: 0.21},
			{Year: 2019, Category: "Publicly Held Debt", ValuePctGDP: 0.78},
		},
	}
	if err := c.SaveDataset(in); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	out, err := c.LoadDataset(model.Overview, in.Source)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(out.Observations) != len(in.Observations) {
		t.Fatalf("rows = %d, want %d", len(out.Observations), len(in.Observations))
	}
	for i := range in.Observations {
		if out.Observations[i] != in.Observations[i] {
			t.Errorf("row %d = %+v, want %+v", i, out.Observations[i], in.Observations[i])
		}
	}
}

func TestSaveDataset_ReplacesPreviousCopy(t *testing.T) {
	c := openTemp(t)
	src := "data/revenue.json"

	first := model.Dataset{Topic: model.Revenue, Source: src, Observations: []model.Observation{
		{Year: 2019, Category: "Payroll Taxes", ValuePctGDP: 0.058},
		{Year: 2020, Category: "Payroll Taxes", ValuePctGDP: 0.059},
	}}
	second := model.Dataset{Topic: model.Revenue, Source: src, Observations: []model.Observation{
		{Year: 2019, Category: "Payroll Taxes", ValuePctGDP: 0.060},
	}}
	if err := c.SaveDataset(first); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveDataset(second); err != nil {
		t.Fatal(err)
	}

	out, err := c.LoadDataset(model.Revenue, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Observations) != 1 || out.Observations[0].ValuePctGDP != 0.060 {
		t.Fatalf("observations = %+v, want the second copy only", out.Observations)
	}

	entries, err := c.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Rows != 1 || entries[0].Topic != model.Revenue {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].FetchedAt.IsZero() {
		t.Error("FetchedAt not recorded")
	}
}

func TestLoadDataset_Miss(t *testing.T) {
	c := openTemp(t)
	if _, err := c.LoadDataset(model.Spending, "nowhere"); !errors.Is(err, ErrMiss) {
		t.Fatalf("err = %v, want ErrMiss", err)
	}
}

func TestDeleteDataset(t *testing.T) {
	c := openTemp(t)
	d := model.Dataset{Topic: model.Spending, Source: "s", Observations: []model.Observation{{Year: 2019, Category: "Net Interest", ValuePctGDP: 0.018}}}
	if err := c.SaveDataset(d); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteDataset("s"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.LoadDataset(model.Spending, "s"); !errors.Is(err, ErrMiss) {
		t.Fatalf("err = %v, want ErrMiss after delete", err)
	}
}
