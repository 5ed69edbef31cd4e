package model

// CategoryStats summarizes one category series within a dataset.
type CategoryStats struct {
	Category  string
	Points    int
	FirstYear int
	LastYear  int
	First     float64
	Last      float64
	PeakYear  int
	Peak      float64

	// Value at the actual/projection boundary year, when present.
	Reference    float64
	HasReference bool
}

// Change returns the move from the first to the last value.
func (c CategoryStats) Change() float64 {
	return c.Last - c.First
}

// DatasetStats holds the per-topic aggregate shown by the summary command.
type DatasetStats struct {
	Topic      View
	Source     string
	Rows       int
	FirstYear  int
	LastYear   int
	Categories []CategoryStats
}
