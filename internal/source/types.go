package source

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the dataset location does not exist.
	ErrNotFound = errors.New("source: dataset not found")
	// ErrUnauthorized indicates the remote rejected the request.
	ErrUnauthorized = errors.New("source: unauthorized")
	// ErrMalformed indicates the payload could not be decoded into observations.
	ErrMalformed = errors.New("source: malformed dataset")
)

// Format identifies a dataset encoding.
type Format int

// Supported encodings.
const (
	FormatJSON Format = iota
	FormatJSONLines
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatJSONLines:
		return "jsonl"
	case FormatCSV:
		return "csv"
	default:
		return "json"
	}
}

// Field aliases, compared after lower-casing and stripping separators.
// Aliases are listed in priority order. Published datasets disagree on casing (Year/year,
// Category/category) so every alias is matched case-insensitively.
var (
	yearFields     = []string{"year", "fiscalyear", "fy"}
	categoryFields = []string{"category", "spendcategory", "series", "name"}
	valueFields    = []string{"pctgdp", "valuepctgdp", "percentofgdp", "pctofgdp", "value", "amount"}
)

// fieldRank maps a raw field name to "year", "category", "value" or "",
// and returns the alias priority within that field and the alias priority
// within it. Lower ranks win when a record carries several aliases.
func fieldRank(raw string) (string, int) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ', '.':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(raw)))

	for _, set := range []struct {
		name    string
		aliases []string
	}{
		{"year", yearFields},
		{"category", categoryFields},
		{"value", valueFields},
	} {
		for i, f := range set.aliases {
			if key == f {
				return set.name, i
			}
		}
	}
	return "", -1
}

// RecordError reports a single undecodable record.
type RecordError struct {
	Index int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d: field %s: %v", e.Index, e.Field, e.Err)
}

func (e *RecordError) Unwrap() []error {
	return []error{ErrMalformed, e.Err}
}
