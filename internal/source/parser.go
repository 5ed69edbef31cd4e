// Package source fetches and decodes budget projection datasets.
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/theirongolddev/budgetviz/internal/model"
)

// DetectFormat picks an encoding from the location's extension, falling back
// to sniffing the payload.
func DetectFormat(loc string, data []byte) Format {
	ext := strings.ToLower(path.Ext(strings.SplitN(loc, "?", 2)[0]))
	switch ext {
	case ".csv":
		return FormatCSV
	case ".jsonl", ".ndjson":
		return FormatJSONLines
	case ".json":
		if first := firstByte(data); first == '{' {
			return FormatJSONLines
		}
		return FormatJSON
	}

	switch firstByte(data) {
	case '[':
		return FormatJSON
	case '{':
		return FormatJSONLines
	default:
		return FormatCSV
	}
}

func firstByte(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	trimmed = bytes.TrimPrefix(trimmed, []byte("\xef\xbb\xbf"))
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// Decode parses data in the given format into a dataset for topic.
func Decode(topic model.View, loc string, format Format, data []byte) (model.Dataset, error) {
	var (
		obs []model.Observation
		err error
	)
	switch format {
	case FormatCSV:
		obs, err = ParseCSV(bytes.NewReader(data))
	case FormatJSONLines:
		obs, err = ParseJSONLines(bytes.NewReader(data))
	default:
		obs, err = ParseJSON(data)
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("decoding %s as %s: %w", loc, format, err)
	}
	return model.Dataset{Topic: topic, Source: loc, Observations: obs}, nil
}

// ParseJSON decodes a JSON array of observation records.
func ParseJSON(data []byte) ([]model.Observation, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	out := make([]model.Observation, 0, len(raw))
	for i, rec := range raw {
		o, err := observationFromJSON(i, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// ParseJSONLines decodes one JSON object per line. Blank lines are skipped.
func ParseJSONLines(r io.Reader) ([]model.Observation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []model.Observation
	idx := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, &RecordError{Index: idx, Err: err}
		}
		o, err := observationFromJSON(idx, rec)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		idx++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}

func observationFromJSON(idx int, rec map[string]json.RawMessage) (model.Observation, error) {
	var (
		o                          model.Observation
		haveYear, haveCat, haveVal bool
	)
	keys := pickFields(rec)
	if k, ok := keys["year"]; ok {
		y, err := parseYear(rec[k])
		if err != nil {
			return o, &RecordError{Index: idx, Field: k, Err: err}
		}
		o.Year, haveYear = y, true
	}
	if k, ok := keys["category"]; ok {
		var s string
		if err := json.Unmarshal(rec[k], &s); err != nil {
			return o, &RecordError{Index: idx, Field: k, Err: err}
		}
		o.Category, haveCat = strings.TrimSpace(s), true
	}
	if k, ok := keys["value"]; ok {
		f, err := parseValue(rec[k])
		if err != nil {
			return o, &RecordError{Index: idx, Field: k, Err: err}
		}
		o.ValuePctGDP, haveVal = f, true
	}
	return o, checkComplete(idx, haveYear, haveCat, haveVal, o)
}

// pickFields chooses the raw key used for each canonical field. The
// highest-priority alias wins; keys that differ only in spelling are
// ordered lexically, so the choice never depends on map order.
func pickFields(rec map[string]json.RawMessage) map[string]string {
	type pick struct {
		key  string
		rank int
	}
	best := make(map[string]pick, 3)
	for k := range rec {
		c, rank := fieldRank(k)
		if c == "" {
			continue
		}
		cur, ok := best[c]
		if !ok || rank < cur.rank || (rank == cur.rank && k < cur.key) {
			best[c] = pick{key: k, rank: rank}
		}
	}
	out := make(map[string]string, len(best))
	for c, p := range best {
		out[c] = p.key
	}
	return out
}

func checkComplete(idx int, haveYear, haveCat, haveVal bool, o model.Observation) error {
	switch {
	case !haveYear:
		return &RecordError{Index: idx, Err: errors.New("missing year")}
	case !haveCat || o.Category == "":
		return &RecordError{Index: idx, Err: errors.New("missing category")}
	case !haveVal:
		return &RecordError{Index: idx, Err: errors.New("missing value")}
	}
	return nil
}

// parseYear accepts 2019, 2019.0 or "2019".
func parseYear(raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("non-integer year %v", f)
		}
		return int(f), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("year is neither number nor string")
	}
	return parseYearString(s)
}

func parseYearString(s string) (int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToUpper(s), "FY") {
		s = strings.TrimSpace(s[2:])
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad year %q", s)
	}
	return y, nil
}

// parseValue handles the polymorphic value field: a JSON number (0.21),
// a numeric string ("0.21") or a percent string ("21%").
func parseValue(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("value is neither number nor string")
	}
	return parseValueString(s)
}

func parseValueString(s string) (float64, error) {
	s = strings.TrimSpace(s)
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad value %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	if pct {
		v /= 100
	}
	return v, nil
}

// ParseCSV decodes a CSV table with a header row naming year, category and
// value columns (any supported alias).
func ParseCSV(r io.Reader) ([]model.Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty csv", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	cols := map[string]int{}
	ranks := map[string]int{}
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		c, rank := fieldRank(h)
		if c == "" {
			continue
		}
		if prev, dup := ranks[c]; !dup || rank < prev {
			cols[c], ranks[c] = i, rank
		}
	}
	if _, ok := cols["year"]; !ok {
		if yearCols := wideYearColumns(header); len(yearCols) > 0 {
			return parseWideCSV(cr, cols, yearCols)
		}
	}
	for _, want := range []string{"year", "category", "value"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("%w: csv header has no %s column", ErrMalformed, want)
		}
	}

	var out []model.Observation
	for idx := 0; ; idx++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RecordError{Index: idx, Err: err}
		}
		if blankRow(row) {
			continue
		}
		o, err := observationFromRow(idx, row, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func observationFromRow(idx int, row []string, cols map[string]int) (model.Observation, error) {
	var o model.Observation
	cell := func(name string) (string, bool) {
		i := cols[name]
		if i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}

	ys, ok := cell("year")
	if !ok || ys == "" {
		return o, &RecordError{Index: idx, Err: errors.New("missing year")}
	}
	y, err := parseYearString(ys)
	if err != nil {
		return o, &RecordError{Index: idx, Field: "year", Err: err}
	}
	o.Year = y

	cat, ok := cell("category")
	if !ok || cat == "" {
		return o, &RecordError{Index: idx, Err: errors.New("missing category")}
	}
	o.Category = cat

	vs, ok := cell("value")
	if !ok || vs == "" {
		return o, &RecordError{Index: idx, Err: errors.New("missing value")}
	}
	v, err := parseValueString(vs)
	if err != nil {
		return o, &RecordError{Index: idx, Field: "value", Err: err}
	}
	o.ValuePctGDP = v
	return o, nil
}

// wideYearColumns finds header cells such as "2019" or "2027_proj" that hold
// one year's values per row.
func wideYearColumns(header []string) map[int]int {
	out := make(map[int]int)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if len(h) < 4 {
			continue
		}
		y, err := strconv.Atoi(h[:4])
		if err != nil || y < 1900 || y > 2200 {
			continue
		}
		if rest := h[4:]; rest != "" && rest[0] != '_' && rest[0] != '-' && rest[0] != ' ' {
			continue
		}
		out[i] = y
	}
	return out
}

// parseWideCSV reads rows of the form category,v2019,v2027,... and emits one
// observation per non-empty year cell, in column order.
func parseWideCSV(cr *csv.Reader, cols map[string]int, yearCols map[int]int) ([]model.Observation, error) {
	catIdx, ok := cols["category"]
	if !ok {
		return nil, fmt.Errorf("%w: csv header has no category column", ErrMalformed)
	}
	order := make([]int, 0, len(yearCols))
	for i := range yearCols {
		order = append(order, i)
	}
	sort.Ints(order)

	var out []model.Observation
	for idx := 0; ; idx++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RecordError{Index: idx, Err: err}
		}
		if blankRow(row) {
			continue
		}
		if catIdx >= len(row) || strings.TrimSpace(row[catIdx]) == "" {
			return nil, &RecordError{Index: idx, Err: errors.New("missing category")}
		}
		cat := strings.TrimSpace(row[catIdx])
		for _, i := range order {
			if i >= len(row) || strings.TrimSpace(row[i]) == "" {
				continue
			}
			v, err := parseValueString(row[i])
			if err != nil {
				return nil, &RecordError{Index: idx, Field: strconv.Itoa(yearCols[i]), Err: err}
			}
			out = append(out, model.Observation{Year: yearCols[i], Category: cat, ValuePctGDP: v})
		}
	}
	return out, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// EncodeJSON writes observations as a normalized JSON array.
func EncodeJSON(w io.Writer, obs []model.Observation) error {
	if obs == nil {
		obs = []model.Observation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(obs)
}
