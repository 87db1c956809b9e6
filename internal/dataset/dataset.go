// Package dataset wraps a CSV file loaded into a typed, in-memory table.
// The table lives for one analysis request and is discarded afterwards.
package dataset

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/datasleuth/analyst-backend/internal/entity"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnInfo describes one column of the table.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ColumnStats summarizes a numeric column.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// GroupValue is one row of a group-by aggregation result.
type GroupValue struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// Dataset is an immutable in-memory table with named, typed columns.
type Dataset struct {
	name string
	df   dataframe.DataFrame
}

// Load parses the CSV at path into a Dataset. Column types are inferred.
func Load(path, name string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return nil, fmt.Errorf("parse CSV: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return nil, entity.ErrEmptyDataset
	}

	return &Dataset{name: name, df: df}, nil
}

func (d *Dataset) Name() string { return d.name }
func (d *Dataset) Rows() int    { return d.df.Nrow() }
func (d *Dataset) Cols() int    { return d.df.Ncol() }

// Schema returns the inferred column names and types.
func (d *Dataset) Schema() []ColumnInfo {
	names := d.df.Names()
	types := d.df.Types()

	info := make([]ColumnInfo, len(names))
	for i, n := range names {
		info[i] = ColumnInfo{Name: n, Type: string(types[i])}
	}
	return info
}

// Preview renders the first n rows as a Markdown table.
func (d *Dataset) Preview(n int) string {
	if n > d.df.Nrow() {
		n = d.df.Nrow()
	}

	records := d.df.Records() // first record is the header
	var b strings.Builder

	b.WriteString("| " + strings.Join(records[0], " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(records[0])) + "\n")
	for _, row := range records[1 : n+1] {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return b.String()
}

// NumericColumn returns the values of a numeric column.
func (d *Dataset) NumericColumn(col string) ([]float64, error) {
	s, err := d.column(col)
	if err != nil {
		return nil, err
	}
	if t := s.Type(); t != series.Int && t != series.Float {
		return nil, fmt.Errorf("%w: %q has type %s", entity.ErrNotNumeric, col, t)
	}
	return s.Float(), nil
}

// StringColumn returns the values of any column rendered as strings.
func (d *Dataset) StringColumn(col string) ([]string, error) {
	s, err := d.column(col)
	if err != nil {
		return nil, err
	}
	return s.Records(), nil
}

// Describe computes summary statistics for a numeric column.
func (d *Dataset) Describe(col string) (*ColumnStats, error) {
	vals, err := d.NumericColumn(col)
	if err != nil {
		return nil, err
	}

	// Drop NaNs produced by empty cells so they don't poison the stats.
	clean := vals[:0:0]
	for _, v := range vals {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("%w: %q has no numeric values", entity.ErrNotNumeric, col)
	}

	return &ColumnStats{
		Column: col,
		Count:  len(clean),
		Mean:   stat.Mean(clean, nil),
		Std:    stat.StdDev(clean, nil),
		Min:    floats.Min(clean),
		Max:    floats.Max(clean),
	}, nil
}

// Aggregate groups the table by groupBy and folds col with fn.
// Supported fn values: sum, mean, median, min, max, count, std.
func (d *Dataset) Aggregate(groupBy, col, fn string) ([]GroupValue, error) {
	if _, err := d.column(groupBy); err != nil {
		return nil, err
	}
	if fn != "count" {
		if _, err := d.NumericColumn(col); err != nil {
			return nil, err
		}
	} else if _, err := d.column(col); err != nil {
		return nil, err
	}

	aggType, err := aggregationType(fn)
	if err != nil {
		return nil, err
	}

	groups := d.df.GroupBy(groupBy)
	if groups.Err != nil {
		return nil, fmt.Errorf("group by %q: %w", groupBy, groups.Err)
	}

	agg := groups.Aggregation([]dataframe.AggregationType{aggType}, []string{col})
	if agg.Err != nil {
		return nil, fmt.Errorf("aggregate %s(%s): %w", fn, col, agg.Err)
	}

	out := make([]GroupValue, 0, agg.Nrow())
	for _, row := range agg.Maps() {
		gv := GroupValue{Group: fmt.Sprint(row[groupBy])}
		// The aggregated column is the only key besides the group key.
		for k, v := range row {
			if k == groupBy {
				continue
			}
			switch n := v.(type) {
			case float64:
				gv.Value = n
			case int:
				gv.Value = float64(n)
			}
		}
		out = append(out, gv)
	}
	return out, nil
}

func (d *Dataset) column(col string) (series.Series, error) {
	for _, n := range d.df.Names() {
		if n == col {
			return d.df.Col(col), nil
		}
	}
	return series.Series{}, fmt.Errorf("%w: %q", entity.ErrUnknownColumn, col)
}

func aggregationType(fn string) (dataframe.AggregationType, error) {
	switch strings.ToLower(fn) {
	case "sum":
		return dataframe.Aggregation_SUM, nil
	case "mean", "avg", "average":
		return dataframe.Aggregation_MEAN, nil
	case "median":
		return dataframe.Aggregation_MEDIAN, nil
	case "min":
		return dataframe.Aggregation_MIN, nil
	case "max":
		return dataframe.Aggregation_MAX, nil
	case "count":
		return dataframe.Aggregation_COUNT, nil
	case "std", "stddev":
		return dataframe.Aggregation_STD, nil
	default:
		return 0, fmt.Errorf("%w: %q", entity.ErrUnknownFn, fn)
	}
}
