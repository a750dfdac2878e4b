// File path: internal/stats/stats.go

// Package stats computes trend, anomaly and summary statistics over result
// tables. Every operation is pure and stateless, and an empty table yields an
// empty result rather than an error.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/querylens/querylens/internal/table"
)

// Trend directions.
const (
	DirectionIncreasing   = "increasing"
	DirectionDecreasing   = "decreasing"
	DirectionStable       = "stable"
	DirectionInsufficient = "insufficient_data"
	DirectionError        = "error"
)

// Anomaly detection methods.
const (
	MethodZScore = "zscore"
	MethodIQR    = "iqr"
)

// DefaultAnomalyThreshold applies when the caller does not override the
// method-relative threshold.
const DefaultAnomalyThreshold = 3.0

// TrendResult reports a least-squares fit of value against time.
type TrendResult struct {
	Direction   string  `json:"direction"`
	Slope       float64 `json:"slope"`
	RSquared    float64 `json:"r_squared"`
	PctChange   float64 `json:"pct_change"`
	Description string  `json:"description"`
	Err         string  `json:"error,omitempty"`
}

// Anomaly is a copy of a flagged row plus its score and reason.
type Anomaly struct {
	Row    table.Row `json:"row"`
	Score  float64   `json:"anomaly_score"`
	Reason string    `json:"anomaly_reason"`
}

// ColumnStats summarizes one numeric column.
type ColumnStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
	Sum    float64 `json:"sum"`
	Count  int     `json:"count"`
}

// Trend fits a linear regression of the value column against the date column
// coerced to an ordinal day timeline. Coercion failures are reported through
// the result's Direction and Err fields, never as a returned error.
func Trend(t *table.Table, dateCol, valueCol string) TrendResult {
	if t.Empty() || t.Len() < 2 {
		return TrendResult{
			Direction:   DirectionInsufficient,
			Description: "Not enough data to calculate trend",
		}
	}

	xs := make([]float64, 0, t.Len())
	ys := make([]float64, 0, t.Len())
	for i, row := range t.Rows {
		x, err := dateOrdinal(row[dateCol])
		if err != nil {
			return trendError(fmt.Sprintf("row %d: %v", i, err))
		}
		y, ok := table.Float(row[valueCol])
		if !ok {
			return trendError(fmt.Sprintf("row %d: column %q is not numeric", i, valueCol))
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		// Zero variance in the ordinal series, e.g. every row sharing one date.
		return trendError("date values are identical; cannot fit a trend")
	}
	r2 := stat.RSquared(xs, ys, nil, alpha, beta)
	if math.IsNaN(r2) {
		r2 = 0
	}

	direction := DirectionStable
	if beta > 0 {
		direction = DirectionIncreasing
	} else if beta < 0 {
		direction = DirectionDecreasing
	}

	minX, maxX := xs[0], xs[0]
	for _, x := range xs[1:] {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}
	startVal := beta*minX + alpha
	endVal := beta*maxX + alpha
	pctChange := 0.0
	if startVal != 0 {
		pctChange = (endVal - startVal) / math.Abs(startVal) * 100
	}

	return TrendResult{
		Direction:   direction,
		Slope:       beta,
		RSquared:    r2,
		PctChange:   pctChange,
		Description: fmt.Sprintf("Trend is %s with a %.1f%% change over the period (R²=%.2f)", direction, pctChange, r2),
	}
}

func trendError(msg string) TrendResult {
	return TrendResult{
		Direction:   DirectionError,
		Err:         msg,
		Description: "Failed to calculate trend",
	}
}

// Anomalies flags rows whose value column is anomalous under the given
// method. Rows with missing or non-numeric values in the column are excluded
// before scoring. Each flagged row comes back as a full copy augmented with a
// score and a human-readable reason. An unknown method flags nothing.
func Anomalies(t *table.Table, valueCol, method string, threshold float64) []Anomaly {
	if t.Empty() {
		return nil
	}
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}

	indices := make([]int, 0, t.Len())
	values := make([]float64, 0, t.Len())
	for i, row := range t.Rows {
		if v, ok := table.Float(row[valueCol]); ok {
			indices = append(indices, i)
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	var out []Anomaly
	switch method {
	case MethodZScore:
		mean := stat.Mean(values, nil)
		sigma := popStdDev(values, mean)
		if sigma == 0 {
			return nil
		}
		for i, v := range values {
			score := math.Abs(v-mean) / sigma
			if score > threshold {
				out = append(out, Anomaly{
					Row:    copyRow(t.Rows[indices[i]]),
					Score:  score,
					Reason: fmt.Sprintf("Z-score: %.2f (> %g)", score, threshold),
				})
			}
		}
	case MethodIQR:
		q1 := quantile(values, 0.25)
		q3 := quantile(values, 0.75)
		iqr := q3 - q1
		lower := q1 - threshold*iqr
		upper := q3 + threshold*iqr
		// A collapsed IQR would turn the score into Inf; score against a unit
		// spread instead so the value stays finite.
		spread := iqr
		if spread == 0 {
			spread = 1
		}
		for i, v := range values {
			var score float64
			var reason string
			switch {
			case v < lower:
				score = (lower - v) / spread
				reason = fmt.Sprintf("Value %g is below lower bound %.2f", v, lower)
			case v > upper:
				score = (v - upper) / spread
				reason = fmt.Sprintf("Value %g is above upper bound %.2f", v, upper)
			default:
				continue
			}
			out = append(out, Anomaly{Row: copyRow(t.Rows[indices[i]]), Score: score, Reason: reason})
		}
	}
	return out
}

// Summary computes per-column statistics. With a nil column list it covers
// every numeric column; columns absent from the table or entirely null are
// skipped silently.
func Summary(t *table.Table, cols []string) map[string]ColumnStats {
	out := make(map[string]ColumnStats)
	if t.Empty() {
		return out
	}
	if cols == nil {
		cols = t.NumericColumns()
	}
	for _, col := range cols {
		if !t.HasColumn(col) {
			continue
		}
		values := t.Floats(col)
		if len(values) == 0 {
			continue
		}
		minV, maxV, sum := values[0], values[0], 0.0
		for _, v := range values {
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
			sum += v
		}
		stddev := 0.0
		if len(values) > 1 {
			stddev = stat.StdDev(values, nil)
		}
		out[col] = ColumnStats{
			Mean:   stat.Mean(values, nil),
			Median: quantile(values, 0.5),
			Min:    minV,
			Max:    maxV,
			StdDev: stddev,
			Sum:    sum,
			Count:  len(values),
		}
	}
	return out
}

// popStdDev is the population standard deviation, matching the z-score
// convention of the anomaly detector.
func popStdDev(values []float64, mean float64) float64 {
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// quantile interpolates linearly between order statistics.
func quantile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func copyRow(row table.Row) table.Row {
	out := make(table.Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// dateOrdinal coerces a cell to a comparable day count. Accepted forms:
// time.Time, common date/datetime strings, or an already numeric ordinal.
func dateOrdinal(v any) (float64, error) {
	switch val := v.(type) {
	case time.Time:
		return float64(val.Unix()) / 86400, nil
	case string:
		return parseDateString(val)
	case []byte:
		return parseDateString(string(val))
	}
	if f, ok := table.Float(v); ok {
		return f, nil
	}
	return 0, fmt.Errorf("cannot interpret %v (%T) as a date", v, v)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

func parseDateString(s string) (float64, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.Unix()) / 86400, nil
		}
	}
	return 0, fmt.Errorf("cannot parse %q as a date", s)
}
