// File path: internal/stats/stats_test.go
package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/querylens/querylens/internal/table"
)

func seriesTable(values []float64) *table.Table {
	t := &table.Table{Columns: []string{"day", "value"}}
	for i, v := range values {
		t.Rows = append(t.Rows, table.Row{
			"day":   fmt.Sprintf("2024-01-%02d", i+1),
			"value": v,
		})
	}
	return t
}

func TestTrendIncreasing(t *testing.T) {
	values := make([]float64, 10)
	for i := range values {
		values[i] = float64(i + 1)
	}
	result := Trend(seriesTable(values), "day", "value")
	if result.Direction != DirectionIncreasing {
		t.Fatalf("expected increasing, got %s (%s)", result.Direction, result.Err)
	}
	if result.Slope <= 0 {
		t.Fatalf("expected positive slope, got %f", result.Slope)
	}
	if result.RSquared <= 0.9 {
		t.Fatalf("expected r-squared above 0.9, got %f", result.RSquared)
	}
	if result.PctChange <= 0 {
		t.Fatalf("expected positive percent change, got %f", result.PctChange)
	}
	if !strings.Contains(result.Description, "increasing") {
		t.Fatalf("unexpected description: %s", result.Description)
	}
}

func TestTrendDecreasing(t *testing.T) {
	result := Trend(seriesTable([]float64{50, 40, 30, 20, 10}), "day", "value")
	if result.Direction != DirectionDecreasing {
		t.Fatalf("expected decreasing, got %s", result.Direction)
	}
	if result.Slope >= 0 {
		t.Fatalf("expected negative slope, got %f", result.Slope)
	}
}

func TestTrendInsufficientData(t *testing.T) {
	result := Trend(seriesTable([]float64{5}), "day", "value")
	if result.Direction != DirectionInsufficient {
		t.Fatalf("expected insufficient_data, got %s", result.Direction)
	}
	empty := Trend(&table.Table{}, "day", "value")
	if empty.Direction != DirectionInsufficient {
		t.Fatalf("expected insufficient_data for empty table, got %s", empty.Direction)
	}
}

func TestTrendCoercionFailure(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"day", "value"},
		Rows: []table.Row{
			{"day": "not a date", "value": 1.0},
			{"day": "also not", "value": 2.0},
		},
	}
	result := Trend(tbl, "day", "value")
	if result.Direction != DirectionError {
		t.Fatalf("expected error direction, got %s", result.Direction)
	}
	if result.Err == "" {
		t.Fatal("expected underlying message to be retained")
	}
}

func TestTrendIdenticalDates(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"day", "value"},
		Rows: []table.Row{
			{"day": "2024-01-01", "value": 1.0},
			{"day": "2024-01-01", "value": 2.0},
			{"day": "2024-01-01", "value": 3.0},
		},
	}
	result := Trend(tbl, "day", "value")
	if result.Direction != DirectionError {
		t.Fatalf("expected error direction for a flat timeline, got %s", result.Direction)
	}
	if result.Err == "" {
		t.Fatal("expected an explanatory message")
	}
	if math.IsNaN(result.Slope) || math.IsNaN(result.PctChange) || math.IsNaN(result.RSquared) {
		t.Fatalf("result must stay JSON-encodable: %+v", result)
	}
	if _, err := json.Marshal(result); err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
}

func TestAnomaliesZScore(t *testing.T) {
	tbl := seriesTable([]float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 100})
	found := Anomalies(tbl, "value", MethodZScore, 2.0)
	if len(found) != 1 {
		t.Fatalf("expected exactly one anomaly, got %d", len(found))
	}
	if v, _ := table.Float(found[0].Row["value"]); v != 100 {
		t.Fatalf("expected anomalous value 100, got %v", found[0].Row["value"])
	}
	if !strings.Contains(found[0].Reason, "Z-score") {
		t.Fatalf("expected reason to mention Z-score, got %q", found[0].Reason)
	}
	if found[0].Score <= 2.0 {
		t.Fatalf("expected score above threshold, got %f", found[0].Score)
	}
}

func TestAnomaliesZScoreConstantSeries(t *testing.T) {
	tbl := seriesTable([]float64{5, 5, 5, 5, 5})
	if found := Anomalies(tbl, "value", MethodZScore, 2.0); len(found) != 0 {
		t.Fatalf("expected no anomalies in a constant series, got %d", len(found))
	}
}

func TestAnomaliesIQR(t *testing.T) {
	tbl := seriesTable([]float64{1, 2, 3, 4, 5, 100})
	found := Anomalies(tbl, "value", MethodIQR, 1.5)
	if len(found) != 1 {
		t.Fatalf("expected exactly one anomaly, got %d", len(found))
	}
	if v, _ := table.Float(found[0].Row["value"]); v != 100 {
		t.Fatalf("expected anomalous value 100, got %v", found[0].Row["value"])
	}
	if !strings.Contains(found[0].Reason, "above upper bound") {
		t.Fatalf("unexpected reason: %q", found[0].Reason)
	}
}

func TestAnomaliesIQRCollapsedSpread(t *testing.T) {
	// All quartiles coincide, so the raw interquartile range is zero.
	tbl := seriesTable([]float64{10, 10, 10, 10, 100})
	found := Anomalies(tbl, "value", MethodIQR, 1.5)
	if len(found) != 1 {
		t.Fatalf("expected exactly one anomaly, got %d", len(found))
	}
	if math.IsInf(found[0].Score, 0) || math.IsNaN(found[0].Score) {
		t.Fatalf("score must stay finite, got %f", found[0].Score)
	}
	if v, _ := table.Float(found[0].Row["value"]); v != 100 {
		t.Fatalf("expected anomalous value 100, got %v", found[0].Row["value"])
	}
}

func TestAnomaliesSkipsMissingValues(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"value"},
		Rows: []table.Row{
			{"value": 10.0}, {"value": nil}, {"value": 10.0}, {"value": 10.0},
			{"value": 10.0}, {"value": 10.0}, {"value": 100.0},
		},
	}
	found := Anomalies(tbl, "value", MethodZScore, 2.0)
	if len(found) != 1 {
		t.Fatalf("expected one anomaly after excluding nulls, got %d", len(found))
	}
}

func TestAnomaliesEmptyAndUnknownMethod(t *testing.T) {
	if found := Anomalies(&table.Table{}, "value", MethodZScore, 2.0); found != nil {
		t.Fatalf("expected nil for empty table, got %v", found)
	}
	tbl := seriesTable([]float64{1, 2, 3})
	if found := Anomalies(tbl, "value", "madness", 2.0); found != nil {
		t.Fatalf("expected nil for unknown method, got %v", found)
	}
}

func TestSummaryNumericColumnsOnly(t *testing.T) {
	tbl := &table.Table{Columns: []string{"A", "B", "C"}}
	labels := []string{"a", "b", "c", "d", "e"}
	for i := 0; i < 5; i++ {
		tbl.Rows = append(tbl.Rows, table.Row{
			"A": float64(i + 1),
			"B": float64((i + 1) * 10),
			"C": labels[i],
		})
	}
	summary := Summary(tbl, nil)
	if len(summary) != 2 {
		t.Fatalf("expected stats for A and B only, got %d columns", len(summary))
	}
	a, ok := summary["A"]
	if !ok {
		t.Fatal("missing stats for column A")
	}
	if a.Mean != 3.0 {
		t.Fatalf("expected A.mean=3.0, got %f", a.Mean)
	}
	if a.Median != 3.0 {
		t.Fatalf("expected A.median=3.0, got %f", a.Median)
	}
	if a.Sum != 15.0 {
		t.Fatalf("expected A.sum=15.0, got %f", a.Sum)
	}
	if a.Count != 5 {
		t.Fatalf("expected A.count=5, got %d", a.Count)
	}
	b, ok := summary["B"]
	if !ok {
		t.Fatal("missing stats for column B")
	}
	if b.Max != 50.0 {
		t.Fatalf("expected B.max=50.0, got %f", b.Max)
	}
	if b.Min != 10.0 {
		t.Fatalf("expected B.min=10.0, got %f", b.Min)
	}
	if _, ok := summary["C"]; ok {
		t.Fatal("non-numeric column C must be skipped")
	}
}

func TestSummarySkipsAbsentAndNullColumns(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"A", "B"},
		Rows:    []table.Row{{"A": 1.0, "B": nil}, {"A": 2.0, "B": nil}},
	}
	summary := Summary(tbl, []string{"A", "B", "missing"})
	if len(summary) != 1 {
		t.Fatalf("expected only column A, got %d", len(summary))
	}
	if summary["A"].Count != 2 {
		t.Fatalf("expected count 2 for A, got %d", summary["A"].Count)
	}
}

func TestSummaryEmptyTable(t *testing.T) {
	if summary := Summary(&table.Table{}, nil); len(summary) != 0 {
		t.Fatalf("expected empty summary, got %v", summary)
	}
}

func TestQuantileInterpolates(t *testing.T) {
	if got := quantile([]float64{1, 2, 3, 4}, 0.5); got != 2.5 {
		t.Fatalf("expected median 2.5, got %f", got)
	}
	if got := quantile([]float64{1, 2, 3, 4, 5}, 0.25); got != 2.0 {
		t.Fatalf("expected q1 2.0, got %f", got)
	}
}
