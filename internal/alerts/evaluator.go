// File path: internal/alerts/evaluator.go
package alerts

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/google/uuid"

	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/datasource"
	"github.com/querylens/querylens/internal/stats"
	"github.com/querylens/querylens/internal/table"
)

// Store is the persistence collaborator for alerts and their executions.
type Store interface {
	GetAlert(ctx context.Context, id string) (*Alert, error)
	ListActiveAlerts(ctx context.Context) ([]Alert, error)
	CreateExecution(ctx context.Context, exec *Execution) error
	UpdateExecution(ctx context.Context, exec *Execution) error
	MarkAlertChecked(ctx context.Context, id string, triggered bool) error
}

// Runner executes the condition's embedded SQL. Satisfied by
// *datasource.Executor.
type Runner interface {
	Execute(ctx context.Context, sql string, desc datasource.Descriptor) (*table.Table, error)
}

// Evaluator runs one pass of the alert state machine: a pending execution
// record moves to exactly one of triggered, not_triggered or error, and every
// failure stays inside the evaluator so sibling evaluations keep going.
type Evaluator struct {
	store    Store
	runner   Runner
	notifier Notifier
	clock    clockwork.Clock
}

func NewEvaluator(store Store, runner Runner, notifier Notifier, clock clockwork.Clock) *Evaluator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Evaluator{store: store, runner: runner, notifier: notifier, clock: clock}
}

// Evaluate checks a single alert. Inactive or unknown alerts are a no-op.
// The execution record is persisted before the condition runs, so it remains
// visible even when the rest of the evaluation fails.
func (e *Evaluator) Evaluate(ctx context.Context, alertID string) Outcome {
	logger := common.Logger()
	alert, err := e.store.GetAlert(ctx, alertID)
	if err != nil {
		logger.Error("alerts: load failed", "alert", alertID, "error", err)
		return Outcome{AlertID: alertID, Err: err, Message: "failed to load alert"}
	}
	if alert == nil || !alert.IsActive {
		return Outcome{AlertID: alertID, Message: "alert inactive or not found"}
	}

	exec := &Execution{
		ID:         uuid.NewString(),
		AlertID:    alert.ID,
		Status:     StatusNotTriggered,
		ExecutedAt: e.clock.Now().UTC(),
	}
	if err := e.store.CreateExecution(ctx, exec); err != nil {
		logger.Error("alerts: create execution failed", "alert", alertID, "error", err)
		return Outcome{AlertID: alertID, Err: err, Message: "failed to record execution"}
	}

	triggered, value, message, evalErr := e.runCondition(ctx, alert)
	if evalErr == nil && triggered {
		note := Notification{
			Recipient: alert.Recipient,
			Subject:   fmt.Sprintf("Alert Triggered: %s", alert.Name),
			Message:   message,
			Channels:  alert.Channels,
		}
		if err := e.notifier.Send(ctx, note); err != nil {
			evalErr = err
		} else {
			exec.NotificationSent = true
		}
	}

	if evalErr != nil {
		logger.Error("alerts: evaluation failed", "alert", alertID, "error", evalErr)
		exec.Status = StatusError
		exec.ErrorMessage = evalErr.Error()
	} else {
		if triggered {
			exec.Status = StatusTriggered
		}
		exec.ObservedValue = value
		exec.Message = message
	}

	if err := e.store.UpdateExecution(ctx, exec); err != nil {
		logger.Error("alerts: update execution failed", "alert", alertID, "error", err)
	}
	if err := e.store.MarkAlertChecked(ctx, alert.ID, evalErr == nil && triggered); err != nil {
		logger.Error("alerts: mark checked failed", "alert", alertID, "error", err)
	}

	if evalErr != nil {
		return Outcome{AlertID: alertID, Err: evalErr, Message: evalErr.Error()}
	}
	return Outcome{AlertID: alertID, Triggered: triggered, Value: value, Message: message}
}

// EvaluateAll runs every active alert once, collecting one outcome per alert.
// Failures are per-item; the batch never aborts.
func (e *Evaluator) EvaluateAll(ctx context.Context) []Outcome {
	logger := common.Logger()
	alerts, err := e.store.ListActiveAlerts(ctx)
	if err != nil {
		logger.Error("alerts: listing active alerts failed", "error", err)
		return nil
	}
	logger.Info("alerts: starting scheduled check", "active", len(alerts))
	outcomes := make([]Outcome, 0, len(alerts))
	for _, alert := range alerts {
		outcomes = append(outcomes, e.Evaluate(ctx, alert.ID))
	}
	logger.Info("alerts: finished scheduled check", "evaluated", len(outcomes))
	return outcomes
}

func (e *Evaluator) runCondition(ctx context.Context, alert *Alert) (bool, *float64, string, error) {
	sqlText := strings.TrimSpace(alert.Condition.SQL)
	if sqlText == "" {
		return false, nil, "", fmt.Errorf("no SQL query defined for alert")
	}
	tbl, err := e.runner.Execute(ctx, sqlText, alert.DataSource)
	if err != nil {
		return false, nil, "", err
	}

	switch alert.Type {
	case TypeThreshold:
		return checkThreshold(tbl, alert.Condition)
	case TypeAnomaly:
		return checkAnomaly(tbl, alert.Condition)
	default:
		return false, nil, fmt.Sprintf("condition type %s not evaluated", alert.Type), nil
	}
}

// checkThreshold compares only the most recent observation, the last row of
// the window, against the configured threshold.
func checkThreshold(t *table.Table, cond Condition) (bool, *float64, string, error) {
	if t.Empty() || !t.HasColumn(cond.Column) {
		return false, nil, "Data empty or column missing", nil
	}
	value, ok := table.Float(t.Rows[t.Len()-1][cond.Column])
	if !ok {
		return false, nil, "", fmt.Errorf("column %q is not numeric in the latest row", cond.Column)
	}

	var triggered bool
	switch cond.Operator {
	case ">":
		triggered = value > cond.Threshold
	case "<":
		triggered = value < cond.Threshold
	case ">=":
		triggered = value >= cond.Threshold
	case "<=":
		triggered = value <= cond.Threshold
	case "==":
		triggered = value == cond.Threshold
	}
	msg := fmt.Sprintf("Value %g %s %g", value, cond.Operator, cond.Threshold)
	return triggered, &value, msg, nil
}

// checkAnomaly triggers when the last row's value matches one of the flagged
// anomalies. Matching is by value equality, not row identity: two equal
// values in the window can pair up the wrong rows. Known correlation gap,
// kept as-is pending product sign-off.
func checkAnomaly(t *table.Table, cond Condition) (bool, *float64, string, error) {
	if t.Empty() || !t.HasColumn(cond.Column) {
		return false, nil, "No anomaly detected", nil
	}
	method := cond.Method
	if method == "" {
		method = stats.MethodZScore
	}
	found := stats.Anomalies(t, cond.Column, method, cond.Threshold)
	if len(found) == 0 {
		return false, nil, "No anomaly detected", nil
	}
	lastVal, ok := table.Float(t.Rows[t.Len()-1][cond.Column])
	if !ok {
		return false, nil, "No anomaly detected", nil
	}
	for _, anomaly := range found {
		if v, ok := table.Float(anomaly.Row[cond.Column]); ok && v == lastVal {
			return true, &lastVal, fmt.Sprintf("Anomaly detected: %s", anomaly.Reason), nil
		}
	}
	return false, nil, "No anomaly detected", nil
}
