// File path: internal/store/catalog.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/querylens/querylens/internal/alerts"
	"github.com/querylens/querylens/internal/schema"
)

// SaveDataSource registers or replaces a data source definition.
func (s *Store) SaveDataSource(ctx context.Context, ds *DataSource) error {
	descriptor, err := json.Marshal(ds.Descriptor)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}
	var schemaJSON *string
	if ds.Schema != nil {
		raw, err := json.Marshal(ds.Schema)
		if err != nil {
			return fmt.Errorf("marshal schema: %w", err)
		}
		str := string(raw)
		schemaJSON = &str
	}
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO data_sources (id, name, source_type, descriptor, schema_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, source_type = excluded.source_type,
			descriptor = excluded.descriptor, schema_json = excluded.schema_json`,
		ds.ID, ds.Name, string(ds.Descriptor.Type), string(descriptor), schemaJSON, ds.CreatedAt)
	if err != nil {
		return fmt.Errorf("save data source: %w", err)
	}
	return nil
}

// GetDataSource returns a registered data source, or nil when unknown.
func (s *Store) GetDataSource(ctx context.Context, id string) (*DataSource, error) {
	var row dataSourceRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM data_sources WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get data source: %w", err)
	}
	return row.toDataSource()
}

// ListDataSources returns every registered data source.
func (s *Store) ListDataSources(ctx context.Context) ([]DataSource, error) {
	var rows []dataSourceRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM data_sources ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("list data sources: %w", err)
	}
	out := make([]DataSource, 0, len(rows))
	for _, row := range rows {
		ds, err := row.toDataSource()
		if err != nil {
			return nil, err
		}
		out = append(out, *ds)
	}
	return out, nil
}

func (r dataSourceRow) toDataSource() (*DataSource, error) {
	ds := &DataSource{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
	if err := json.Unmarshal([]byte(r.Descriptor), &ds.Descriptor); err != nil {
		return nil, fmt.Errorf("decode descriptor for %s: %w", r.ID, err)
	}
	if r.SchemaJSON != nil && *r.SchemaJSON != "" {
		ds.Schema = schema.Context{}
		if err := json.Unmarshal([]byte(*r.SchemaJSON), &ds.Schema); err != nil {
			return nil, fmt.Errorf("decode schema for %s: %w", r.ID, err)
		}
	}
	return ds, nil
}

// CreateQuery inserts a fresh query record.
func (s *Store) CreateQuery(ctx context.Context, q *QueryRecord) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO queries
		(id, question, intent, entities, data_source_id, generated_sql, results, status, error_message, execution_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Question, q.Intent, q.Entities, q.DataSourceID, q.GeneratedSQL, q.Results,
		q.Status, q.ErrorMessage, q.ExecutionMS, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("create query: %w", err)
	}
	return nil
}

// UpdateQuery persists pipeline progress for an existing record.
func (s *Store) UpdateQuery(ctx context.Context, q *QueryRecord) error {
	_, err := s.db.ExecContext(ctx, `UPDATE queries SET intent = ?, entities = ?, generated_sql = ?,
		results = ?, status = ?, error_message = ?, execution_ms = ? WHERE id = ?`,
		q.Intent, q.Entities, q.GeneratedSQL, q.Results, q.Status, q.ErrorMessage, q.ExecutionMS, q.ID)
	if err != nil {
		return fmt.Errorf("update query: %w", err)
	}
	return nil
}

// GetQuery returns a query record, or nil when unknown.
func (s *Store) GetQuery(ctx context.Context, id string) (*QueryRecord, error) {
	var row queryRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM queries WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get query: %w", err)
	}
	q := &QueryRecord{
		ID:        row.ID,
		Question:  row.Question,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
	}
	q.Intent = deref(row.Intent)
	q.Entities = deref(row.Entities)
	q.DataSourceID = deref(row.DataSourceID)
	q.GeneratedSQL = deref(row.GeneratedSQL)
	q.Results = deref(row.Results)
	q.ErrorMessage = deref(row.ErrorMessage)
	if row.ExecutionMS != nil {
		q.ExecutionMS = *row.ExecutionMS
	}
	return q, nil
}

// SaveAlert registers or replaces an alert definition.
func (s *Store) SaveAlert(ctx context.Context, a *alerts.Alert, dataSourceID string) error {
	condition, err := json.Marshal(a.Condition)
	if err != nil {
		return fmt.Errorf("marshal condition: %w", err)
	}
	channels, err := json.Marshal(a.Channels)
	if err != nil {
		return fmt.Errorf("marshal channels: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO alerts
		(id, name, alert_type, condition_json, data_source_id, channels, recipient, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, alert_type = excluded.alert_type,
			condition_json = excluded.condition_json, data_source_id = excluded.data_source_id,
			channels = excluded.channels, recipient = excluded.recipient, is_active = excluded.is_active`,
		a.ID, a.Name, string(a.Type), string(condition), dataSourceID, string(channels),
		a.Recipient, a.IsActive, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	return nil
}

// GetAlert assembles an alert with its data source descriptor. Unknown ids
// return (nil, nil).
func (s *Store) GetAlert(ctx context.Context, id string) (*alerts.Alert, error) {
	var row alertRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM alerts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return s.buildAlert(ctx, row)
}

// ListActiveAlerts returns every active alert with its descriptor attached.
func (s *Store) ListActiveAlerts(ctx context.Context) ([]alerts.Alert, error) {
	var rows []alertRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM alerts WHERE is_active = 1 ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	out := make([]alerts.Alert, 0, len(rows))
	for _, row := range rows {
		alert, err := s.buildAlert(ctx, row)
		if err != nil {
			return nil, err
		}
		out = append(out, *alert)
	}
	return out, nil
}

func (s *Store) buildAlert(ctx context.Context, row alertRow) (*alerts.Alert, error) {
	alert := &alerts.Alert{
		ID:              row.ID,
		Name:            row.Name,
		Type:            alerts.Type(row.AlertType),
		Recipient:       deref(row.Recipient),
		IsActive:        row.IsActive,
		LastCheckedAt:   row.LastCheckedAt,
		LastTriggeredAt: row.LastTriggeredAt,
	}
	if err := json.Unmarshal([]byte(row.ConditionJSON), &alert.Condition); err != nil {
		return nil, fmt.Errorf("decode condition for %s: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Channels), &alert.Channels); err != nil {
		return nil, fmt.Errorf("decode channels for %s: %w", row.ID, err)
	}
	ds, err := s.GetDataSource(ctx, row.DataSourceID)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("alert %s references unknown data source %s", row.ID, row.DataSourceID)
	}
	alert.DataSource = ds.Descriptor
	return alert, nil
}

// CreateExecution records a pending evaluation before its condition runs.
func (s *Store) CreateExecution(ctx context.Context, exec *alerts.Execution) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO alert_executions
		(id, alert_id, status, observed_value, message, error_message, notification_sent, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		exec.ID, exec.AlertID, string(exec.Status), exec.ObservedValue, exec.Message,
		exec.ErrorMessage, exec.NotificationSent, exec.ExecutedAt)
	if err != nil {
		return fmt.Errorf("create execution: %w", err)
	}
	return nil
}

// UpdateExecution persists the terminal state of an evaluation.
func (s *Store) UpdateExecution(ctx context.Context, exec *alerts.Execution) error {
	_, err := s.db.ExecContext(ctx, `UPDATE alert_executions SET status = ?, observed_value = ?,
		message = ?, error_message = ?, notification_sent = ? WHERE id = ?`,
		string(exec.Status), exec.ObservedValue, exec.Message, exec.ErrorMessage,
		exec.NotificationSent, exec.ID)
	if err != nil {
		return fmt.Errorf("update execution: %w", err)
	}
	return nil
}

// MarkAlertChecked timestamps the alert's last check, and its last trigger
// when the evaluation fired.
func (s *Store) MarkAlertChecked(ctx context.Context, id string, triggered bool) error {
	now := time.Now().UTC()
	var err error
	if triggered {
		_, err = s.db.ExecContext(ctx, `UPDATE alerts SET last_checked_at = ?, last_triggered_at = ? WHERE id = ?`, now, now, id)
	} else {
		_, err = s.db.ExecContext(ctx, `UPDATE alerts SET last_checked_at = ? WHERE id = ?`, now, id)
	}
	if err != nil {
		return fmt.Errorf("mark alert checked: %w", err)
	}
	return nil
}

// ListExecutions returns the most recent executions for an alert.
func (s *Store) ListExecutions(ctx context.Context, alertID string, limit int) ([]alerts.Execution, error) {
	if limit <= 0 {
		limit = 50
	}
	type execRow struct {
		ID               string    `db:"id"`
		AlertID          string    `db:"alert_id"`
		Status           string    `db:"status"`
		ObservedValue    *float64  `db:"observed_value"`
		Message          *string   `db:"message"`
		ErrorMessage     *string   `db:"error_message"`
		NotificationSent bool      `db:"notification_sent"`
		ExecutedAt       time.Time `db:"executed_at"`
	}
	var rows []execRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM alert_executions WHERE alert_id = ? ORDER BY executed_at DESC LIMIT ?`, alertID, limit)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	out := make([]alerts.Execution, 0, len(rows))
	for _, row := range rows {
		out = append(out, alerts.Execution{
			ID:               row.ID,
			AlertID:          row.AlertID,
			Status:           alerts.ExecutionStatus(row.Status),
			ObservedValue:    row.ObservedValue,
			Message:          deref(row.Message),
			ErrorMessage:     deref(row.ErrorMessage),
			NotificationSent: row.NotificationSent,
			ExecutedAt:       row.ExecutedAt,
		})
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
