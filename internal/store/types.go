// File path: internal/store/types.go
package store

import (
	"time"

	"github.com/querylens/querylens/internal/datasource"
	"github.com/querylens/querylens/internal/schema"
)

// DataSource is a registered external database plus its described schema.
type DataSource struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Descriptor datasource.Descriptor `json:"descriptor"`
	Schema     schema.Context        `json:"schema,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// QueryRecord tracks one natural-language question through the pipeline.
type QueryRecord struct {
	ID           string    `json:"id"`
	Question     string    `json:"question"`
	Intent       string    `json:"intent,omitempty"`
	Entities     string    `json:"entities,omitempty"` // JSON blob of extracted entities
	DataSourceID string    `json:"data_source_id"`
	GeneratedSQL string    `json:"generated_sql,omitempty"`
	Results      string    `json:"results,omitempty"` // JSON blob of rows, stats and narrative
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ExecutionMS  int64     `json:"execution_time_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// dataSourceRow is the flat representation persisted in SQLite.
type dataSourceRow struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	SourceType string    `db:"source_type"`
	Descriptor string    `db:"descriptor"`
	SchemaJSON *string   `db:"schema_json"`
	CreatedAt  time.Time `db:"created_at"`
}

type queryRow struct {
	ID           string    `db:"id"`
	Question     string    `db:"question"`
	Intent       *string   `db:"intent"`
	Entities     *string   `db:"entities"`
	DataSourceID *string   `db:"data_source_id"`
	GeneratedSQL *string   `db:"generated_sql"`
	Results      *string   `db:"results"`
	Status       string    `db:"status"`
	ErrorMessage *string   `db:"error_message"`
	ExecutionMS  *int64    `db:"execution_ms"`
	CreatedAt    time.Time `db:"created_at"`
}

type alertRow struct {
	ID              string     `db:"id"`
	Name            string     `db:"name"`
	AlertType       string     `db:"alert_type"`
	ConditionJSON   string     `db:"condition_json"`
	DataSourceID    string     `db:"data_source_id"`
	Channels        string     `db:"channels"`
	Recipient       *string    `db:"recipient"`
	IsActive        bool       `db:"is_active"`
	LastCheckedAt   *time.Time `db:"last_checked_at"`
	LastTriggeredAt *time.Time `db:"last_triggered_at"`
	CreatedAt       time.Time  `db:"created_at"`
}
