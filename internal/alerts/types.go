// File path: internal/alerts/types.go

// Package alerts evaluates monitored conditions over external data sources
// and dispatches notifications when they fire.
package alerts

import (
	"time"

	"github.com/querylens/querylens/internal/datasource"
)

// Type enumerates the supported alert kinds. Only threshold and anomaly
// conditions are evaluated today; trend and comparative are accepted but
// never trigger.
type Type string

const (
	TypeThreshold   Type = "threshold"
	TypeTrend       Type = "trend"
	TypeAnomaly     Type = "anomaly"
	TypeComparative Type = "comparative"
)

// Condition is the stored, read-only definition of what to check. It must
// embed the SQL that produces the monitored window.
type Condition struct {
	SQL       string  `json:"sql"`
	Column    string  `json:"column"`
	Operator  string  `json:"operator,omitempty"`  // threshold: > < >= <= ==
	Threshold float64 `json:"threshold,omitempty"` // threshold value, or method-relative anomaly threshold
	Method    string  `json:"method,omitempty"`    // anomaly: zscore or iqr
}

// Alert is one monitored rule.
type Alert struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Type            Type                  `json:"alert_type"`
	Condition       Condition             `json:"condition"`
	DataSource      datasource.Descriptor `json:"data_source"`
	Channels        []string              `json:"channels"`
	Recipient       string                `json:"recipient"`
	IsActive        bool                  `json:"is_active"`
	LastCheckedAt   *time.Time            `json:"last_checked_at,omitempty"`
	LastTriggeredAt *time.Time            `json:"last_triggered_at,omitempty"`
}

// ExecutionStatus is the terminal state of one evaluation pass.
type ExecutionStatus string

const (
	StatusPending      ExecutionStatus = "pending"
	StatusTriggered    ExecutionStatus = "triggered"
	StatusNotTriggered ExecutionStatus = "not_triggered"
	StatusError        ExecutionStatus = "error"
)

// Execution is the persisted record of one evaluation. It is created before
// the condition runs so a later failure still leaves a trace.
type Execution struct {
	ID               string          `json:"id" db:"id"`
	AlertID          string          `json:"alert_id" db:"alert_id"`
	Status           ExecutionStatus `json:"status" db:"status"`
	ObservedValue    *float64        `json:"observed_value,omitempty" db:"observed_value"`
	Message          string          `json:"message" db:"message"`
	ErrorMessage     string          `json:"error_message,omitempty" db:"error_message"`
	NotificationSent bool            `json:"notification_sent" db:"notification_sent"`
	ExecutedAt       time.Time       `json:"executed_at" db:"executed_at"`
}

// Outcome is what one evaluation reports back to the scheduler. Err is
// recorded, never propagated, so one broken alert cannot halt a batch.
type Outcome struct {
	AlertID   string   `json:"alert_id"`
	Triggered bool     `json:"triggered"`
	Value     *float64 `json:"value,omitempty"`
	Message   string   `json:"message"`
	Err       error    `json:"-"`
}
