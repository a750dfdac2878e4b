// File path: internal/datasource/executor.go
package datasource

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	// Drivers for the supported source types.
	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/table"
)

// ExecError wraps every execution-layer failure in one class so callers never
// have to know individual driver error types. The underlying message is
// preserved for diagnostics.
type ExecError struct {
	Stage string
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("query execution failed (%s): %v", e.Stage, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Executor runs validated SQL against described data sources. Each call opens
// its own connection and releases it on every exit path; no pooling or reuse
// is promised across calls.
type Executor struct {
	decrypter Decrypter
}

func NewExecutor(decrypter Decrypter) *Executor {
	return &Executor{decrypter: decrypter}
}

// Execute materializes every row of the statement's result before returning.
// There is no streaming or pagination; bounding the result size is the SQL
// generator's job (LIMIT 100 by default). Timeouts arrive through ctx and
// surface as an *ExecError like any other I/O failure.
func (e *Executor) Execute(ctx context.Context, sqlText string, desc Descriptor) (*table.Table, error) {
	logger := common.Logger()
	driver, dsn, err := desc.resolve(e.decrypter)
	if err != nil {
		return nil, &ExecError{Stage: "connect", Err: err}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, &ExecError{Stage: "connect", Err: err}
	}
	defer db.Close()

	logger.Debug("datasource: executing query", "type", desc.Type)
	rows, err := db.QueryxContext(ctx, sqlText)
	if err != nil {
		return nil, &ExecError{Stage: "query", Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &ExecError{Stage: "columns", Err: err}
	}

	result := &table.Table{Columns: cols}
	for rows.Next() {
		row := make(table.Row, len(cols))
		if err := rows.MapScan(row); err != nil {
			return nil, &ExecError{Stage: "scan", Err: err}
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExecError{Stage: "scan", Err: err}
	}
	logger.Debug("datasource: query complete", "rows", len(result.Rows))
	return result, nil
}
