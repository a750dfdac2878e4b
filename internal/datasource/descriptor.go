// File path: internal/datasource/descriptor.go

// Package datasource connects to described external databases and runs
// validated read-only SQL against them.
package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SourceType identifies the family of database a descriptor points at.
type SourceType string

const (
	TypePostgreSQL SourceType = "postgresql"
	TypeMySQL      SourceType = "mysql"
	TypeSQLServer  SourceType = "sqlserver"
	TypeSQLite     SourceType = "sqlite"
	TypeClickHouse SourceType = "clickhouse"
)

// ErrUnsupportedType marks a descriptor whose source type has no driver here.
var ErrUnsupportedType = errors.New("unsupported data source type")

// Descriptor is the external definition of a connectable data source. Params
// may carry credentials in the clear or wrapped under the "encrypted" key, in
// which case a Decrypter must be available.
type Descriptor struct {
	Type   SourceType        `json:"source_type"`
	Params map[string]string `json:"params"`
}

// resolve returns the driver name and DSN for the descriptor, decrypting and
// merging wrapped credentials first. A decrypted payload that is not a JSON
// object is taken to be a complete DSN.
func (d Descriptor) resolve(decrypter Decrypter) (driver, dsn string, err error) {
	params := make(map[string]string, len(d.Params))
	for k, v := range d.Params {
		params[k] = v
	}
	if blob, ok := params["encrypted"]; ok && blob != "" {
		if decrypter == nil {
			return "", "", fmt.Errorf("descriptor carries encrypted credentials but no decrypter is configured")
		}
		plain, derr := decrypter.Decrypt(blob)
		if derr != nil {
			return "", "", fmt.Errorf("decrypt credentials: %w", derr)
		}
		var creds map[string]string
		if jerr := json.Unmarshal([]byte(plain), &creds); jerr == nil {
			for k, v := range creds {
				params[k] = v
			}
		} else {
			return driverFor(d.Type, plain)
		}
		delete(params, "encrypted")
	}
	return buildDSN(d.Type, params)
}

func driverFor(t SourceType, dsn string) (string, string, error) {
	switch normalizeType(t) {
	case TypePostgreSQL:
		return "postgres", dsn, nil
	case TypeMySQL:
		return "mysql", dsn, nil
	case TypeSQLServer:
		return "sqlserver", dsn, nil
	case TypeSQLite:
		return "sqlite", dsn, nil
	case TypeClickHouse:
		return "clickhouse", dsn, nil
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

func buildDSN(t SourceType, p map[string]string) (string, string, error) {
	host := p["host"]
	port := p["port"]
	switch normalizeType(t) {
	case TypePostgreSQL:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(p["username"], p["password"]),
			Host:   hostPort(host, port),
			Path:   "/" + p["database"],
		}
		sslmode := p["sslmode"]
		if sslmode == "" {
			sslmode = "disable"
		}
		u.RawQuery = url.Values{"sslmode": []string{sslmode}}.Encode()
		return "postgres", u.String(), nil
	case TypeMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true",
			p["username"], p["password"], hostPort(host, port), p["database"])
		return "mysql", dsn, nil
	case TypeSQLServer:
		u := url.URL{
			Scheme: "sqlserver",
			User:   url.UserPassword(p["username"], p["password"]),
			Host:   hostPort(host, port),
		}
		u.RawQuery = url.Values{"database": []string{p["database"]}}.Encode()
		return "sqlserver", u.String(), nil
	case TypeSQLite:
		path := p["path"]
		if path == "" {
			path = p["database"]
		}
		return "sqlite", path, nil
	case TypeClickHouse:
		u := url.URL{
			Scheme: "clickhouse",
			User:   url.UserPassword(p["username"], p["password"]),
			Host:   hostPort(host, port),
			Path:   "/" + p["database"],
		}
		return "clickhouse", u.String(), nil
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

func normalizeType(t SourceType) SourceType {
	return SourceType(strings.ToLower(strings.TrimSpace(string(t))))
}

func hostPort(host, port string) string {
	if port == "" {
		return host
	}
	return host + ":" + port
}
