/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// SQLError classifies an error reported by the storage engine.
type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoColumnErr
	NoTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
	ConnectionErr
	TimeoutErr
)

var sqlErrorNames = [...]string{
	UnknownErr:                  "unknown",
	NoRowsErr:                   "no_rows",
	NoColumnErr:                 "no_column",
	NoTableErr:                  "no_table",
	DuplicateKeyErr:             "duplicate_key",
	NotNullViolationErr:         "not_null_violation",
	ForeignKeyViolationErr:      "foreign_key_violation",
	CheckConstraintViolationErr: "check_constraint_violation",
	DataTruncatedErr:            "data_truncated",
	InvalidTypeCastErr:          "invalid_type_cast",
	ConnectionErr:               "connection",
	TimeoutErr:                  "timeout",
}

func (e SQLError) String() string {
	if e < 0 || int(e) >= len(sqlErrorNames) {
		return sqlErrorNames[UnknownErr]
	}
	return sqlErrorNames[e]
}

// IsSqlError reports whether err came from the storage engine and which kind
// it is. MySQL errors are matched by number, everything else by the SQLSTATE
// or message text that lib/pq, pgx and sqlite put in their errors.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return true, NoRowsErr
	case errors.Is(err, sql.ErrConnDone), errors.Is(err, driver.ErrBadConn):
		return true, ConnectionErr
	case errors.Is(err, context.DeadlineExceeded):
		return true, TimeoutErr
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1054:
			return true, NoColumnErr
		case 1146:
			return true, NoTableErr
		case 1062:
			return true, DuplicateKeyErr
		case 1048:
			return true, NotNullViolationErr
		case 1216, 1217, 1451, 1452:
			return true, ForeignKeyViolationErr
		case 3819:
			return true, CheckConstraintViolationErr
		case 1265, 1406:
			return true, DataTruncatedErr
		case 2002, 2003, 2006, 2013:
			return true, ConnectionErr
		default:
			return true, UnknownErr
		}
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "sqlstate 42703"),
		strings.Contains(s, "undefined column"),
		strings.Contains(s, "no such column"):
		return true, NoColumnErr
	case strings.Contains(s, "sqlstate 42p01"),
		strings.Contains(s, "undefined table"),
		strings.Contains(s, "no such table"):
		return true, NoTableErr
	case strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "unique constraint failed"),
		strings.Contains(s, "sqlstate 23505"):
		return true, DuplicateKeyErr
	case strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "sqlstate 23502"),
		strings.Contains(s, "not null constraint failed"):
		return true, NotNullViolationErr
	case strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "foreign key constraint failed"),
		strings.Contains(s, "sqlstate 23503"):
		return true, ForeignKeyViolationErr
	case strings.Contains(s, "check constraint"),
		strings.Contains(s, "sqlstate 23514"):
		return true, CheckConstraintViolationErr
	case strings.Contains(s, "string data right truncation"),
		strings.Contains(s, "sqlstate 22001"),
		strings.Contains(s, "data truncated"):
		return true, DataTruncatedErr
	case strings.Contains(s, "datatype mismatch"),
		strings.Contains(s, "sqlstate 42804"):
		return true, InvalidTypeCastErr
	case strings.Contains(s, "connection refused"),
		strings.Contains(s, "database is closed"),
		strings.Contains(s, "sql: database is closed"),
		strings.Contains(s, "sqlstate 08"):
		return true, ConnectionErr
	}
	return false, UnknownErr
}
