package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/kdutta/mysqlmeta/internal/errs"
)

// MySQL server error numbers.
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errAccessDenied    = 1045
	errUnknownDatabase = 1049
	errBadFieldError   = 1054
	errParseError      = 1064
	errTableExists     = 1050
	errDuplicateEntry  = 1062
	errUnknownTable    = 1109
	errNoSuchTable     = 1146
	errWrongTableName  = 1149
	errTooManyConns    = 1040
	errConnRefused     = 2003
)

// mapError translates go-sql-driver errors into *errs.Error.
//
// The unknown-table/unknown-database family maps to ErrKindNotFound so the
// metadata pipeline can skip a vanished table during multi-database
// iteration and keep going.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(
			classifyCode(mysqlErr.Number),
			fmt.Sprintf("%s: %s", msg, mysqlErr.Message),
			err,
		)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyCode maps MySQL error numbers to ErrKind.
func classifyCode(code uint16) errs.ErrKind {
	switch code {
	case errNoSuchTable, errUnknownTable, errWrongTableName, errUnknownDatabase:
		return errs.ErrKindNotFound
	case errAccessDenied, errConnRefused, errTooManyConns:
		return errs.ErrKindConnectionFailed
	case errBadFieldError, errParseError, errTableExists, errDuplicateEntry:
		return errs.ErrKindQueryFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
