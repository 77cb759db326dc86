package meta

import (
	"context"
	"database/sql"

	"github.com/kdutta/mysqlmeta/internal/database"
	"github.com/kdutta/mysqlmeta/internal/errs"
)

// DetectFlags completes a capability snapshot against a live server:
// server version, active database, and the identifier case-folding rule.
// Fields already set in base are kept as behavioral configuration.
func DetectFlags(ctx context.Context, db database.DB, base Flags) (Flags, error) {
	var version string
	if err := db.QueryRow(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return base, errs.Wrap(errs.ErrKindQueryFailed, "failed to read server version", err)
	}
	base.Server = ParseVersion(version)

	if base.Database == "" {
		var current sql.NullString
		if err := db.QueryRow(ctx, "SELECT DATABASE()").Scan(&current); err != nil {
			return base, errs.Wrap(errs.ErrKindQueryFailed, "failed to read current database", err)
		}
		base.Database = strOrEmpty(current)
	}

	var name, value string
	err := db.QueryRow(ctx, "SHOW VARIABLES LIKE 'lower_case_table_names'").Scan(&name, &value)
	switch {
	case errs.IsNotFound(err):
		// Variable absent; identifiers compare as stored.
	case err != nil:
		return base, err
	default:
		base.LowerCaseIdentifiers = value != "0"
	}

	return base, nil
}
