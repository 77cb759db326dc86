// Package meta implements catalog-query synthesis and row normalization
// for MySQL metadata: given filter patterns and a capability snapshot it
// builds a parameterized statement against the information schema (or the
// legacy SHOW commands), executes it through an injected database.DB, and
// reshapes the raw rows into a fixed per-kind column contract.
package meta

import (
	"fmt"
	"strconv"
	"strings"
)

// Term selects which namespace concept is the primary container in
// output column naming. MySQL has a single database level; JDBC-style
// consumers may map it to either the catalog or the schema position.
type Term int

const (
	// TermCatalog reports databases in the catalog column and leaves
	// the schema column null.
	TermCatalog Term = iota

	// TermSchema reports databases in the schema column and a fixed
	// "def" catalog.
	TermSchema
)

// Strategy selects how metadata is retrieved. It is chosen once at session
// setup; every operation supports both strategies and produces identical
// column contracts from either.
type Strategy int

const (
	// StrategyInformationSchema queries INFORMATION_SCHEMA views.
	StrategyInformationSchema Strategy = iota

	// StrategyShowCommands falls back to textual SHOW commands
	// (SHOW DATABASES / SHOW FULL COLUMNS / SHOW CREATE TABLE ...)
	// for servers where the catalog is unavailable or incomplete.
	StrategyShowCommands
)

// Version is a server version triple.
type Version struct {
	Major, Minor, Patch int
}

// ParseVersion parses "8.0.36" or "8.0.36-debug" style version strings.
// Missing components parse as zero.
func ParseVersion(s string) Version {
	if i := strings.IndexAny(s, "-_ "); i >= 0 {
		s = s[:i]
	}
	var v Version
	parts := strings.SplitN(s, ".", 3)
	read := func(i int) int {
		if i >= len(parts) {
			return 0
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0
		}
		return n
	}
	v.Major = read(0)
	v.Minor = read(1)
	v.Patch = read(2)
	return v
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Meets reports whether v is at least major.minor.patch.
func (v Version) Meets(major, minor, patch int) bool {
	if v.Major != major {
		return v.Major > major
	}
	if v.Minor != minor {
		return v.Minor > minor
	}
	return v.Patch >= patch
}

// Flags is the read-only capability snapshot a Metadata session is built
// with. It is constructed once per connection and never mutated by the
// pipeline.
type Flags struct {
	// Term selects catalog-primary vs schema-primary output naming.
	Term Term

	// Server is the connected server's version; it gates optional
	// projected columns.
	Server Version

	// Database is the session's active database, substituted when a
	// namespace filter is nil and NullDatabaseMeansCurrent is set.
	Database string

	// Pedantic disables identifier-quote stripping on caller-supplied
	// filters.
	Pedantic bool

	// NullDatabaseMeansCurrent substitutes the session database for a
	// nil namespace filter instead of omitting the predicate.
	NullDatabaseMeansCurrent bool

	// TinyInt1IsBit presents TINYINT(1) columns as BIT (or BOOLEAN,
	// below) instead of TINYINT.
	TinyInt1IsBit bool

	// TransformedBitIsBoolean upgrades the TinyInt1IsBit remapping
	// from BIT to BOOLEAN.
	TransformedBitIsBoolean bool

	// YearIsDateType reports YEAR columns with a date type code; when
	// false they present as SMALLINT.
	YearIsDateType bool

	// LowerCaseIdentifiers reflects the server's identifier case-folding
	// rule (lower_case_table_names); it selects case-insensitive name
	// comparison in final sorting.
	LowerCaseIdentifiers bool

	// QuoteID is the identifier quote string; empty means backtick.
	QuoteID string
}

func (f Flags) quote() string {
	if f.QuoteID == "" {
		return "`"
	}
	return f.QuoteID
}

// supportsFractionalSeconds gates DATETIME_PRECISION-based projections;
// below 5.6.4 the column does not exist and fixed literals keep the output
// arity unchanged.
func (f Flags) supportsFractionalSeconds() bool {
	return f.Server.Meets(5, 6, 4)
}

// mediumintUnsignedPrecisionBug reports whether the server's
// information_schema returns NUMERIC_PRECISION=7 for MEDIUMINT UNSIGNED
// where it must be 8 (server Bug#69042). Applies to every currently
// supported server line; gated here so it can be narrowed once a fixed
// release exists.
func (f Flags) mediumintUnsignedPrecisionBug() bool {
	return f.Server.Major >= 5
}

// splitNamespace places a database name into the catalog/schema output
// pair according to the term flag. Evaluated once per query build; the
// two branches are never mixed within a single result set.
func (f Flags) splitNamespace(db string) (catalog, schema *string) {
	if f.Term == TermSchema {
		def := "def"
		return &def, &db
	}
	return &db, nil
}

// foldCase normalizes an identifier per the server's case-folding rule.
func (f Flags) foldCase(ident string) string {
	if f.LowerCaseIdentifiers {
		return strings.ToLower(ident)
	}
	return ident
}
