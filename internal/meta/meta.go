package meta

import (
	"context"
	"database/sql"
	"sort"

	"github.com/kdutta/mysqlmeta/internal/database"
	"github.com/kdutta/mysqlmeta/internal/errs"
	"github.com/kdutta/mysqlmeta/internal/logger"
)

// Metadata answers catalog questions about the connected server. It is
// stateless apart from its capability snapshot and keyword cache, and
// safe for concurrent use.
type Metadata struct {
	db       database.DB
	flags    Flags
	strategy Strategy
	keywords *KeywordCache
	log      *logger.Logger
}

// Option customizes a Metadata instance.
type Option func(*Metadata)

// WithStrategy overrides the retrieval strategy (default: the
// information schema).
func WithStrategy(s Strategy) Option {
	return func(m *Metadata) { m.strategy = s }
}

// WithKeywordCache shares a keyword cache across instances.
func WithKeywordCache(c *KeywordCache) Option {
	return func(m *Metadata) { m.keywords = c }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Metadata) { m.log = l }
}

// New builds a Metadata session over db with the given capability
// snapshot.
func New(db database.DB, flags Flags, opts ...Option) *Metadata {
	m := &Metadata{
		db:       db,
		flags:    flags,
		strategy: StrategyInformationSchema,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.keywords == nil {
		m.keywords = NewKeywordCache()
	}
	if m.log == nil {
		m.log = logger.New(nil)
	}
	return m
}

// Flags returns the session's capability snapshot.
func (m *Metadata) Flags() Flags { return m.flags }

// Strategy returns the session's retrieval strategy.
func (m *Metadata) Strategy() Strategy { return m.strategy }

// SQLKeywords returns the comma-separated list of MySQL reserved words
// beyond SQL:2003, computed once per server version.
func (m *Metadata) SQLKeywords() string {
	return m.keywords.GetOrCompute(m.flags.Server, computeKeywords)
}

// Databases lists database names matching the optional filter.
func (m *Metadata) Databases(ctx context.Context, pattern *string) ([]string, error) {
	return m.matchingDatabases(ctx, normalizeFilter(pattern, m.flags))
}

// resolveNamespace picks the namespace filter the session's term makes
// meaningful. The other position is ignored entirely.
func (m *Metadata) resolveNamespace(catalog, schema *string) *string {
	if m.flags.Term == TermSchema {
		return schema
	}
	return catalog
}

// matchingDatabases expands a namespace filter into concrete database
// names, sorted. An omitted filter lists everything.
func (m *Metadata) matchingDatabases(ctx context.Context, nf normalizedFilter) ([]string, error) {
	q := "SHOW DATABASES"
	if nf.value != nil {
		q += " LIKE " + stringLiteral(*nf.value)
	}
	m.logQuery(q, 0)

	rows, err := m.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dbs []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan database name", err)
		}
		dbs = append(dbs, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error listing databases", err)
	}
	sort.Strings(dbs)
	return dbs, nil
}

func (m *Metadata) logQuery(sql string, argc int) {
	m.log.With().Str("sql", sql).Int("args", argc).Logger().Debug("catalog query")
}

// requireTable validates the mandatory table argument of the key and
// index operations.
func requireTable(table *string) (string, error) {
	if table == nil {
		return "", errs.New(errs.ErrKindInvalidInput, "table name must not be nil")
	}
	return *table, nil
}

// --- scan helpers for nullable result columns ---

func nullStrPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullI64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func strOrEmpty(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
