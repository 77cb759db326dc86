package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kdutta/mysqlmeta/internal/errs"
	"github.com/kdutta/mysqlmeta/internal/meta"
)

// resultSet is the wire shape for row-oriented answers: the fixed column
// list of the result kind plus one value slice per row.
type resultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func newResultSet(columns []string, n int) *resultSet {
	return &resultSet{Columns: columns, Rows: make([][]any, 0, n)}
}

// param returns a query parameter as a filter: absent means nil, present
// but empty means exact-empty.
func param(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}
	v := r.URL.Query().Get(name)
	return &v
}

// database is the namespace filter; it is passed on both namespace
// positions and the pipeline picks the one its term makes meaningful.
func database(r *http.Request) *string {
	return param(r, "database")
}

func (s *Server) handleDatabases(w http.ResponseWriter, r *http.Request) {
	dbs, err := s.meta.Databases(r.Context(), param(r, "pattern"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{"databases": dbs})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	var types []string
	if t := param(r, "types"); t != nil && *t != "" {
		types = strings.Split(*t, ",")
	}
	db := database(r)
	rows, err := s.meta.Tables(r.Context(), db, db, param(r, "table"), types)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rs := newResultSet(meta.TablesColumns, len(rows))
	for _, row := range rows {
		rs.Rows = append(rs.Rows, row.Values())
	}
	s.writeJSON(w, rs)
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	db := database(r)
	rows, err := s.meta.Columns(r.Context(), db, db, param(r, "table"), param(r, "column"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	rs := newResultSet(meta.ColumnsColumns, len(rows))
	for _, row := range rows {
		rs.Rows = append(rs.Rows, row.Values())
	}
	s.writeJSON(w, rs)
}

func (s *Server) handlePrimaryKeys(w http.ResponseWriter, r *http.Request) {
	db := database(r)
	table := chi.URLParam(r, "table")
	rows, err := s.meta.PrimaryKeys(r.Context(), db, db, &table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rs := newResultSet(meta.PrimaryKeysColumns, len(rows))
	for _, row := range rows {
		rs.Rows = append(rs.Rows, row.Values())
	}
	s.writeJSON(w, rs)
}

func (s *Server) handleImportedKeys(w http.ResponseWriter, r *http.Request) {
	db := database(r)
	table := chi.URLParam(r, "table")
	rows, err := s.meta.ImportedKeys(r.Context(), db, db, &table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeKeyRows(w, rows)
}

func (s *Server) handleExportedKeys(w http.ResponseWriter, r *http.Request) {
	db := database(r)
	table := chi.URLParam(r, "table")
	rows, err := s.meta.ExportedKeys(r.Context(), db, db, &table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeKeyRows(w, rows)
}

func (s *Server) writeKeyRows(w http.ResponseWriter, rows []meta.KeyRow) {
	rs := newResultSet(meta.KeysColumns, len(rows))
	for _, row := range rows {
		rs.Rows = append(rs.Rows, row.Values())
	}
	s.writeJSON(w, rs)
}

func (s *Server) handleIndexes(w http.ResponseWriter, r *http.Request) {
	db := database(r)
	table := chi.URLParam(r, "table")
	unique := r.URL.Query().Get("unique") == "true"
	rows, err := s.meta.IndexInfo(r.Context(), db, db, &table, unique)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rs := newResultSet(meta.IndexInfoColumns, len(rows))
	for _, row := range rows {
		rs.Rows = append(rs.Rows, row.Values())
	}
	s.writeJSON(w, rs)
}

func (s *Server) handleBestRow(w http.ResponseWriter, r *http.Request) {
	db := database(r)
	table := chi.URLParam(r, "table")
	rows, err := s.meta.BestRowIdentifier(r.Context(), db, db, &table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rs := newResultSet(meta.BestRowColumns, len(rows))
	for _, row := range rows {
		rs.Rows = append(rs.Rows, row.Values())
	}
	s.writeJSON(w, rs)
}

func (s *Server) handleRoutines(w http.ResponseWriter, r *http.Request) {
	db := database(r)
	name := param(r, "name")

	if strings.EqualFold(r.URL.Query().Get("type"), "function") {
		rows, err := s.meta.Functions(r.Context(), db, db, name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		rs := newResultSet(meta.FunctionsColumns, len(rows))
		for _, row := range rows {
			rs.Rows = append(rs.Rows, row.Values())
		}
		s.writeJSON(w, rs)
		return
	}

	rows, err := s.meta.Procedures(r.Context(), db, db, name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rs := newResultSet(meta.ProceduresColumns, len(rows))
	for _, row := range rows {
		rs.Rows = append(rs.Rows, row.Values())
	}
	s.writeJSON(w, rs)
}

func (s *Server) handleTypeInfo(w http.ResponseWriter, r *http.Request) {
	rows, err := s.meta.TypeInfo(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	rs := newResultSet(meta.TypeInfoColumns, len(rows))
	for _, row := range rows {
		rs.Rows = append(rs.Rows, row.Values())
	}
	s.writeJSON(w, rs)
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{"keywords": s.meta.SQLKeywords()})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.With().Err(err).Logger().Error("failed to encode response")
	}
}

// writeError maps error kinds to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsInvalidInput(err):
		status = http.StatusBadRequest
	case errs.IsNotFound(err):
		status = http.StatusNotFound
	case errs.IsTimeout(err):
		status = http.StatusGatewayTimeout
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
