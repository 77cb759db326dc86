package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbiface "github.com/kdutta/mysqlmeta/internal/database"
	"github.com/kdutta/mysqlmeta/internal/errs"
	"github.com/kdutta/mysqlmeta/internal/logger"
	"github.com/kdutta/mysqlmeta/internal/meta"
)

type webRows struct {
	cols []string
	data [][]any
	pos  int
}

func (r *webRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *webRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = fmt.Sprint(row[i])
		case *any:
			*p = row[i]
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

func (r *webRows) Columns() ([]string, error) { return r.cols, nil }
func (r *webRows) Close()                     {}
func (r *webRows) Err() error                 { return nil }

type webRow struct{}

func (webRow) Scan(...any) error { return errs.New(errs.ErrKindNotFound, "no rows") }

type webDB struct {
	cols     []string
	rows     [][]any
	queryErr error
}

func (f *webDB) Ping(context.Context) error  { return nil }
func (f *webDB) Close(context.Context) error { return nil }

func (f *webDB) Query(context.Context, string, ...any) (dbiface.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &webRows{cols: f.cols, data: f.rows}, nil
}

func (f *webDB) QueryRow(context.Context, string, ...any) dbiface.Row { return webRow{} }

func (f *webDB) Exec(context.Context, string, ...any) (int64, error) { return 0, nil }

func newTestServer(db *webDB) *Server {
	md := meta.New(db, meta.Flags{
		Server:   meta.Version{Major: 8, Minor: 0, Patch: 36},
		Database: "story",
	})
	return New(Config{Addr: ":0"}, md, logger.New(nil))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleDatabases(t *testing.T) {
	s := newTestServer(&webDB{
		cols: []string{"Database"},
		rows: [][]any{{"beta"}, {"alpha"}},
	})

	rec := get(t, s.Handler(), "/v1/databases")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Databases []string `json:"databases"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"alpha", "beta"}, body.Databases)
}

func TestHandleKeywords(t *testing.T) {
	s := newTestServer(&webDB{})

	rec := get(t, s.Handler(), "/v1/keywords")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Keywords string `json:"keywords"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Keywords, "ZEROFILL")
	assert.NotContains(t, ","+body.Keywords+",", ",SELECT,")
}

func TestHandleTypeInfo(t *testing.T) {
	s := newTestServer(&webDB{})

	rec := get(t, s.Handler(), "/v1/typeinfo")
	require.Equal(t, http.StatusOK, rec.Code)

	var body resultSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, meta.TypeInfoColumns, body.Columns)
	require.NotEmpty(t, body.Rows)
	for _, row := range body.Rows {
		assert.Len(t, row, len(meta.TypeInfoColumns))
	}
}

func TestHandleDatabases_Error(t *testing.T) {
	s := newTestServer(&webDB{queryErr: errs.New(errs.ErrKindNotFound, "gone")})

	rec := get(t, s.Handler(), "/v1/databases")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "gone")
}

func TestWriteError_StatusMapping(t *testing.T) {
	s := newTestServer(&webDB{})

	tests := []struct {
		err  error
		want int
	}{
		{errs.New(errs.ErrKindInvalidInput, "bad"), http.StatusBadRequest},
		{errs.New(errs.ErrKindNotFound, "missing"), http.StatusNotFound},
		{errs.New(errs.ErrKindTimeout, "slow"), http.StatusGatewayTimeout},
		{errs.New(errs.ErrKindQueryFailed, "broken"), http.StatusInternalServerError},
		{errs.New(errs.ErrKindConnectionFailed, "down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.writeError(rec, tt.err)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}

func TestParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/tables?table=orders&column=", nil)
	assert.Equal(t, "orders", *param(req, "table"))

	// Present but empty is an exact-empty filter, not an omitted one.
	require.NotNil(t, param(req, "column"))
	assert.Equal(t, "", *param(req, "column"))

	assert.Nil(t, param(req, "missing"))
}
