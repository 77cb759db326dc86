package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdutta/mysqlmeta/internal/errs"
)

type stubRows struct {
	cols    []string
	data    [][]any
	pos     int
	iterErr error
	closed  bool
}

func (r *stubRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	for i, d := range dest {
		p, ok := d.(*any)
		if !ok {
			return errors.New("unexpected scan target")
		}
		*p = row[i]
	}
	return nil
}

func (r *stubRows) Columns() ([]string, error) { return r.cols, nil }
func (r *stubRows) Close()                     { r.closed = true }
func (r *stubRows) Err() error                 { return r.iterErr }

func TestScanRows(t *testing.T) {
	rows := &stubRows{
		cols: []string{"name", "age"},
		data: [][]any{
			{"alice", int64(30)},
			{"bob", nil},
		},
	}

	result, err := ScanRows(rows)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "alice", result[0]["name"])
	assert.Equal(t, int64(30), result[0]["age"])
	assert.Equal(t, "bob", result[1]["name"])
	assert.Nil(t, result[1]["age"])
	assert.True(t, rows.closed, "ScanRows must close the rows")
}

func TestScanRows_Empty(t *testing.T) {
	rows := &stubRows{cols: []string{"name"}}
	result, err := ScanRows(rows)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
	assert.True(t, rows.closed)
}

func TestScanRows_IterationError(t *testing.T) {
	rows := &stubRows{
		cols:    []string{"name"},
		iterErr: errors.New("connection dropped"),
	}
	_, err := ScanRows(rows)
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
	assert.True(t, rows.closed)
}
