package main

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type execCall struct {
	query string
	args  []driver.Value
}

// recorder is a database/sql driver that records statements and reports a
// fixed number of affected rows.
type recorder struct {
	mu       sync.Mutex
	calls    []execCall
	affected int64
}

var rec = &recorder{}

func init() {
	sql.Register("recorder", rec)
}

func (d *recorder) Open(string) (driver.Conn, error) { return recorderConn{d}, nil }

func (d *recorder) reset(affected int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls, d.affected = nil, affected
}

func (d *recorder) last() execCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[len(d.calls)-1]
}

type recorderConn struct{ d *recorder }

func (c recorderConn) Prepare(query string) (driver.Stmt, error) {
	return recorderStmt{c.d, query}, nil
}
func (c recorderConn) Close() error              { return nil }
func (c recorderConn) Begin() (driver.Tx, error) { return nil, errors.New("not supported") }

type recorderStmt struct {
	d     *recorder
	query string
}

func (s recorderStmt) Close() error  { return nil }
func (s recorderStmt) NumInput() int { return -1 }

func (s recorderStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.d.calls = append(s.d.calls, execCall{s.query, args})
	return driver.RowsAffected(s.d.affected), nil
}

func (s recorderStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("not supported")
}

func adminRequest(t *testing.T, method, target string, path map[string]string) *http.Request {
	t.Helper()
	t.Setenv("CLIENT_SECRET", "secret")
	t.Setenv("ADMINS", "root@example.com")
	token, err := signSession("secret", "root@example.com", time.Now())
	require.NoError(t, err)

	r := httptest.NewRequest(method, target, nil)
	r.Header.Set("Authorization", "Bearer "+token)
	for k, v := range path {
		r.SetPathValue(k, v)
	}
	return r
}

func TestRemoveEventAdminScopedToEvent(t *testing.T) {
	db, err := sql.Open("recorder", "")
	require.NoError(t, err)
	defer db.Close()

	rec.reset(1)
	w := httptest.NewRecorder()
	handleRemoveEventAdmin(db)(w, adminRequest(t, "DELETE", "/api/events/7/admins/3",
		map[string]string{"eventID": "7", "adminID": "3"}))
	require.Equal(t, http.StatusNoContent, w.Code)
	call := rec.last()
	require.Equal(t, "DELETE FROM event_admins WHERE id = $1 AND event_id = $2", call.query)
	require.Equal(t, []driver.Value{int64(3), int64(7)}, call.args)

	rec.reset(0)
	w = httptest.NewRecorder()
	handleRemoveEventAdmin(db)(w, adminRequest(t, "DELETE", "/api/events/8/admins/3",
		map[string]string{"eventID": "8", "adminID": "3"}))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handleRemoveEventAdmin(db)(w, adminRequest(t, "DELETE", "/api/events/x/admins/3",
		map[string]string{"eventID": "x", "adminID": "3"}))
	require.Equal(t, http.StatusBadRequest, w.Code)
}
