package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/todoman/internal/model"
)

// --- モック定義 ---

// todoFakeState はフェイクドライバに発行されたSQLと引数を記録し、
// 返す行を設定できるようにする。
type todoFakeState struct {
	mu        sync.Mutex
	queries   []string
	args      [][]driver.Value
	rows      [][]driver.Value // QueryContextが返す行
	execRows  int64            // ExecContextのRowsAffected
	execErrOn string           // この部分文字列を含むExecをエラーにする
	commits   int
	rollbacks int
}

func (st *todoFakeState) record(query string, named []driver.NamedValue) {
	vals := make([]driver.Value, len(named))
	for i, nv := range named {
		vals[i] = nv.Value
	}
	st.queries = append(st.queries, query)
	st.args = append(st.args, vals)
}

func (st *todoFakeState) lastQuery(t *testing.T) (string, []driver.Value) {
	t.Helper()
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.queries) == 0 {
		t.Fatal("no query was executed")
	}
	return st.queries[len(st.queries)-1], st.args[len(st.args)-1]
}

type todoFakeResult struct{ rowsAffected int64 }

func (r todoFakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r todoFakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

type todoFakeRows struct {
	rows [][]driver.Value
	pos  int
}

func (r *todoFakeRows) Columns() []string {
	// Scanは列数しか見ないため名前はダミーでよい
	n := 0
	if len(r.rows) > 0 {
		n = len(r.rows[0])
	}
	cols := make([]string, n)
	for i := range cols {
		cols[i] = fmt.Sprintf("col%d", i)
	}
	return cols
}

func (r *todoFakeRows) Close() error { return nil }

func (r *todoFakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

type todoFakeConn struct{ state *todoFakeState }

func (c *todoFakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("prepare is not supported")
}
func (c *todoFakeConn) Close() error              { return nil }
func (c *todoFakeConn) Begin() (driver.Tx, error) { return nil, fmt.Errorf("begin is not supported") }

func (c *todoFakeConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	if c.state.execErrOn != "" && strings.Contains(query, c.state.execErrOn) {
		return nil, fmt.Errorf("forced failure on %q", c.state.execErrOn)
	}
	c.state.record(query, args)
	return todoFakeResult{c.state.execRows}, nil
}

func (c *todoFakeConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return &todoFakeTx{state: c.state}, nil
}

type todoFakeTx struct{ state *todoFakeState }

func (t *todoFakeTx) Commit() error {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	t.state.commits++
	return nil
}

func (t *todoFakeTx) Rollback() error {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	t.state.rollbacks++
	return nil
}

func (c *todoFakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	c.state.record(query, args)
	return &todoFakeRows{rows: c.state.rows}, nil
}

var (
	todoStatesMu sync.Mutex
	todoStates   = map[string]*todoFakeState{}
)

type todoFakeDriver struct{}

func (todoFakeDriver) Open(name string) (driver.Conn, error) {
	todoStatesMu.Lock()
	defer todoStatesMu.Unlock()

	st, ok := todoStates[name]
	if !ok {
		return nil, fmt.Errorf("unknown fake database: %s", name)
	}
	return &todoFakeConn{state: st}, nil
}

func init() {
	sql.Register("todorepofake", todoFakeDriver{})
}

func openTodoFakeDB(t *testing.T, st *todoFakeState) *sql.DB {
	t.Helper()

	name := fmt.Sprintf("state-%p", st)
	todoStatesMu.Lock()
	todoStates[name] = st
	todoStatesMu.Unlock()

	db, err := sql.Open("todorepofake", name)
	if err != nil {
		t.Fatalf("failed to open fake db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func todoRow(id, userID, title, description string, createdAt time.Time) []driver.Value {
	return []driver.Value{id, userID, title, description, createdAt, createdAt}
}

// --- テスト ---

func TestPostgresTodoRepo_ListByUserID_OrdersNewestFirst(t *testing.T) {
	now := time.Now()
	st := &todoFakeState{
		rows: [][]driver.Value{
			todoRow("t2", "user-1", "newer", "", now),
			todoRow("t1", "user-1", "older", "", now.Add(-time.Hour)),
		},
	}
	repo := NewPostgresTodoRepo(openTodoFakeDB(t, st))

	todos, err := repo.ListByUserID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	query, args := st.lastQuery(t)
	if !strings.Contains(query, "ORDER BY created_at DESC") {
		t.Errorf("query should order newest first, got: %s", query)
	}
	if !strings.Contains(query, "WHERE user_id = $1") {
		t.Errorf("query should filter by owner, got: %s", query)
	}
	if len(args) != 1 || args[0] != "user-1" {
		t.Errorf("args = %v, want [user-1]", args)
	}

	if len(todos) != 2 {
		t.Fatalf("len = %d, want 2", len(todos))
	}
	if todos[0].ID != "t2" || todos[1].ID != "t1" {
		t.Errorf("row order = [%s %s], want [t2 t1]", todos[0].ID, todos[1].ID)
	}
}

func TestPostgresTodoRepo_Update_RequiresIDAndOwner(t *testing.T) {
	now := time.Now()
	st := &todoFakeState{
		rows: [][]driver.Value{todoRow("t1", "user-1", "New title", "desc", now)},
	}
	repo := NewPostgresTodoRepo(openTodoFakeDB(t, st))

	updated, err := repo.Update(context.Background(), "t1", "user-1", "New title", "desc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil || updated.Title != "New title" {
		t.Fatalf("updated = %+v, want returned row", updated)
	}

	query, args := st.lastQuery(t)
	if !strings.Contains(query, "WHERE id = $1 AND user_id = $2") {
		t.Errorf("update must match both id and owner, got: %s", query)
	}
	if len(args) != 4 || args[0] != "t1" || args[1] != "user-1" {
		t.Errorf("args = %v, want id then owner first", args)
	}
}

func TestPostgresTodoRepo_Update_OwnerMismatch_ReturnsNil(t *testing.T) {
	// id AND user_idに一致する行が無い場合（他人のTodoなど）
	st := &todoFakeState{rows: nil}
	repo := NewPostgresTodoRepo(openTodoFakeDB(t, st))

	updated, err := repo.Update(context.Background(), "t1", "intruder", "x", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != nil {
		t.Errorf("updated = %+v, want nil for non-matching row", updated)
	}
}

func TestPostgresTodoRepo_Delete_RequiresIDAndOwner(t *testing.T) {
	st := &todoFakeState{execRows: 1}
	repo := NewPostgresTodoRepo(openTodoFakeDB(t, st))

	deleted, err := repo.Delete(context.Background(), "t1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("deleted should be true when a row matched")
	}

	query, args := st.lastQuery(t)
	if !strings.Contains(query, "WHERE id = $1 AND user_id = $2") {
		t.Errorf("delete must match both id and owner, got: %s", query)
	}
	if len(args) != 2 || args[0] != "t1" || args[1] != "user-1" {
		t.Errorf("args = %v, want [t1 user-1]", args)
	}
}

func TestPostgresTodoRepo_Delete_OwnerMismatch_ReturnsFalse(t *testing.T) {
	st := &todoFakeState{execRows: 0}
	repo := NewPostgresTodoRepo(openTodoFakeDB(t, st))

	deleted, err := repo.Delete(context.Background(), "t1", "intruder")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("deleted should be false when no row matched")
	}
}

func TestPostgresTodoRepo_Create_ReturnsServerRow(t *testing.T) {
	now := time.Now()
	st := &todoFakeState{
		rows: [][]driver.Value{todoRow("t1", "user-1", "Buy milk", "2L", now)},
	}
	repo := NewPostgresTodoRepo(openTodoFakeDB(t, st))

	created, err := repo.Create(context.Background(), &model.Todo{
		ID: "t1", UserID: "user-1", Title: "Buy milk", Description: "2L",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "t1" || created.UserID != "user-1" {
		t.Errorf("created = %+v", created)
	}
	if created.CreatedAt.IsZero() {
		t.Error("created_at should come from the returned row")
	}

	query, args := st.lastQuery(t)
	if !strings.Contains(query, "INSERT INTO todos") || !strings.Contains(query, "RETURNING") {
		t.Errorf("unexpected insert query: %s", query)
	}
	if len(args) != 4 {
		t.Errorf("args = %v, want 4 values", args)
	}
}
