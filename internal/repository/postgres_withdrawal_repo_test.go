package repository

import (
	"context"
	"database/sql/driver"
	"strings"
	"testing"
)

func TestPostgresWithdrawalRepo_DeleteAccount_DeletesInOrderAndCommits(t *testing.T) {
	st := &todoFakeState{}
	repo := NewPostgresWithdrawalRepo(openTodoFakeDB(t, st))

	if err := repo.DeleteAccount(context.Background(), "user-1", "auth-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st.mu.Lock()
	queries := append([]string(nil), st.queries...)
	args := append([][]driver.Value(nil), st.args...)
	commits, rollbacks := st.commits, st.rollbacks
	st.mu.Unlock()

	wantOrder := []string{"todos", "sessions", "verification_tokens", "identities"}
	if len(queries) != len(wantOrder) {
		t.Fatalf("executed %d deletes, want %d: %v", len(queries), len(wantOrder), queries)
	}
	for i, table := range wantOrder {
		if !strings.Contains(queries[i], "DELETE FROM "+table) {
			t.Errorf("query[%d] = %q, want delete from %s", i, queries[i], table)
		}
	}

	// todos/sessionsはユーザーID、tokens/identitiesはidentity IDで絞り込む
	if args[0][0] != "user-1" || args[1][0] != "user-1" {
		t.Errorf("user-scoped deletes got args %v %v, want user-1", args[0], args[1])
	}
	if args[2][0] != "auth-1" || args[3][0] != "auth-1" {
		t.Errorf("identity-scoped deletes got args %v %v, want auth-1", args[2], args[3])
	}

	if commits != 1 {
		t.Errorf("commits = %d, want 1", commits)
	}
	if rollbacks != 0 {
		t.Errorf("rollbacks = %d, want 0", rollbacks)
	}
}

func TestPostgresWithdrawalRepo_DeleteAccount_FailureRollsBack(t *testing.T) {
	// セッション削除で失敗させ、全体がロールバックされることを確認する
	st := &todoFakeState{execErrOn: "sessions"}
	repo := NewPostgresWithdrawalRepo(openTodoFakeDB(t, st))

	err := repo.DeleteAccount(context.Background(), "user-1", "auth-1")
	if err == nil {
		t.Fatal("expected error when a delete fails")
	}

	st.mu.Lock()
	commits, rollbacks := st.commits, st.rollbacks
	st.mu.Unlock()

	if commits != 0 {
		t.Errorf("commits = %d, want 0 after failure", commits)
	}
	if rollbacks != 1 {
		t.Errorf("rollbacks = %d, want 1 after failure", rollbacks)
	}
}
