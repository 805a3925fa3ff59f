package repository

import (
	"context"
	"fmt"
)

// PostgresWithdrawalRepo は退会に伴う一連の削除を単一トランザクションで実行する。
type PostgresWithdrawalRepo struct {
	db TxBeginner
}

// NewPostgresWithdrawalRepo はPostgresWithdrawalRepoを生成する。
func NewPostgresWithdrawalRepo(db TxBeginner) *PostgresWithdrawalRepo {
	return &PostgresWithdrawalRepo{db: db}
}

// DeleteAccount はユーザーに紐づく全データを原子的に削除する。
// 削除順序: todos → sessions → verification_tokens → identities
// （users行はidentities削除のCASCADEで消える）。
// いずれかの削除が失敗した場合は全体をロールバックし、部分削除状態を残さない。
func (r *PostgresWithdrawalRepo) DeleteAccount(ctx context.Context, userID, identityID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin withdrawal transaction: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		query string
		arg   string
	}{
		{`DELETE FROM todos WHERE user_id = $1`, userID},
		{`DELETE FROM sessions WHERE user_id = $1`, userID},
		{`DELETE FROM verification_tokens WHERE identity_id = $1`, identityID},
		{`DELETE FROM identities WHERE id = $1`, identityID},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, step.arg); err != nil {
			return fmt.Errorf("failed to delete account data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withdrawal: %w", err)
	}
	return nil
}
