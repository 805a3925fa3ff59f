package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/todoman/internal/model"
)

// PostgresVerificationTokenRepo はPostgreSQLを使用した確認トークンリポジトリ。
type PostgresVerificationTokenRepo struct {
	db *sql.DB
}

// NewPostgresVerificationTokenRepo はPostgresVerificationTokenRepoを生成する。
func NewPostgresVerificationTokenRepo(db *sql.DB) *PostgresVerificationTokenRepo {
	return &PostgresVerificationTokenRepo{db: db}
}

// Create は確認トークンを作成する。
func (r *PostgresVerificationTokenRepo) Create(ctx context.Context, token *model.VerificationToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_tokens (token, identity_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		token.Token, token.IdentityID, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}
	return nil
}

// FindByToken は未期限切れのトークンを取得する。見つからない場合はnilを返す。
func (r *PostgresVerificationTokenRepo) FindByToken(ctx context.Context, token string) (*model.VerificationToken, error) {
	vt := &model.VerificationToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT token, identity_id, expires_at, created_at
		 FROM verification_tokens
		 WHERE token = $1 AND expires_at > now()`,
		token,
	).Scan(&vt.Token, &vt.IdentityID, &vt.ExpiresAt, &vt.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find verification token: %w", err)
	}

	return vt, nil
}

// DeleteByToken は指定トークンを削除する。
func (r *PostgresVerificationTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete verification token: %w", err)
	}
	return nil
}

// compile-time interface check
var _ VerificationTokenRepository = (*PostgresVerificationTokenRepo)(nil)
