package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/todoman/internal/model"
)

// PostgresIdentityRepo はPostgreSQLを使用したidentityリポジトリ。
type PostgresIdentityRepo struct {
	db *sql.DB
}

// NewPostgresIdentityRepo はPostgresIdentityRepoを生成する。
func NewPostgresIdentityRepo(db *sql.DB) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{db: db}
}

// FindByEmail はメールアドレスでidentityを検索する。見つからない場合はnilを返す。
func (r *PostgresIdentityRepo) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	identity := &model.Identity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, email_confirmed_at, created_at
		 FROM identities
		 WHERE email = $1`,
		email,
	).Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.EmailConfirmedAt, &identity.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find identity by email: %w", err)
	}

	return identity, nil
}

// FindByID は指定IDのidentityを取得する。見つからない場合はnilを返す。
func (r *PostgresIdentityRepo) FindByID(ctx context.Context, id string) (*model.Identity, error) {
	identity := &model.Identity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, email_confirmed_at, created_at
		 FROM identities
		 WHERE id = $1`,
		id,
	).Scan(&identity.ID, &identity.Email, &identity.PasswordHash, &identity.EmailConfirmedAt, &identity.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	return identity, nil
}

// Create はidentityを作成する。
func (r *PostgresIdentityRepo) Create(ctx context.Context, identity *model.Identity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash, email_confirmed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		identity.ID, identity.Email, identity.PasswordHash, identity.EmailConfirmedAt, identity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert identity: %w", err)
	}
	return nil
}

// ConfirmEmail はemail_confirmed_atに確認時刻を記録する。
// 既に確認済みの行は上書きしない。
func (r *PostgresIdentityRepo) ConfirmEmail(ctx context.Context, identityID string, confirmedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE identities
		 SET email_confirmed_at = $2
		 WHERE id = $1 AND email_confirmed_at IS NULL`,
		identityID, confirmedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return nil
}

// compile-time interface check
var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
