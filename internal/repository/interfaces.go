// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/todoman/internal/model"
)

// UserRepository はユーザーディレクトリの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByAuthID は認証プロバイダー側IDでユーザーを検索する。
	// 見つからない場合はnilを返す（エラーにはしない）。
	FindByAuthID(ctx context.Context, authID string) (*model.User, error)

	// Create はディレクトリ行を作成する。
	// Identityの作成とは別トランザクションであり、失敗してもIdentityは残る。
	Create(ctx context.Context, user *model.User) error
}

// IdentityRepository は認証プロバイダー側レコードの永続化インターフェース。
type IdentityRepository interface {
	// FindByEmail はメールアドレスでidentityを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)

	// FindByID は指定IDのidentityを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Identity, error)

	// Create はidentityを作成する。メールアドレス重複はUNIQUE制約違反になる。
	Create(ctx context.Context, identity *model.Identity) error

	// ConfirmEmail はemail_confirmed_atに確認時刻を記録する。
	// 既に確認済みの場合は上書きしない（冪等）。
	ConfirmEmail(ctx context.Context, identityID string, confirmedAt time.Time) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// TodoRepository はTodoデータの永続化インターフェース。
// 全ての読み書きは所有者IDで絞り込まれる。
type TodoRepository interface {
	// Create はTodoを作成し、サーバー側で採番されたタイムスタンプ込みの行を返す。
	Create(ctx context.Context, todo *model.Todo) (*model.Todo, error)

	// ListByUserID は指定ユーザーのTodoを作成日時の新しい順で返す。
	// 1件もない場合は空スライスを返す（エラーにはしない）。
	ListByUserID(ctx context.Context, userID string) ([]*model.Todo, error)

	// Update はid AND user_idが一致する行のtitle/descriptionを上書きし、
	// updated_atを更新して更新後の行を返す。一致する行がない場合はnilを返す。
	Update(ctx context.Context, id, userID, title, description string) (*model.Todo, error)

	// Delete はid AND user_idが一致する行を削除する。
	// 削除できた場合はtrueを返す。
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// VerificationTokenRepository はメール確認トークンの永続化インターフェース。
type VerificationTokenRepository interface {
	// Create は確認トークンを作成する。
	Create(ctx context.Context, token *model.VerificationToken) error
	// FindByToken は未期限切れのトークンを取得する。見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.VerificationToken, error)
	// DeleteByToken は指定トークンを削除する。
	DeleteByToken(ctx context.Context, token string) error
}

// TxBeginner はトランザクション開始用のインターフェース。
// *sql.DBが満たす。退会処理の原子的削除で使用する。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
