package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// プロバイダー境界のセンチネルエラー。
// サービス層でAPIErrorに変換される。
var (
	// ErrInvalidCredentials はメールアドレスまたはパスワードが一致しないことを示す。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail は同じメールアドレスのidentityが既に存在することを示す。
	ErrDuplicateEmail = errors.New("email already registered")
)

// ProviderUser は認証プロバイダーが公開するユーザー情報を表す。
// id、email、email確認時刻のみを外部に見せる。
type ProviderUser struct {
	ID               string
	Email            string
	EmailConfirmedAt *time.Time
}

// CredentialProvider は認証プロバイダーのインターフェース。
// 本番はidentitiesテーブルを使うローカル実装だが、
// 外部IdPへの差し替えを想定してサービス層からは抽象として扱う。
type CredentialProvider interface {
	// SignUp は新しいidentityを作成する。
	// メールアドレスが既に登録済みの場合はErrDuplicateEmailを返す。
	SignUp(ctx context.Context, email, password string) (*ProviderUser, error)

	// VerifyPassword は資格情報を検証する。
	// 一致しない場合はErrInvalidCredentialsを返す。
	// メール確認状態の判定は呼び出し側の責務（確認済みでなくてもここでは成功する）。
	VerifyPassword(ctx context.Context, email, password string) (*ProviderUser, error)

	// GetUser は指定IDのユーザー情報を返す。見つからない場合はnilを返す。
	GetUser(ctx context.Context, id string) (*ProviderUser, error)

	// ConfirmEmail はメール確認時刻を記録する。
	ConfirmEmail(ctx context.Context, id string) error
}

// LocalCredentialProvider はidentitiesテーブルとbcryptによるCredentialProviderの実装。
type LocalCredentialProvider struct {
	identRepo repository.IdentityRepository
}

// NewLocalCredentialProvider はLocalCredentialProviderを生成する。
func NewLocalCredentialProvider(identRepo repository.IdentityRepository) *LocalCredentialProvider {
	return &LocalCredentialProvider{identRepo: identRepo}
}

// SignUp は新しいidentityを作成する。
func (p *LocalCredentialProvider) SignUp(ctx context.Context, email, password string) (*ProviderUser, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	identity := &model.Identity{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := p.identRepo.Create(ctx, identity); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return toProviderUser(identity), nil
}

// VerifyPassword は資格情報を検証する。
// メールアドレスの存在有無とパスワード不一致を区別しない。
func (p *LocalCredentialProvider) VerifyPassword(ctx context.Context, email, password string) (*ProviderUser, error) {
	identity, err := p.identRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	if identity == nil {
		return nil, ErrInvalidCredentials
	}

	if !ComparePassword(identity.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return toProviderUser(identity), nil
}

// GetUser は指定IDのユーザー情報を返す。見つからない場合はnilを返す。
func (p *LocalCredentialProvider) GetUser(ctx context.Context, id string) (*ProviderUser, error) {
	identity, err := p.identRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	if identity == nil {
		return nil, nil
	}
	return toProviderUser(identity), nil
}

// ConfirmEmail はメール確認時刻を記録する。
func (p *LocalCredentialProvider) ConfirmEmail(ctx context.Context, id string) error {
	if err := p.identRepo.ConfirmEmail(ctx, id, time.Now()); err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	return nil
}

// toProviderUser はIdentityを外部公開用のProviderUserに変換する。
// パスワードハッシュはプロバイダーの外に出さない。
func toProviderUser(identity *model.Identity) *ProviderUser {
	return &ProviderUser{
		ID:               identity.ID,
		Email:            identity.Email,
		EmailConfirmedAt: identity.EmailConfirmedAt,
	}
}

// isUniqueViolation はPostgreSQLのUNIQUE制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// compile-time interface check
var _ CredentialProvider = (*LocalCredentialProvider)(nil)
