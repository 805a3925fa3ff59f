// Package user はユーザーディレクトリのドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// AccountDeleter は退会に伴う全データの原子的削除インターフェース。
// todos、sessions、verification_tokens、identity（およびCASCADEでusers行）を
// 単一トランザクションで削除する。
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, userID, identityID string) error
}

// Service はユーザーディレクトリのサービス層。
// プロフィール取得と退会処理を提供する。
type Service struct {
	userRepo repository.UserRepository
	accounts AccountDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, accounts AccountDeleter) *Service {
	return &Service{
		userRepo: userRepo,
		accounts: accounts,
	}
}

// Profile は指定IDのディレクトリ行を返す。
// 見つからない場合はUSER_NOT_FOUND。
func (s *Service) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 紐づく全データ（todos、sessions、verification_tokens、identity）は
// 単一トランザクションで削除され、失敗した場合は何も削除されない。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	if err := s.accounts.DeleteAccount(ctx, userID, user.AuthID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}
