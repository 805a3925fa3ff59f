// Package auth はサインアップ、ログイン、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// Mailer は確認メール送信のインターフェース。
type Mailer interface {
	// SendConfirmationMail は確認リンク入りのメールを送信する。
	SendConfirmationMail(ctx context.Context, to, confirmURL string) error
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge        int           // セッション有効期間（秒）
	VerificationTokenTTL time.Duration // 確認トークンの有効期間
	BaseURL              string        // 確認リンクのベースURL
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	provider  CredentialProvider
	userRepo  repository.UserRepository
	sessRepo  repository.SessionRepository
	tokenRepo repository.VerificationTokenRepository
	mailer    Mailer
	config    ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	provider CredentialProvider,
	userRepo repository.UserRepository,
	sessRepo repository.SessionRepository,
	tokenRepo repository.VerificationTokenRepository,
	mailer Mailer,
	config ServiceConfig,
) *Service {
	return &Service{
		provider:  provider,
		userRepo:  userRepo,
		sessRepo:  sessRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		config:    config,
	}
}

// SignUp は新規ユーザーを登録する。
// 1. 認証プロバイダーにidentityを作成する
// 2. 確認トークンを発行しメールを送信する（送信失敗はサインアップを失敗させない）
// 3. ディレクトリ行を作成する（identity作成とは非トランザクショナル）
// 確認メールはidentity作成の一部として、手順3の成否に関わらず送信する。
// 手順3が失敗した場合はPARTIAL_SIGNUPを返すが、確認済みのidentityは残るため、
// 次回ログイン成功時にディレクトリ行が自動補完される。
func (s *Service) SignUp(ctx context.Context, name, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateSignUpInput(email, password); err != nil {
		return err
	}

	// 1. identityの作成
	pu, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return model.NewDuplicateEmailError()
		}
		return model.NewStoreError("Signup failed. Please try again.")
	}

	// 2. 確認トークンの発行とメール送信。
	// ディレクトリ行の作成より先に行う。後続が失敗してもメール確認と
	// ログインは可能な状態を保つ（ディレクトリ行はログイン時に補完される）。
	if err := s.issueConfirmation(ctx, pu.ID, email); err != nil {
		slog.Warn("failed to send confirmation mail",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	// 3. ディレクトリ行の作成
	newUser := &model.User{
		ID:        uuid.New().String(),
		AuthID:    pu.ID,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		slog.Error("directory row creation failed after signup",
			slog.String("auth_id", pu.ID),
			slog.String("error", err.Error()),
		)
		return model.NewPartialSignupError()
	}

	slog.Info("new user signed up",
		slog.String("user_id", newUser.ID),
		slog.String("email", email),
	)

	return nil
}

// SignIn は資格情報を検証しセッションを発行する。
// プロバイダーが資格情報を受理しても、email_confirmed_atが未設定なら
// EMAIL_NOT_CONFIRMEDで拒否する（確認状態の検証は呼び出し側の責務）。
// ディレクトリ行が欠損している場合はここで補完する（サインアップ部分失敗の回復経路）。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	pu, err := s.provider.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, nil, model.NewInvalidCredentialsError()
		}
		return nil, nil, model.NewStoreError("Login failed. Please try again.")
	}

	// プロバイダー呼び出しが成功していても確認状態は別途検証する
	if pu.EmailConfirmedAt == nil {
		return nil, nil, model.NewEmailNotConfirmedError()
	}

	user, err := s.userRepo.FindByAuthID(ctx, pu.ID)
	if err != nil {
		return nil, nil, model.NewStoreError("Login failed. Please try again.")
	}
	if user == nil {
		// サインアップ部分失敗からの回復: ディレクトリ行を補完する
		user = &model.User{
			ID:        uuid.New().String(),
			AuthID:    pu.ID,
			Email:     pu.Email,
			Name:      "",
			CreatedAt: time.Now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			slog.Error("failed to heal missing directory row",
				slog.String("auth_id", pu.ID),
				slog.String("error", err.Error()),
			)
			return nil, nil, model.NewStoreError("Login failed. Please try again.")
		}
		slog.Info("directory row healed on login",
			slog.String("user_id", user.ID),
			slog.String("auth_id", pu.ID),
		)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, model.NewStoreError("Login failed. Please try again.")
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return session, user, nil
}

// SignOut はセッションを破棄する。
// 失敗はエラーとして報告されるが、この境界より外へは伝播させない想定。
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// CurrentUser はセッションから現在のユーザーを取得する。
// いかなるエラーも外に出さず、解決できない場合はnilを返す。
func (s *Service) CurrentUser(ctx context.Context, sessionID string) *model.User {
	if sessionID == "" {
		return nil
	}

	session, err := s.sessRepo.FindByID(ctx, sessionID)
	if err != nil || session == nil {
		return nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil
	}
	return user
}

// ResolveInternalID は認証プロバイダー側IDから内部ユーザーIDを解決する。
// ディレクトリ行が存在しない場合は空文字を返す（エラーにはしない）。
func (s *Service) ResolveInternalID(ctx context.Context, authID string) (string, error) {
	user, err := s.userRepo.FindByAuthID(ctx, authID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve internal ID: %w", err)
	}
	if user == nil {
		return "", nil
	}
	return user.ID, nil
}

// ConfirmEmail は確認トークンを検証し、identityのメール確認時刻を記録する。
// 使用済み・期限切れ・未知のトークンはINVALID_TOKENを返す。
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return model.NewInvalidTokenError()
	}

	vt, err := s.tokenRepo.FindByToken(ctx, token)
	if err != nil {
		return model.NewStoreError("Confirmation failed. Please try again.")
	}
	if vt == nil {
		return model.NewInvalidTokenError()
	}

	if err := s.provider.ConfirmEmail(ctx, vt.IdentityID); err != nil {
		return model.NewStoreError("Confirmation failed. Please try again.")
	}

	// トークンは一度きり
	if err := s.tokenRepo.DeleteByToken(ctx, token); err != nil {
		slog.Warn("failed to burn verification token",
			slog.String("error", err.Error()),
		)
	}

	slog.Info("email confirmed", slog.String("identity_id", vt.IdentityID))
	return nil
}

// issueConfirmation は確認トークンを発行し、確認リンクをメール送信する。
func (s *Service) issueConfirmation(ctx context.Context, identityID, email string) error {
	token, err := generateToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	vt := &model.VerificationToken{
		Token:      token,
		IdentityID: identityID,
		ExpiresAt:  time.Now().Add(s.config.VerificationTokenTTL),
		CreatedAt:  time.Now(),
	}
	if err := s.tokenRepo.Create(ctx, vt); err != nil {
		return fmt.Errorf("failed to save verification token: %w", err)
	}

	confirmURL := fmt.Sprintf("%s/api/auth/confirm?token=%s", s.config.BaseURL, token)
	if err := s.mailer.SendConfirmationMail(ctx, email, confirmURL); err != nil {
		return fmt.Errorf("failed to send confirmation mail: %w", err)
	}

	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// validateSignUpInput はサインアップ入力の最低限の検証を行う。
func validateSignUpInput(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return model.NewValidationError("A valid email address is required.")
	}
	if len(password) < 8 {
		return model.NewValidationError("Password must be at least 8 characters.")
	}
	return nil
}

// generateToken は暗号的に安全なランダムトークンを生成する。
// セッションIDと確認トークンの両方で使用する。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
