// Package model はドメインモデルを定義する。
package model

import "time"

// User はユーザーディレクトリの1行を表す。
// 認証プロバイダー側のIdentityと1対1で対応し、作成後は更新されない。
type User struct {
	ID        string
	AuthID    string
	Email     string
	Name      string
	CreatedAt time.Time
}

// Identity は認証プロバイダー側のユーザーレコードを表す。
// メール確認が完了するまでEmailConfirmedAtはnil。
type Identity struct {
	ID               string
	Email            string
	PasswordHash     string
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// VerificationToken はメール確認用のワンタイムトークンを表す。
type VerificationToken struct {
	Token      string
	IdentityID string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
