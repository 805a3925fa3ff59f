// Package mail は確認メールの送信を提供する。
// 本番はSMTP、ローカル開発はログ出力のみの実装を使う。
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// SMTPMailer はnet/smtpによる確認メール送信の実装。
type SMTPMailer struct {
	addr string // SMTPサーバーのアドレス（host:port）
	from string
}

// NewSMTPMailer はSMTPMailerを生成する。
func NewSMTPMailer(addr, from string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from}
}

// SendConfirmationMail は確認リンク入りのメールを送信する。
func (m *SMTPMailer) SendConfirmationMail(ctx context.Context, to, confirmURL string) error {
	msg := buildConfirmationMessage(m.from, to, confirmURL)
	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", m.addr, err)
	}
	return nil
}

// LogMailer はメールを送信せず確認リンクをログに出力する実装。
// SMTP未設定のローカル開発用。
type LogMailer struct{}

// NewLogMailer はLogMailerを生成する。
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendConfirmationMail は確認リンクをログに出力する。
func (m *LogMailer) SendConfirmationMail(ctx context.Context, to, confirmURL string) error {
	slog.Info("confirmation mail (log only)",
		slog.String("to", to),
		slog.String("confirm_url", confirmURL),
	)
	return nil
}

// buildConfirmationMessage はRFC 5322形式のメール本文を組み立てる。
func buildConfirmationMessage(from, to, confirmURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Confirm your email address\r\n")
	b.WriteString("\r\n")
	b.WriteString("Welcome! Please confirm your email address by opening the link below.\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "%s\r\n", confirmURL)
	return b.String()
}
