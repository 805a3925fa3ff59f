// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TodoSanitizerService はユーザー入力のタイトル・説明文をサニタイズし、
// XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// Todoはプレーンテキストとして扱うためタグは一切通さない。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// TodoSanitizerService はTodoテキストのサニタイズ機能のインターフェースを定義する。
// Todo保存前（作成・更新）に使用される。
type TodoSanitizerService interface {
	// SanitizeTitle はタイトルからすべてのHTMLタグを除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeTitle(raw string) string

	// SanitizeDescription は説明文からすべてのHTMLタグを除去する。
	SanitizeDescription(raw string) string
}

// todoSanitizer はTodoSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type todoSanitizer struct {
	policy *bluemonday.Policy
}

// NewTodoSanitizer はTodoSanitizerServiceの新しいインスタンスを生成する。
// StrictPolicyはすべてのタグと属性を除去し、テキストのみを残す。
// script, iframe, styleタグおよびon*イベント属性も当然除去される。
func NewTodoSanitizer() *todoSanitizer {
	return &todoSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeTitle はタイトルからすべてのHTMLタグを除去する。
func (s *todoSanitizer) SanitizeTitle(raw string) string {
	return s.policy.Sanitize(raw)
}

// SanitizeDescription は説明文からすべてのHTMLタグを除去する。
func (s *todoSanitizer) SanitizeDescription(raw string) string {
	return s.policy.Sanitize(raw)
}
