package model

import "time"

// Todo はユーザーが所有するタスクを表す。
// 所有者は常に1人で、user_idで絞り込んだ操作のみ許可される。
type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
