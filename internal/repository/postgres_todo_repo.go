package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/todoman/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したTodoリポジトリ。
// 更新・削除はid AND user_idの両方が一致する行のみを対象にする。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// Create はTodoを作成し、サーバー側で採番されたタイムスタンプ込みの行を返す。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	created := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO todos (id, user_id, title, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, title, description, created_at, updated_at`,
		todo.ID, todo.UserID, todo.Title, todo.Description,
	).Scan(&created.ID, &created.UserID, &created.Title, &created.Description, &created.CreatedAt, &created.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}

	return created, nil
}

// ListByUserID は指定ユーザーのTodoを作成日時の新しい順で返す。
func (r *PostgresTodoRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, created_at, updated_at
		 FROM todos
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []*model.Todo{}
	for rows.Next() {
		todo := &model.Todo{}
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

// Update はid AND user_idが一致する行を上書きする。一致する行がない場合はnilを返す。
// 所有者以外のIDを指定しても他ユーザーの行には届かない。
func (r *PostgresTodoRepo) Update(ctx context.Context, id, userID, title, description string) (*model.Todo, error) {
	updated := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE todos
		 SET title = $3, description = $4, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, title, description, created_at, updated_at`,
		id, userID, title, description,
	).Scan(&updated.ID, &updated.UserID, &updated.Title, &updated.Description, &updated.CreatedAt, &updated.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return updated, nil
}

// Delete はid AND user_idが一致する行を削除する。削除できた場合はtrueを返す。
func (r *PostgresTodoRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)
