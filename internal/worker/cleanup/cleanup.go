// Package cleanup は期限切れデータの自動削除ジョブを提供する。
// 期限切れのセッションと確認トークンを日次バッチで削除し、
// 24時間以上ディレクトリ行を持たないidentity（サインアップ部分失敗の残骸）を
// ログで報告する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContext/QueryRowContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SessionsPurgedRecorder は削除されたセッション数のメトリクス記録インターフェース。
type SessionsPurgedRecorder interface {
	RecordSessionsPurged(count int)
}

// CleanupJob は期限切れセッション・確認トークンの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db      Executor
	logger  *slog.Logger
	metrics SessionsPurgedRecorder // nilの場合は記録しない
}

// NewCleanupJob は新しいCleanupJobを生成する。metricsはnilでもよい。
func NewCleanupJob(db Executor, logger *slog.Logger, metrics SessionsPurgedRecorder) *CleanupJob {
	return &CleanupJob{
		db:      db,
		logger:  logger,
		metrics: metrics,
	}
}

// Run は期限切れのセッションと確認トークンを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	purgedSessions, err := j.purge(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		j.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れセッションの削除に失敗: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordSessionsPurged(int(purgedSessions))
	}

	purgedTokens, err := j.purge(ctx, `DELETE FROM verification_tokens WHERE expires_at <= now()`)
	if err != nil {
		j.logger.Error("期限切れ確認トークンの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("期限切れ確認トークンの削除に失敗: %w", err)
	}

	// サインアップ部分失敗の残骸を検出して報告する（削除はしない。
	// ログイン時の自動補完で回復する可能性があるため）。
	orphans, err := j.countOrphanedIdentities(ctx)
	if err != nil {
		j.logger.Warn("孤立identityの集計に失敗しました",
			slog.String("error", err.Error()),
		)
	} else if orphans > 0 {
		j.logger.Warn("ディレクトリ行を持たないidentityが存在します",
			slog.Int64("count", orphans),
		)
	}

	duration := time.Since(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("purged_sessions", purgedSessions),
		slog.Int64("purged_tokens", purgedTokens),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// purge はDELETE文を実行し、削除件数を返す。
func (j *CleanupJob) purge(ctx context.Context, query string) (int64, error) {
	result, err := j.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// countOrphanedIdentities は作成から24時間以上経過してもディレクトリ行を
// 持たないidentityの件数を返す。
func (j *CleanupJob) countOrphanedIdentities(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM identities i
		LEFT JOIN users u ON u.auth_id = i.id
		WHERE u.id IS NULL
		  AND i.created_at < now() - interval '24 hours'`

	var count int64
	if err := j.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
