// Command migrations creates the match_results table and can purge old
// results once, outside the server's own cron schedule.
package main

import (
	"context"
	"flag"
	"time"

	"raidcourt/config"
	"raidcourt/database"
	"raidcourt/utils"

	"go.uber.org/zap"
)

func main() {
	purge := flag.Bool("purge", false, "delete results older than RESULT_RETENTION after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := utils.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !cfg.PostgresEnabled() {
		logger.Fatal("DB_HOST が設定されていません")
	}

	// InitPostgreSQL の中で AutoMigrate を実行する
	db, err := database.InitPostgreSQL(cfg, logger)
	if err != nil {
		logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	// テーブル 'match_results' が存在するかを確認する
	var exists bool
	db.Raw("SELECT exists (SELECT 1 FROM information_schema.tables WHERE table_name = 'match_results')").Scan(&exists)
	logger.Info("match_results table checked", zap.Bool("exists", exists))

	if *purge {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := database.NewGormArchive(db).Purge(ctx, time.Now().Add(-cfg.ResultRetention))
		if err != nil {
			logger.Fatal("試合結果の削除に失敗しました", zap.Error(err))
		}
		logger.Info("試合結果の削除完了", zap.Int64("results_deleted", n), zap.Duration("retention", cfg.ResultRetention))
	}
}
