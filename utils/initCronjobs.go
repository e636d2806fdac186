package utils

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RoomReaper removes rooms that have idled past the TTL.
type RoomReaper interface {
	ReapIdle(ttl time.Duration) int
}

// ResultPurger deletes archived results older than a cutoff.
type ResultPurger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

type CronOptions struct {
	JanitorSchedule string
	RoomIdleTTL     time.Duration

	// purger が nil の場合、保存期間のジョブは登録しない
	Purger          ResultPurger
	PurgeSchedule   string
	ResultRetention time.Duration
}

// CronCleaner はルームの掃除と古い試合結果の削除を定期実行します。
// 返された *cron.Cron は呼び出し側で Stop すること。
func CronCleaner(rooms RoomReaper, opts CronOptions, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	// 誰もいないまま放置されたルームを削除するジョブ
	if _, err := c.AddFunc(opts.JanitorSchedule, func() {
		if n := rooms.ReapIdle(opts.RoomIdleTTL); n > 0 {
			logger.Info("放置されたルームを削除しました", zap.Int("rooms_deleted", n))
		}
	}); err != nil {
		return nil, err
	}

	// 保存期間を過ぎた試合結果を削除するジョブ（"分 時 日 月 曜日"）
	if opts.Purger != nil {
		if _, err := c.AddFunc(opts.PurgeSchedule, func() {
			logger.Info("古い試合結果を削除する処理を開始")
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			n, err := opts.Purger.Purge(ctx, time.Now().Add(-opts.ResultRetention))
			if err != nil {
				logger.Error("試合結果の削除に失敗しました", zap.Error(err))
				return
			}
			logger.Info("試合結果の削除完了", zap.Int64("results_deleted", n))
		}); err != nil {
			return nil, err
		}
	}

	c.Start()
	return c, nil
}
