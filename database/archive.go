package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"raidcourt/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResultsKey はRedis上の最近の試合結果リストのキー
const ResultsKey = "results:recent"

// Saver stores one finished match.
type Saver interface {
	Save(ctx context.Context, res *models.MatchResult) error
}

// Reader lists the most recent finished matches, newest first.
type Reader interface {
	Recent(ctx context.Context, n int) ([]models.MatchResult, error)
}

// GormArchive keeps every result in the match_results table.
type GormArchive struct {
	db *gorm.DB
}

func NewGormArchive(db *gorm.DB) *GormArchive {
	return &GormArchive{db: db}
}

func (a *GormArchive) Save(ctx context.Context, res *models.MatchResult) error {
	return a.db.WithContext(ctx).Create(res).Error
}

func (a *GormArchive) Recent(ctx context.Context, n int) ([]models.MatchResult, error) {
	var out []models.MatchResult
	err := a.db.WithContext(ctx).Order("ended_at DESC").Limit(n).Find(&out).Error
	return out, err
}

// Purge deletes results that ended before the cutoff and returns how many
// rows went.
func (a *GormArchive) Purge(ctx context.Context, before time.Time) (int64, error) {
	result := a.db.WithContext(ctx).Unscoped().Where("ended_at < ?", before).Delete(&models.MatchResult{})
	return result.RowsAffected, result.Error
}

// RedisArchive keeps a capped list of recent results for the lobby.
type RedisArchive struct {
	rdb  *redis.Client
	key  string
	keep int
}

func NewRedisArchive(rdb *redis.Client, keep int) *RedisArchive {
	if keep <= 0 {
		keep = 50
	}
	return &RedisArchive{rdb: rdb, key: ResultsKey, keep: keep}
}

func (a *RedisArchive) Save(ctx context.Context, res *models.MatchResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	pipe := a.rdb.TxPipeline()
	pipe.LPush(ctx, a.key, b)
	pipe.LTrim(ctx, a.key, 0, int64(a.keep-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (a *RedisArchive) Recent(ctx context.Context, n int) ([]models.MatchResult, error) {
	if n <= 0 || n > a.keep {
		n = a.keep
	}
	raw, err := a.rdb.LRange(ctx, a.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.MatchResult, 0, len(raw))
	for _, s := range raw {
		var res models.MatchResult
		if err := json.Unmarshal([]byte(s), &res); err != nil {
			return nil, fmt.Errorf("decode %s entry: %w", a.key, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// Multi fans a result out to several archives. Every archive is tried; the
// errors are joined.
type Multi struct {
	savers []Saver
	log    *zap.Logger
}

func NewMulti(logger *zap.Logger, savers ...Saver) *Multi {
	return &Multi{savers: savers, log: logger}
}

func (m *Multi) Len() int { return len(m.savers) }

func (m *Multi) Save(ctx context.Context, res *models.MatchResult) error {
	var errs []error
	for _, s := range m.savers {
		if err := s.Save(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		m.log.Info("Match result archived", zap.String("roomID", res.RoomID), zap.String("winner", res.Winner))
	}
	return errors.Join(errs...)
}
