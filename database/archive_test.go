package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"raidcourt/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type recordingSaver struct {
	got []*models.MatchResult
	err error
}

func (s *recordingSaver) Save(_ context.Context, res *models.MatchResult) error {
	s.got = append(s.got, res)
	return s.err
}

func TestMultiSavesEverywhere(t *testing.T) {
	failing := &recordingSaver{err: errors.New("disk full")}
	ok := &recordingSaver{}
	m := NewMulti(zap.NewNop(), failing, ok)

	res := &models.MatchResult{RoomID: "r1", Winner: "TEAM_A"}
	err := m.Save(context.Background(), res)
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("err = %v", err)
	}
	if len(failing.got) != 1 || len(ok.got) != 1 || ok.got[0] != res {
		t.Fatalf("not every archive was tried")
	}
}

func TestMultiEmpty(t *testing.T) {
	m := NewMulti(zap.NewNop())
	if m.Len() != 0 {
		t.Fatalf("len = %d", m.Len())
	}
	if err := m.Save(context.Background(), &models.MatchResult{}); err != nil {
		t.Fatalf("err = %v", err)
	}
}

func TestRedisArchiveUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	a := NewRedisArchive(rdb, 0)
	if a.keep != 50 {
		t.Fatalf("keep = %d", a.keep)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.Save(ctx, &models.MatchResult{RoomID: "r1", EndedAt: time.Now()}); err == nil {
		t.Fatalf("save against a closed port succeeded")
	}
	if _, err := a.Recent(ctx, 10); err == nil {
		t.Fatalf("recent against a closed port succeeded")
	}
}
