package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"raidcourt/config"     //環境変数と.envの読み込み
	"raidcourt/connection" //WebSocket接続とメッセージの振り分け
	"raidcourt/database"   //PostgreSQLとRedisの初期化、試合結果の保存
	"raidcourt/engine"     //試合のルールと物理演算
	"raidcourt/room"       //ルームごとのティックループとルーム管理
	"raidcourt/screens"    //ロビー用のHTTPリクエストの処理
	"raidcourt/utils"      //ロガーの初期化とCronジョブ

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err) // 設定が読めない場合はプログラム停止
	}

	logger, err := utils.InitLogger(cfg.LogLevel) // ロガーの初期化
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // ロガーのクリーンアップ

	// 非同期でPostgreSQLとRedisの初期化。どちらも設定がある場合のみ
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		if cfg.PostgresEnabled() {
			var err error
			db, err = database.InitPostgreSQL(cfg, logger)
			if err != nil {
				logger.Fatal("PostgreSQLの初期化に失敗しました", zap.Error(err))
			}
		}
		done <- true
	}()

	go func() {
		if cfg.RedisEnabled() {
			var err error
			rdb, err = database.InitRedis(cfg, logger)
			if err != nil {
				logger.Fatal("Failed to initialize Redis", zap.Error(err))
			}
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done

	// 試合結果の保存先。Redisはロビー表示用、PostgreSQLは長期保存用
	var savers []database.Saver
	var reader database.Reader
	var purger utils.ResultPurger
	if db != nil {
		gormArchive := database.NewGormArchive(db)
		savers = append(savers, gormArchive)
		reader = gormArchive
		purger = gormArchive
	}
	if rdb != nil {
		redisArchive := database.NewRedisArchive(rdb, cfg.RecentResults)
		savers = append(savers, redisArchive)
		reader = redisArchive
	}
	var archive room.Archive
	if len(savers) > 0 {
		archive = database.NewMulti(logger, savers...)
	}

	settings := engine.DefaultSettings()
	settings.IdleRoomTTL = cfg.RoomIdleTTL
	rooms := room.NewManager(room.ManagerOptions{
		Settings: settings,
		MaxRooms: cfg.MaxRooms,
		Logger:   logger,
		Archive:  archive,
	})

	// クーロンスケジューラのセットアップと呼び出し
	cleaner, err := utils.CronCleaner(rooms, utils.CronOptions{
		JanitorSchedule: cfg.JanitorSchedule,
		RoomIdleTTL:     cfg.RoomIdleTTL,
		Purger:          purger,
		PurgeSchedule:   cfg.PurgeSchedule,
		ResultRetention: cfg.ResultRetention,
	}, logger)
	if err != nil {
		logger.Fatal("Cronジョブの登録に失敗しました", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	//リクエストロガーを起動
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if cfg.CORSOrigin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.CORSOrigin}
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	//各HTTPリクエストのルーティング
	api := router.Group("/api")
	api.GET("/health", screens.Health)
	api.GET("/rooms", func(c *gin.Context) {
		screens.ListRooms(c, rooms, logger)
	})
	api.POST("/rooms", func(c *gin.Context) {
		screens.CreateRoom(c, rooms, logger)
	})
	api.GET("/results", func(c *gin.Context) {
		screens.RecentResults(c, reader, logger)
	})

	upgrader := connection.NewUpgrader(cfg.CORSOrigin)
	router.GET("/ws", func(c *gin.Context) {
		connection.HandleConnections(c.Writer, c.Request, rooms, upgrader, logger)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server running", zap.String("port", cfg.Port), zap.Int("tickRate", settings.TickRate))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to run HTTP server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	<-cleaner.Stop().Done()
	rooms.Shutdown()
	if rdb != nil {
		rdb.Close()
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
