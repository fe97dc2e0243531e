// newsbi 是新闻点击数据集的只读 BI 服务：热度榜单、点击统计与个性化推荐。
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rushteam/newsbi/api"
	"github.com/rushteam/newsbi/config"
	"github.com/rushteam/newsbi/core"
	"github.com/rushteam/newsbi/feast"
	"github.com/rushteam/newsbi/newsdb"
	"github.com/rushteam/newsbi/pkg/logging"
	"github.com/rushteam/newsbi/popularity"
	"github.com/rushteam/newsbi/recommend"
	"github.com/rushteam/newsbi/stats"
	"github.com/rushteam/newsbi/store"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（缺省读 NEWSBI_CONFIG）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logging.New("error", true)
		fallback.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Console)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	redisStore, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("connect redis")
	}
	defer redisStore.Close()

	var interests core.InterestStore = redisStore
	if cfg.Interests.Source == "feast" {
		interests, err = feast.NewInterestStore(cfg.Interests.Feast.Host, cfg.Interests.Feast.Port,
			cfg.Interests.Feast.Project, cfg.Interests.Feast.Features)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect feast")
		}
		logger.Info().Str("host", cfg.Interests.Feast.Host).Msg("interest profiles served by feast")
	}

	minDate, maxDate := cfg.Window()
	window := core.DataWindow{Min: minDate, Max: maxDate}

	newsRepo := newsdb.NewNewsRepository(pool)
	clickRepo := newsdb.NewClickLogRepository(pool)

	srv := &api.Server{
		News:           newsRepo,
		Clicks:         clickRepo,
		Stats:          stats.NewPlanner(redisStore, redisStore, newsRepo, window),
		Popularity:     popularity.NewService(redisStore, clickRepo, newsRepo, window),
		Recommender:    recommend.NewRecommender(interests, redisStore, newsRepo, window),
		Interests:      interests,
		Logger:         logger,
		RequestTimeout: cfg.Server.RequestTimeout,
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
		os.Exit(1)
	}
}
