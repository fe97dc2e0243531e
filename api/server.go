// Package api 暴露 HTTP 查询接口：新闻列表/详情、热度、统计、推荐与
// 浏览历史。所有接口只读，响应统一包 Envelope 外壳。
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rushteam/newsbi/core"
	"github.com/rushteam/newsbi/newsdb"
	"github.com/rushteam/newsbi/popularity"
	"github.com/rushteam/newsbi/recommend"
	"github.com/rushteam/newsbi/stats"
)

// Server 聚合各查询服务并装配路由。
type Server struct {
	News        *newsdb.NewsRepository
	Clicks      *newsdb.ClickLogRepository
	Stats       *stats.Planner
	Popularity  *popularity.Service
	Recommender *recommend.Recommender
	Interests   core.InterestStore

	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// Router 装配全部路由与中间件。
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logging)
	r.Use(middleware.Recoverer)
	if s.RequestTimeout > 0 {
		r.Use(timeoutMiddleware(s.RequestTimeout))
	}

	r.Route("/news", func(r chi.Router) {
		r.Get("/", s.handleNewsList)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/recommend/rank", s.handleTopRanked)
		r.Get("/categories/popularity", s.handleCategoryPopularity)
		r.Get("/users/{userID}/recommendations", s.handleRecommendations)
		r.Get("/{newsID}", s.handleNewsDetail)
		r.Get("/{newsID}/popularity", s.handleItemPopularity)
	})
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/browse-history", s.handleBrowseHistory)
		r.Get("/interests", s.handleInterests)
	})

	return r
}

// requestID 给每个请求发一个 UUID，放进响应头与日志上下文。
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

// logging 把带 request_id 的 logger 注入请求上下文，并记录访问日志。
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(requestIDKey{}).(string)
		logger := s.Logger.With().Str("request_id", id).Logger()
		ctx := logger.WithContext(r.Context())

		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(started)).
			Msg("request")
	})
}

// timeoutMiddleware 给每个请求挂一个截止时间，下游的 Redis/Postgres
// 调用都会继承取消。
func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
