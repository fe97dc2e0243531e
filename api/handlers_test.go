package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/newsbi/core"
	"github.com/rushteam/newsbi/popularity"
	"github.com/rushteam/newsbi/recommend"
	"github.com/rushteam/newsbi/stats"
	"github.com/rushteam/newsbi/store"
)

type fakeMeta struct {
	attrs map[string]core.NewsAttributes
	news  map[string]core.News
}

func (f *fakeMeta) BatchAttributes(ctx context.Context, ids []string) (map[string]core.NewsAttributes, error) {
	out := make(map[string]core.NewsAttributes)
	for _, id := range ids {
		if a, ok := f.attrs[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (f *fakeMeta) FindByIDs(ctx context.Context, ids []string) (map[string]core.News, error) {
	out := make(map[string]core.News)
	for _, id := range ids {
		if n, ok := f.news[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (f *fakeMeta) DistinctCategories(ctx context.Context) ([]string, error) {
	return []string{"sports", "tech"}, nil
}

var testWindow = core.DataWindow{
	Min: time.Date(2019, time.June, 13, 0, 0, 0, 0, time.UTC),
	Max: time.Date(2019, time.July, 12, 0, 0, 0, 0, time.UTC),
}

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	day := time.Date(2019, time.June, 13, 0, 0, 0, 0, time.UTC)
	mem.SeedRanking(core.DailyRankKey(day), "N1", 50)
	mem.SeedRanking(core.DailyRankKey(day), "N2", 30)
	mem.SeedRanking(core.CategoryDailyRankKey("sports", testWindow.Max), "N1", 100)
	mem.SeedInterest(core.InterestKey("U1"), map[string]float64{"sports": 0.9})

	meta := &fakeMeta{
		attrs: map[string]core.NewsAttributes{
			"N1": {NewsID: "N1", Category: "sports", HeadlineLength: 40, BodyLength: 2000},
			"N2": {NewsID: "N2", Category: "tech", HeadlineLength: 80, BodyLength: 5000},
		},
		news: map[string]core.News{
			"N1": {ID: "N1", Headline: "h1", Category: "sports"},
		},
	}

	return &Server{
		Stats:       stats.NewPlanner(mem, mem, meta, testWindow),
		Recommender: recommend.NewRecommender(mem, mem, meta, testWindow),
		Popularity:  popularity.NewService(mem, nil, meta, testWindow),
		Interests:   mem,
		Logger:      zerolog.Nop(),
	}, mem
}

func get(t *testing.T, srv *Server, target string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestStatisticsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, env := get(t, srv, "/news/statistics?startDate=2019-06-13&endDate=2019-06-13")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, env.Code)
	assert.Equal(t, "success", env.Message)
	assert.NotZero(t, env.Timestamp)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object")
	assert.EqualValues(t, 80, data["totalClicks"])
	assert.EqualValues(t, 2, data["totalNews"])
}

func TestStatisticsInvalidDateRejectedBeforeStore(t *testing.T) {
	// 存储全空：格式错误必须在任何存储访问之前被拒绝，否则这里会 panic
	srv := &Server{
		Stats:  stats.NewPlanner(nil, nil, nil, testWindow),
		Logger: zerolog.Nop(),
	}
	rec, env := get(t, srv, "/news/statistics?startDate=2019-13-40")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusBadRequest, env.Code)
	assert.Nil(t, env.Data)
	assert.Contains(t, env.Message, "2019-13-40")
}

func TestRecommendationsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, env := get(t, srv, "/news/users/U1/recommendations?timestamp=2019-07-12+10:00:00&topN=2")

	assert.Equal(t, http.StatusOK, rec.Code)
	items, ok := env.Data.([]interface{})
	require.True(t, ok, "data should be a list")
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "N1", first["newsId"])
	assert.Equal(t, "h1", first["headline"])
}

func TestRecommendationsTimestampRequired(t *testing.T) {
	// 存储全空：timestamp 校验必须发生在任何存储访问之前，否则这里会 panic
	srv := &Server{Logger: zerolog.Nop()}

	rec, env := get(t, srv, "/news/users/U1/recommendations?timestamp=2019-13-40&topN=2")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusBadRequest, env.Code)
	assert.Nil(t, env.Data)
	assert.Contains(t, env.Message, "2019-13-40")

	// 缺失与格式错误同样拒绝
	rec, _ = get(t, srv, "/news/users/U1/recommendations")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 日期格式不是合法的时间戳格式
	rec, _ = get(t, srv, "/news/users/U1/recommendations?timestamp=2019-07-12")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendationsEmptyProfile(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, env := get(t, srv, "/news/users/stranger/recommendations?timestamp=2019-07-12+10:00:00")

	// 空画像是正常业务态：200 + 空列表
	assert.Equal(t, http.StatusOK, rec.Code)
	items, ok := env.Data.([]interface{})
	require.True(t, ok)
	assert.Empty(t, items)
}

func TestTopRankedEndpoint(t *testing.T) {
	srv, mem := newTestServer(t)
	mem.SeedRanking(core.DailyRankKey(testWindow.Max), "N1", 100)
	mem.SeedRanking(core.DailyRankKey(testWindow.Max), "N2", 90)

	rec, env := get(t, srv, "/news/recommend/rank?period=daily&date=20190712&limit=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	items, ok := env.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "N1", items[0].(map[string]interface{})["newsId"])

	// date 是榜单 key 的紧凑格式（yyyyMMdd），带连字符拒绝
	rec, _ = get(t, srv, "/news/recommend/rank?date=2019-07-12")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryPopularityInvalidInterval(t *testing.T) {
	srv := &Server{Logger: zerolog.Nop()}
	rec, _ := get(t, srv, "/news/categories/popularity?interval=month")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemPopularityInvalidParams(t *testing.T) {
	srv := &Server{Logger: zerolog.Nop()}

	rec, _ := get(t, srv, "/news/N1/popularity?startDate=not-a-date")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = get(t, srv, "/news/N1/popularity?interval=month")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterestsEndpoint(t *testing.T) {
	srv, mem := newTestServer(t)
	mem.SeedInterest(core.InterestSnapshotKey("U1", testWindow.Min),
		map[string]float64{"sports": 0.2})

	rec, env := get(t, srv, "/users/U1/interests")
	assert.Equal(t, http.StatusOK, rec.Code)
	profile, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 0.9, profile["sports"])

	// date 给出时读历史快照
	rec, env = get(t, srv, "/users/U1/interests?date=2019-06-13")
	assert.Equal(t, http.StatusOK, rec.Code)
	profile, ok = env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 0.2, profile["sports"])
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news/statistics", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	// 调用方已带 ID 时透传
	req := httptest.NewRequest(http.MethodGet, "/news/statistics", nil)
	req.Header.Set("X-Request-Id", "trace-123")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Request-Id"))
}
