package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rushteam/newsbi/core"
	"github.com/rushteam/newsbi/newsdb"
	"github.com/rushteam/newsbi/popularity"
	"github.com/rushteam/newsbi/stats"
)

// handleNewsList GET /news
// 查询参数：category、topic、search、page、pageSize、sortAsc。
func (s *Server) handleNewsList(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()

	res, err := s.News.Search(r.Context(), newsdb.SearchParams{
		Category:   q.Get("category"),
		Topic:      q.Get("topic"),
		SearchText: q.Get("search"),
		Page:       queryInt(q.Get("page"), 0),
		PageSize:   queryInt(q.Get("pageSize"), 0),
		SortAsc:    queryBool(q.Get("sortAsc")),
	})
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	writeOK(w, res, started)
}

// handleNewsDetail GET /news/{newsID}
func (s *Server) handleNewsDetail(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	n, err := s.News.Detail(r.Context(), chi.URLParam(r, "newsID"))
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	writeOK(w, n, started)
}

// handleItemPopularity GET /news/{newsID}/popularity
// 查询参数：startDate、endDate（yyyy-MM-dd）、interval（day|hour，默认
// day；hour 额外附带点击日志聚合的逐小时曲线）。
// 日期格式错误在任何存储访问之前返回 400。
func (s *Server) handleItemPopularity(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()

	start, err := queryDate(q.Get("startDate"))
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	end, err := queryDate(q.Get("endDate"))
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	withHours, err := queryInterval(q.Get("interval"))
	if err != nil {
		writeError(w, r, err, started)
		return
	}

	res, err := s.Popularity.ItemPopularity(r.Context(), chi.URLParam(r, "newsID"),
		start, end, withHours)
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	writeOK(w, res, started)
}

// handleCategoryPopularity GET /news/categories/popularity
// 查询参数：categories（逗号分隔，空取全部）、startDate、endDate、
// interval（day|hour，默认 day）。
func (s *Server) handleCategoryPopularity(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()

	start, err := queryDate(q.Get("startDate"))
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	end, err := queryDate(q.Get("endDate"))
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	withHours, err := queryInterval(q.Get("interval"))
	if err != nil {
		writeError(w, r, err, started)
		return
	}

	res, err := s.Popularity.CategoryPopularity(r.Context(),
		splitList(q.Get("categories")), start, end, withHours)
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	writeOK(w, res, started)
}

// handleStatistics GET /news/statistics
// 查询参数：category、topic、titleLengthMin/Max、contentLengthMin/Max、
// userId、userIds（逗号分隔，与 userId 合并）、like、dislike、
// startDate、endDate、page、pageSize、expr（CEL 属性谓词）。
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()

	userIDs := splitList(q.Get("userIds"))
	if id := q.Get("userId"); id != "" {
		userIDs = append(userIDs, id)
	}

	f := &stats.Filters{
		Category:         q.Get("category"),
		Topic:            q.Get("topic"),
		TitleLengthMin:   queryInt64Ptr(q.Get("titleLengthMin")),
		TitleLengthMax:   queryInt64Ptr(q.Get("titleLengthMax")),
		ContentLengthMin: queryInt64Ptr(q.Get("contentLengthMin")),
		ContentLengthMax: queryInt64Ptr(q.Get("contentLengthMax")),
		UserIDs:          userIDs,
		Like:             queryBool(q.Get("like")),
		Dislike:          queryBool(q.Get("dislike")),
		StartDate:        q.Get("startDate"),
		EndDate:          q.Get("endDate"),
		Page:             queryInt(q.Get("page"), 0),
		PageSize:         queryInt(q.Get("pageSize"), 0),
		Expr:             q.Get("expr"),
	}

	res, err := s.Stats.Query(r.Context(), f)
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	writeOK(w, res, started)
}

// handleRecommendations GET /news/users/{userID}/recommendations
// 查询参数：timestamp（必填，yyyy-MM-dd HH:mm:ss，推荐基准时刻）、
// topN（默认 20）。timestamp 缺失或格式错误在任何存储访问之前返回 400。
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()

	asOf, err := core.ParseTimestamp(core.ModuleRecommend, q.Get("timestamp"))
	if err != nil {
		writeError(w, r, err, started)
		return
	}

	items, err := s.Recommender.Recommend(r.Context(), chi.URLParam(r, "userID"),
		asOf, queryInt(q.Get("topN"), 0))
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	writeOK(w, items, started)
}

// handleTopRanked GET /news/recommend/rank
// 查询参数：period（daily|weekly|all，默认 daily）、date（yyyyMMdd，
// 榜单 key 的紧凑日期格式）、limit（默认 10）。
func (s *Server) handleTopRanked(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()

	var asOf time.Time
	if d := q.Get("date"); d != "" {
		var err error
		if asOf, err = core.ParseDay(core.ModuleRanking, d); err != nil {
			writeError(w, r, err, started)
			return
		}
	}
	period := popularity.Period(q.Get("period"))
	if period == "" {
		period = popularity.PeriodDaily
	}

	res, err := s.Popularity.TopRanked(r.Context(), period, asOf, queryInt(q.Get("limit"), 0))
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	writeOK(w, res, started)
}

// browseHistoryData 是浏览历史的分页响应。
type browseHistoryData struct {
	Total   int64                `json:"total"`
	Records []newsdb.BrowseRecord `json:"records"`
}

// handleBrowseHistory GET /users/{userID}/browse-history
// 查询参数：page、pageSize。
func (s *Server) handleBrowseHistory(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	q := r.URL.Query()
	userID := chi.URLParam(r, "userID")

	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(q.Get("pageSize"), 20)
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	total, err := s.Clicks.CountByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	records, err := s.Clicks.BrowseHistory(r.Context(), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	writeOK(w, browseHistoryData{Total: total, Records: records}, started)
}

// handleInterests GET /users/{userID}/interests
// 查询参数：date（yyyy-MM-dd，给出时读当日历史快照，否则读当前画像）。
// 画像不存在时返回空对象。
func (s *Server) handleInterests(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	userID := chi.URLParam(r, "userID")

	day, err := queryDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, err, started)
		return
	}

	var profile core.InterestProfile
	if day.IsZero() {
		profile, err = s.Interests.Profile(r.Context(), userID)
	} else {
		profile, err = s.Interests.ProfileAt(r.Context(), userID, day)
	}
	if err != nil {
		writeError(w, r, err, started)
		return
	}
	writeOK(w, profile, started)
}

// queryDate 解析可选的 yyyy-MM-dd 参数；空串返回零值，格式错误返回
// INVALID_INPUT。
func queryDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return core.ParseDate(core.ModuleStats, s)
}

// queryInterval 解析 interval 参数：day（默认）按日桶，hour 额外
// 附带点击日志聚合的逐小时曲线。
func queryInterval(s string) (withHours bool, err error) {
	switch s {
	case "", "day":
		return false, nil
	case "hour":
		return true, nil
	default:
		return false, core.NewDomainError(core.ModuleStats, core.ErrorCodeInvalidInput,
			"interval must be day or hour")
	}
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func queryInt64Ptr(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryBool(s string) bool {
	v, err := strconv.ParseBool(s)
	return err == nil && v
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
