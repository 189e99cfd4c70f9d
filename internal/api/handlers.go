package api

import (
	"net/http"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/news"

	"github.com/go-chi/chi/v5"
)

type indexResponse struct {
	StatusCode int      `json:"statusCode"`
	Routes     []string `json:"routes"`
}

func (s Server) index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		StatusCode: http.StatusOK,
		Routes:     []string{"code", "news"},
	})
}

type codeItem struct {
	Code    string   `json:"code"`
	Rewards []string `json:"rewards"`
}

type codesResponse struct {
	Active   []codeItem `json:"active"`
	Inactive []codeItem `json:"inactive"`
}

func toCodeItems(records []codes.CodeRecord) []codeItem {
	out := make([]codeItem, len(records))
	for i, rec := range records {
		rewards := rec.Rewards
		if rewards == nil {
			rewards = []string{}
		}
		out[i] = codeItem{Code: rec.Code, Rewards: rewards}
	}
	return out
}

func (s Server) codes(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "codes")
	defer span.End()

	active, err := s.store.ListActiveCodes(ctx)
	if err != nil {
		s.fail(w, r, "failed to fetch active codes", err)
		return
	}
	inactive, err := s.store.ListInactiveCodes(ctx)
	if err != nil {
		s.fail(w, r, "failed to fetch inactive codes", err)
		return
	}
	writeJSON(w, http.StatusOK, codesResponse{
		Active:   toCodeItems(active),
		Inactive: toCodeItems(inactive),
	})
}

type endpointsResponse struct {
	Endpoints []string `json:"endpoints"`
}

func (s Server) newsIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, endpointsResponse{
		Endpoints: []string{"news/events", "news/notices", "news/info"},
	})
}

type articleItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CreatedAt   int64    `json:"createdAt"`
	StartAt     int64    `json:"startAt,omitempty"`
	EndAt       int64    `json:"endAt,omitempty"`
	Banner      []string `json:"banner"`
	URL         string   `json:"url"`
	Lang        string   `json:"lang"`
}

func (s Server) news(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "news")
	defer span.End()

	typ, ok := news.ParseType(chi.URLParam(r, "type"))
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found", "unknown news type: "+chi.URLParam(r, "type"))
		return
	}
	lang := news.ParseLanguage(r.URL.Query().Get("lang"))

	articles, err := s.store.ListArticles(ctx, typ, lang, s.articleLimit)
	if err != nil {
		s.fail(w, r, "failed to fetch "+string(typ)+" news", err)
		return
	}

	out := make([]articleItem, len(articles))
	for i, a := range articles {
		out[i] = articleItem{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			CreatedAt:   a.CreatedAt,
			StartAt:     a.StartAt,
			EndAt:       a.EndAt,
			Banner:      a.Banner,
			URL:         a.URL,
			Lang:        a.Lang,
		}
	}
	writeJSON(w, http.StatusOK, out)
}
