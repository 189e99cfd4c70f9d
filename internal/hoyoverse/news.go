package hoyoverse

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"starrail-backend/internal/components/telemetry"
	"starrail-backend/internal/news"

	"github.com/go-resty/resty/v2"
)

const articleBaseUrl = "https://www.hoyolab.com/article/"

type eventListResponse struct {
	Retcode int    `json:"retcode"`
	Message string `json:"message"`
	Data    *struct {
		List []struct {
			ID        flexString `json:"id"`
			Name      string     `json:"name"`
			Desc      string     `json:"desc"`
			CreateAt  flexInt    `json:"create_at"`
			Start     flexInt    `json:"start"`
			End       flexInt    `json:"end"`
			BannerUrl string     `json:"banner_url"`
		} `json:"list"`
	} `json:"data"`
}

type newsListResponse struct {
	Retcode int    `json:"retcode"`
	Message string `json:"message"`
	Data    *struct {
		List []struct {
			Post struct {
				PostID    flexString `json:"post_id"`
				Subject   string     `json:"subject"`
				Content   string     `json:"content"`
				CreatedAt flexInt    `json:"created_at"`
			} `json:"post"`
			ImageList []struct {
				Url string `json:"url"`
			} `json:"image_list"`
		} `json:"list"`
	} `json:"data"`
}

// NewsClient fetches the localized HoYoLAB news feed.
type NewsClient struct {
	http *resty.Client
}

// NewNewsClient creates the client, an empty baseUrl means DefaultBbsBaseUrl.
func NewNewsClient(baseUrl string, tel telemetry.API) NewsClient {
	if baseUrl == "" {
		baseUrl = DefaultBbsBaseUrl
	}
	client := newClient(baseUrl, "hoyoverse/news", telemetry.NewScopedAPI("hoyoverse", tel))
	client.SetHeaders(map[string]string{
		"x-rpc-app_version": "2.42.0",
		"x-rpc-client_type": "4",
	})
	return NewsClient{http: client}
}

func (c NewsClient) get(ctx context.Context, lang, path string, params map[string]string, result any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-rpc-language", lang).
		SetQueryParams(params).
		SetResult(result).
		Get(path)
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("%s: http status %d", path, res.StatusCode())
	}
	return nil
}

func (c NewsClient) events(ctx context.Context, lang string) ([]news.Article, error) {
	var body eventListResponse
	err := c.get(ctx, lang, "/community/community_contribution/wapi/event/list", map[string]string{
		"page_size": "15",
		"size":      "15",
		"gids":      strconv.Itoa(GameID),
	}, &body)
	if err != nil {
		return nil, err
	}
	if body.Data == nil {
		return nil, fmt.Errorf("events: retcode %d: %s", body.Retcode, body.Message)
	}

	out := make([]news.Article, 0, len(body.Data.List))
	for _, item := range body.Data.List {
		var banner []string
		if item.BannerUrl != "" {
			banner = []string{item.BannerUrl}
		}
		out = append(out, news.Article{
			ID:          string(item.ID),
			Lang:        lang,
			Type:        news.TypeEvent,
			Title:       item.Name,
			Description: item.Desc,
			CreatedAt:   int64(item.CreateAt),
			StartAt:     int64(item.Start),
			EndAt:       int64(item.End),
			Banner:      banner,
			URL:         articleBaseUrl + string(item.ID),
		})
	}
	return out, nil
}

func (c NewsClient) posts(ctx context.Context, lang string, typ news.Type) ([]news.Article, error) {
	listType := "1"
	if typ == news.TypeInfo {
		listType = "3"
	}

	var body newsListResponse
	err := c.get(ctx, lang, "/community/post/wapi/getNewsList", map[string]string{
		"gids":      strconv.Itoa(GameID),
		"page_size": "15",
		"type":      listType,
	}, &body)
	if err != nil {
		return nil, err
	}
	if body.Data == nil {
		return nil, fmt.Errorf("%s: retcode %d: %s", typ, body.Retcode, body.Message)
	}

	out := make([]news.Article, 0, len(body.Data.List))
	for _, item := range body.Data.List {
		var banner []string
		for _, img := range item.ImageList {
			banner = append(banner, img.Url)
		}
		out = append(out, news.Article{
			ID:          string(item.Post.PostID),
			Lang:        lang,
			Type:        typ,
			Title:       item.Post.Subject,
			Description: item.Post.Content,
			CreatedAt:   int64(item.Post.CreatedAt),
			Banner:      banner,
			URL:         articleBaseUrl + string(item.Post.PostID),
		})
	}
	return out, nil
}

// FetchNews fetches events, notices and info of a language concurrently, if
// any of them fails nothing is returned.
func (c NewsClient) FetchNews(ctx context.Context, lang string) ([]news.Article, error) {
	ctx, span := tracer.Start(ctx, "FetchNews")
	defer span.End()

	fetchers := []func(context.Context, string) ([]news.Article, error){
		c.events,
		func(ctx context.Context, lang string) ([]news.Article, error) {
			return c.posts(ctx, lang, news.TypeNotice)
		},
		func(ctx context.Context, lang string) ([]news.Article, error) {
			return c.posts(ctx, lang, news.TypeInfo)
		},
	}

	results := make([][]news.Article, len(fetchers))
	errs := make([]error, len(fetchers))
	wg := sync.WaitGroup{}
	for i, fetch := range fetchers {
		wg.Add(1)
		go func(i int, fetch func(context.Context, string) ([]news.Article, error)) {
			defer wg.Done()
			results[i], errs[i] = fetch(ctx, lang)
		}(i, fetch)
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var out []news.Article
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

var _ news.FetchAPI = NewsClient{}
