package hoyoverse

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/telemetry"
	"starrail-backend/lib/textutil"

	"github.com/go-resty/resty/v2"
)

const (
	report_forum_fetch = "forum.fetch"
)

var (
	forumCodeRegex   = regexp.MustCompile(`[A-Z0-9]{12}`)
	forumRewardRegex = regexp.MustCompile(`Rewards: (.*)`)
	forumRewardSep   = regexp.MustCompile(`&|,`)
)

type forumResponse struct {
	Retcode int    `json:"retcode"`
	Message string `json:"message"`
	Data    *struct {
		Posts []struct {
			Post struct {
				PostID  string `json:"post_id"`
				Content string `json:"content"`
			} `json:"post"`
		} `json:"posts"`
	} `json:"data"`
}

// ForumSource searches HoYoLAB forum posts for redemption codes.
type ForumSource struct {
	http *resty.Client
	tel  telemetry.API
}

// NewForumSource creates the source, an empty baseUrl means DefaultBbsBaseUrl.
func NewForumSource(baseUrl string, tel telemetry.API) ForumSource {
	if baseUrl == "" {
		baseUrl = DefaultBbsBaseUrl
	}
	tel = telemetry.NewScopedAPI("hoyoverse", tel)
	client := newClient(baseUrl, "hoyoverse/forum", tel)
	client.SetHeaders(map[string]string{
		"x-rpc-app_version": "2.43.0",
		"x-rpc-client_type": "4",
	})
	return ForumSource{http: client, tel: tel}
}

func (s ForumSource) Name() string {
	return "HoyoLab Forum"
}

// parsePost extracts the first code in a post and the rewards listed after
// "Rewards:", ok is false when the post contains no code.
func parsePost(content string) (codes.Candidate, bool) {
	code := forumCodeRegex.FindString(content)
	if code == "" {
		return codes.Candidate{}, false
	}
	rewards := []string{}
	match := forumRewardRegex.FindStringSubmatch(content)
	if len(match) > 1 {
		rewards = textutil.SplitTrim(match[1], forumRewardSep)
	}
	return codes.Candidate{Code: code, Rewards: rewards}, true
}

func (s ForumSource) Fetch(ctx context.Context) []codes.Candidate {
	ctx, span := tracer.Start(ctx, "ForumSource.Fetch")
	defer span.End()

	var body forumResponse
	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"game_id":     strconv.Itoa(GameID),
			"is_all_game": "false",
			"keyword":     "redemption code",
			"page_num":    "1",
			"page_size":   "20",
		}).
		SetResult(&body).
		Get("/community/painter/wapi/search")
	if err != nil {
		s.tel.ReportBroken(report_forum_fetch, err)
		return nil
	}
	if res.IsError() {
		s.tel.ReportBroken(report_forum_fetch, fmt.Errorf("http status %d", res.StatusCode()))
		return nil
	}
	if body.Data == nil || len(body.Data.Posts) == 0 {
		s.tel.ReportWarning(report_forum_fetch, "no posts found", body.Retcode, body.Message)
		return nil
	}

	var out []codes.Candidate
	seen := map[string]struct{}{}
	for _, p := range body.Data.Posts {
		c, ok := parsePost(p.Post.Content)
		if !ok {
			continue
		}
		if _, dup := seen[c.Code]; dup {
			continue
		}
		seen[c.Code] = struct{}{}
		c.Source = s.Name()
		out = append(out, c)
	}
	s.tel.ReportDebug("found forum codes", len(out))
	return out
}

var _ codes.SourceAPI = ForumSource{}
