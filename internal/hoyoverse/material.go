package hoyoverse

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	report_material_fetch = "material.fetch"
)

// rewardIcons maps the hash found in a reward's icon url to the reward name.
var rewardIcons = map[string]string{
	"77cb5426637574ba524ac458fa963da0_6409817950389238658": "Stellar Jade",
	"7cb0e487e051f177d3f41de8d4bbc521_2556290033227986328": "Refined Aether",
	"508229a94e4fa459651f64c1cd02687a_6307505132287490837": "Traveler's Guide",
	"0b12bdf76fa4abc6b4d1fdfc0fb4d6f5_4521150989210768295": "Credit",
}

func rewardName(iconUrl string) string {
	for hash, name := range rewardIcons {
		if strings.Contains(iconUrl, hash) {
			return name
		}
	}
	return "Unknown"
}

type materialResponse struct {
	Retcode int    `json:"retcode"`
	Message string `json:"message"`
	Data    *struct {
		Modules []struct {
			ExchangeGroup *struct {
				Bonuses []struct {
					ExchangeCode string `json:"exchange_code"`
					CodeStatus   string `json:"code_status"`
					IconBonuses  []struct {
						BonusNum flexInt `json:"bonus_num"`
						IconUrl  string  `json:"icon_url"`
					} `json:"icon_bonuses"`
				} `json:"bonuses"`
			} `json:"exchange_group"`
		} `json:"modules"`
	} `json:"data"`
}

// MaterialSource reads the codes listed in the HoYoLAB guide material widget.
type MaterialSource struct {
	http *resty.Client
	tel  telemetry.API
}

// NewMaterialSource creates the source, an empty baseUrl means DefaultBbsBaseUrl.
func NewMaterialSource(baseUrl string, tel telemetry.API) MaterialSource {
	if baseUrl == "" {
		baseUrl = DefaultBbsBaseUrl
	}
	tel = telemetry.NewScopedAPI("hoyoverse", tel)
	client := newClient(baseUrl, "hoyoverse/material", tel)
	client.SetHeaders(map[string]string{
		"x-rpc-app_version": "2.42.0",
		"x-rpc-client_type": "4",
	})
	return MaterialSource{http: client, tel: tel}
}

func (s MaterialSource) Name() string {
	return "Hoyolab"
}

func (s MaterialSource) Fetch(ctx context.Context) []codes.Candidate {
	ctx, span := tracer.Start(ctx, "MaterialSource.Fetch")
	defer span.End()

	var body materialResponse
	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("game_id", strconv.Itoa(GameID)).
		SetResult(&body).
		Get("/community/painter/wapi/circle/channel/guide/material")
	if err != nil {
		s.tel.ReportBroken(report_material_fetch, err)
		return nil
	}
	if res.IsError() {
		s.tel.ReportBroken(report_material_fetch, fmt.Errorf("http status %d", res.StatusCode()))
		return nil
	}
	if body.Retcode != 0 {
		s.tel.ReportWarning(report_material_fetch, fmt.Errorf("retcode %d: %s", body.Retcode, body.Message))
		return nil
	}
	if body.Data == nil {
		s.tel.ReportDebug("no guide material data")
		return nil
	}

	var out []codes.Candidate
	for _, module := range body.Data.Modules {
		if module.ExchangeGroup == nil {
			continue
		}
		for _, bonus := range module.ExchangeGroup.Bonuses {
			if bonus.CodeStatus != "ON" {
				continue
			}
			var rewards []string
			for _, icon := range bonus.IconBonuses {
				rewards = append(rewards, fmt.Sprintf("%d %s", icon.BonusNum, rewardName(icon.IconUrl)))
			}
			if len(rewards) == 0 {
				continue
			}
			out = append(out, codes.Candidate{
				Code:    bonus.ExchangeCode,
				Rewards: rewards,
				Source:  s.Name(),
			})
		}
		// only the first exchange group is used
		break
	}
	return out
}

var _ codes.SourceAPI = MaterialSource{}
