package hoyoverse

import (
	"context"
	"encoding/json"
	"strconv"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/chrono"
	"starrail-backend/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
)

// Account is the game account codes are redeemed on.
type Account struct {
	Uid    string `json:"uid"`
	Region string `json:"region"`
	Cookie string `json:"cookie"`
	// UserAgent is optional.
	UserAgent string `json:"user_agent"`
}

func (a Account) configured() bool {
	return a.Uid != "" && a.Region != "" && a.Cookie != ""
}

type RedeemClientOptions struct {
	// defaults to DefaultRedeemBaseUrl
	BaseUrl string
	Account Account
}

type RedeemClient struct {
	http    *resty.Client
	account Account
	time    chrono.API
}

func NewRedeemClient(opts RedeemClientOptions, clock chrono.API, tel telemetry.API) RedeemClient {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultRedeemBaseUrl
	}
	client := newClient(baseUrl, "hoyoverse/redeem", telemetry.NewScopedAPI("hoyoverse", tel))
	if opts.Account.UserAgent != "" {
		client.SetHeader("user-agent", opts.Account.UserAgent)
	}
	return RedeemClient{
		http:    client,
		account: opts.Account,
		time:    clock,
	}
}

func (c RedeemClient) HasAccount() bool {
	return c.account.configured()
}

type redeemResponse struct {
	Retcode *int   `json:"retcode"`
	Message string `json:"message"`
}

// Redeem submits a code for the configured account. An error is only returned
// when no http response was received, a response without a json retcode is
// marked as malformed.
func (c RedeemClient) Redeem(ctx context.Context, code string) (codes.ProviderResponse, error) {
	ctx, span := tracer.Start(ctx, "Redeem")
	defer span.End()

	span.SetAttributes(attribute.String("code", code))

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"cdkey":    code,
			"game_biz": "hkrpg_global",
			"lang":     "en",
			"region":   c.account.Region,
			"t":        strconv.FormatInt(c.time.Now().UnixMilli(), 10),
			"uid":      c.account.Uid,
		}).
		SetHeader("cookie", c.account.Cookie).
		Get("/common/apicdkey/api/webExchangeCdkey")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to send request")
		return codes.ProviderResponse{}, err
	}

	out := codes.ProviderResponse{HttpStatus: res.StatusCode()}
	var body redeemResponse
	err = json.Unmarshal(res.Body(), &body)
	if err != nil || body.Retcode == nil {
		out.Malformed = true
		span.AddEvent("malformed response")
	} else {
		out.Retcode = *body.Retcode
		out.Message = body.Message
	}

	span.SetAttributes(
		attribute.Int("http_status", out.HttpStatus),
		attribute.Int("retcode", out.Retcode),
		attribute.Bool("malformed", out.Malformed),
	)
	return out, nil
}

var _ codes.RedeemAPI = RedeemClient{}

// ClaimUrl is the page a player can redeem the code on manually.
func ClaimUrl(code string) string {
	return "https://hsr.hoyoverse.com/gift?code=" + code
}
