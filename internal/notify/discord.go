package notify

import (
	"context"
	"fmt"
	"time"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/chrono"
	"starrail-backend/internal/components/telemetry"
	"starrail-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	otelcodes "go.opentelemetry.io/otel/codes"
)

const (
	embedColor = 0xBB0BB5
	username   = "Honkai: Star Rail"
	avatarUrl  = "https://i.imgur.com/o0hyhmw.png"
)

// DeliveryError is returned when the receiving end answered with a non 2xx status.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver notification: http status %d: %s", e.StatusCode, e.Body)
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordEmbed struct {
	Color       int           `json:"color"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Timestamp   string        `json:"timestamp"`
	Footer      discordFooter `json:"footer"`
}

type discordMessage struct {
	Embeds    []discordEmbed `json:"embeds"`
	Username  string         `json:"username"`
	AvatarUrl string         `json:"avatar_url"`
}

// Discord posts an embed to a webhook.
type Discord struct {
	http    *resty.Client
	webhook string
	time    chrono.API
}

func NewDiscord(webhook string, clock chrono.API, tel telemetry.API) Discord {
	client := restyutil.NewClient(restyutil.ClientOptions{
		Timeout:    time.Second * 15,
		TracerName: "notify/discord",
	})
	telemetry.InstrumentResty(client, telemetry.NewScopedAPI("notify", tel))
	return Discord{
		http:    client,
		webhook: webhook,
		time:    clock,
	}
}

func (d Discord) Send(ctx context.Context, rec codes.CodeRecord) error {
	ctx, span := tracer.Start(ctx, "Discord.Send")
	defer span.End()

	res, err := d.http.R().
		SetContext(ctx).
		SetQueryParam("wait", "true").
		SetBody(discordMessage{
			Embeds: []discordEmbed{{
				Color:       embedColor,
				Title:       title,
				Description: describe(rec),
				Timestamp:   d.time.Now().UTC().Format(time.RFC3339),
				Footer:      discordFooter{Text: title},
			}},
			Username:  username,
			AvatarUrl: avatarUrl,
		}).
		Post(d.webhook)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to send webhook")
		return err
	}
	if !res.IsSuccess() {
		err := DeliveryError{StatusCode: res.StatusCode(), Body: res.String()}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}
	return nil
}

var _ codes.NotifyAPI = Discord{}
