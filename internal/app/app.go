// Package app builds every component of the service from a Config.
package app

import (
	"database/sql"
	"fmt"
	"time"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/chrono"
	"starrail-backend/internal/components/telemetry"
	"starrail-backend/internal/db"
	"starrail-backend/internal/hoyoverse"
	"starrail-backend/internal/jobs"
	"starrail-backend/internal/news"
	"starrail-backend/internal/notify"
	"starrail-backend/internal/sources"
	"starrail-backend/internal/store"
)

type App struct {
	DB         *sql.DB
	Store      store.Store
	Time       chrono.StandardImpl
	Tel        telemetry.API
	Sources    []codes.SourceAPI
	Aggregator codes.Aggregator
	Redeemer   codes.Redeemer
	Validator  codes.Validator
	Poller     news.Poller
	Scheduler  *jobs.Scheduler
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Sources returns every code source in the order their reports are merged.
func Sources(tel telemetry.API) []codes.SourceAPI {
	return append(
		sources.Defaults(tel),
		hoyoverse.NewMaterialSource("", tel),
		hoyoverse.NewForumSource("", tel),
	)
}

// Notifier combines every configured sink, nil when none is configured.
func Notifier(cfg Config, clock chrono.API, tel telemetry.API) codes.NotifyAPI {
	var sinks notify.Multi
	if cfg.Discord.Webhook != "" {
		sinks = append(sinks, notify.NewDiscord(cfg.Discord.Webhook, clock, tel))
	}
	if len(cfg.Email.To) > 0 {
		sinks = append(sinks, notify.NewEmail(cfg.Email.Smtp, cfg.Email.To))
	}
	if len(sinks) == 0 {
		return nil
	}
	return sinks
}

func New(cfg Config, tel telemetry.API) (App, error) {
	clock, err := chrono.NewStandardImpl(cfg.Timezone)
	if err != nil {
		return App{}, fmt.Errorf("load timezone: %w", err)
	}

	database, err := cfg.Database.OpenDB(db.Schema)
	if err != nil {
		return App{}, err
	}
	st := store.NewStore(database)

	client := hoyoverse.NewRedeemClient(hoyoverse.RedeemClientOptions{
		Account: cfg.Hoyolab,
	}, clock, tel)
	sleep := chrono.StandardSleep{}
	srcs := Sources(tel)

	aggregator := codes.NewAggregator(srcs, st, clock, tel, codes.AggregatorOptions{
		LowPriority: cfg.Codes.LowPriority,
	})
	redeemer := codes.NewRedeemer(client, Notifier(cfg, clock, tel), sleep, tel, codes.RedeemerOptions{
		Backoff: seconds(cfg.Codes.RedeemBackoffSeconds),
	})
	validator := codes.NewValidator(client, st, sleep, tel, codes.ValidatorOptions{
		Backoff: seconds(cfg.Codes.ValidateBackoffSeconds),
		Pinned:  cfg.Codes.Pinned,
	})
	poller := news.NewPoller(hoyoverse.NewNewsClient("", tel), st, tel, cfg.News.Languages)

	scheduler := jobs.NewScheduler(jobs.Dependencies{
		Discover: aggregator,
		Redeem:   redeemer,
		Validate: validator,
		News:     poller,
		ErrorLog: st,
		Time:     clock,
		Tel:      tel,
	})

	return App{
		DB:         database,
		Store:      st,
		Time:       clock,
		Tel:        tel,
		Sources:    srcs,
		Aggregator: aggregator,
		Redeemer:   redeemer,
		Validator:  validator,
		Poller:     poller,
		Scheduler:  scheduler,
	}, nil
}

func (a App) Close() error {
	return a.DB.Close()
}
