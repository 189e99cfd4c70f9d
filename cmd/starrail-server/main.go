package main

import (
	"flag"
	"time"

	"starrail-backend/internal/api"
	"starrail-backend/internal/app"
	"starrail-backend/internal/components/chrono"
	"starrail-backend/internal/components/telemetry"
	"starrail-backend/lib/configutil"
	"starrail-backend/lib/serviceutil"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	initialScrape := flag.Bool("scrape", false, "Trigger code discovery and news polling immediately on run.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[app.Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	tel := telemetry.SlogAPI{}
	a, err := app.New(cfg, tel)
	if err != nil {
		serviceutil.Fatal("init app", err)
	}
	defer a.Close()

	cron := chrono.NewStandardCron(tel, a.Time.Location())
	err = a.Scheduler.Register(ctx, cron, cfg.Schedule)
	if err != nil {
		serviceutil.Fatal("register jobs", err)
	}

	if *initialScrape {
		go func() {
			a.Scheduler.RunDiscovery(ctx)
			a.Scheduler.RunNews(ctx)
		}()
	}

	router := api.NewRouter(a.Store, tel, api.Options{
		RateLimit:      cfg.Http.RateLimit,
		RateWindow:     time.Duration(cfg.Http.RateWindowSeconds) * time.Second,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	})

	port := cfg.Http.Port
	if port == 0 {
		port = 8000
	}
	go serviceutil.StartHttpServer(ctx, cfg.Http.Host, port, router)
	<-ctx.Done()

	<-cron.Stop().Done()
}
