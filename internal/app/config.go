package app

import (
	"starrail-backend/internal/hoyoverse"
	"starrail-backend/internal/jobs"
	"starrail-backend/internal/notify"
	"starrail-backend/lib/sqliteutil"
)

type DiscordConfig struct {
	Webhook string `json:"webhook"`
}

type EmailConfig struct {
	Smtp notify.SmtpConfig `json:"smtp"`
	// To are the recipients, e-mail notifications are disabled when empty.
	To []string `json:"to"`
}

type CodesConfig struct {
	// LowPriority overrides the sources that lose ties between duplicate codes.
	LowPriority []string `json:"low_priority"`
	// Pinned overrides the codes that are never revalidated.
	Pinned                 []string `json:"pinned"`
	RedeemBackoffSeconds   int      `json:"redeem_backoff_seconds"`
	ValidateBackoffSeconds int      `json:"validate_backoff_seconds"`
}

type NewsConfig struct {
	// Languages defaults to every supported language.
	Languages []string `json:"languages"`
}

type HttpConfig struct {
	Host              string   `json:"host"`
	Port              int      `json:"port"`
	RateLimit         int      `json:"rate_limit"`
	RateWindowSeconds int      `json:"rate_window_seconds"`
	AllowedOrigins    []string `json:"allowed_origins"`
}

type Config struct {
	// Timezone is the IANA zone cron specs are evaluated in, defaults to UTC.
	Timezone string            `json:"timezone"`
	Database sqliteutil.Config `json:"database"`
	Hoyolab  hoyoverse.Account `json:"hoyolab"`
	Discord  DiscordConfig     `json:"discord"`
	Email    EmailConfig       `json:"email"`
	Codes    CodesConfig       `json:"codes"`
	News     NewsConfig        `json:"news"`
	Schedule jobs.Schedule     `json:"schedule"`
	Http     HttpConfig        `json:"http"`
}
