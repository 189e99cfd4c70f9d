// Package news keeps a local copy of the localized HoYoLAB news feed.
package news

import (
	"context"
	"fmt"
	"log/slog"

	"starrail-backend/internal/components/assert"
	"starrail-backend/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("starrail.internal.news")

const (
	report_poller_poll = "poller.poll"
)

type Type string

const (
	TypeEvent  Type = "event"
	TypeNotice Type = "notice"
	TypeInfo   Type = "info"
)

// ParseType accepts both the singular form and the plural used by the http routes.
func ParseType(s string) (Type, bool) {
	switch s {
	case "event", "events":
		return TypeEvent, true
	case "notice", "notices":
		return TypeNotice, true
	case "info":
		return TypeInfo, true
	}
	return "", false
}

// Article is a single news post or event in a single language. (ID, Lang)
// identifies an article.
type Article struct {
	ID          string
	Lang        string
	Type        Type
	Title       string
	Description string
	// CreatedAt, StartAt and EndAt are unix timestamps, StartAt and EndAt are
	// only set for events.
	CreatedAt int64
	StartAt   int64
	EndAt     int64
	Banner    []string
	URL       string
}

// FetchAPI retrieves the current articles of every type for a language.
//
// note: fault injection point
type FetchAPI interface {
	FetchNews(ctx context.Context, lang string) ([]Article, error)
}

// StoreAPI persists articles.
//
// note: fault injection point
type StoreAPI interface {
	// UpsertArticles returns how many of the articles were not stored before.
	UpsertArticles(ctx context.Context, articles []Article) (int, error)
}

type Poller struct {
	fetch     FetchAPI
	store     StoreAPI
	tel       telemetry.API
	languages []string
}

// NewPoller creates a Poller for the given languages, empty means all
// SupportedLanguages.
func NewPoller(fetch FetchAPI, store StoreAPI, tel telemetry.API, languages []string) Poller {
	assert.NotNil(fetch)
	assert.NotNil(store)
	assert.NotNil(tel)

	if len(languages) == 0 {
		languages = SupportedLanguages
	}
	return Poller{
		fetch:     fetch,
		store:     store,
		tel:       telemetry.NewScopedAPI("news", tel),
		languages: languages,
	}
}

type PollResult struct {
	// Inserted is the amount of new articles per language.
	Inserted map[string]int
	// Failed are the languages that could not be fetched or stored.
	Failed []string
}

// Poll fetches and stores the news of every language, a language that fails
// is reported and skipped. An error is returned only if every language failed.
func (p Poller) Poll(ctx context.Context) (PollResult, error) {
	ctx, span := tracer.Start(ctx, "Poll")
	defer span.End()

	result := PollResult{Inserted: map[string]int{}}
	var lastErr error
	for _, lang := range p.languages {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		inserted, err := p.pollLanguage(ctx, lang)
		if err != nil {
			lastErr = err
			result.Failed = append(result.Failed, lang)
			p.tel.ReportBroken(report_poller_poll, err, lang)
			continue
		}
		result.Inserted[lang] = inserted
		if inserted > 0 {
			slog.InfoContext(ctx, "inserted new news", "lang", lang, "count", inserted)
		}
	}

	span.SetAttributes(attribute.Int("failed", len(result.Failed)))
	if len(p.languages) > 0 && len(result.Failed) == len(p.languages) {
		err := fmt.Errorf("poll news: every language failed: %w", lastErr)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	return result, nil
}

func (p Poller) pollLanguage(ctx context.Context, lang string) (int, error) {
	articles, err := p.fetch.FetchNews(ctx, lang)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", lang, err)
	}
	for i := range articles {
		articles[i].Lang = lang
	}
	inserted, err := p.store.UpsertArticles(ctx, articles)
	if err != nil {
		return 0, fmt.Errorf("store %s: %w", lang, err)
	}
	return inserted, nil
}
