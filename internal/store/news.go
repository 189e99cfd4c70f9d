package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"starrail-backend/internal/db"
	"starrail-backend/internal/news"

	otelcodes "go.opentelemetry.io/otel/codes"
)

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func toArticle(row db.NewsArticle) (news.Article, error) {
	var banner []string
	err := json.Unmarshal([]byte(row.Banner), &banner)
	if err != nil {
		return news.Article{}, fmt.Errorf("decode banner of %s: %w", row.ID, err)
	}
	return news.Article{
		ID:          row.ID,
		Lang:        row.Lang,
		Type:        news.Type(row.Type),
		Title:       row.Title,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		StartAt:     row.StartAt.Int64,
		EndAt:       row.EndAt.Int64,
		Banner:      banner,
		URL:         row.Url,
	}, nil
}

// UpsertArticles stores the given articles in a single transaction and
// returns how many of them were new.
func (s Store) UpsertArticles(ctx context.Context, articles []news.Article) (int, error) {
	ctx, span := tracer.Start(ctx, "UpsertArticles")
	defer span.End()

	txqry, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to begin transaction")
		return 0, err
	}
	defer discard()

	inserted := 0
	for _, a := range articles {
		exists, err := txqry.NewsArticleExists(ctx, db.NewsArticleExistsParams{
			ID:   a.ID,
			Lang: a.Lang,
		})
		if err != nil {
			return 0, err
		}
		banner, err := json.Marshal(a.Banner)
		if err != nil {
			return 0, err
		}
		err = txqry.UpsertNewsArticle(ctx, db.UpsertNewsArticleParams{
			ID:          a.ID,
			Lang:        a.Lang,
			Type:        string(a.Type),
			Title:       a.Title,
			Description: a.Description,
			CreatedAt:   a.CreatedAt,
			StartAt:     nullInt(a.StartAt),
			EndAt:       nullInt(a.EndAt),
			Banner:      string(banner),
			Url:         a.URL,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, "failed to upsert article")
			return 0, fmt.Errorf("upsert %s/%s: %w", a.Lang, a.ID, err)
		}
		if exists == 0 {
			inserted++
		}
	}

	err = commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to commit transaction")
		return 0, err
	}
	return inserted, nil
}

// ListArticles returns the newest articles of a type in a language.
func (s Store) ListArticles(ctx context.Context, typ news.Type, lang string, limit int64) ([]news.Article, error) {
	rows, err := s.qry.ListNewsArticles(ctx, db.ListNewsArticlesParams{
		Type:  string(typ),
		Lang:  lang,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]news.Article, 0, len(rows))
	for _, r := range rows {
		a, err := toArticle(r)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

var _ news.StoreAPI = Store{}
