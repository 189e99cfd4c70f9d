// Package sources scrapes community sites that list redemption codes.
package sources

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"starrail-backend/internal/codes"
	"starrail-backend/internal/components/telemetry"
	"starrail-backend/lib/restyutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("starrail.internal.sources")

const (
	report_source_fetch = "source.fetch"
	report_source_parse = "source.parse"
)

const (
	PrydwenUrl   = "https://www.prydwen.gg/star-rail/"
	Game8Url     = "https://game8.co/games/Honkai-Star-Rail/archives/410296"
	FandomUrl    = "https://honkai-star-rail.fandom.com/wiki/Redemption_Code"
	EurogamerUrl = "https://www.eurogamer.net/honkai-star-rail-codes-livestream-active-working-how-to-redeem-9321"
	PolygonUrl   = "https://www.polygon.com/honkai-star-rail-guides/23699079/code-redeem-redemption-gift-stellar-jade"
)

type parseFunc func(doc *goquery.Document) []codes.Candidate

// HtmlSource downloads a single page and extracts candidates from it.
type HtmlSource struct {
	name  string
	url   string
	parse parseFunc
	http  *resty.Client
	tel   telemetry.API
}

func newHtmlSource(name, url string, parse parseFunc, tel telemetry.API) HtmlSource {
	tel = telemetry.NewScopedAPI("sources", tel)
	client := restyutil.NewClient(restyutil.ClientOptions{
		Timeout:    time.Second * 30,
		Cloudflare: true,
		Limiter:    rate.NewLimiter(rate.Every(time.Second*2), 1),
		TracerName: "sources/" + name,
	})
	telemetry.InstrumentResty(client, tel)
	return HtmlSource{
		name:  name,
		url:   url,
		parse: parse,
		http:  client,
		tel:   tel,
	}
}

func (s HtmlSource) Name() string {
	return s.name
}

func (s HtmlSource) Fetch(ctx context.Context) []codes.Candidate {
	ctx, span := tracer.Start(ctx, "HtmlSource.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("source", s.name))

	res, err := s.http.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to fetch")
		s.tel.ReportBroken(report_source_fetch, err, s.name)
		return nil
	}
	if res.StatusCode() != 200 {
		err := fmt.Errorf("http status %d", res.StatusCode())
		span.SetStatus(otelcodes.Error, err.Error())
		s.tel.ReportBroken(report_source_fetch, err, s.name)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to parse html")
		s.tel.ReportBroken(report_source_parse, err, s.name)
		return nil
	}

	result := s.parse(doc)
	if len(result) == 0 {
		s.tel.ReportWarning(report_source_parse, "no codes found, the page layout may have changed", s.name)
		return nil
	}
	for i := range result {
		result[i].Source = s.name
	}
	span.SetAttributes(attribute.Int("candidates", len(result)))
	return result
}

var _ codes.SourceAPI = HtmlSource{}

func NewPrydwen(url string, tel telemetry.API) HtmlSource {
	if url == "" {
		url = PrydwenUrl
	}
	return newHtmlSource("Prydwen", url, parsePrydwen, tel)
}

func NewGame8(url string, tel telemetry.API) HtmlSource {
	if url == "" {
		url = Game8Url
	}
	return newHtmlSource("game8", url, parseGame8, tel)
}

func NewFandom(url string, tel telemetry.API) HtmlSource {
	if url == "" {
		url = FandomUrl
	}
	return newHtmlSource("star-rail-fandom", url, parseFandom, tel)
}

func NewEurogamer(url string, tel telemetry.API) HtmlSource {
	if url == "" {
		url = EurogamerUrl
	}
	return newHtmlSource("Eurogamer", url, parseEurogamer, tel)
}

func NewPolygon(url string, tel telemetry.API) HtmlSource {
	if url == "" {
		url = PolygonUrl
	}
	return newHtmlSource("Polygon", url, parsePolygon, tel)
}

// Defaults returns every html source pointed at its live page.
func Defaults(tel telemetry.API) []codes.SourceAPI {
	return []codes.SourceAPI{
		NewGame8("", tel),
		NewFandom("", tel),
		NewPolygon("", tel),
		NewEurogamer("", tel),
		NewPrydwen("", tel),
	}
}
