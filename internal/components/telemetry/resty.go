package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

const maxDumpBody = 2048

var secretHeaders = map[string]struct{}{
	"Cookie":        {},
	"Set-Cookie":    {},
	"Authorization": {},
}

type instrumentResty struct {
	tel       API
	idcounter *atomic.Uint64
}

// InstrumentResty reports every request made by the client, unsuccessful
// responses are reported as warnings along with a dump of the exchange.
// Credentials are never part of a report.
func InstrumentResty(client *resty.Client, tel API) {
	i := instrumentResty{tel: tel, idcounter: &atomic.Uint64{}}

	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id        uint64
	startTime time.Time
}

// SafeUrl drops the query string and masks webhook tokens.
func SafeUrl(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	segments := strings.Split(u.Path, "/")
	for i := range segments {
		if i > 0 && segments[i-1] == "webhooks" && i+1 < len(segments) {
			segments[i+1] = "<redacted>"
		}
	}
	u.Path = strings.Join(segments, "/")
	u.RawPath = ""
	return u.String()
}

func (i instrumentResty) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	id := i.idcounter.Add(1)
	ctx := context.WithValue(req.Context(), reqCtxKey, reqCtx{
		id:        id,
		startTime: time.Now(),
	})
	i.tel.ReportDebug(report_resty_request, id, req.Method, SafeUrl(req.URL))
	req.SetContext(ctx)
	return nil
}

func elapsed(req *resty.Request) (uint64, time.Duration, bool) {
	rc, ok := req.Context().Value(reqCtxKey).(reqCtx)
	if !ok {
		return 0, 0, false
	}
	return rc.id, time.Since(rc.startTime), true
}

func (i instrumentResty) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	id, duration, ok := elapsed(res.Request)
	if !ok {
		return nil
	}
	if res.IsError() {
		i.tel.ReportWarning(report_resty_response, id, duration.String(), dumpExchange(res))
		return nil
	}
	i.tel.ReportDebug(report_resty_response, id, duration.String(), res.Status())
	return nil
}

func (i instrumentResty) onError(req *resty.Request, err error) {
	_, duration, _ := elapsed(req)
	i.tel.ReportBroken(report_resty_response, err, req.Method, SafeUrl(req.URL), duration)
}

func dumpHeaders(out *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value := strings.Join(headers[k], ", ")
		if _, secret := secretHeaders[http.CanonicalHeaderKey(k)]; secret {
			value = "<redacted>"
		}
		fmt.Fprintf(out, "%s: %s\n", k, value)
	}
}

func dumpExchange(res *resty.Response) string {
	var out strings.Builder
	fmt.Fprintf(&out, "%s %s\n", res.Request.Method, SafeUrl(res.Request.URL))
	dumpHeaders(&out, res.Request.Header)

	fmt.Fprintf(&out, "\n-> %s\n", res.Status())
	dumpHeaders(&out, res.Header())

	body := res.String()
	if len(body) > maxDumpBody {
		body = body[:maxDumpBody] + "..."
	}
	out.WriteString("\n")
	out.WriteString(body)
	return out.String()
}
