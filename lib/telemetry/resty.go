package telemetry

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

// bodies of scraped pages are large, only their head is kept on the span
const maxBodyAttribute = 4096

// headers carrying account credentials (the hoyolab cookie in particular)
var redactedHeaders = []string{"Cookie", "Set-Cookie", "Authorization"}

// InstrumentResty wraps every request made by the client in a span.
func InstrumentResty(client *resty.Client, tracerName string) {
	tracer := otel.Tracer(tracerName)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), req.Method)
		req.SetContext(ctx)
		return nil
	})
	client.OnAfterResponse(onAfterResponse)
	client.OnError(onError)
}

func truncate(s string) string {
	if len(s) <= maxBodyAttribute {
		return s
	}
	return s[:maxBodyAttribute] + fmt.Sprintf("... (%d bytes omitted)", len(s)-maxBodyAttribute)
}

func headerAttributes(prefix string, headers http.Header) []attribute.KeyValue {
	var out []attribute.KeyValue
	for header, values := range headers {
		value := strings.Join(values, ", ")
		for _, r := range redactedHeaders {
			if strings.EqualFold(header, r) {
				value = "<redacted>"
				break
			}
		}
		out = append(out, attribute.String(fmt.Sprintf("%s/header: %s", prefix, header), value))
	}
	return out
}

func requestBody(req *http.Request) (string, bool) {
	if req == nil || req.GetBody == nil {
		return "", false
	}
	reader, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error()), true
	}
	// resty's GetBody yields a nil reader for bodiless requests
	if reader == nil {
		return "", false
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error()), true
	}
	return truncate(string(body)), true
}

func describeRequest(span trace.Span, req *resty.Request) {
	span.SetName(fmt.Sprintf("http %s", req.Method))
	span.SetAttributes(headerAttributes("request", req.Header)...)
	if req.RawRequest == nil {
		return
	}
	// RawRequest is only populated once the request was sent
	span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
	if body, ok := requestBody(req.RawRequest); ok {
		span.SetAttributes(attribute.String("request/body", body))
	}
}

func onAfterResponse(_ *resty.Client, res *resty.Response) error {
	span := trace.SpanFromContext(res.Request.Context())
	defer span.End()

	describeRequest(span, res.Request)
	span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
	span.SetAttributes(headerAttributes("response", res.Header())...)
	span.SetAttributes(attribute.String("response/body", truncate(res.String())))
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}
	return nil
}

func onError(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()

	describeRequest(span, req)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
