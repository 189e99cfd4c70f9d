package restyutil

import (
	"time"

	"starrail-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36"

type ClientOptions struct {
	BaseUrl string
	// defaults to DefaultUserAgent
	UserAgent string
	// defaults to 30 seconds
	Timeout time.Duration
	// Cloudflare wraps the transport with the cloudflare bypass round tripper.
	Cloudflare bool
	// Limiter is waited on before every request, nil disables rate limiting.
	Limiter *rate.Limiter
	// TracerName is the name of the tracer that spans every request.
	TracerName string
}

// NewClient creates a resty client configured the same way for every
// outbound integration.
func NewClient(opts ClientOptions) *resty.Client {
	client := resty.New()
	if opts.BaseUrl != "" {
		client.SetBaseURL(opts.BaseUrl)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}
	client.SetTimeout(timeout)

	if opts.Cloudflare {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	if opts.Limiter != nil {
		limiter := opts.Limiter
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	tracerName := opts.TracerName
	if tracerName == "" {
		tracerName = "resty"
	}
	telemetry.InstrumentResty(client, tracerName)

	return client
}
